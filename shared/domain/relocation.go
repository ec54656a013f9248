package domain

// RelocationRequest is the parameter object of a post move.
type RelocationRequest struct {
	OriginTopic Topic
	ActingUser  User
	PostIds     []PostId
}

// RelocationResult reports what a successful move did.
type RelocationResult struct {
	Destination Topic
	Moved       []PostId    // every selected post, creation order
	Relocated   int         // posts whose topic membership was rewritten
	Copies      []PostId    // posts created in the destination for first posts
	Anchor      *PostNumber // origin number of the first relocated post
}
