package domain

import "time"

// to iterate thru layers: handler -> service -> storage
type TopicCreationData struct {
	Title      TopicTitle
	CategoryId CategoryId
	UserId     UserId
	CreatedAt  time.Time
}

type Topic struct {
	Id                TopicId
	Title             TopicTitle
	CategoryId        CategoryId
	UserId            UserId
	PostsCount        int
	HighestPostNumber PostNumber
	ParticipantCount  int
	LastPostedAt      *time.Time
	LastPostUserId    *UserId
	BumpedAt          time.Time
	CreatedAt         time.Time
	DeletedAt         *time.Time
}

type TopicWithPosts struct {
	Topic
	Posts []*Post
}
