package domain

import "time"

type PostCreationData struct {
	TopicId    TopicId
	Author     UserId
	Raw        PostRaw
	CreatedBy  UserId // acting user; differs from Author when a post is copied by a moderator
	Type       PostType
	PostNumber *PostNumber // explicit slot, allocated from the topic when nil
	CreatedAt  time.Time
}

type Post struct {
	Id          PostId
	TopicId     TopicId
	UserId      UserId
	CreatedById UserId
	PostNumber  PostNumber
	SortOrder   int
	Type        PostType
	Raw         PostRaw
	Cooked      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsFirstPost reports whether the post opens its topic.
func (p *Post) IsFirstPost() bool {
	return p.PostNumber == 1
}
