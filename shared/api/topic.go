package api

import (
	"time"

	"github.com/itchan-dev/postmove/shared/domain"
)

// Request DTOs

// MovePostsRequest names exactly one destination: an existing topic or the
// title of a topic to create.
type MovePostsRequest struct {
	PostIds            []domain.PostId `json:"post_ids" validate:"required"`
	DestinationTopicId *domain.TopicId `json:"destination_topic_id,omitempty" validate:"required_without=Title,excluded_with=Title"`
	Title              *string         `json:"title,omitempty" validate:"required_without=DestinationTopicId,excluded_with=DestinationTopicId"`
}

// Response DTOs

type TopicResponse struct {
	Id                domain.TopicId    `json:"id"`
	Title             domain.TopicTitle `json:"title"`
	URL               string            `json:"url"`
	CategoryId        domain.CategoryId `json:"category_id"`
	UserId            domain.UserId     `json:"user_id"`
	PostsCount        int               `json:"posts_count"`
	HighestPostNumber domain.PostNumber `json:"highest_post_number"`
	ParticipantCount  int               `json:"participant_count"`
	LastPostedAt      *time.Time        `json:"last_posted_at"`
	LastPostUserId    *domain.UserId    `json:"last_post_user_id"`
	BumpedAt          time.Time         `json:"bumped_at"`
	CreatedAt         time.Time         `json:"created_at"`
}

type PostResponse struct {
	Id          domain.PostId     `json:"id"`
	PostNumber  domain.PostNumber `json:"post_number"`
	UserId      domain.UserId     `json:"user_id"`
	CreatedById domain.UserId     `json:"created_by_id"`
	PostType    string            `json:"post_type"`
	Raw         domain.PostRaw    `json:"raw"`
	Cooked      string            `json:"cooked"`
	CreatedAt   time.Time         `json:"created_at"`
}

type TopicWithPostsResponse struct {
	TopicResponse
	Posts []PostResponse `json:"posts"`
}

type MovePostsResponse struct {
	Topic TopicResponse `json:"topic"`
}

func NewTopicResponse(t domain.Topic, url string) TopicResponse {
	return TopicResponse{
		Id:                t.Id,
		Title:             t.Title,
		URL:               url,
		CategoryId:        t.CategoryId,
		UserId:            t.UserId,
		PostsCount:        t.PostsCount,
		HighestPostNumber: t.HighestPostNumber,
		ParticipantCount:  t.ParticipantCount,
		LastPostedAt:      t.LastPostedAt,
		LastPostUserId:    t.LastPostUserId,
		BumpedAt:          t.BumpedAt,
		CreatedAt:         t.CreatedAt,
	}
}

func NewPostResponse(p domain.Post) PostResponse {
	return PostResponse{
		Id:          p.Id,
		PostNumber:  p.PostNumber,
		UserId:      p.UserId,
		CreatedById: p.CreatedById,
		PostType:    p.Type.String(),
		Raw:         p.Raw,
		Cooked:      p.Cooked,
		CreatedAt:   p.CreatedAt,
	}
}
