package service

import (
	"context"

	"github.com/itchan-dev/postmove/shared/domain"
	"github.com/itchan-dev/postmove/shared/storage/pg"
)

type PostStorage interface {
	NextPostNumber(ctx context.Context, q pg.Querier, topicId domain.TopicId) (domain.PostNumber, error)
	InsertPost(ctx context.Context, q pg.Querier, data domain.PostCreationData, cooked string) (domain.Post, error)
}

type PostValidator interface {
	Raw(raw string) error
}

// PostCreator is the single entry point for writing new posts.
type PostCreator struct {
	storage   PostStorage
	validator PostValidator
	cooker    *Cooker
}

func NewPostCreator(storage PostStorage, validator PostValidator, cooker *Cooker) *PostCreator {
	return &PostCreator{storage, validator, cooker}
}

// Create writes a post inside q's transaction. Without an explicit
// data.PostNumber the next number of the topic is reserved.
func (c *PostCreator) Create(ctx context.Context, q pg.Querier, data domain.PostCreationData) (domain.Post, error) {
	if err := c.validator.Raw(data.Raw); err != nil {
		return domain.Post{}, err
	}
	if data.Type == 0 {
		data.Type = domain.PostTypeRegular
	}
	if data.CreatedBy == 0 {
		data.CreatedBy = data.Author
	}

	cooked, err := c.cooker.Cook(data.Raw)
	if err != nil {
		return domain.Post{}, err
	}

	if data.PostNumber == nil {
		next, err := c.storage.NextPostNumber(ctx, q, data.TopicId)
		if err != nil {
			return domain.Post{}, err
		}
		data.PostNumber = &next
	}

	return c.storage.InsertPost(ctx, q, data, cooked)
}
