package service

import (
	"context"
	"time"

	"github.com/itchan-dev/postmove/shared/domain"
	"github.com/itchan-dev/postmove/shared/storage/pg"
)

type StatisticsStorage interface {
	UpdateTopicStatistics(ctx context.Context, q pg.Querier, topicId domain.TopicId) error
}

type postCreator interface {
	Create(ctx context.Context, q pg.Querier, data domain.PostCreationData) (domain.Post, error)
}

// ModeratorPoster appends moderator action posts to topics.
type ModeratorPoster struct {
	creator postCreator
	stats   StatisticsStorage
}

func NewModeratorPoster(creator postCreator, stats StatisticsStorage) *ModeratorPoster {
	return &ModeratorPoster{creator: creator, stats: stats}
}

// AddModeratorPost writes text into the topic as user. A non-nil postNumber
// places the post in that (free) slot instead of the end of the topic. The
// topic statistics are recomputed afterwards.
func (m *ModeratorPoster) AddModeratorPost(ctx context.Context, q pg.Querier, topicId domain.TopicId, user domain.User, text string, postNumber *domain.PostNumber) (domain.Post, error) {
	post, err := m.creator.Create(ctx, q, domain.PostCreationData{
		TopicId:    topicId,
		Author:     user.Id,
		CreatedBy:  user.Id,
		Raw:        text,
		Type:       domain.PostTypeModeratorAction,
		PostNumber: postNumber,
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		return domain.Post{}, err
	}

	if err := m.stats.UpdateTopicStatistics(ctx, q, topicId); err != nil {
		return domain.Post{}, err
	}
	return post, nil
}
