package service

import (
	"context"

	"github.com/itchan-dev/postmove/shared/domain"
	"github.com/itchan-dev/postmove/shared/storage/pg"
)

type TopicStorage interface {
	Querier() pg.Querier
	FindTopic(ctx context.Context, q pg.Querier, id domain.TopicId, forUpdate bool) (*domain.Topic, error)
	GetTopicWithPosts(ctx context.Context, id domain.TopicId) (domain.TopicWithPosts, error)
}

// Topic is the read side of topics, filtered through the guardian.
type Topic struct {
	storage  TopicStorage
	guardian TopicGuardian
}

func NewTopic(storage TopicStorage, guardian TopicGuardian) *Topic {
	return &Topic{storage: storage, guardian: guardian}
}

// Find returns the topic without its posts.
func (s *Topic) Find(ctx context.Context, user domain.User, id domain.TopicId) (domain.Topic, error) {
	topic, err := s.storage.FindTopic(ctx, s.storage.Querier(), id, false)
	if err != nil {
		return domain.Topic{}, err
	}
	if err := s.guardian.EnsureCanSee(user, topic); err != nil {
		return domain.Topic{}, err
	}
	return *topic, nil
}

// Get returns the topic with its posts ordered by sort order.
func (s *Topic) Get(ctx context.Context, user domain.User, id domain.TopicId) (domain.TopicWithPosts, error) {
	topic, err := s.storage.GetTopicWithPosts(ctx, id)
	if err != nil {
		return domain.TopicWithPosts{}, err
	}
	if err := s.guardian.EnsureCanSee(user, &topic.Topic); err != nil {
		return domain.TopicWithPosts{}, err
	}
	return topic, nil
}
