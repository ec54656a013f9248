package handler

import (
	"context"

	"github.com/itchan-dev/postmove/shared/config"
	"github.com/itchan-dev/postmove/shared/domain"
)

type TopicService interface {
	Find(ctx context.Context, user domain.User, id domain.TopicId) (domain.Topic, error)
	Get(ctx context.Context, user domain.User, id domain.TopicId) (domain.TopicWithPosts, error)
}

type PostMoveService interface {
	ToTopic(ctx context.Context, req domain.RelocationRequest, destinationId domain.TopicId) (domain.RelocationResult, error)
	ToNewTopic(ctx context.Context, req domain.RelocationRequest, title domain.TopicTitle) (domain.RelocationResult, error)
}

type HealthChecker interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	topic    TopicService
	postMove PostMoveService
	health   HealthChecker
	cfg      *config.Config
}

func New(topic TopicService, postMove PostMoveService, health HealthChecker, cfg *config.Config) *Handler {
	return &Handler{topic: topic, postMove: postMove, health: health, cfg: cfg}
}
