package service

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/itchan-dev/postmove/shared/config"
	"github.com/itchan-dev/postmove/shared/domain"
	internal_errors "github.com/itchan-dev/postmove/shared/errors"
	"github.com/itchan-dev/postmove/shared/logger"
	"github.com/itchan-dev/postmove/shared/middleware/metrics"
	"github.com/itchan-dev/postmove/shared/storage/pg"
)

const (
	newTopicModeratorPost      = "move_posts.new_topic_moderator_post"
	existingTopicModeratorPost = "move_posts.existing_topic_moderator_post"

	// notifyTimeout bounds the post-commit enqueue so a slow queue cannot hold the request.
	notifyTimeout = 5 * time.Second
)

type PostMoveStorage interface {
	WithTx(ctx context.Context, fn func(q pg.Querier) error) error
	SelectPostsForMove(ctx context.Context, q pg.Querier, topicId domain.TopicId, ids []domain.PostId) ([]*domain.Post, error)
	FindTopic(ctx context.Context, q pg.Querier, id domain.TopicId, forUpdate bool) (*domain.Topic, error)
	CreateTopic(ctx context.Context, q pg.Querier, data domain.TopicCreationData) (domain.Topic, error)
	NextPostNumber(ctx context.Context, q pg.Querier, topicId domain.TopicId) (domain.PostNumber, error)
	RelocatePost(ctx context.Context, q pg.Querier, id domain.PostId, from, to domain.TopicId, number domain.PostNumber) error
	UpdateTopicStatistics(ctx context.Context, q pg.Querier, topicId domain.TopicId) error
}

type TopicGuardian interface {
	EnsureCanSee(user domain.User, topic *domain.Topic) error
}

type PostCopier interface {
	Create(ctx context.Context, q pg.Querier, data domain.PostCreationData) (domain.Post, error)
}

type AuditPoster interface {
	AddModeratorPost(ctx context.Context, q pg.Querier, topicId domain.TopicId, user domain.User, text string, postNumber *domain.PostNumber) (domain.Post, error)
}

type MovedPostsNotifier interface {
	NotifyMovedPosts(ctx context.Context, moveId string, postIds []domain.PostId, movedBy domain.UserId) error
}

type TitleValidator interface {
	Title(title string) error
}

type Translator interface {
	T(key string, vars map[string]any) string
}

// PostMove relocates posts of one topic into another one.
type PostMove struct {
	storage   PostMoveStorage
	guardian  TopicGuardian
	copier    PostCopier
	auditor   AuditPoster
	notifier  MovedPostsNotifier
	validator TitleValidator
	texts     Translator
	cfg       config.Public
}

func NewPostMove(storage PostMoveStorage, guardian TopicGuardian, copier PostCopier, auditor AuditPoster,
	notifier MovedPostsNotifier, validator TitleValidator, texts Translator, cfg config.Public) *PostMove {
	return &PostMove{
		storage:   storage,
		guardian:  guardian,
		copier:    copier,
		auditor:   auditor,
		notifier:  notifier,
		validator: validator,
		texts:     texts,
		cfg:       cfg,
	}
}

// destinationResolver produces the destination inside the move transaction.
// A nil topic means the destination does not exist.
type destinationResolver func(ctx context.Context, q pg.Querier) (*domain.Topic, error)

// ToTopic moves the requested posts into an existing topic.
func (s *PostMove) ToTopic(ctx context.Context, req domain.RelocationRequest, destinationId domain.TopicId) (domain.RelocationResult, error) {
	return s.move(ctx, req, existingTopicModeratorPost, func(ctx context.Context, q pg.Querier) (*domain.Topic, error) {
		return s.storage.FindTopic(ctx, q, destinationId, true)
	})
}

// ToNewTopic creates a topic titled title in the origin's category, owned by
// the acting user, and moves the requested posts into it.
func (s *PostMove) ToNewTopic(ctx context.Context, req domain.RelocationRequest, title domain.TopicTitle) (domain.RelocationResult, error) {
	title = strings.TrimSpace(title)
	if err := s.validator.Title(title); err != nil {
		return domain.RelocationResult{}, err
	}

	return s.move(ctx, req, newTopicModeratorPost, func(ctx context.Context, q pg.Querier) (*domain.Topic, error) {
		topic, err := s.storage.CreateTopic(ctx, q, domain.TopicCreationData{
			Title:      title,
			CategoryId: req.OriginTopic.CategoryId,
			UserId:     req.ActingUser.Id,
			CreatedAt:  time.Now().UTC(),
		})
		if err != nil {
			return nil, err
		}
		return &topic, nil
	})
}

func (s *PostMove) move(ctx context.Context, req domain.RelocationRequest, auditKey string, resolve destinationResolver) (domain.RelocationResult, error) {
	ids := uniquePostIds(req.PostIds)
	if len(ids) == 0 {
		return domain.RelocationResult{}, internal_errors.InvalidInput("No posts selected")
	}

	moveId := uuid.NewString()
	log := logger.Log.With("move_id", moveId, "origin_topic_id", req.OriginTopic.Id, "acting_user_id", req.ActingUser.Id)

	var result domain.RelocationResult
	err := s.storage.WithTx(ctx, func(q pg.Querier) error {
		posts, err := s.selectPosts(ctx, q, req.OriginTopic.Id, ids)
		if err != nil {
			return err
		}

		destination, err := resolve(ctx, q)
		if err != nil {
			return err
		}
		if err := s.guardian.EnsureCanSee(req.ActingUser, destination); err != nil {
			return err
		}
		if destination.Id == req.OriginTopic.Id {
			return internal_errors.InvalidInput("Posts are already in this topic")
		}

		result, err = s.moveEach(ctx, q, req, posts, destination.Id)
		if err != nil {
			return err
		}

		if err := s.storage.UpdateTopicStatistics(ctx, q, destination.Id); err != nil {
			return err
		}
		if err := s.storage.UpdateTopicStatistics(ctx, q, req.OriginTopic.Id); err != nil {
			return err
		}

		text := s.auditText(auditKey, len(posts), *destination)
		if _, err := s.auditor.AddModeratorPost(ctx, q, req.OriginTopic.Id, req.ActingUser, text, result.Anchor); err != nil {
			return err
		}

		refreshed, err := s.storage.FindTopic(ctx, q, destination.Id, false)
		if err != nil {
			return err
		}
		if refreshed == nil {
			return internal_errors.NotFound("Topic not found")
		}
		result.Destination = *refreshed
		return nil
	})
	if err != nil {
		metrics.PostMoves.WithLabelValues(strconv.Itoa(internal_errors.StatusCode(err))).Inc()
		log.Info("post move rejected", "error", err)
		return domain.RelocationResult{}, err
	}

	metrics.PostMoves.WithLabelValues("ok").Inc()
	metrics.PostsMoved.WithLabelValues("relocated").Add(float64(result.Relocated))
	metrics.PostsMoved.WithLabelValues("copied").Add(float64(len(result.Copies)))
	log.Info("posts moved",
		"destination_topic_id", result.Destination.Id,
		"relocated", result.Relocated,
		"copied", len(result.Copies))

	s.notify(ctx, log, moveId, result.Moved, req.ActingUser.Id)
	return result, nil
}

// selectPosts runs the selection query once; its result is the only source of
// posts for the rest of the move.
func (s *PostMove) selectPosts(ctx context.Context, q pg.Querier, origin domain.TopicId, ids []domain.PostId) ([]*domain.Post, error) {
	posts, err := s.storage.SelectPostsForMove(ctx, q, origin, ids)
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, internal_errors.InvalidInput("None of the selected posts belong to this topic")
	}
	return posts, nil
}

// moveEach copies first posts and relocates the rest, one at a time, in the
// order they were selected.
func (s *PostMove) moveEach(ctx context.Context, q pg.Querier, req domain.RelocationRequest, posts []*domain.Post, destination domain.TopicId) (domain.RelocationResult, error) {
	result := domain.RelocationResult{Moved: make([]domain.PostId, 0, len(posts))}

	for _, post := range posts {
		result.Moved = append(result.Moved, post.Id)

		if post.IsFirstPost() {
			copied, err := s.copier.Create(ctx, q, domain.PostCreationData{
				TopicId:   destination,
				Author:    post.UserId,
				CreatedBy: req.ActingUser.Id,
				Raw:       post.Raw,
				Type:      domain.PostTypeRegular,
				CreatedAt: time.Now().UTC(),
			})
			if err != nil {
				return domain.RelocationResult{}, err
			}
			result.Copies = append(result.Copies, copied.Id)
			continue
		}

		if result.Anchor == nil {
			anchor := post.PostNumber
			result.Anchor = &anchor
		}

		next, err := s.storage.NextPostNumber(ctx, q, destination)
		if err != nil {
			return domain.RelocationResult{}, err
		}
		if err := s.storage.RelocatePost(ctx, q, post.Id, req.OriginTopic.Id, destination, next); err != nil {
			return domain.RelocationResult{}, err
		}
		result.Relocated++
	}

	return result, nil
}

func (s *PostMove) auditText(key string, count int, destination domain.Topic) string {
	return s.texts.T(key, map[string]any{
		"count":      count,
		"topic_link": TopicLink(s.cfg.BaseURL, destination),
	})
}

// notify enqueues the notification job. The move is already committed, so a
// failure here is logged and counted but never returned.
func (s *PostMove) notify(ctx context.Context, log *slog.Logger, moveId string, postIds []domain.PostId, movedBy domain.UserId) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	if err := s.notifier.NotifyMovedPosts(ctx, moveId, postIds, movedBy); err != nil {
		metrics.NotificationEnqueueFailures.Inc()
		log.Error("failed to enqueue moved posts notification", "error", err)
	}
}

// uniquePostIds drops duplicates and non-positive ids, keeping the first occurrence order.
func uniquePostIds(ids []domain.PostId) []domain.PostId {
	seen := make(map[domain.PostId]struct{}, len(ids))
	out := make([]domain.PostId, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
