package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/itchan-dev/postmove/shared/domain"
	internal_errors "github.com/itchan-dev/postmove/shared/errors"
	sharedpg "github.com/itchan-dev/postmove/shared/storage/pg"
)

const topicColumns = `
	id, title, category_id, user_id, posts_count, highest_post_number,
	participant_count, last_posted_at, last_post_user_id, bumped_at, created_at, deleted_at`

func scanTopic(row interface{ Scan(...any) error }) (domain.Topic, error) {
	var t domain.Topic
	var lastPostUser sql.NullInt64
	err := row.Scan(
		&t.Id, &t.Title, &t.CategoryId, &t.UserId, &t.PostsCount, &t.HighestPostNumber,
		&t.ParticipantCount, &t.LastPostedAt, &lastPostUser, &t.BumpedAt, &t.CreatedAt, &t.DeletedAt,
	)
	if lastPostUser.Valid {
		t.LastPostUserId = &lastPostUser.Int64
	}
	return t, err
}

// FindTopic returns nil without an error when the topic does not exist.
// With forUpdate the row stays locked until q's transaction ends.
func (s *Storage) FindTopic(ctx context.Context, q sharedpg.Querier, id domain.TopicId, forUpdate bool) (*domain.Topic, error) {
	query := fmt.Sprintf("SELECT %s FROM topics WHERE id = $1", topicColumns)
	if forUpdate {
		query += " FOR UPDATE"
	}
	topic, err := scanTopic(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch topic %d: %w", id, err)
	}
	return &topic, nil
}

func (s *Storage) CreateTopic(ctx context.Context, q sharedpg.Querier, data domain.TopicCreationData) (domain.Topic, error) {
	var category domain.CategoryId
	err := q.QueryRowContext(ctx, "SELECT id FROM categories WHERE id = $1", data.CategoryId).Scan(&category)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Topic{}, internal_errors.NotFound("Category not found")
		}
		return domain.Topic{}, fmt.Errorf("failed to validate category: %w", err)
	}

	topic, err := scanTopic(q.QueryRowContext(ctx, fmt.Sprintf(`
		INSERT INTO topics (title, category_id, user_id, bumped_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4, $4)
		RETURNING %s`, topicColumns),
		data.Title, data.CategoryId, data.UserId, data.CreatedAt,
	))
	if err != nil {
		return domain.Topic{}, fmt.Errorf("failed to insert topic: %w", err)
	}
	return topic, nil
}

// GetTopicWithPosts returns the topic and its posts in display order.
func (s *Storage) GetTopicWithPosts(ctx context.Context, id domain.TopicId) (domain.TopicWithPosts, error) {
	topic, err := s.FindTopic(ctx, s.db, id, false)
	if err != nil {
		return domain.TopicWithPosts{}, err
	}
	if topic == nil {
		return domain.TopicWithPosts{}, internal_errors.NotFound("Topic not found")
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT %s FROM posts
		WHERE topic_id = $1
		ORDER BY sort_order, id`, postColumns), id)
	if err != nil {
		return domain.TopicWithPosts{}, fmt.Errorf("failed to fetch posts: %w", err)
	}
	defer rows.Close()

	posts, err := scanPosts(rows)
	if err != nil {
		return domain.TopicWithPosts{}, err
	}
	return domain.TopicWithPosts{Topic: *topic, Posts: posts}, nil
}

// NextPostNumber reserves the next sequence number of a topic. The UPDATE
// keeps the topic row locked until the transaction ends, so concurrent
// writers to the same topic are serialized and never receive the same number.
func (s *Storage) NextPostNumber(ctx context.Context, q sharedpg.Querier, topicId domain.TopicId) (domain.PostNumber, error) {
	var next domain.PostNumber
	err := q.QueryRowContext(ctx, `
		UPDATE topics
		SET highest_post_number = GREATEST(
			highest_post_number,
			(SELECT COALESCE(MAX(post_number), 0) FROM posts WHERE topic_id = $1)
		) + 1
		WHERE id = $1
		RETURNING highest_post_number`, topicId).Scan(&next)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, internal_errors.NotFound("Topic not found")
		}
		return 0, fmt.Errorf("failed to allocate post number in topic %d: %w", topicId, err)
	}
	return next, nil
}
