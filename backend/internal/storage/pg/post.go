package pg

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/itchan-dev/postmove/shared/domain"
	internal_errors "github.com/itchan-dev/postmove/shared/errors"
	sharedpg "github.com/itchan-dev/postmove/shared/storage/pg"
	"github.com/lib/pq"
)

const postColumns = `
	id, topic_id, user_id, created_by_id, post_number, sort_order,
	post_type, raw, cooked, created_at, updated_at`

func scanPost(row interface{ Scan(...any) error }) (domain.Post, error) {
	var p domain.Post
	err := row.Scan(
		&p.Id, &p.TopicId, &p.UserId, &p.CreatedById, &p.PostNumber, &p.SortOrder,
		&p.Type, &p.Raw, &p.Cooked, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

func scanPosts(rows *sql.Rows) ([]*domain.Post, error) {
	var posts []*domain.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, &post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return posts, nil
}

// SelectPostsForMove returns the posts of ids that currently belong to topicId,
// oldest first, and locks them until q's transaction ends.
func (s *Storage) SelectPostsForMove(ctx context.Context, q sharedpg.Querier, topicId domain.TopicId, ids []domain.PostId) ([]*domain.Post, error) {
	rows, err := q.QueryContext(ctx, fmt.Sprintf(`
		SELECT %s FROM posts
		WHERE topic_id = $1 AND id = ANY($2)
		ORDER BY created_at, id
		FOR UPDATE`, postColumns),
		topicId, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to select posts: %w", err)
	}
	defer rows.Close()

	return scanPosts(rows)
}

// RelocatePost moves one post from topic `from` into topic `to` at slot number.
// Exactly one row must match (post id, origin topic); anything else means the
// post was moved or deleted concurrently.
func (s *Storage) RelocatePost(ctx context.Context, q sharedpg.Querier, id domain.PostId, from, to domain.TopicId, number domain.PostNumber) error {
	result, err := q.ExecContext(ctx, `
		UPDATE posts
		SET topic_id = $1, post_number = $2, sort_order = $2, updated_at = $3
		WHERE id = $4 AND topic_id = $5`,
		to, number, time.Now().UTC().Round(time.Microsecond), id, from)
	if err != nil {
		return fmt.Errorf("failed to relocate post %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to relocate post %d: %w", id, err)
	}
	if affected != 1 {
		return internal_errors.Conflict(fmt.Sprintf("Post %d is no longer in topic %d", id, from))
	}
	return nil
}

// InsertPost stores a post at data.PostNumber, which the caller must have reserved.
func (s *Storage) InsertPost(ctx context.Context, q sharedpg.Querier, data domain.PostCreationData, cooked string) (domain.Post, error) {
	if data.PostNumber == nil {
		return domain.Post{}, fmt.Errorf("post number is not reserved")
	}
	createdAt := data.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	createdAt = createdAt.Round(time.Microsecond) // database anyway round to microsecond

	post, err := scanPost(q.QueryRowContext(ctx, fmt.Sprintf(`
		INSERT INTO posts (topic_id, user_id, created_by_id, post_number, sort_order, post_type, raw, cooked, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4, $5, $6, $7, $8, $8)
		RETURNING %s`, postColumns),
		data.TopicId, data.Author, data.CreatedBy, *data.PostNumber, data.Type, data.Raw, cooked, createdAt,
	))
	if err != nil {
		return domain.Post{}, fmt.Errorf("failed to insert post: %w", err)
	}
	return post, nil
}
