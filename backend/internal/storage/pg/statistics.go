package pg

import (
	"context"
	"fmt"
	"time"

	"github.com/itchan-dev/postmove/shared/domain"
	internal_errors "github.com/itchan-dev/postmove/shared/errors"
	sharedpg "github.com/itchan-dev/postmove/shared/storage/pg"
)

// UpdateTopicStatistics recomputes the aggregate columns of a topic from its
// current posts. highest_post_number never decreases, so numbers of posts
// that left the topic are not handed out again.
func (s *Storage) UpdateTopicStatistics(ctx context.Context, q sharedpg.Querier, topicId domain.TopicId) error {
	result, err := q.ExecContext(ctx, `
		UPDATE topics t SET
			posts_count         = s.posts_count,
			highest_post_number = GREATEST(t.highest_post_number, s.highest_post_number),
			participant_count   = s.participant_count,
			last_posted_at      = s.last_posted_at,
			last_post_user_id   = s.last_post_user_id,
			bumped_at           = COALESCE(s.last_regular_at, t.created_at),
			updated_at          = $3
		FROM (
			SELECT
				COUNT(*)                                           AS posts_count,
				COALESCE(MAX(post_number), 0)                      AS highest_post_number,
				COUNT(DISTINCT user_id) FILTER (WHERE post_type = $2) AS participant_count,
				MAX(created_at)                                    AS last_posted_at,
				MAX(created_at) FILTER (WHERE post_type = $2)      AS last_regular_at,
				(SELECT p.user_id FROM posts p
				 WHERE p.topic_id = $1
				 ORDER BY p.created_at DESC, p.id DESC
				 LIMIT 1)                                          AS last_post_user_id
			FROM posts
			WHERE topic_id = $1
		) s
		WHERE t.id = $1`,
		topicId, domain.PostTypeRegular, time.Now().UTC().Round(time.Microsecond))
	if err != nil {
		return fmt.Errorf("failed to update statistics of topic %d: %w", topicId, err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return internal_errors.NotFound("Topic not found")
	}
	return nil
}
