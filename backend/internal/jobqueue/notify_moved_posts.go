package jobqueue

import (
	"context"
	"fmt"

	"github.com/itchan-dev/postmove/shared/domain"
	"github.com/itchan-dev/postmove/shared/logger"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/riverqueue/river"
)

const MovedPostNotification = "moved_post"

type NotifyMovedPostsArgs struct {
	PostIds   []domain.PostId `json:"post_ids"`
	MovedById domain.UserId   `json:"moved_by_id"`
	MoveId    string          `json:"move_id"`
}

func (NotifyMovedPostsArgs) Kind() string {
	return "notify_moved_posts"
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// NotifyMovedPostsWorker tells authors that a moderator moved their posts.
type NotifyMovedPostsWorker struct {
	river.WorkerDefaults[NotifyMovedPostsArgs]
	db execer
}

func NewNotifyMovedPostsWorker(db execer) *NotifyMovedPostsWorker {
	return &NotifyMovedPostsWorker{db: db}
}

// Work inserts one notification per moved post not written by the mover, at
// the post's current location. A retried job skips posts it already covered.
func (w *NotifyMovedPostsWorker) Work(ctx context.Context, job *river.Job[NotifyMovedPostsArgs]) error {
	args := job.Args
	if len(args.PostIds) == 0 {
		return nil
	}

	tag, err := w.db.Exec(ctx, `
		INSERT INTO notifications (user_id, notification_type, topic_id, post_number, data)
		SELECT p.user_id, $4, p.topic_id, p.post_number,
		       jsonb_build_object('moved_by_id', $2::bigint, 'move_id', $3::text, 'post_id', p.id)
		FROM posts p
		WHERE p.id = ANY($1) AND p.user_id <> $2
		  AND NOT EXISTS (
			SELECT 1 FROM notifications n
			WHERE n.notification_type = $4
			  AND n.data->>'move_id' = $3::text
			  AND (n.data->>'post_id')::bigint = p.id
		  )`,
		args.PostIds, args.MovedById, args.MoveId, MovedPostNotification)
	if err != nil {
		return fmt.Errorf("failed to insert %s notifications: %w", MovedPostNotification, err)
	}

	logger.Log.Info("moved post notifications created",
		"move_id", args.MoveId,
		"job_id", job.ID,
		"attempt", job.Attempt,
		"count", tag.RowsAffected())
	return nil
}
