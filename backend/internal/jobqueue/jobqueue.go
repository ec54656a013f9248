/*
Package jobqueue runs background jobs on River, backed by the same PostgreSQL
database as the topics. The only job today fans out "moved_post"
notifications after a post move has committed.
*/
package jobqueue

import (
	"context"
	"fmt"

	"github.com/itchan-dev/postmove/shared/config"
	"github.com/itchan-dev/postmove/shared/domain"
	"github.com/itchan-dev/postmove/shared/logger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
)

// JobQueue owns the River client and its connection pool.
type JobQueue struct {
	client *river.Client[pgx.Tx]
	pool   *pgxpool.Pool
	cfg    config.Queue
}

// New connects to databaseURL and registers the workers. Jobs are not worked
// until Start is called; inserting works right away.
func New(ctx context.Context, databaseURL string, cfg config.Queue) (*JobQueue, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, NewNotifyMovedPostsWorker(pool))

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: cfg.MaxWorkers},
		},
		Workers:      workers,
		ErrorHandler: &errorHandler{},
		Logger:       logger.Log,
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	return &JobQueue{client: client, pool: pool, cfg: cfg}, nil
}

// Migrate brings the River tables up to date.
func (jq *JobQueue) Migrate(ctx context.Context) error {
	migrator, err := rivermigrate.New(riverpgxv5.New(jq.pool), nil)
	if err != nil {
		return fmt.Errorf("failed to create River migrator: %w", err)
	}
	res, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil)
	if err != nil {
		return fmt.Errorf("failed to migrate River schema: %w", err)
	}
	for _, v := range res.Versions {
		logger.Log.Info("applied river migration", "version", v.Version)
	}
	return nil
}

func (jq *JobQueue) Start(ctx context.Context) error {
	return jq.client.Start(ctx)
}

func (jq *JobQueue) Stop(ctx context.Context) error {
	return jq.client.Stop(ctx)
}

func (jq *JobQueue) Close() {
	jq.pool.Close()
}

// NotifyMovedPosts enqueues the notification fan-out of a committed move.
func (jq *JobQueue) NotifyMovedPosts(ctx context.Context, moveId string, postIds []domain.PostId, movedBy domain.UserId) error {
	args := NotifyMovedPostsArgs{
		PostIds:   postIds,
		MovedById: movedBy,
		MoveId:    moveId,
	}

	res, err := jq.client.Insert(ctx, args, &river.InsertOpts{MaxAttempts: jq.cfg.MaxAttempts})
	if err != nil {
		return fmt.Errorf("failed to queue %s job: %w", args.Kind(), err)
	}

	logger.Log.Debug("queued job", "kind", args.Kind(), "job_id", res.Job.ID, "move_id", moveId)
	return nil
}
