package jobqueue

import (
	"context"

	"github.com/itchan-dev/postmove/shared/logger"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
)

// errorHandler logs failed attempts; River's retry policy stays in charge.
type errorHandler struct{}

func (*errorHandler) HandleError(ctx context.Context, job *rivertype.JobRow, err error) *river.ErrorHandlerResult {
	logger.Log.Error("job failed",
		"kind", job.Kind,
		"job_id", job.ID,
		"attempt", job.Attempt,
		"max_attempts", job.MaxAttempts,
		"error", err)
	return nil
}

func (*errorHandler) HandlePanic(ctx context.Context, job *rivertype.JobRow, panicVal any, trace string) *river.ErrorHandlerResult {
	logger.Log.Error("job panicked",
		"kind", job.Kind,
		"job_id", job.ID,
		"attempt", job.Attempt,
		"panic", panicVal,
		"trace", trace)
	return nil
}
