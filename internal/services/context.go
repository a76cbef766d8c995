package services

import "context"

// ctxKey scopes the correlation values carried through a job's context.
type ctxKey int

const (
	jobIDKey ctxKey = iota
	stageKey
	workerKey
	requestIDKey
)

func withValue(ctx context.Context, key ctxKey, value string) context.Context {
	if value == "" {
		return ctx
	}
	return context.WithValue(ctx, key, value)
}

func value(ctx context.Context, key ctxKey) (string, bool) {
	v, ok := ctx.Value(key).(string)
	return v, ok && v != ""
}

// WithJobID tags ctx with the ledger job ID. Blank IDs leave ctx unchanged,
// as do the other With helpers.
func WithJobID(ctx context.Context, id string) context.Context {
	return withValue(ctx, jobIDKey, id)
}

// WithStage tags ctx with the running pipeline stage.
func WithStage(ctx context.Context, stage string) context.Context {
	return withValue(ctx, stageKey, stage)
}

// WithWorker tags ctx with the workflow worker that claimed the job.
func WithWorker(ctx context.Context, worker string) context.Context {
	return withValue(ctx, workerKey, worker)
}

// WithRequestID tags ctx with the HTTP request ID that submitted the job.
func WithRequestID(ctx context.Context, id string) context.Context {
	return withValue(ctx, requestIDKey, id)
}

func JobIDFromContext(ctx context.Context) (string, bool)     { return value(ctx, jobIDKey) }
func StageFromContext(ctx context.Context) (string, bool)     { return value(ctx, stageKey) }
func WorkerFromContext(ctx context.Context) (string, bool)    { return value(ctx, workerKey) }
func RequestIDFromContext(ctx context.Context) (string, bool) { return value(ctx, requestIDKey) }
