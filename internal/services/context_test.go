package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"karaoke/internal/services"
)

func TestContextRoundTrip(t *testing.T) {
	ctx := services.WithJobID(context.Background(), "job-42")
	ctx = services.WithStage(ctx, "separation")
	ctx = services.WithWorker(ctx, "worker-1")
	ctx = services.WithRequestID(ctx, "req-123")

	lookups := map[string]func(context.Context) (string, bool){
		"job-42":     services.JobIDFromContext,
		"separation": services.StageFromContext,
		"worker-1":   services.WorkerFromContext,
		"req-123":    services.RequestIDFromContext,
	}
	for want, lookup := range lookups {
		got, ok := lookup(ctx)
		assert.True(t, ok, want)
		assert.Equal(t, want, got)
	}
}

func TestBlankValuesAreIgnored(t *testing.T) {
	ctx := services.WithStage(services.WithJobID(context.Background(), "job-1"), "")
	ctx = services.WithJobID(ctx, "")

	id, ok := services.JobIDFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "job-1", id, "blank job ID must not overwrite the outer one")
	_, ok = services.StageFromContext(ctx)
	assert.False(t, ok)
	_, ok = services.WorkerFromContext(context.Background())
	assert.False(t, ok)
}
