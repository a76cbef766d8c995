package api_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"karaoke/internal/api"
	"karaoke/internal/ledger"
	"karaoke/internal/queue"
	"karaoke/internal/services"
	"karaoke/internal/testsupport"
)

func newService(t *testing.T) (*api.JobService, *ledger.Store, *queue.Store) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	jobs, tickets := testsupport.MustOpenStores(t, cfg)
	ids := []string{"job-1", "job-2", "job-3"}
	next := 0
	svc := api.NewJobService(jobs, tickets, nil, api.WithIDGenerator(func() string {
		id := ids[next]
		next++
		return id
	}))
	return svc, jobs, tickets
}

func TestSubmitCreatesPendingJobAndTicket(t *testing.T) {
	svc, jobs, tickets := newService(t)
	ctx := context.Background()

	rec, err := svc.Submit(ctx, api.CreateJobRequest{
		Title:           " Song ",
		Artist:          "Singer",
		Platform:        "youtube",
		TargetLanguages: []string{"EN"},
		Template:        "Bilingual",
		MediaURL:        "https://www.youtube.com/watch?v=abc",
	})
	require.NoError(t, err)
	assert.Equal(t, "job-1", rec.ID)
	assert.Equal(t, ledger.StatusPending, rec.Status)
	assert.Equal(t, 0, rec.Progress)
	assert.Equal(t, "Song", rec.Title)
	assert.Equal(t, "YOUTUBE", rec.Platform)
	assert.Equal(t, "normal", rec.Mode)
	assert.Equal(t, []string{"en"}, rec.TargetLanguages)

	stored, err := jobs.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, "bilingual", stored.Template)

	ticket, err := tickets.Get(ctx, "job-1")
	require.NoError(t, err)
	require.NotNil(t, ticket)
	assert.Equal(t, queue.StateQueued, ticket.State)
	assert.Equal(t, "en", ticket.Payload.TargetLanguage)
	assert.Equal(t, "https://www.youtube.com/watch?v=abc", ticket.Payload.MediaURL)
}

func TestSubmitWithoutMediaUsesMockModeAndDefaultTarget(t *testing.T) {
	svc, _, tickets := newService(t)
	rec, err := svc.Submit(context.Background(), api.CreateJobRequest{Title: "Song", Artist: "Singer"})
	require.NoError(t, err)
	assert.Equal(t, "mock", rec.Mode)

	ticket, err := tickets.Get(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "ko", ticket.Payload.TargetLanguage)
	assert.Equal(t, "mock", ticket.Payload.Mode)
}

func TestSubmitUseMockDataDropsMedia(t *testing.T) {
	svc, _, tickets := newService(t)
	rec, err := svc.Submit(context.Background(), api.CreateJobRequest{
		Title:       "Song",
		Artist:      "Singer",
		MediaURL:    "https://example.com/a.mp3",
		UseMockData: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "mock", rec.Mode)

	ticket, err := tickets.Get(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Empty(t, ticket.Payload.MediaURL)
}

func TestSubmitRejectsInvalidRequests(t *testing.T) {
	cases := map[string]api.CreateJobRequest{
		"missing title":    {Artist: "Singer"},
		"missing artist":   {Title: "Song"},
		"unknown platform": {Title: "Song", Artist: "Singer", Platform: "vimeo"},
		"unknown template": {Title: "Song", Artist: "Singer", Template: "quad"},
		"bad scheme":       {Title: "Song", Artist: "Singer", MediaURL: "ftp://host/file.mp3"},
		"bad language":     {Title: "Song", Artist: "Singer", TargetLanguages: []string{"not a tag!"}},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			svc, jobs, _ := newService(t)
			_, err := svc.Submit(context.Background(), req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, services.ErrValidation), "expected validation error, got %v", err)

			records, err := jobs.List(context.Background())
			require.NoError(t, err)
			assert.Empty(t, records)
		})
	}
}

func TestSubmitAcceptsLocalPaths(t *testing.T) {
	svc, _, _ := newService(t)
	rec, err := svc.Submit(context.Background(), api.CreateJobRequest{Title: "Song", Artist: "Singer", MediaURL: "/srv/media/song.mp3"})
	require.NoError(t, err)
	assert.Equal(t, "normal", rec.Mode)
}

func TestGetAndList(t *testing.T) {
	svc, jobs, _ := newService(t)
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err := svc.Submit(ctx, api.CreateJobRequest{Title: "Song", Artist: "Singer"})
		require.NoError(t, err)
	}
	_, err := jobs.MergeUpdate(ctx, "job-2", ledger.Processing(10, "Separating"))
	require.NoError(t, err)

	rec, err := svc.Get(ctx, "job-2")
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusProcessing, rec.Status)

	_, err = svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, ledger.ErrNotFound)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	processing, err := svc.List(ctx, "processing")
	require.NoError(t, err)
	require.Len(t, processing, 1)
	assert.Equal(t, "job-2", processing[0].ID)

	none, err := svc.List(ctx, "COMPLETED")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	_, err = svc.List(ctx, "archived")
	assert.ErrorIs(t, err, services.ErrValidation)
}

func TestParseStatusesDeduplicates(t *testing.T) {
	got, err := api.ParseStatuses([]string{"pending,FAILED", " pending ", ""})
	require.NoError(t, err)
	assert.Equal(t, []ledger.Status{ledger.StatusPending, ledger.StatusFailed}, got)
}
