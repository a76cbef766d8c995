package metrics_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"karaoke/internal/metrics"
	"karaoke/internal/queue"
	"karaoke/internal/testsupport"
)

func TestObserverRecordsStageAndJobMetrics(t *testing.T) {
	m := metrics.New()
	m.StageStarted("separation")
	m.StageFinished("separation", "success", 2*time.Second)
	m.JobFinished("COMPLETED", 10*time.Second)
	m.JobFinished("FAILED", time.Second)

	expected := `
# HELP karaoke_jobs_finished_total Number of jobs that reached a terminal status.
# TYPE karaoke_jobs_finished_total counter
karaoke_jobs_finished_total{status="COMPLETED"} 1
karaoke_jobs_finished_total{status="FAILED"} 1
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "karaoke_jobs_finished_total"))

	count, err := testutil.GatherAndCount(m.Registry(), "karaoke_stage_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMiddlewareLabelsByRoutePattern(t *testing.T) {
	m := metrics.New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/jobs/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"a", "b"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/jobs/"+id, nil))
	}

	expected := `
# HELP karaoke_http_requests_total Number of HTTP requests partitioned by status code, method and route.
# TYPE karaoke_http_requests_total counter
karaoke_http_requests_total{code="404",method="GET",path="/jobs/{id}"} 2
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "karaoke_http_requests_total"))
}

func TestStoreCollectorReadsQueueAndLedger(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	jobs, tickets := testsupport.MustOpenStores(t, cfg)
	testsupport.NewJob(t, jobs, "job-1", "Song")
	_, err := tickets.Enqueue(context.Background(), "job-1", queue.Payload{Title: "Song"})
	require.NoError(t, err)

	m := metrics.New()
	require.NoError(t, m.RegisterStores(tickets, jobs, nil))

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()
	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `karaoke_queue_tickets{state="queued"} 1`)
	assert.Contains(t, string(body), `karaoke_ledger_jobs{status="PENDING"} 1`)
	assert.Contains(t, string(body), `karaoke_ledger_jobs{status="COMPLETED"} 0`)
}
