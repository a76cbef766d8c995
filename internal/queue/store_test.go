package queue_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"karaoke/internal/queue"
	"karaoke/internal/testsupport"
)

func openQueue(t *testing.T) *queue.Store {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	_, store := testsupport.MustOpenStores(t, cfg)
	return store
}

func TestEnqueueClaimFinish(t *testing.T) {
	store := openQueue(t)
	ctx := context.Background()

	payload := queue.Payload{Title: "Song", Artist: "Singer", Platform: "YOUTUBE", Mode: "mock"}
	ticket, err := store.Enqueue(ctx, "job-1", payload)
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if ticket.ID == 0 || ticket.State != queue.StateQueued {
		t.Fatalf("unexpected ticket: %+v", ticket)
	}

	claimed, err := store.Claim(ctx, "worker-1")
	if err != nil {
		t.Fatalf("Claim failed: %v", err)
	}
	if claimed == nil || claimed.JobID != "job-1" || claimed.Worker != "worker-1" {
		t.Fatalf("unexpected claim: %+v", claimed)
	}
	if claimed.Payload != payload {
		t.Fatalf("payload round trip mismatch: %+v", claimed.Payload)
	}

	again, err := store.Claim(ctx, "worker-2")
	if err != nil {
		t.Fatalf("second Claim failed: %v", err)
	}
	if again != nil {
		t.Fatalf("expected empty queue, got %+v", again)
	}

	if err := store.Heartbeat(ctx, claimed.ID, "worker-1"); err != nil {
		t.Fatalf("Heartbeat failed: %v", err)
	}
	if err := store.Finish(ctx, claimed.ID, "worker-2"); !errors.Is(err, queue.ErrNotClaimed) {
		t.Fatalf("expected ErrNotClaimed for foreign worker, got %v", err)
	}
	if err := store.Finish(ctx, claimed.ID, "worker-1"); err != nil {
		t.Fatalf("Finish failed: %v", err)
	}

	stored, err := store.Get(ctx, "job-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if stored.State != queue.StateDone || stored.FinishedAt == nil {
		t.Fatalf("expected done ticket, got %+v", stored)
	}
}

func TestClaimIsFIFO(t *testing.T) {
	store := openQueue(t)
	ctx := context.Background()
	for _, id := range []string{"first", "second", "third"} {
		if _, err := store.Enqueue(ctx, id, queue.Payload{Title: id}); err != nil {
			t.Fatalf("Enqueue %s failed: %v", id, err)
		}
	}
	for _, want := range []string{"first", "second", "third"} {
		ticket, err := store.Claim(ctx, "w")
		if err != nil {
			t.Fatalf("Claim failed: %v", err)
		}
		if ticket == nil || ticket.JobID != want {
			t.Fatalf("expected %s, got %+v", want, ticket)
		}
	}
}

func TestEnqueueRejectsDuplicate(t *testing.T) {
	store := openQueue(t)
	ctx := context.Background()
	if _, err := store.Enqueue(ctx, "dup", queue.Payload{}); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if _, err := store.Enqueue(ctx, "dup", queue.Payload{}); !errors.Is(err, queue.ErrDuplicateJob) {
		t.Fatalf("expected ErrDuplicateJob, got %v", err)
	}
}

func TestReclaimStale(t *testing.T) {
	store := openQueue(t)
	ctx := context.Background()
	for _, id := range []string{"stale", "fresh"} {
		if _, err := store.Enqueue(ctx, id, queue.Payload{Title: id}); err != nil {
			t.Fatalf("Enqueue failed: %v", err)
		}
	}
	stale, err := store.Claim(ctx, "w1")
	if err != nil || stale == nil {
		t.Fatalf("Claim failed: %v", err)
	}

	ids, err := store.ReclaimStale(ctx, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("ReclaimStale failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != "stale" {
		t.Fatalf("unexpected reclaimed ids: %v", ids)
	}

	ids, err = store.ReclaimStale(ctx, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("second ReclaimStale failed: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected nothing left to reclaim, got %v", ids)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Queued != 1 || stats.Claimed != 0 || stats.Done != 1 || stats.Pending() != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestReclaimStaleKeepsLiveTickets(t *testing.T) {
	store := openQueue(t)
	ctx := context.Background()
	if _, err := store.Enqueue(ctx, "live", queue.Payload{}); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if _, err := store.Claim(ctx, "w1"); err != nil {
		t.Fatalf("Claim failed: %v", err)
	}
	ids, err := store.ReclaimStale(ctx, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("ReclaimStale failed: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected live ticket to survive, got %v", ids)
	}
}

func TestPayloadQuery(t *testing.T) {
	p := queue.Payload{Title: " Song ", Artist: "Singer"}
	if got := p.Query(); got != "Singer - Song" {
		t.Fatalf("unexpected query %q", got)
	}
	if got := (queue.Payload{Title: "Solo"}).Query(); got != "Solo" {
		t.Fatalf("unexpected query %q", got)
	}
}
