package testsupport

import (
	"context"
	"testing"

	"karaoke/internal/config"
	"karaoke/internal/database"
	"karaoke/internal/ledger"
	"karaoke/internal/queue"
)

// MustOpenDB opens the database for tests and registers cleanup.
func MustOpenDB(t testing.TB, cfg *config.Config) *database.DB {
	t.Helper()

	db, err := database.Open(cfg)
	if err != nil {
		t.Fatalf("database.Open: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})
	return db
}

// MustOpenStores opens the database and returns the ledger and queue stores over it.
func MustOpenStores(t testing.TB, cfg *config.Config) (*ledger.Store, *queue.Store) {
	t.Helper()

	db := MustOpenDB(t, cfg)
	return ledger.NewStore(db), queue.NewStore(db)
}

// NewJob creates a ledger record for tests.
func NewJob(t testing.TB, store *ledger.Store, id, title string) ledger.Record {
	t.Helper()

	rec, err := store.Create(context.Background(), ledger.Record{ID: id, Title: title, Artist: "Test Artist", Mode: "mock"})
	if err != nil {
		t.Fatalf("ledger.Create: %v", err)
	}
	return rec
}
