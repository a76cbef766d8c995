// Package database opens the SQLite file shared by the job ledger and the work
// queue.
//
// It owns connection setup (WAL journal, busy timeout, immediate write
// transactions), embedded migrations, and the busy-retry helpers both stores
// use for writes. Timestamps are stored as fixed-width UTC strings so that
// ORDER BY on them matches chronological order.
package database
