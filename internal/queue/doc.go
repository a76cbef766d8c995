// Package queue persists pending pipeline work in SQLite so submitted jobs
// survive daemon restarts.
//
// A ticket moves queued -> claimed -> done. Workers claim the oldest queued
// ticket inside an immediate transaction, refresh a heartbeat while the
// pipeline runs, and finish the ticket once the ledger reaches a terminal
// status. Claimed tickets whose heartbeat expires are reclaimed so the
// workflow manager can fail the matching ledger record.
//
// The ledger package owns job status and progress; this package only tracks
// who is working on what.
package queue
