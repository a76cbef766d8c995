// Package workflow runs karaoke jobs off the shared queue.
//
// The Manager starts a fixed pool of workers. Each worker claims the oldest
// queued ticket, keeps its heartbeat fresh while the pipeline chain runs, and
// closes the ticket when the chain returns. Claimed tickets whose heartbeat
// expires belong to a worker that died; the Manager closes them and marks the
// job FAILED in the ledger, since a chain is never resumed mid-way.
//
// Shutdown stops claiming immediately but lets an in-flight chain finish its
// job, so Stop can block for as long as the slowest running stage.
package workflow
