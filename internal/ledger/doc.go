// Package ledger persists the externally visible record of each karaoke job.
//
// A Record is created once in PENDING and afterwards changed only through
// MergeUpdate, which reads the stored record, overlays the non-nil fields of a
// Partial and writes the merged result back. Unspecified fields therefore
// survive every update. Merges on the same id are serialized in-process and
// run inside a single SQLite write transaction; the pipeline still assumes a
// single writer per job id, and terminal records reject further merges.
package ledger
