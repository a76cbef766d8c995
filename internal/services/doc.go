// Package services defines shared utilities consumed by the pipeline stages
// and the external collaborator adapters beneath it.
//
// Key responsibilities:
//   - Context helpers that stamp job IDs, stage names, worker names and
//     correlation identifiers for logging and tracing.
//   - Structured error markers plus the Wrap and Details helpers that keep
//     failure messages uniform from adapter to ledger.
//   - The CommandRunner seam used by every subprocess-backed adapter so tests
//     can substitute canned tool output.
//
// Use these helpers when wiring new collaborators so operational behaviour
// (error handling, observability) stays uniform across the pipeline.
package services
