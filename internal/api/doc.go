// Package api is the core-facing job interface shared by the HTTP daemon and
// the CLI.
//
// JobService validates a CreateJobRequest, writes the PENDING ledger record
// and enqueues the work ticket. Reads go straight to the ledger. The package
// also carries the status DTOs the daemon renders for /api/v1/status.
package api
