// Package metrics exposes prometheus collectors for the karaoke daemon: stage
// and job timings from the pipeline, queue and ledger gauges, and per-route
// HTTP counters. Everything registers on a private registry served by
// Handler.
package metrics
