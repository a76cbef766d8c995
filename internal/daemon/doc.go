// Package daemon hosts the long-running karaoke service: it holds the
// single-instance lock, starts the worker pool and serves the HTTP API.
//
// The router exposes job submission and status under /api/v1, a root welcome
// message, and prometheus metrics at /metrics. CORS allows every origin. When
// an API token is configured, /api routes require "Authorization: Bearer".
package daemon
