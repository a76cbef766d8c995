// Package logging builds the slog loggers shared by karaoked and the karaoke
// CLI.
//
// Two formats are supported: a single-line console format that prefixes the
// component name, and JSON with short keys for log shippers. WithContext tags
// a logger with the job, stage and worker carried by a context, and the
// WarnWithContext/ErrorWithContext helpers make every warning carry an
// event_type, an error_hint and (for warnings) an impact.
package logging
