// Package demucs splits a song into vocal and instrumental stems with the
// Demucs CLI in two-stem mode.
package demucs
