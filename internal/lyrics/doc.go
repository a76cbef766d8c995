// Package lyrics defines the time-aligned transcript exchanged between the
// transcription, annotation and subtitle stages.
//
// Transcripts are decoded from either a wrapped {"segments": [...]} object
// or a bare segment array; both shapes appear in WhisperX output and in
// hand-written fixtures.
package lyrics
