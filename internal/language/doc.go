// Package language normalizes BCP 47 language tags used across the pipeline.
//
// Target languages arrive from job requests and configuration in loose forms
// ("KO", "korean", "ja-JP"). They are canonicalized here once so that the
// transcription, annotation and prompt-building code all agree on the same tag
// and display name.
package language
