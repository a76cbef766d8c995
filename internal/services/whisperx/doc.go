// Package whisperx transcribes the vocal stem with WhisperX through uvx and
// returns word-aligned lyric segments.
//
// WhisperX writes a JSON file named after the input into the output
// directory; the service reads it back and decodes it with the lyrics
// package, so the detected language travels with the segments.
package whisperx
