// Package gemini wraps the Google Gemini API as a JSON completer for lyric
// translation.
package gemini
