// Package annotation adds translated and romanized lines to transcript
// segments.
//
// The Translator builds one prompt for the whole song, asks a JSON-capable
// completer (Gemini or OpenRouter) for an array of
// {original, translated, romanized} objects, and merges the answer back by
// index. Segments beyond the returned array get empty annotations. Mock
// produces deterministic prefixed text without calling any service.
package annotation
