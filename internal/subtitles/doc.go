// Package subtitles renders karaoke transcripts as Advanced SubStation Alpha
// (ASS) documents.
//
// Each transcript segment becomes an Original dialogue line carrying \k
// highlight tags built from its word timings, followed by optional Romanized
// and Translated lines sharing the segment's start and end. Output is fully
// deterministic: identical segments always serialize to identical bytes.
package subtitles
