package subtitles

import (
	"strconv"
	"strings"

	"karaoke/internal/lyrics"
)

// KaraokeLine encodes a segment as progressive-highlight text for the Original
// track. With word timings each word gets its own {\kN} tag followed by the
// word and a space; without them a single tag spans the whole segment. Word
// durations are emitted as-is and are not normalized to the segment bounds.
func KaraokeLine(seg lyrics.Segment) string {
	var b strings.Builder
	if len(seg.Words) == 0 {
		writeTag(&b, centiseconds(seg.End-seg.Start))
		b.WriteString(escapeText(seg.Text))
		return b.String()
	}
	for _, word := range seg.Words {
		writeTag(&b, centiseconds(word.End-word.Start))
		b.WriteString(escapeText(word.Word))
		b.WriteByte(' ')
	}
	return b.String()
}

func writeTag(b *strings.Builder, cs int64) {
	b.WriteString(`{\k`)
	b.WriteString(strconv.FormatInt(cs, 10))
	b.WriteByte('}')
}

// escapeText keeps each dialogue on a single physical line.
func escapeText(text string) string {
	if !strings.ContainsAny(text, "\r\n") {
		return text
	}
	text = strings.ReplaceAll(text, "\r\n", `\N`)
	return strings.ReplaceAll(text, "\n", `\N`)
}
