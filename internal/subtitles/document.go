package subtitles

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"karaoke/internal/lyrics"
)

// Style names declared in Header.
const (
	StyleOriginal   = "Original"
	StyleRomanized  = "Romanized"
	StyleTranslated = "Translated"
)

// Header is the fixed script info and style block for a 1080x1920 portrait canvas.
const Header = `[Script Info]
ScriptType: v4.00+
PlayResX: 1080
PlayResY: 1920
WrapStyle: 0
ScaledBorderAndShadow: yes

[V4+ Styles]
Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding
Style: Original,Arial,80,&H00FFFFFF,&H000000FF,&H00000000,&H80000000,-1,0,0,0,100,100,0,0,1,3,0,2,10,10,900,1
Style: Romanized,Arial,50,&H00FFFF00,&H000000FF,&H00000000,&H80000000,0,0,0,0,100,100,0,0,1,2,0,2,10,10,1050,1
Style: Translated,Arial,60,&H00AAAAAA,&H000000FF,&H00000000,&H80000000,0,0,0,0,100,100,0,0,1,2,0,2,10,10,800,1

[Events]
Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text
`

// Event is one dialogue line.
type Event struct {
	Start float64
	End   float64
	Style string
	Text  string
}

// Line formats the event as an ASS Dialogue entry.
func (e Event) Line() string {
	return fmt.Sprintf("Dialogue: 0,%s,%s,%s,,0,0,0,,%s", FormatTime(e.Start), FormatTime(e.End), e.Style, e.Text)
}

// Document is an ordered list of dialogue events under Header.
type Document struct {
	Events []Event
}

// Build converts segments to a document. Per segment the Original line is
// always emitted; Romanized and Translated follow only when non-empty. Every
// line uses the segment's own start and end.
func Build(segments []lyrics.Segment) Document {
	doc := Document{Events: make([]Event, 0, len(segments)*3)}
	for _, seg := range segments {
		doc.Events = append(doc.Events, Event{Start: seg.Start, End: seg.End, Style: StyleOriginal, Text: KaraokeLine(seg)})
		if seg.Romanized != "" {
			doc.Events = append(doc.Events, Event{Start: seg.Start, End: seg.End, Style: StyleRomanized, Text: escapeText(seg.Romanized)})
		}
		if seg.Translated != "" {
			doc.Events = append(doc.Events, Event{Start: seg.Start, End: seg.End, Style: StyleTranslated, Text: escapeText(seg.Translated)})
		}
	}
	return doc
}

// Generate decodes a wrapped or bare transcript and builds its document.
func Generate(data []byte) (Document, error) {
	transcript, err := lyrics.Decode(data)
	if err != nil {
		return Document{}, err
	}
	return Build(transcript.Segments), nil
}

// CountStyle returns how many events use style.
func (d Document) CountStyle(style string) int {
	count := 0
	for _, ev := range d.Events {
		if ev.Style == style {
			count++
		}
	}
	return count
}

// WriteTo writes the header followed by newline-separated dialogue lines.
func (d Document) WriteTo(w io.Writer) (int64, error) {
	lines := make([]string, len(d.Events))
	for i, ev := range d.Events {
		lines[i] = ev.Line()
	}
	n, err := io.WriteString(w, Header+strings.Join(lines, "\n"))
	return int64(n), err
}

// Bytes returns the serialized document.
func (d Document) Bytes() []byte {
	var buf bytes.Buffer
	_, _ = d.WriteTo(&buf)
	return buf.Bytes()
}

func (d Document) String() string {
	return string(d.Bytes())
}

// WriteFile builds the document for segments and writes it to path.
func WriteFile(path string, segments []lyrics.Segment) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create subtitle directory: %w", err)
		}
	}
	if err := os.WriteFile(path, Build(segments).Bytes(), 0o644); err != nil {
		return fmt.Errorf("write subtitles: %w", err)
	}
	return nil
}
