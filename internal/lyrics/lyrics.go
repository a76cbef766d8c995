package lyrics

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// defaultWordSeconds is assumed for a word whose end time was not aligned.
const defaultWordSeconds = 0.5

// Word is one aligned word inside a segment.
type Word struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Score float64 `json:"score,omitempty"`
}

// Segment is one time-bounded unit of transcript text.
type Segment struct {
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Text       string  `json:"text"`
	Words      []Word  `json:"words,omitempty"`
	Translated string  `json:"translated,omitempty"`
	Romanized  string  `json:"romanized,omitempty"`
}

// Transcript is the output of the transcription stage.
type Transcript struct {
	Segments []Segment `json:"segments"`
	Language string    `json:"language,omitempty"`
}

// ErrEmptyInput is returned when Decode receives no JSON value.
var ErrEmptyInput = errors.New("lyrics: empty input")

type rawWord struct {
	Word  string   `json:"word"`
	Start *float64 `json:"start"`
	End   *float64 `json:"end"`
	Score float64  `json:"score"`
}

type rawSegment struct {
	Start      float64   `json:"start"`
	End        float64   `json:"end"`
	Text       string    `json:"text"`
	Words      []rawWord `json:"words"`
	Translated string    `json:"translated"`
	Romanized  string    `json:"romanized"`
}

type rawTranscript struct {
	Segments []rawSegment `json:"segments"`
	Language string       `json:"language"`
}

// Decode parses a transcript in either the wrapped or the bare-array form.
// Words missing alignment borrow the previous word's end as their start and
// last defaultWordSeconds.
func Decode(data []byte) (Transcript, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Transcript{}, ErrEmptyInput
	}

	var raw rawTranscript
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &raw.Segments); err != nil {
			return Transcript{}, fmt.Errorf("decode segment list: %w", err)
		}
	case '{':
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return Transcript{}, fmt.Errorf("decode transcript: %w", err)
		}
	default:
		return Transcript{}, fmt.Errorf("decode transcript: expected object or array, got %q", trimmed[0])
	}

	out := Transcript{
		Language: strings.TrimSpace(raw.Language),
		Segments: make([]Segment, 0, len(raw.Segments)),
	}
	for _, seg := range raw.Segments {
		out.Segments = append(out.Segments, seg.resolve())
	}
	return out, nil
}

func (r rawSegment) resolve() Segment {
	seg := Segment{
		Start:      r.Start,
		End:        r.End,
		Text:       strings.TrimSpace(r.Text),
		Translated: r.Translated,
		Romanized:  r.Romanized,
	}
	if len(r.Words) == 0 {
		return seg
	}
	cursor := r.Start
	seg.Words = make([]Word, 0, len(r.Words))
	for _, w := range r.Words {
		start := cursor
		if w.Start != nil {
			start = *w.Start
		}
		end := start + defaultWordSeconds
		if w.End != nil {
			end = *w.End
		}
		seg.Words = append(seg.Words, Word{
			Word:  strings.TrimSpace(w.Word),
			Start: start,
			End:   end,
			Score: w.Score,
		})
		cursor = end
	}
	return seg
}

// Load reads and decodes a transcript file.
func Load(path string) (Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Transcript{}, fmt.Errorf("read transcript: %w", err)
	}
	return Decode(data)
}

// Save writes the transcript in wrapped form.
func (t Transcript) Save(path string) error {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("encode transcript: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}
	return nil
}

// Clone returns a deep copy so annotators can work without aliasing the caller's segments.
func (t Transcript) Clone() Transcript {
	out := Transcript{Language: t.Language}
	if t.Segments == nil {
		return out
	}
	out.Segments = make([]Segment, len(t.Segments))
	for i, seg := range t.Segments {
		out.Segments[i] = seg
		if seg.Words != nil {
			out.Segments[i].Words = append([]Word(nil), seg.Words...)
		}
	}
	return out
}

// Texts returns the segment texts in order.
func (t Transcript) Texts() []string {
	texts := make([]string, len(t.Segments))
	for i, seg := range t.Segments {
		texts[i] = seg.Text
	}
	return texts
}

// StripAnnotations clears translated and romanized text from every segment.
func (t *Transcript) StripAnnotations() {
	for i := range t.Segments {
		t.Segments[i].Translated = ""
		t.Segments[i].Romanized = ""
	}
}

// Annotated reports whether any segment carries a translation or romanization.
func (t Transcript) Annotated() bool {
	for _, seg := range t.Segments {
		if seg.Translated != "" || seg.Romanized != "" {
			return true
		}
	}
	return false
}
