package lyrics_test

import (
	"math"
	"path/filepath"
	"testing"

	"karaoke/internal/lyrics"
)

func TestDecodeAcceptsWrappedAndBareForms(t *testing.T) {
	wrapped := []byte(`{"language":"en","segments":[{"start":0,"end":2.5,"text":" Hello world ","words":[{"word":"Hello","start":0,"end":1.2},{"word":"world","start":1.2,"end":2.5}]}]}`)
	bare := []byte(`[{"start":0,"end":2.5,"text":"Hello world","words":[{"word":"Hello","start":0,"end":1.2},{"word":"world","start":1.2,"end":2.5}]}]`)

	fromWrapped, err := lyrics.Decode(wrapped)
	if err != nil {
		t.Fatalf("Decode wrapped: %v", err)
	}
	fromBare, err := lyrics.Decode(bare)
	if err != nil {
		t.Fatalf("Decode bare: %v", err)
	}
	if fromWrapped.Language != "en" {
		t.Fatalf("expected language en, got %q", fromWrapped.Language)
	}
	if len(fromWrapped.Segments) != 1 || len(fromBare.Segments) != 1 {
		t.Fatalf("expected one segment each, got %d and %d", len(fromWrapped.Segments), len(fromBare.Segments))
	}
	if fromWrapped.Segments[0].Text != fromBare.Segments[0].Text {
		t.Fatalf("text mismatch: %q vs %q", fromWrapped.Segments[0].Text, fromBare.Segments[0].Text)
	}
	if len(fromBare.Segments[0].Words) != 2 || fromBare.Segments[0].Words[1].End != 2.5 {
		t.Fatalf("unexpected words: %+v", fromBare.Segments[0].Words)
	}
}

func TestDecodeFillsMissingWordTimes(t *testing.T) {
	data := []byte(`[{"start":1.0,"end":3.0,"text":"one 2 three","words":[{"word":"one","start":1.0,"end":1.4},{"word":"2"},{"word":"three","start":2.2,"end":3.0}]}]`)
	transcript, err := lyrics.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	words := transcript.Segments[0].Words
	if math.Abs(words[1].Start-1.4) > 1e-9 || math.Abs(words[1].End-1.9) > 1e-9 {
		t.Fatalf("expected missing word to span 1.4-1.9, got %.2f-%.2f", words[1].Start, words[1].End)
	}
}

func TestDecodeRejectsInvalidInput(t *testing.T) {
	cases := map[string][]byte{
		"empty":  []byte("   "),
		"scalar": []byte(`"hello"`),
		"broken": []byte(`{"segments":[`),
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := lyrics.Decode(data); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestSaveLoadAndClone(t *testing.T) {
	original := lyrics.Transcript{
		Language: "ja",
		Segments: []lyrics.Segment{{Start: 0, End: 1, Text: "a", Words: []lyrics.Word{{Word: "a", Start: 0, End: 1}}}},
	}
	path := filepath.Join(t.TempDir(), "lyrics.json")
	if err := original.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := lyrics.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Language != "ja" || len(loaded.Segments) != 1 {
		t.Fatalf("unexpected loaded transcript %+v", loaded)
	}

	clone := loaded.Clone()
	clone.Segments[0].Words[0].Word = "changed"
	clone.Segments[0].Translated = "x"
	if loaded.Segments[0].Words[0].Word != "a" || loaded.Segments[0].Translated != "" {
		t.Fatal("clone aliases the source transcript")
	}
	if !clone.Annotated() || loaded.Annotated() {
		t.Fatal("Annotated reported the wrong state")
	}
	clone.StripAnnotations()
	if clone.Annotated() {
		t.Fatal("StripAnnotations left annotations behind")
	}
}
