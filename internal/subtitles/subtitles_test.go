package subtitles_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"karaoke/internal/lyrics"
	"karaoke/internal/subtitles"
)

func helloWorld() lyrics.Segment {
	return lyrics.Segment{
		Start: 0.0,
		End:   2.5,
		Text:  "Hello world",
		Words: []lyrics.Word{
			{Word: "Hello", Start: 0.0, End: 1.2},
			{Word: "world", Start: 1.2, End: 2.5},
		},
	}
}

func TestFormatTime(t *testing.T) {
	cases := []struct {
		seconds float64
		want    string
	}{
		{0.0, "0:00:00.00"},
		{3725.55, "1:02:05.55"},
		{2.5, "0:00:02.50"},
		{59.999, "0:00:59.99"},
		{36000, "10:00:00.00"},
		{-3, "0:00:00.00"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, subtitles.FormatTime(tc.seconds), "seconds=%v", tc.seconds)
	}
}

func TestKaraokeLineWithWords(t *testing.T) {
	assert.Equal(t, `{\k120}Hello {\k130}world `, subtitles.KaraokeLine(helloWorld()))
}

func TestKaraokeLineWithoutWordsCoversSegment(t *testing.T) {
	seg := lyrics.Segment{Start: 1.0, End: 3.25, Text: "la la la"}
	assert.Equal(t, `{\k225}la la la`, subtitles.KaraokeLine(seg))
}

func TestKaraokeLineClampsNegativeDurations(t *testing.T) {
	seg := lyrics.Segment{
		Start: 5, End: 4, Text: "bad",
		Words: []lyrics.Word{{Word: "bad", Start: 3, End: 2}},
	}
	assert.Equal(t, `{\k0}bad `, subtitles.KaraokeLine(seg))

	seg.Words = nil
	assert.Equal(t, `{\k0}bad`, subtitles.KaraokeLine(seg))
}

func TestKaraokeLineDoesNotNormalizeGaps(t *testing.T) {
	seg := lyrics.Segment{
		Start: 0, End: 10, Text: "gap here",
		Words: []lyrics.Word{{Word: "gap", Start: 1, End: 2}, {Word: "here", Start: 6, End: 7}},
	}
	assert.Equal(t, `{\k100}gap {\k100}here `, subtitles.KaraokeLine(seg))
}

func TestBuildOrdersTracksPerSegment(t *testing.T) {
	first := helloWorld()
	first.Translated = "안녕 세상"
	first.Romanized = "annyeong sesang"
	second := lyrics.Segment{Start: 3, End: 4, Text: "bye", Translated: "잘가"}

	doc := subtitles.Build([]lyrics.Segment{first, second})
	require.Len(t, doc.Events, 5)

	styles := make([]string, 0, len(doc.Events))
	for _, ev := range doc.Events {
		styles = append(styles, ev.Style)
	}
	assert.Equal(t, []string{"Original", "Romanized", "Translated", "Original", "Translated"}, styles)
	assert.Equal(t, `Dialogue: 0,0:00:00.00,0:00:02.50,Original,,0,0,0,,{\k120}Hello {\k130}world `, doc.Events[0].Line())
	assert.Equal(t, "Dialogue: 0,0:00:00.00,0:00:02.50,Romanized,,0,0,0,,annyeong sesang", doc.Events[1].Line())
	assert.Equal(t, "Dialogue: 0,0:00:03.00,0:00:04.00,Translated,,0,0,0,,잘가", doc.Events[4].Line())
}

func TestDocumentSerialization(t *testing.T) {
	doc := subtitles.Build([]lyrics.Segment{helloWorld()})
	out := doc.String()

	require.True(t, strings.HasPrefix(out, subtitles.Header))
	assert.Equal(t, subtitles.Header+`Dialogue: 0,0:00:00.00,0:00:02.50,Original,,0,0,0,,{\k120}Hello {\k130}world `, out)
	assert.False(t, strings.HasSuffix(out, "\n"))
}

func TestBuildIsIdempotent(t *testing.T) {
	seg := helloWorld()
	seg.Translated = "t"
	seg.Romanized = "r"
	segments := []lyrics.Segment{seg, {Start: 2.5, End: 5.01, Text: "again"}}

	first := subtitles.Build(segments).Bytes()
	second := subtitles.Build(segments).Bytes()
	assert.Equal(t, first, second)
}

func TestBuildOmitsEmptyAnnotations(t *testing.T) {
	doc := subtitles.Build([]lyrics.Segment{helloWorld(), {Start: 3, End: 4, Text: "x"}})
	assert.Equal(t, 2, doc.CountStyle(subtitles.StyleOriginal))
	assert.Zero(t, doc.CountStyle(subtitles.StyleRomanized))
	assert.Zero(t, doc.CountStyle(subtitles.StyleTranslated))
}

func TestBuildEscapesNewlines(t *testing.T) {
	doc := subtitles.Build([]lyrics.Segment{{Start: 0, End: 1, Text: "a", Translated: "line one\nline two"}})
	require.Len(t, doc.Events, 2)
	assert.Equal(t, `line one\Nline two`, doc.Events[1].Text)
}

func TestGenerateAcceptsBothShapes(t *testing.T) {
	wrapped := []byte(`{"segments":[{"start":0,"end":2.5,"text":"Hello world","words":[{"word":"Hello","start":0,"end":1.2},{"word":"world","start":1.2,"end":2.5}]}]}`)
	bare := []byte(`[{"start":0,"end":2.5,"text":"Hello world","words":[{"word":"Hello","start":0,"end":1.2},{"word":"world","start":1.2,"end":2.5}]}]`)

	fromWrapped, err := subtitles.Generate(wrapped)
	require.NoError(t, err)
	fromBare, err := subtitles.Generate(bare)
	require.NoError(t, err)
	assert.Equal(t, fromWrapped.Bytes(), fromBare.Bytes())

	_, err = subtitles.Generate([]byte("nope"))
	assert.Error(t, err)
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "job.ass")
	require.NoError(t, subtitles.WriteFile(path, []lyrics.Segment{helloWorld()}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, subtitles.Build([]lyrics.Segment{helloWorld()}).Bytes(), data)
}

func TestTemplates(t *testing.T) {
	seg := helloWorld()
	seg.Translated = "t"
	seg.Romanized = "r"
	segments := []lyrics.Segment{seg}

	tpl, err := subtitles.ParseTemplate("")
	require.NoError(t, err)
	assert.Equal(t, subtitles.TemplateTriple, tpl)

	_, err = subtitles.ParseTemplate("quad")
	assert.Error(t, err)

	standard := subtitles.TemplateStandard.Apply(segments)
	assert.Empty(t, standard[0].Translated)
	assert.Empty(t, standard[0].Romanized)

	bilingual, err := subtitles.ParseTemplate("Bilingual")
	require.NoError(t, err)
	filtered := bilingual.Apply(segments)
	assert.Equal(t, "t", filtered[0].Translated)
	assert.Empty(t, filtered[0].Romanized)

	triple := subtitles.TemplateTriple.Apply(segments)
	assert.Equal(t, "r", triple[0].Romanized)
	assert.Equal(t, "r", segments[0].Romanized, "Apply must not mutate its input")
}
