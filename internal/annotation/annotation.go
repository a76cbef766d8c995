package annotation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"karaoke/internal/language"
	"karaoke/internal/lyrics"
	"karaoke/internal/services"
	"karaoke/internal/services/llm"
	"karaoke/internal/stage"
)

const (
	stageName = "annotation"

	// MockTranslatedPrefix and MockRomanizedPrefix mark stub annotations.
	MockTranslatedPrefix = "[Trans] "
	MockRomanizedPrefix  = "[Rom] "
)

// SystemPrompt frames every translation request.
const SystemPrompt = "You are a professional lyricist translator. Respond with JSON only."

// Annotator adds translated and romanized text to segments.
type Annotator interface {
	Annotate(ctx context.Context, segments []lyrics.Segment, targetLanguage string) ([]lyrics.Segment, error)
}

// Completer issues a JSON-only completion.
type Completer interface {
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Line is one element of the translation response.
type Line struct {
	Original   string `json:"original"`
	Translated string `json:"translated"`
	Romanized  string `json:"romanized"`
}

// Translator annotates segments through a Completer.
type Translator struct {
	completer Completer
	provider  string
}

// NewTranslator wraps completer. A nil completer yields a translator that
// fails with a configuration error on every call.
func NewTranslator(provider string, completer Completer) *Translator {
	return &Translator{completer: completer, provider: strings.TrimSpace(provider)}
}

// Provider names the back end for logs and health output.
func (t *Translator) Provider() string {
	return t.provider
}

// HealthCheck defers to the completer when it reports readiness.
func (t *Translator) HealthCheck(ctx context.Context) stage.Health {
	if t == nil || t.completer == nil {
		return stage.Unhealthy(stageName, "translation provider not configured")
	}
	if checker, ok := t.completer.(stage.HealthChecker); ok {
		return checker.HealthCheck(ctx)
	}
	return stage.Healthy(stageName)
}

// Annotate returns a copy of segments with Translated and Romanized filled in.
func (t *Translator) Annotate(ctx context.Context, segments []lyrics.Segment, targetLanguage string) ([]lyrics.Segment, error) {
	if len(segments) == 0 {
		return segments, nil
	}
	if t == nil || t.completer == nil {
		return nil, services.Wrap(services.ErrConfiguration, stageName, "translate",
			"Translation provider not configured; set GEMINI_API_KEY or OPENROUTER_API_KEY", nil)
	}
	texts := make([]string, len(segments))
	for i, seg := range segments {
		texts[i] = strings.TrimSpace(seg.Text)
	}
	prompt, err := BuildPrompt(texts, targetLanguage)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, stageName, "build prompt", "Could not encode lyrics for translation", err)
	}
	content, err := t.completer.CompleteJSON(ctx, SystemPrompt, prompt)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, stageName, "translate", fmt.Sprintf("%s request failed", t.provider), err)
	}
	lines, err := Parse(content)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, stageName, "parse response", "Translation response was not a JSON array", err)
	}
	return Merge(segments, lines), nil
}

// BuildPrompt renders the user prompt for lines and the target language.
func BuildPrompt(lines []string, targetLanguage string) (string, error) {
	encoded, err := json.Marshal(lines)
	if err != nil {
		return "", err
	}
	target := language.DisplayName(targetLanguage)
	var b strings.Builder
	fmt.Fprintf(&b, "1. Translate the following lyrics lines into %s.\n", target)
	b.WriteString("2. Provide Romanization (pronunciation) for the original text.\n")
	b.WriteString("3. Maintain the poetic rhythm and syllable count as much as possible.\n\n")
	b.WriteString("Input Lyrics:\n")
	b.Write(encoded)
	b.WriteString("\n\nOutput must be a valid JSON array of objects with keys: \"original\", \"translated\", \"romanized\".\n")
	b.WriteString("Return exactly one object per input line, in the same order.")
	return b.String(), nil
}

// Parse decodes the completer output, tolerating code fences.
func Parse(content string) ([]Line, error) {
	var lines []Line
	if err := llm.DecodeJSON(content, &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

// Merge copies segments and applies lines by index. Segments without a
// matching line get empty annotations.
func Merge(segments []lyrics.Segment, lines []Line) []lyrics.Segment {
	out := make([]lyrics.Segment, len(segments))
	for i, seg := range segments {
		seg.Translated = ""
		seg.Romanized = ""
		if i < len(lines) {
			seg.Translated = strings.TrimSpace(lines[i].Translated)
			seg.Romanized = strings.TrimSpace(lines[i].Romanized)
		}
		out[i] = seg
	}
	return out
}

// Mock annotates with fixed prefixes.
type Mock struct{}

// Annotate implements Annotator.
func (Mock) Annotate(_ context.Context, segments []lyrics.Segment, _ string) ([]lyrics.Segment, error) {
	out := make([]lyrics.Segment, len(segments))
	for i, seg := range segments {
		seg.Translated = MockTranslatedPrefix + seg.Text
		seg.Romanized = MockRomanizedPrefix + seg.Text
		out[i] = seg
	}
	return out, nil
}
