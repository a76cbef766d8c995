package subtitles

import (
	"fmt"
	"strings"

	"karaoke/internal/lyrics"
)

// Template selects which tracks appear in the rendered video.
type Template string

const (
	// TemplateStandard shows the Original track only.
	TemplateStandard Template = "standard"
	// TemplateBilingual shows Original and Translated.
	TemplateBilingual Template = "bilingual"
	// TemplateTriple shows every present track.
	TemplateTriple Template = "triple"
)

// DefaultTemplate is used when a job does not name one.
const DefaultTemplate = TemplateTriple

// ParseTemplate accepts a template name case-insensitively; empty means DefaultTemplate.
func ParseTemplate(name string) (Template, error) {
	switch Template(strings.ToLower(strings.TrimSpace(name))) {
	case "":
		return DefaultTemplate, nil
	case TemplateStandard:
		return TemplateStandard, nil
	case TemplateBilingual:
		return TemplateBilingual, nil
	case TemplateTriple:
		return TemplateTriple, nil
	default:
		return "", fmt.Errorf("unknown subtitle template %q", name)
	}
}

// Apply returns a copy of segments with the annotations the template hides removed.
func (t Template) Apply(segments []lyrics.Segment) []lyrics.Segment {
	out := make([]lyrics.Segment, len(segments))
	copy(out, segments)
	for i := range out {
		switch t {
		case TemplateStandard:
			out[i].Translated = ""
			out[i].Romanized = ""
		case TemplateBilingual:
			out[i].Romanized = ""
		}
	}
	return out
}
