package language

import (
	"fmt"
	"strings"

	xlanguage "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Word forms accepted in addition to BCP 47 tags.
var byWord = map[string]string{
	"english":    "en",
	"korean":     "ko",
	"japanese":   "ja",
	"chinese":    "zh",
	"spanish":    "es",
	"french":     "fr",
	"german":     "de",
	"italian":    "it",
	"portuguese": "pt",
	"russian":    "ru",
	"vietnamese": "vi",
	"thai":       "th",
	"indonesian": "id",
}

// Parse returns the canonical tag for a code or English language name.
func Parse(code string) (xlanguage.Tag, error) {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return xlanguage.Und, fmt.Errorf("empty language tag")
	}
	if mapped, ok := byWord[strings.ToLower(trimmed)]; ok {
		trimmed = mapped
	}
	tag, err := xlanguage.Parse(trimmed)
	if err != nil {
		return xlanguage.Und, fmt.Errorf("invalid language tag %q: %w", code, err)
	}
	return tag, nil
}

// Normalize canonicalizes a language code ("KO" -> "ko", "ja_jp" -> "ja-JP").
func Normalize(code string) (string, error) {
	tag, err := Parse(code)
	if err != nil {
		return "", err
	}
	return tag.String(), nil
}

// ToISO2 returns the base language as a two-letter code when one exists.
// Returns empty string for unrecognized input.
func ToISO2(code string) string {
	tag, err := Parse(code)
	if err != nil {
		return ""
	}
	base, confidence := tag.Base()
	if confidence == xlanguage.No {
		return ""
	}
	return base.String()
}

// ToISO3 returns the ISO 639-2 code for the base language, or "und".
func ToISO3(code string) string {
	tag, err := Parse(code)
	if err != nil {
		return "und"
	}
	base, confidence := tag.Base()
	if confidence == xlanguage.No {
		return "und"
	}
	return base.ISO3()
}

// DisplayName returns the English name of a language tag.
// Returns "Unknown" for empty input, or the uppercased code for unrecognized input.
func DisplayName(code string) string {
	if strings.TrimSpace(code) == "" {
		return "Unknown"
	}
	tag, err := Parse(code)
	if err != nil {
		return strings.ToUpper(strings.TrimSpace(code))
	}
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return strings.ToUpper(strings.TrimSpace(code))
}

// NormalizeList canonicalizes and deduplicates language codes, preserving order.
// The first invalid entry aborts with an error.
func NormalizeList(codes []string) ([]string, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	normalized := make([]string, 0, len(codes))
	seen := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		if strings.TrimSpace(code) == "" {
			continue
		}
		tag, err := Normalize(code)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		normalized = append(normalized, tag)
	}
	return normalized, nil
}
