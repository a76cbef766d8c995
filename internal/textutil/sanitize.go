package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const maxFileNameRunes = 120

// SanitizeFileName makes a song title or artist safe as a file name on Linux,
// macOS and Windows. Input is NFC-normalized so decomposed kana and accents
// produce the same name as their composed forms. Path separators, colons and
// asterisks become "-", other reserved characters and control codes are
// dropped, and whitespace runs collapse to one space. Leading dots are removed
// so the result is never hidden.
func SanitizeFileName(name string) string {
	name = norm.NFC.String(name)
	var b strings.Builder
	b.Grow(len(name))
	space := false
	for _, r := range name {
		switch {
		case r == '/' || r == '\\' || r == ':' || r == '*':
			r = '-'
		case r == '?' || r == '"' || r == '<' || r == '>' || r == '|' || unicode.IsControl(r):
			continue
		case unicode.IsSpace(r):
			space = b.Len() > 0
			continue
		}
		if space {
			b.WriteByte(' ')
			space = false
		}
		b.WriteRune(r)
	}
	out := strings.TrimLeft(b.String(), ".")
	if runes := []rune(out); len(runes) > maxFileNameRunes {
		out = string(runes[:maxFileNameRunes])
	}
	return strings.TrimSpace(out)
}
