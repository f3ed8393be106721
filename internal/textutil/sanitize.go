package textutil

import (
	"strings"
	"unicode"
)

// maxTitleRunes bounds the title component of generated base names.
const maxTitleRunes = 50

// fileNameReplacer replaces filesystem-unsafe characters with safe alternatives.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// SanitizeFileName replaces filesystem-unsafe characters in a filename.
// Slashes, backslashes, colons, and asterisks become dashes; other unsafe
// characters are removed. The result is trimmed of leading/trailing whitespace.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	return strings.TrimSpace(fileNameReplacer.Replace(name))
}

// SafeTitle reduces a media title to the base-name component used for output
// files. Characters other than letters, digits, underscores, spaces, and
// hyphens are dropped, the result is truncated to 50 runes, and runs of
// spaces or hyphens collapse into single underscores. Returns "video" when
// nothing survives.
func SafeTitle(title string) string {
	var kept []rune
	for _, r := range strings.TrimSpace(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			kept = append(kept, r)
		case r == '_' || r == ' ' || r == '-':
			kept = append(kept, r)
		}
	}
	if len(kept) > maxTitleRunes {
		kept = kept[:maxTitleRunes]
	}

	var b strings.Builder
	separator := false
	for _, r := range kept {
		if r == ' ' || r == '-' {
			separator = true
			continue
		}
		if separator && b.Len() > 0 {
			b.WriteByte('_')
		}
		separator = false
		b.WriteRune(r)
	}
	out := strings.Trim(b.String(), "_")
	if out == "" {
		return "video"
	}
	return out
}
