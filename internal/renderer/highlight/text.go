package highlight

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// sanitize replaces ill-formed UTF-8 with U+FFFD so that every run's text
// is valid. Valid input is returned unchanged.
func sanitize(text string) string {
	if utf8.ValidString(text) {
		return text
	}
	out, _, err := transform.String(runes.ReplaceIllFormed(), text)
	if err != nil {
		return strings.ToValidUTF8(text, string(utf8.RuneError))
	}
	return out
}
