// Package sanitize cleans free text supplied by clients before it is
// stored, such as snapshot labels.
package sanitize

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxLabelLength is the maximum length of a label, in runes.
const MaxLabelLength = 80

var (
	// reXMLTag matches XML/HTML tags, with attributes or self-closing, and
	// processing instructions like <?xml ...?>.
	reXMLTag = regexp.MustCompile(`<[/?!]?[a-zA-Z][a-zA-Z0-9]*(?:\s+[^>]*)?/?>|<\?[^?]*\?>`)

	reSpaces = regexp.MustCompile(`\s+`)
)

// Label returns input as a single-line label: control characters and tags
// are removed, whitespace runs collapse to one space, and the result is
// trimmed and cut to MaxLabelLength runes.
func Label(input string) string {
	if input == "" {
		return ""
	}
	if !utf8.ValidString(input) {
		input = strings.ToValidUTF8(input, "")
	}

	s := reXMLTag.ReplaceAllString(input, "")
	s = strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\t' || r == '\r':
			return ' '
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, s)
	s = strings.TrimSpace(reSpaces.ReplaceAllString(s, " "))

	if utf8.RuneCountInString(s) > MaxLabelLength {
		s = strings.TrimSpace(string([]rune(s)[:MaxLabelLength]))
	}
	return s
}
