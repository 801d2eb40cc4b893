// Package notefile converts between notes and the files they are mirrored,
// imported and exported as.
package notefile

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// MaxStrictLength is the rune limit applied by SanitizeStrict.
const MaxStrictLength = 100

var pathUnsafe = strings.NewReplacer(
	"<", "_",
	">", "_",
	":", "_",
	`"`, "_",
	"/", "_",
	`\`, "_",
	"|", "_",
	"?", "_",
	"*", "_",
)

// Sanitize replaces characters that are invalid in file names on common
// filesystems with '_'. Length is not limited.
func Sanitize(raw string) string {
	return pathUnsafe.Replace(raw)
}

// strictPunct is the punctuation kept by SanitizeStrict.
const strictPunct = "-_.()[],!?、。，：；？！"

// SanitizeStrict reduces raw to letters, numbers, whitespace and a small
// punctuation set, suitable for names inside archives and download headers.
// Whitespace runs collapse to one space and the result is capped at
// MaxStrictLength runes. The result may be empty.
func SanitizeStrict(raw string) string {
	s := norm.NFC.String(raw)

	s = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsNumber(r), unicode.IsSpace(r):
			return r
		case strings.ContainsRune(strictPunct, r):
			return r
		default:
			return '_'
		}
	}, s)

	s = strings.Join(strings.Fields(s), " ")

	if runes := []rune(s); len(runes) > MaxStrictLength {
		// Truncation can expose a trailing space.
		s = strings.TrimSpace(string(runes[:MaxStrictLength]))
	}
	return s
}
