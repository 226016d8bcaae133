// Package naming converts column identifiers to their canonical snake_case form.
package naming

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ToSnake converts a column name to lowercase snake_case.
//
// Two boundary passes run before lowercasing:
//   - an underscore goes before a capital that starts a lowercase word
//     ("ObjectName" -> "Object_Name"), so runs of capitals are never split here
//   - an underscore goes between a lowercase letter or digit and a following
//     capital ("col2X" -> "col2_X")
//
// A name made only of capitals collapses to one lowercase word, and a name that
// is already snake_case comes back unchanged. Only ASCII letters count as
// upper or lower case for the boundary rules.
//
// Lowercasing uses full Unicode case mapping, so "İ" becomes "i̇" and a
// word-final "Σ" becomes "ς". Bytes that are not valid UTF-8 are kept as is.
func ToSnake(name string) string {
	return cases.Lower(language.Und).String(splitLowerToUpper(splitWords(name)))
}

// IsCanonical reports whether name is already in canonical form.
func IsCanonical(name string) bool {
	return ToSnake(name) == name
}

// splitWords inserts an underscore between any character (newline excluded)
// and a following capital letter that is itself followed by one or more
// lowercase letters. Matches do not overlap: a lowercase run consumed by one
// word cannot be the leading character of the next boundary.
//
// Both passes scan bytes. Every class they test is ASCII, and an underscore
// after the last byte of a multi-byte character lands after the whole character.
func splitWords(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)

	pos := 0
	for i := 0; i+2 < len(s); {
		if s[i] == '\n' || !isUpper(s[i+1]) || !isLower(s[i+2]) {
			i++
			continue
		}
		end := i + 3
		for end < len(s) && isLower(s[end]) {
			end++
		}
		b.WriteString(s[pos : i+1])
		b.WriteByte('_')
		b.WriteString(s[i+1 : end])
		pos = end
		i = end
	}
	b.WriteString(s[pos:])
	return b.String()
}

// splitLowerToUpper inserts an underscore between a lowercase letter or digit
// and an immediately following capital letter.
func splitLowerToUpper(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)

	for i := 0; i < len(s); i++ {
		c := s[i]
		b.WriteByte(c)
		if i+1 < len(s) && (isLower(c) || isDigit(c)) && isUpper(s[i+1]) {
			b.WriteByte('_')
		}
	}
	return b.String()
}

func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }
func isLower(c byte) bool { return c >= 'a' && c <= 'z' }
func isDigit(c byte) bool { return c >= '0' && c <= '9' }
