// Package textnorm provides deterministic text cleanup for extracted document text.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// bulletMarkers are list markers stripped from the start of lines.
const bulletMarkers = "-*•◦‣▪●○"

// punctuationWhitelist is the set of punctuation kept by NormalizeAggressive.
const punctuationWhitelist = ".,;:!?'\"()-"

// Normalize cleans raw extracted text: composes accented forms (NFC), strips
// control and zero-width characters, removes leading list markers per line,
// collapses whitespace runs to single spaces, and trims. It is a pure function
// and idempotent: Normalize(Normalize(t)) == Normalize(t).
func Normalize(raw string) string {
	composed := norm.NFC.String(raw)
	var b strings.Builder
	b.Grow(len(composed))
	for _, line := range strings.Split(composed, "\n") {
		line = stripBullets(stripInvisible(line))
		if line == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(line)
	}
	return collapseWhitespace(b.String())
}

// NormalizeAggressive applies Normalize, then restricts the result to a
// printable-ASCII subset: letters, digits, spaces, and whitelisted punctuation
// survive; any other run of characters collapses to a single space. Used when
// standard normalization still leaves non-text artifacts from a corrupted
// extraction. Idempotent.
func NormalizeAggressive(raw string) string {
	cleaned := Normalize(raw)
	var b strings.Builder
	b.Grow(len(cleaned))
	dropped := false
	for _, r := range cleaned {
		switch {
		case r == ' ' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			dropped = false
		case strings.ContainsRune(punctuationWhitelist, r):
			b.WriteRune(r)
			dropped = false
		default:
			if !dropped {
				b.WriteByte(' ')
				dropped = true
			}
		}
	}
	return collapseWhitespace(b.String())
}

// stripInvisible removes control and zero-width characters, keeping tabs as spaces.
func stripInvisible(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '\t':
			return ' '
		case '\u200b', '\u200c', '\u200d', '\ufeff':
			return -1
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// stripBullets removes leading list markers from a line, repeatedly, so that
// "- - item" and "- item" both normalize to "item".
func stripBullets(line string) string {
	for {
		trimmed := strings.TrimLeft(line, " ")
		rest, ok := trimBulletPrefix(trimmed)
		if !ok {
			return trimmed
		}
		line = rest
	}
}

// trimBulletPrefix strips one marker followed by whitespace from the line start.
// A marker with no trailing space is not a bullet (e.g. "-5 degrees").
func trimBulletPrefix(line string) (string, bool) {
	if line == "" {
		return line, false
	}
	r := []rune(line)
	if !strings.ContainsRune(bulletMarkers, r[0]) {
		return line, false
	}
	if len(r) < 2 || r[1] != ' ' {
		return line, false
	}
	return strings.TrimLeft(string(r[1:]), " "), true
}

func collapseWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	wasSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !wasSpace {
				b.WriteByte(' ')
				wasSpace = true
			}
		} else {
			b.WriteRune(r)
			wasSpace = false
		}
	}
	return strings.TrimSpace(b.String())
}
