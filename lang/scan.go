package lang

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	commentStart = "//"
	openGrid     = "<grid"
	openLoop     = "<loop"
	closeGrid    = "</grid>"
	closeLoop    = "</loop>"
)

// ScanBoundary splits text at the first item boundary. The prefix is the
// text before the boundary and the remainder starts with '[' or '<'. If text
// contains no boundary, prefix is the whole text and remainder is empty.
//
// A line comment suspends boundary detection through its terminating newline
// but stays part of the prefix.
func ScanBoundary(text string) (remainder, prefix string) {
	n := boundary(text)

	return text[n:], text[:n]
}

// boundary returns the byte offset of the first item boundary in s, or len(s).
func boundary(s string) int {
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])

		switch r {
		case '/':
			if strings.HasPrefix(s[i+size:], "/") {
				i = skipComment(s, i)

				continue
			}

		case '[':
			if next, _ := utf8.DecodeRuneInString(s[i+size:]); unicode.IsUpper(next) {
				return i
			}

		case '<':
			// Tag names are ASCII, so a prefix match never splits a codepoint.
			rest := s[i+size:]
			if strings.HasPrefix(rest, string(TagLoop)) ||
				strings.HasPrefix(rest, string(TagGrid)) {
				return i
			}
		}

		i += size
	}

	return len(s)
}

// skipComment returns the offset just past the newline ending the comment
// that starts at s[i], or len(s).
func skipComment(s string, i int) int {
	if n := strings.IndexByte(s[i:], '\n'); n >= 0 {
		return i + n + 1
	}

	return len(s)
}

// skipSeparators returns the length of the run of whitespace and line
// comments at the start of s.
func skipSeparators(s string) int {
	i := 0

	for i < len(s) {
		if strings.HasPrefix(s[i:], commentStart) {
			i = skipComment(s, i)

			continue
		}

		r, size := utf8.DecodeRuneInString(s[i:])
		if !unicode.IsSpace(r) {
			break
		}

		i += size
	}

	return i
}

// isBlank reports whether s holds nothing but separators.
func isBlank(s string) bool { return skipSeparators(s) == len(s) }

// skipTagSpace returns the length of the run of spaces and tabs at the start
// of s.
func skipTagSpace(s string) int {
	return len(s) - len(strings.TrimLeft(s, " \t"))
}

// findLoopClose returns the offset in s of the "</loop>" that balances a loop
// opened just before s, or -1. Nested "<loop" openers are counted. Grid bodies
// are opaque, so anything between "<grid" and its "</grid>" is skipped.
func findLoopClose(s string) int {
	depth := 1

	for i := 0; i < len(s); {
		rest := s[i:]

		switch {
		case strings.HasPrefix(rest, closeLoop):
			depth--
			if depth == 0 {
				return i
			}

			i += len(closeLoop)

		case strings.HasPrefix(rest, openLoop):
			depth++
			i += len(openLoop)

		case strings.HasPrefix(rest, openGrid):
			if n := strings.Index(rest, closeGrid); n >= 0 {
				i += n + len(closeGrid)
			} else {
				i += len(openGrid)
			}

		default:
			i++
		}
	}

	return -1
}
