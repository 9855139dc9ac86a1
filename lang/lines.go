package lang

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// lineIndex maps byte offsets of a source text to line and column numbers.
type lineIndex struct {
	src    string
	starts []int // byte offset of the first byte of each line
}

func newLineIndex(src string) lineIndex {
	starts := make([]int, 1, strings.Count(src, "\n")+1)

	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			starts = append(starts, i+1)
		}
	}

	return lineIndex{src: src, starts: starts}
}

// position returns the Position of the byte at offset. Offsets outside the
// source are clamped.
func (x lineIndex) position(offset int) Position {
	offset = max(0, min(offset, len(x.src)))

	// Index of the last line starting at or before offset.
	line := sort.Search(len(x.starts), func(i int) bool {
		return x.starts[i] > offset
	}) - 1

	start := x.starts[line]

	return Position{
		Offset: offset,
		Line:   line + 1,
		Column: utf8.RuneCountInString(x.src[start:offset]) + 1,
	}
}

func (x lineIndex) span(start, end int) Span {
	return Span{Start: x.position(start), End: x.position(end)}
}
