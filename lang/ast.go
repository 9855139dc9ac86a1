package lang

import (
	"iter"
	"strconv"
	"strings"
)

// Position identifies a location in module source text.
type Position struct {
	Offset int // byte offset, starting at 0
	Line   int // line number, starting at 1
	Column int // column in codepoints, starting at 1
}

// String returns "line:column".
func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// Span is the half-open range of source text consumed by an item.
type Span struct {
	Start Position
	End   Position
}

// Len returns the number of bytes in the span.
func (s Span) Len() int { return s.End.Offset - s.Start.Offset }

// Kind enumerates the item variants.
type Kind int

const (
	KindQuestion Kind = iota
	KindGrid
	KindLoop
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindQuestion:
		return "question"
	case KindGrid:
		return "grid"
	case KindLoop:
		return "loop"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Item is one unit of module content. The only implementations are
// [*Question], [*Grid] and [*Loop].
type Item interface {
	// Kind returns the variant of the item.
	Kind() Kind
	// Span returns the source range consumed by the item, from its opening
	// '[' or '<' to the end of its body or closing tag.
	Span() Span

	item()
}

// Question is a bracketed header followed by a markdown body.
type Question struct {
	// Header is the trimmed text between '[' and ']', such as
	// "Q1 displayif=equals(AGE,1)". It is not interpreted further.
	Header string
	// Markdown is the trimmed body text up to the next item boundary.
	Markdown string
	Pos      Span
}

// ID returns the first whitespace-delimited field of the header.
func (q *Question) ID() string {
	id, _, _ := strings.Cut(q.Header, " ")
	if i := strings.IndexAny(id, "\t\r\n"); i >= 0 {
		id = id[:i]
	}

	return id
}

func (*Question) Kind() Kind   { return KindQuestion }
func (q *Question) Span() Span { return q.Pos }
func (*Question) item()        {}

// TagName is the name of a group tag.
type TagName string

const (
	TagGrid TagName = "grid"
	TagLoop TagName = "loop"
)

// Tag is the opening marker of a group, e.g. <loop id="MEALS">.
type Tag struct {
	Name TagName
	// Params is the trimmed attribute text between the name and '>'.
	Params string
}

// Grid is a tabular group. Its body is never decomposed into items.
type Grid struct {
	Tag      Tag
	Markdown string
	Pos      Span
}

func (*Grid) Kind() Kind   { return KindGrid }
func (g *Grid) Span() Span { return g.Pos }
func (*Grid) item()        {}

// Loop is a repeatable group. Markdown keeps the body verbatim (trimmed) and
// Items holds the body parsed with the module item grammar.
type Loop struct {
	Tag      Tag
	Markdown string
	Items    []Item
	Pos      Span
}

func (*Loop) Kind() Kind   { return KindLoop }
func (l *Loop) Span() Span { return l.Pos }
func (*Loop) item()        {}

// Module is one parsed survey document.
type Module struct {
	// Preamble is the raw text before the first item boundary.
	Preamble string
	// Items are the top-level items in document order.
	Items []Item
	// Remainder is the unconsumed text following the last item, including
	// any separators before it. It is empty or blank for well-formed input.
	Remainder string
}

// Len returns the number of top-level items.
func (m *Module) Len() int { return len(m.Items) }

// All returns an iterator over the top-level items.
func (m *Module) All() iter.Seq[Item] {
	return func(yield func(Item) bool) {
		for _, it := range m.Items {
			if !yield(it) {
				return
			}
		}
	}
}

// Path addresses an item by its index at each nesting level; the path
// 2.0 is the first item inside the third top-level item.
type Path []int

// String returns the dot-separated indices.
func (p Path) String() string {
	var sb strings.Builder

	for i, n := range p {
		if i > 0 {
			sb.WriteByte('.')
		}

		sb.WriteString(strconv.Itoa(n))
	}

	return sb.String()
}

// Depth returns the nesting depth, 0 for top-level items.
func (p Path) Depth() int { return len(p) - 1 }

// Walk returns a depth-first iterator over all items, nested loop items
// included, in document order. The yielded Path must not be retained across
// iterations; clone it if needed.
func (m *Module) Walk() iter.Seq2[Path, Item] {
	return func(yield func(Path, Item) bool) {
		walk(m.Items, make(Path, 0, 4), yield)
	}
}

func walk(items []Item, path Path, yield func(Path, Item) bool) bool {
	for i, it := range items {
		p := append(path, i)
		if !yield(p, it) {
			return false
		}

		if l, ok := it.(*Loop); ok {
			if !walk(l.Items, p, yield) {
				return false
			}
		}
	}

	return true
}

// Questions returns an iterator over every question in the module, nested
// loop questions included. Grid bodies are not searched.
func (m *Module) Questions() iter.Seq[*Question] {
	return func(yield func(*Question) bool) {
		for _, it := range m.Walk() {
			if q, ok := it.(*Question); ok && !yield(q) {
				return
			}
		}
	}
}

// Lookup returns the item at path, or nil if there is none.
func (m *Module) Lookup(path Path) Item {
	items := m.Items

	var it Item

	for _, n := range path {
		if n < 0 || n >= len(items) {
			return nil
		}

		it = items[n]

		l, ok := it.(*Loop)
		if !ok {
			items = nil

			continue
		}

		items = l.Items
	}

	return it
}
