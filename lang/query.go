package lang

import (
	"log/slog"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Env is the environment a [Query] is evaluated against, one item at a time.
// Field names in expressions are the lowercase tag names, for example
//
//	kind == "question" && id startsWith "Q"
//	kind == "loop" && items > 2
//	depth > 0 && markdown contains "meal"
type Env struct {
	Kind     string `expr:"kind"`     // "question", "grid" or "loop"
	ID       string `expr:"id"`       // question ID, empty for groups
	Header   string `expr:"header"`   // question header
	Params   string `expr:"params"`   // group tag parameters
	Markdown string `expr:"markdown"` // body text
	Path     string `expr:"path"`     // dotted item path, e.g. "3.0"
	Depth    int    `expr:"depth"`    // 0 for top-level items
	Items    int    `expr:"items"`    // number of nested loop items
	Line     int    `expr:"line"`     // line of the opening '[' or '<'
}

// NewEnv returns the query environment of the item at path.
func NewEnv(path Path, it Item) Env {
	env := Env{
		Kind:  it.Kind().String(),
		Path:  path.String(),
		Depth: path.Depth(),
		Line:  it.Span().Start.Line,
	}

	switch v := it.(type) {
	case *Question:
		env.ID = v.ID()
		env.Header = v.Header
		env.Markdown = v.Markdown

	case *Grid:
		env.Params = v.Tag.Params
		env.Markdown = v.Markdown

	case *Loop:
		env.Params = v.Tag.Params
		env.Markdown = v.Markdown
		env.Items = len(v.Items)
	}

	return env
}

// Query is a compiled boolean item filter.
type Query struct {
	source  string
	program *vm.Program
}

// Compile compiles an expr-lang expression evaluated against [Env]. The
// expression must produce a boolean.
func Compile(source string) (*Query, error) {
	program, err := expr.Compile(source, expr.Env(Env{}), expr.AsBool())
	if err != nil {
		return nil, ErrInvalidQuery.Wrap(err).
			With(slog.String("source", source))
	}

	return &Query{source: source, program: program}, nil
}

// String returns the query source.
func (q *Query) String() string { return q.source }

// Match reports whether the item at path satisfies the query.
func (q *Query) Match(path Path, it Item) (bool, error) {
	out, err := vm.Run(q.program, NewEnv(path, it))
	if err != nil {
		return false, ErrInvalidQuery.Wrap(err).
			With(slog.String("source", q.source), slog.String("path", path.String()))
	}

	ok, _ := out.(bool)

	return ok, nil
}

// Selection is an item chosen by [Module.Select].
type Selection struct {
	Path Path
	Item Item
}

// Select returns every item, nested loop items included, that satisfies q,
// in document order.
func (m *Module) Select(q *Query) ([]Selection, error) {
	var sel []Selection

	for path, it := range m.Walk() {
		ok, err := q.Match(path, it)
		if err != nil {
			return nil, err
		}

		if ok {
			sel = append(sel, Selection{Path: clonePath(path), Item: it})
		}
	}

	return sel, nil
}

func clonePath(p Path) Path { return append(Path(nil), p...) }
