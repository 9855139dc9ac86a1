package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"

	"github.com/ardnew/qmod/lang"
)

// Tree renders the item hierarchy of modules.
type Tree struct {
	Markdown bool `help:"Include the first line of each item body." short:"m"`

	Input
}

// treeStyle holds the styles of one rendered tree. Styles are bound to the
// output renderer so that color is dropped when writing to a non-terminal.
type treeStyle struct {
	root, enum, question, group lipgloss.Style
}

func newTreeStyle(w io.Writer) treeStyle {
	r := lipgloss.NewRenderer(w)

	return treeStyle{
		root:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("6")),
		enum:     r.NewStyle().Foreground(lipgloss.Color("8")).MarginRight(1),
		question: r.NewStyle().Foreground(lipgloss.Color("15")),
		group:    r.NewStyle().Foreground(lipgloss.Color("5")),
	}
}

// Run executes the tree command.
func (t *Tree) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) {
		cancel(*err)
	}(&err)

	mods, err := t.parse(ctx)
	if err != nil {
		return err
	}

	w := stdout(ctx)
	st := newTreeStyle(w)

	for _, m := range mods {
		root := tree.Root(m.name).
			Enumerator(tree.RoundedEnumerator).
			EnumeratorStyle(st.enum).
			RootStyle(st.root)

		t.children(root, m.Items, st)

		if _, err := fmt.Fprintln(w, root.String()); err != nil {
			return ErrFormat.Wrap(err).With(slog.String("source", m.name))
		}
	}

	return nil
}

func (t *Tree) children(parent *tree.Tree, items []lang.Item, st treeStyle) {
	for _, it := range items {
		text := t.node(it)

		loop, ok := it.(*lang.Loop)
		if !ok {
			style := st.question
			if it.Kind() != lang.KindQuestion {
				style = st.group
			}

			parent.Child(style.Render(text))

			continue
		}

		sub := tree.Root(st.group.Render(text)).
			Enumerator(tree.RoundedEnumerator).
			EnumeratorStyle(st.enum)

		t.children(sub, loop.Items, st)
		parent.Child(sub)
	}
}

func (t *Tree) node(it lang.Item) string {
	var text string

	switch v := it.(type) {
	case *lang.Question:
		text = v.Header
	case *lang.Grid:
		text = "<grid " + v.Tag.Params + ">"
	case *lang.Loop:
		text = "<loop " + v.Tag.Params + ">"
	}

	if t.Markdown {
		if md := firstLine(markdownOf(it)); md != "" {
			text += ": " + md
		}
	}

	return text
}

func markdownOf(it lang.Item) string {
	switch v := it.(type) {
	case *lang.Question:
		return v.Markdown
	case *lang.Grid:
		return v.Markdown
	case *lang.Loop:
		return v.Markdown
	default:
		return ""
	}
}
