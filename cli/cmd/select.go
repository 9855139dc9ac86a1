package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ardnew/qmod/lang"
)

// Select filters items with a boolean expression.
//
// The expression sees the fields of [lang.Env], for example:
//
//	qmod select 'kind == "loop" && items > 2' module.txt
//	qmod select 'id startsWith "D_"' module.txt
type Select struct {
	Expr  string `arg:""                 help:"Boolean expression evaluated per item."`
	Count bool   `help:"Print only the number of matching items." short:"c"`

	Input
}

// Run executes the select command.
func (s *Select) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) {
		cancel(*err)
	}(&err)

	q, err := lang.Compile(s.Expr)
	if err != nil {
		return ErrQuery.Wrap(err)
	}

	mods, err := s.parse(ctx)
	if err != nil {
		return err
	}

	w := stdout(ctx)

	for _, m := range mods {
		sel, err := m.Select(q)
		if err != nil {
			return ErrQuery.Wrap(err).
				With(slog.String("source", m.name), slog.String("expr", q.String()))
		}

		prefix := ""
		if len(mods) > 1 {
			prefix = m.name + ":"
		}

		if s.Count {
			if _, err := fmt.Fprintf(w, "%s%d\n", prefix, len(sel)); err != nil {
				return ErrFormat.Wrap(err)
			}

			continue
		}

		var sb strings.Builder

		for _, it := range sel {
			fmt.Fprintf(&sb, "%s%s\t%s\t%s\n", prefix, it.Path, it.Item.Kind(), label(it.Item))
		}

		if _, err := fmt.Fprint(w, sb.String()); err != nil {
			return ErrFormat.Wrap(err).With(slog.String("source", m.name))
		}
	}

	return nil
}
