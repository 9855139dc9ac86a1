package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ardnew/qmod/log"
)

// Parse parses modules and lists their items.
type Parse struct {
	Input
}

// Run executes the parse command.
func (p *Parse) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) {
		cancel(*err)
	}(&err)

	mods, err := p.parse(ctx)
	if err != nil {
		return err
	}

	return listAll(ctx, stdout(ctx), mods)
}

// listAll lists every module, each under a header line when there are
// several.
func listAll(ctx context.Context, w io.Writer, mods []module) error {
	for i, m := range mods {
		if len(mods) > 1 {
			sep := ""
			if i > 0 {
				sep = "\n"
			}

			if _, err := fmt.Fprintf(w, "%s== %s\n", sep, m.name); err != nil {
				return ErrFormat.Wrap(err)
			}
		}

		if err := list(w, m); err != nil {
			return ErrFormat.Wrap(err).With(slog.String("source", m.name))
		}

		log.DebugContext(ctx, "parsed module",
			slog.String("source", m.name),
			slog.Int("items", m.Len()),
			slog.Int("preamble_bytes", len(m.Preamble)))
	}

	return nil
}

// list writes one line per item: its path, kind and label, indented by
// nesting depth.
func list(w io.Writer, m module) error {
	for path, it := range m.Walk() {
		indent := strings.Repeat("  ", path.Depth())

		_, err := fmt.Fprintf(w, "%s%-8s %-8s %s\n",
			indent, path, it.Kind(), label(it))
		if err != nil {
			return err
		}
	}

	if rem := firstLine(m.Remainder); rem != "" {
		_, err := fmt.Fprintf(w, "%-8s %-8s %s\n", "-", "unparsed", rem)

		return err
	}

	return nil
}
