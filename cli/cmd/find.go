package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/qmod/log"
)

// Find fuzzy-searches question headers.
type Find struct {
	Pattern string `arg:""                  help:"Characters to match in order."`
	Limit   int    `default:"0"             help:"Show at most this many hits per module (0 for all)." short:"n"`
	Score   bool   `help:"Print match scores." short:"S"`

	Input
}

// Run executes the find command.
func (f *Find) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) {
		cancel(*err)
	}(&err)

	mods, err := f.parse(ctx)
	if err != nil {
		return err
	}

	w := stdout(ctx)
	hl := lipgloss.NewRenderer(w).NewStyle().Bold(true).Underline(true)

	for _, m := range mods {
		hits := m.Find(f.Pattern)
		if f.Limit > 0 && len(hits) > f.Limit {
			hits = hits[:f.Limit]
		}

		log.DebugContext(ctx, "find",
			slog.String("source", m.name),
			slog.String("pattern", f.Pattern),
			slog.Int("hits", len(hits)))

		for _, h := range hits {
			var sb strings.Builder

			if len(mods) > 1 {
				sb.WriteString(m.name)
				sb.WriteByte(':')
			}

			if f.Score {
				fmt.Fprintf(&sb, "%d\t", h.Score)
			}

			fmt.Fprintf(&sb, "%s\t%s\n", h.Path, highlight(h.Question.Header, h.Matched, hl))

			if _, err := io.WriteString(w, sb.String()); err != nil {
				return ErrFormat.Wrap(err).With(slog.String("source", m.name))
			}
		}
	}

	return nil
}

// highlight renders the bytes of s at the given offsets with style.
func highlight(s string, matched []int, style lipgloss.Style) string {
	if len(matched) == 0 {
		return s
	}

	var sb strings.Builder

	for i, r := range s {
		if _, found := slices.BinarySearch(matched, i); found {
			sb.WriteString(style.Render(string(r)))
		} else {
			sb.WriteRune(r)
		}
	}

	return sb.String()
}
