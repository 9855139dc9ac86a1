package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/ardnew/qmod/lang"
	"github.com/ardnew/qmod/log"
)

// Bench measures parse time of modules. The parse cache is bypassed.
type Bench struct {
	Count int `default:"1000" help:"Number of parses per source." short:"n"`

	Input
}

// timing summarizes repeated measurements.
type timing struct {
	n             int
	min, max, sum time.Duration
}

func (t *timing) add(d time.Duration) {
	if t.n == 0 || d < t.min {
		t.min = d
	}

	if d > t.max {
		t.max = d
	}

	t.sum += d
	t.n++
}

func (t timing) mean() time.Duration {
	if t.n == 0 {
		return 0
	}

	return t.sum / time.Duration(t.n)
}

func (t timing) String() string {
	return fmt.Sprintf("n=%d min=%s mean=%s max=%s", t.n, t.min, t.mean(), t.max)
}

// Run executes the bench command.
func (b *Bench) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) {
		cancel(*err)
	}(&err)

	inputs, err := b.open(ctx)
	if err != nil {
		return err
	}
	defer closeAll(inputs)

	// Remainder warnings would repeat once per iteration.
	opts := append(parseOptions(ctx), lang.WithLogger(log.Logger{}))
	w := stdout(ctx)

	for _, in := range inputs {
		data, err := io.ReadAll(in.r)
		if err != nil {
			return ErrOpenSource.Wrap(err).With(slog.String("source", in.name))
		}

		t, items, err := measure(ctx, string(data), max(b.Count, 1), opts)
		if err != nil {
			return ErrParseSource.Wrap(err).With(slog.String("source", in.name))
		}

		log.DebugContext(ctx, "bench",
			slog.String("source", in.name),
			slog.Int("bytes", len(data)),
			slog.Int("items", items),
			slog.Duration("mean", t.mean()))

		if _, err := fmt.Fprintf(w, "%s: items=%d %s\n", in.name, items, t); err != nil {
			return ErrFormat.Wrap(err)
		}
	}

	return nil
}

// measure parses text count times and returns the timings and the number of
// top-level items. It stops early if ctx is canceled.
func measure(
	ctx context.Context,
	text string,
	count int,
	opts []lang.Option,
) (timing, int, error) {
	var (
		t     timing
		items int
	)

	for range count {
		if err := ctx.Err(); err != nil {
			return t, items, err
		}

		start := time.Now()

		m, err := lang.ParseString(ctx, text, opts...)
		if err != nil {
			return t, items, err
		}

		t.add(time.Since(start))
		items = m.Len()
	}

	return t, items, nil
}
