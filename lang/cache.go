package lang

import (
	"bytes"
	"context"
	"encoding/gob"
	"io"
	"log/slog"
	"runtime"
	"strconv"
	"sync"

	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"
	"golang.org/x/sync/errgroup"
)

// globalCache stores parse results keyed by [cacheKey].
var globalCache sync.Map

// cacheKey identifies a parse by the hashes of its source and options.
type cacheKey struct {
	src, opts uint64
}

func newCacheKey(source string, o options) cacheKey {
	return cacheKey{src: xxh3.HashString(source), opts: hashOptions(o.key())}
}

// entry holds the outcome of parsing one source with one options set.
type entry struct {
	once   sync.Once
	module *Module
	err    error
}

// hashOptions encodes options using gob and hashes with xxh3.
// Returns a hash that uniquely identifies the options configuration.
func hashOptions(key optionsKey) uint64 {
	var buf bytes.Buffer

	enc := gob.NewEncoder(&buf)

	_ = enc.Encode(key.maxDepth)
	_ = enc.Encode(key.strict)

	return xxh3.Hash(buf.Bytes())
}

// ParseReader parses a module from an io.Reader.
//
// Results are cached by content, so parsing the same text again with the same
// options returns the same *Module. Cached modules must not be modified.
func ParseReader(
	ctx context.Context,
	r io.Reader,
	opts ...Option,
) (*Module, error) {
	// Read-ahead overlaps I/O with the copy into the buffer.
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).
			With(slog.String("source", "reader"))
	}

	o := makeOptions(opts...)

	o.logger.TraceContext(
		ctx,
		"read input",
		slog.Int("source_bytes", len(data)),
		slog.Bool("read_ahead", true),
	)

	return parseCached(ctx, string(data), o)
}

func parseCached(ctx context.Context, source string, o options) (*Module, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := newCacheKey(source, o)

	value, hit := globalCache.LoadOrStore(key, new(entry))

	e, ok := value.(*entry)
	if !ok {
		return parse(ctx, source, o)
	}

	o.logger.TraceContext(
		ctx,
		"cache lookup",
		slog.String("source_hash", strconv.FormatUint(key.src, 16)),
		slog.String("opts_hash", strconv.FormatUint(key.opts, 16)),
		slog.Bool("cache_hit", hit),
	)

	e.once.Do(func() {
		// Cancellation of the first caller must not poison the entry.
		e.module, e.err = parse(context.WithoutCancel(ctx), source, o)
	})

	return e.module, e.err
}

// ClearCache removes all cached parse results.
// This is primarily useful for testing or when memory needs to be reclaimed.
func ClearCache() {
	globalCache.Clear()
}

// ParseAll parses each source concurrently and returns the modules in the
// order of sources. The first error cancels the remaining parses.
func ParseAll(
	ctx context.Context,
	sources []string,
	opts ...Option,
) ([]*Module, error) {
	o := makeOptions(opts...)
	mods := make([]*Module, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, src := range sources {
		g.Go(func() error {
			m, err := parse(gctx, src, o)
			if err != nil {
				return err
			}

			mods[i] = m

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	o.logger.DebugContext(ctx, "parsed batch", slog.Int("count", len(sources)))

	return mods, nil
}
