package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/ardnew/qmod/lang"
	"github.com/ardnew/qmod/log"
)

// ContextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

type (
	streamsKey      struct{}
	parseOptionsKey struct{}

	streams struct {
		in  io.Reader
		out io.Writer
	}
)

// WithStreams returns a new context.Context whose commands read "-" from in
// and write results to out. Nil streams fall back to [os.Stdin] and
// [os.Stdout].
func WithStreams(ctx context.Context, in io.Reader, out io.Writer) context.Context {
	return context.WithValue(ctx, streamsKey{}, streams{in: in, out: out})
}

func stdin(ctx context.Context) io.Reader {
	if s, ok := ctx.Value(streamsKey{}).(streams); ok && s.in != nil {
		return s.in
	}

	return os.Stdin
}

func stdout(ctx context.Context) io.Writer {
	if s, ok := ctx.Value(streamsKey{}).(streams); ok && s.out != nil {
		return s.out
	}

	return os.Stdout
}

// WithParseOptions returns a new context.Context carrying the parser options
// shared by all commands.
func WithParseOptions(ctx context.Context, opts ...lang.Option) context.Context {
	return context.WithValue(ctx, parseOptionsKey{}, opts)
}

// parseOptions returns the options stored by WithParseOptions followed by
// the package-level logger.
func parseOptions(ctx context.Context) []lang.Option {
	opts, _ := ctx.Value(parseOptionsKey{}).([]lang.Option)

	return append(append([]lang.Option(nil), opts...), lang.WithLogger(log.Default()))
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// Input selects the module sources read by a command.
type Input struct {
	Source []string `arg:"" default:"-" help:"Source file(s) or '-' for stdin." name:"source"`
}

// module is a parsed source.
type module struct {
	name string
	*lang.Module
}

// input is an opened source.
type input struct {
	name string
	r    io.Reader
	c    io.Closer
}

func (in input) Close() error {
	if in.c == nil {
		return nil
	}

	return in.c.Close()
}

// fileKey uniquely identifies a file by its device and inode numbers.
// This handles deduplication across symlinks, absolute/relative paths, and
// special device files.
type fileKey struct {
	dev uint64
	ino uint64
}

// open opens every distinct source in order. Duplicates, whether by path,
// symlink or repeated "-", are opened once.
func (f Input) open(ctx context.Context) ([]input, error) {
	sources := f.Source
	if len(sources) == 0 {
		sources = []string{stdinSource}
	}

	inputs := make([]input, 0, len(sources))
	seen := make(map[fileKey]struct{})
	hasStdin := false

	for _, src := range sources {
		if src == stdinSource {
			if !hasStdin {
				inputs = append(inputs, input{name: stdinSource, r: stdin(ctx)})
			}

			hasStdin = true

			continue
		}

		in, ok, err := openUniqueFile(src, seen)
		if err != nil {
			closeAll(inputs)

			return nil, ErrOpenSource.Wrap(err).With(slog.String("source", src))
		}

		if ok {
			inputs = append(inputs, in)
		}
	}

	return inputs, nil
}

func closeAll(inputs []input) {
	for _, in := range inputs {
		_ = in.Close()
	}
}

// openUniqueFile opens the file at path if it hasn't been seen before.
// It resolves symlinks and uses device/inode to detect duplicates.
// It returns false without error for a duplicate.
func openUniqueFile(path string, seen map[fileKey]struct{}) (input, bool, error) {
	// Resolve to absolute path to handle relative path duplicates.
	absPath, err := filepath.Abs(path)
	if err != nil {
		return input{}, false, err
	}

	// Resolve symlinks to their target.
	resolved, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		return input{}, false, err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return input{}, false, err
	}

	if key, ok := makeFileKey(info); ok {
		if _, exists := seen[key]; exists {
			return input{}, false, nil
		}

		seen[key] = struct{}{}
	}

	file, err := os.Open(resolved)
	if err != nil {
		return input{}, false, err
	}

	return input{name: path, r: file, c: file}, true, nil
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true
}

// parse reads and parses every source. A single source is parsed through
// the content cache; several are read fully and parsed concurrently.
func (f Input) parse(ctx context.Context) ([]module, error) {
	inputs, err := f.open(ctx)
	if err != nil {
		return nil, err
	}
	defer closeAll(inputs)

	opts := parseOptions(ctx)

	if len(inputs) == 1 {
		m, err := lang.ParseReader(ctx, inputs[0].r, opts...)
		if err != nil {
			return nil, ErrParseSource.Wrap(err).
				With(slog.String("source", inputs[0].name))
		}

		return []module{{name: inputs[0].name, Module: m}}, nil
	}

	texts := make([]string, len(inputs))

	for i, in := range inputs {
		data, err := io.ReadAll(in.r)
		if err != nil {
			return nil, ErrOpenSource.Wrap(err).With(slog.String("source", in.name))
		}

		texts[i] = string(data)
	}

	mods, err := lang.ParseAll(ctx, texts, opts...)
	if err != nil {
		return nil, ErrParseSource.Wrap(err).
			With(slog.String("sources", strings.Join(f.Source, ",")))
	}

	out := make([]module, len(mods))
	for i, m := range mods {
		out[i] = module{name: inputs[i].name, Module: m}
	}

	return out, nil
}

// label returns a short description of an item for listings.
func label(it lang.Item) string {
	switch v := it.(type) {
	case *lang.Question:
		return v.Header
	case *lang.Grid:
		return v.Tag.Params
	case *lang.Loop:
		return v.Tag.Params
	default:
		return ""
	}
}

// firstLine returns the first non-blank line of s, trimmed.
func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")

	return strings.TrimSpace(line)
}
