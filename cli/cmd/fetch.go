package cmd

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ardnew/qmod/fetch"
	"github.com/ardnew/qmod/lang"
	"github.com/ardnew/qmod/log"
)

// Fetch downloads remote modules and lists their items.
type Fetch struct {
	Names       []string      `arg:""                     help:"Module file names, e.g. module1.txt."`
	Base        string        `default:"${fetchBase}"     help:"URL that module names are resolved against."`
	Timeout     time.Duration `default:"30s"              help:"Per-request timeout (0 to disable)."`
	Concurrency int           `default:"4"                help:"Number of parallel requests."          short:"j"`
	Save        string        `help:"Write fetched text into this directory." placeholder:"DIR" type:"path"`
}

// Run executes the fetch command.
func (f *Fetch) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) {
		cancel(*err)
	}(&err)

	client, err := fetch.New(
		fetch.WithBaseURL(f.Base),
		fetch.WithTimeout(f.Timeout),
		fetch.WithConcurrency(f.Concurrency),
		fetch.WithLogger(log.Default()),
	)
	if err != nil {
		return ErrFetch.Wrap(err)
	}

	results, err := client.GetAll(ctx, f.Names...)
	if err != nil {
		return ErrFetch.Wrap(err).
			With(slog.String("names", strings.Join(f.Names, ",")))
	}

	if f.Save != "" {
		if err := f.save(ctx, results); err != nil {
			return err
		}
	}

	texts := make([]string, len(results))
	for i, r := range results {
		texts[i] = r.Text
	}

	parsed, err := lang.ParseAll(ctx, texts, parseOptions(ctx)...)
	if err != nil {
		return ErrParseSource.Wrap(err).
			With(slog.String("names", strings.Join(f.Names, ",")))
	}

	mods := make([]module, len(parsed))
	for i, m := range parsed {
		mods[i] = module{name: results[i].Name, Module: m}
	}

	return listAll(ctx, stdout(ctx), mods)
}

// save writes each result below the Save directory, keeping the
// subdirectories of its name.
func (f *Fetch) save(ctx context.Context, results []fetch.Result) error {
	for _, r := range results {
		path := filepath.Join(f.Save, filepath.FromSlash(r.Name))

		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return ErrSaveModule.Wrap(err).With(slog.String("path", path))
		}

		if err := os.WriteFile(path, []byte(r.Text), 0o644); err != nil {
			return ErrSaveModule.Wrap(err).With(slog.String("path", path))
		}

		log.InfoContext(ctx, "saved module",
			slog.String("name", r.Name),
			slog.String("path", path),
			slog.Int("bytes", len(r.Text)))
	}

	return nil
}
