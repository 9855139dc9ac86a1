package cmd

import (
	"context"
	"log/slog"
)

// Fmt parses modules and re-emits them in the chosen format.
type Fmt struct {
	Native Native `cmd:"" default:"withargs" help:"Format as native markup (default)."`
	JSON   JSON   `cmd:""                    help:"Format as JSON."`
	YAML   YAML   `cmd:""                    help:"Format as YAML."`
}

// Native formats modules as native markup.
type Native struct {
	Input
}

// Run executes the fmt native command.
func (f *Native) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) {
		cancel(*err)
	}(&err)

	mods, err := f.parse(ctx)
	if err != nil {
		return err
	}

	for _, m := range mods {
		if err := m.Format(ctx, stdout(ctx)); err != nil {
			return ErrFormat.Wrap(err).
				With(slog.String("format", "native"), slog.String("source", m.name))
		}
	}

	return nil
}

// JSON formats modules as JSON.
type JSON struct {
	Indent int `default:"2" help:"Indent width for JSON output" short:"i"`

	Input
}

// Run executes the fmt json command.
func (j *JSON) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) {
		cancel(*err)
	}(&err)

	mods, err := j.parse(ctx)
	if err != nil {
		return err
	}

	for _, m := range mods {
		if err := m.FormatJSON(ctx, stdout(ctx), j.Indent); err != nil {
			return ErrFormat.Wrap(err).
				With(slog.String("format", "json"), slog.String("source", m.name))
		}
	}

	return nil
}

// YAML formats modules as YAML. Several modules are emitted as separate
// documents.
type YAML struct {
	Indent int `default:"2" help:"Indent width for YAML output" short:"i"`

	Input
}

// Run executes the fmt yaml command.
func (y *YAML) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) {
		cancel(*err)
	}(&err)

	mods, err := y.parse(ctx)
	if err != nil {
		return err
	}

	w := stdout(ctx)

	for i, m := range mods {
		if i > 0 {
			if _, err := w.Write([]byte("---\n")); err != nil {
				return ErrFormat.Wrap(err)
			}
		}

		if err := m.FormatYAML(ctx, w, y.Indent); err != nil {
			return ErrFormat.Wrap(err).
				With(slog.String("format", "yaml"), slog.String("source", m.name))
		}
	}

	return nil
}
