package lang

import (
	"context"
	"errors"
	"log/slog"
	"strings"
)

// ParseModule parses text with the default options.
func ParseModule(text string) (*Module, error) {
	return ParseString(context.Background(), text)
}

// ParseString parses a module from a string.
//
// Text left after the last item is returned in [Module.Remainder]. With
// [WithStrict] a non-blank remainder fails the parse with [ErrTrailingText]
// instead.
func ParseString(ctx context.Context, s string, opts ...Option) (*Module, error) {
	return parse(ctx, s, makeOptions(opts...))
}

func parse(ctx context.Context, s string, opts options) (*Module, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p := newParser(s, opts)

	p.opts.logger.TraceContext(ctx, "parse begin",
		slog.Int("source_bytes", len(s)),
		slog.Int("max_depth", opts.maxDepth),
		slog.Bool("strict", opts.strict))

	m, err := p.module()
	if err != nil {
		p.opts.logger.DebugContext(ctx, "parse failed", slog.Any("error", err))

		return nil, err
	}

	if !isBlank(m.Remainder) {
		at := len(s) - len(m.Remainder) + skipSeparators(m.Remainder)
		if opts.strict {
			return nil, p.errorAt(ErrTrailingText, at)
		}

		pos := p.lines.position(at)
		p.opts.logger.WarnContext(ctx, "unparsed trailing text",
			slog.Int("line", pos.Line),
			slog.Int("column", pos.Column),
			slog.Int("bytes", len(s)-at))
	}

	p.opts.logger.TraceContext(ctx, "parse complete",
		slog.Int("item_count", len(m.Items)),
		slog.Int("preamble_bytes", len(m.Preamble)))

	return m, nil
}

// ParseQuestion parses a single question at the start of text and returns
// the text following its body.
func ParseQuestion(text string) (*Question, string, error) {
	p := newParser(text, makeOptions())

	q, next, err := p.question(0, len(text))
	if err != nil {
		return nil, text, err
	}

	return q, text[next:], nil
}

// ParseTag parses a group opening tag at the start of text and returns the
// text following its closing '>'.
func ParseTag(text string) (Tag, string, error) {
	p := newParser(text, makeOptions())

	tag, next, err := p.tag(0, len(text))
	if err != nil {
		return Tag{}, text, err
	}

	return tag, text[next:], nil
}

// ParseItem parses a single question, grid or loop at the start of text and
// returns the text following it. Leading separators are not skipped.
func ParseItem(text string, opts ...Option) (Item, string, error) {
	p := newParser(text, makeOptions(opts...))

	it, next, err := p.item(0, len(text), 0)
	if err != nil {
		return nil, text, err
	}

	return it, text[next:], nil
}

// parser holds the source being parsed. All offsets are byte offsets into
// src; the end argument bounds every scan to the enclosing group body.
type parser struct {
	src   string
	lines lineIndex
	opts  options
}

func newParser(src string, opts options) *parser {
	return &parser{src: src, lines: newLineIndex(src), opts: opts}
}

func (p *parser) errorAt(kind *Error, offset int) error {
	return newParseError(kind, p.lines.position(offset), p.src)
}

// module parses the preamble and the top-level item sequence.
func (p *parser) module() (*Module, error) {
	pre := boundary(p.src)

	items, stop, err := p.items(pre, len(p.src), 0)
	if err != nil {
		return nil, err
	}

	return &Module{
		Preamble:  p.src[:pre],
		Items:     items,
		Remainder: p.src[stop:],
	}, nil
}

// items parses separator-delimited items from src[i:end] until none match.
// It returns the offset where the sequence stopped, which precedes the
// separators skipped before the failed attempt.
func (p *parser) items(i, end, depth int) ([]Item, int, error) {
	var items []Item

	for {
		j := i + skipSeparators(p.src[i:end])
		if j == end {
			return items, i, nil
		}

		it, next, err := p.item(j, end, depth)
		if err != nil {
			if errors.Is(err, ErrNoItem) || errors.Is(err, ErrUnknownTag) {
				return items, i, nil
			}

			return nil, i, err
		}

		items = append(items, it)
		i = next
	}
}

func (p *parser) item(i, end, depth int) (Item, int, error) {
	if i < end {
		switch p.src[i] {
		case '[':
			q, next, err := p.question(i, end)
			if err != nil {
				return nil, i, err
			}

			return q, next, nil

		case '<':
			return p.group(i, end, depth)
		}
	}

	return nil, i, p.errorAt(ErrNoItem, i)
}

func (p *parser) question(i, end int) (*Question, int, error) {
	if i >= end || p.src[i] != '[' {
		return nil, i, p.errorAt(ErrNoItem, i)
	}

	n := strings.IndexByte(p.src[i+1:end], ']')
	if n < 0 {
		return nil, i, p.errorAt(ErrUnterminatedHeader, i)
	}

	header := p.src[i+1 : i+1+n]
	body := i + 1 + n + 1
	next := body + boundary(p.src[body:end])

	return &Question{
		Header:   strings.TrimSpace(header),
		Markdown: strings.TrimSpace(p.src[body:next]),
		Pos:      p.lines.span(i, next),
	}, next, nil
}

func (p *parser) tag(i, end int) (Tag, int, error) {
	if i >= end || p.src[i] != '<' {
		return Tag{}, i, p.errorAt(ErrNoItem, i)
	}

	j := i + 1
	j += skipTagSpace(p.src[j:end])

	var name TagName

	switch rest := p.src[j:end]; {
	case strings.HasPrefix(rest, string(TagGrid)):
		name = TagGrid
	case strings.HasPrefix(rest, string(TagLoop)):
		name = TagLoop
	default:
		return Tag{}, i, p.errorAt(ErrUnknownTag, i)
	}

	j += len(name)

	n := strings.IndexByte(p.src[j:end], '>')
	if n < 0 {
		return Tag{}, i, p.errorAt(
			ErrUnterminatedTag.With(slog.String("tag", string(name))), i)
	}

	return Tag{
		Name:   name,
		Params: strings.TrimSpace(p.src[j : j+n]),
	}, j + n + 1, nil
}

func (p *parser) group(i, end, depth int) (Item, int, error) {
	tag, body, err := p.tag(i, end)
	if err != nil {
		return nil, i, err
	}

	switch tag.Name {
	case TagGrid:
		return p.grid(i, body, end, tag)
	case TagLoop:
		return p.loop(i, body, end, depth, tag)
	default:
		return nil, i, p.errorAt(
			ErrInvalidTag.With(slog.String("tag", string(tag.Name))), i)
	}
}

func (p *parser) grid(i, body, end int, tag Tag) (Item, int, error) {
	n := strings.Index(p.src[body:end], closeGrid)
	if n < 0 {
		return nil, i, p.errorAt(
			ErrUnterminatedGroup.With(slog.String("expected", closeGrid)), i)
	}

	next := body + n + len(closeGrid)

	return &Grid{
		Tag:      tag,
		Markdown: strings.TrimSpace(p.src[body : body+n]),
		Pos:      p.lines.span(i, next),
	}, next, nil
}

func (p *parser) loop(i, body, end, depth int, tag Tag) (Item, int, error) {
	level := depth + 1
	if p.opts.maxDepth > 0 && level > p.opts.maxDepth {
		return nil, i, p.errorAt(
			ErrMaxDepthExceeded.With(slog.Int("max_depth", p.opts.maxDepth)), i)
	}

	n := findLoopClose(p.src[body:end])
	if n < 0 {
		return nil, i, p.errorAt(
			ErrUnterminatedGroup.With(slog.String("expected", closeLoop)), i)
	}

	stop := body + n

	items, rest, err := p.items(body, stop, level)
	if err != nil {
		return nil, i, err
	}

	if tail := p.src[rest:stop]; !isBlank(tail) {
		at := rest + skipSeparators(tail)
		if p.opts.strict {
			return nil, i, p.errorAt(ErrTrailingText, at)
		}

		pos := p.lines.position(at)
		p.opts.logger.Debug("unparsed loop body text",
			slog.String("params", tag.Params),
			slog.Int("line", pos.Line),
			slog.Int("column", pos.Column))
	}

	next := stop + len(closeLoop)

	return &Loop{
		Tag:      tag,
		Markdown: strings.TrimSpace(p.src[body:stop]),
		Items:    items,
		Pos:      p.lines.span(i, next),
	}, next, nil
}
