package lang

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Predefined errors (sentinel values).
var (
	ErrUnterminatedHeader = NewError("unterminated question header")
	ErrUnknownTag         = NewError("unknown tag")
	ErrUnterminatedTag    = NewError("unterminated tag attributes")
	ErrUnterminatedGroup  = NewError("unterminated group")
	ErrInvalidTag         = NewError("invalid tag name")
	ErrMaxDepthExceeded   = NewError("maximum loop depth exceeded")
	ErrTrailingText       = NewError("unparsed trailing text")
	ErrNoItem             = NewError("no item at input")
	ErrInvalidQuery       = NewError("invalid query")
	ErrReadInput          = NewError("failed to read input")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	err   error       // Wrapped error (for errors.Unwrap)
	attrs []slog.Attr // Attributes for structured logging
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is an *Error with the same message, so that
// errors derived with [Error.Wrap] or [Error.With] match their sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return e == t || (t.err == nil && len(t.attrs) == 0 && e.msg == t.msg)
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:   e.msg,
		err:   err,
		attrs: e.attrs,
	}
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		msg:   e.msg,
		err:   e.err,
		attrs: newAttrs,
	}
}

// ParseError reports a grammar violation at a position in the source.
// errors.Is matches it against its Kind sentinel.
type ParseError struct {
	Kind   *Error
	Pos    Position
	Source string // The original source input, used for the snippet
}

func newParseError(kind *Error, pos Position, source string) *ParseError {
	return &ParseError{Kind: kind, Pos: pos, Source: source}
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	msg := "parse error at line " + strconv.Itoa(e.Pos.Line) +
		", column " + strconv.Itoa(e.Pos.Column) + ": " + e.Kind.Error()

	if snippet := e.Snippet(); snippet != "" {
		return msg + "\n" + snippet
	}

	return msg
}

// Unwrap returns the Kind sentinel.
func (e *ParseError) Unwrap() error { return e.Kind }

// LogValue implements slog.LogValuer.
func (e *ParseError) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.Kind.attrs)+4)
	attrs = append(attrs,
		slog.String("error", e.Kind.Error()),
		slog.Int("line", e.Pos.Line),
		slog.Int("column", e.Pos.Column),
		slog.Int("offset", e.Pos.Offset),
	)

	return slog.GroupValue(append(attrs, e.Kind.attrs...)...)
}

// Snippet returns the offending source line followed by a caret marking the
// error column, or "" if the source is unavailable.
func (e *ParseError) Snippet() string {
	if e.Source == "" || e.Pos.Line < 1 {
		return ""
	}

	lines := strings.Split(e.Source, "\n")
	if e.Pos.Line > len(lines) {
		return ""
	}

	line := strings.TrimRight(lines[e.Pos.Line-1], "\r")

	var src strings.Builder

	num := strconv.Itoa(e.Pos.Line)

	src.WriteString("  ")
	src.WriteString(num)
	src.WriteString(" | ")
	src.WriteString(line)
	src.WriteRune('\n')

	// 2 leading spaces + " | "
	padding := len(num) + 5

	col := min(e.Pos.Column-1, utf8.RuneCountInString(line))
	if col > 0 {
		padding += col
	}

	src.WriteString(strings.Repeat(" ", padding))
	src.WriteString("^\n")

	return src.String()
}
