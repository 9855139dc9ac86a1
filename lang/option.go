package lang

import "github.com/ardnew/qmod/log"

// DefaultMaxDepth is the default limit on nested loop groups.
const DefaultMaxDepth = 32

// options configures a parse.
type options struct {
	maxDepth int
	strict   bool
	logger   log.Logger
}

// optionsKey is the subset of options that changes parse results.
type optionsKey struct {
	maxDepth int
	strict   bool
}

func (o options) key() optionsKey {
	return optionsKey{maxDepth: o.maxDepth, strict: o.strict}
}

// Option configures parsing behavior.
type Option func(*options)

func makeOptions(opts ...Option) options {
	o := options{maxDepth: DefaultMaxDepth}

	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	return o
}

// WithMaxDepth limits how deeply loop groups may nest. A depth of 1 permits
// loops at the top level only. Zero or a negative depth removes the limit.
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		o.maxDepth = max(depth, 0)
	}
}

// WithStrict reports non-blank text left over after the last item, at the top
// level or inside a loop body, as an [ErrTrailingText] error.
func WithStrict(strict bool) Option {
	return func(o *options) {
		o.strict = strict
	}
}

// WithLogger sets the logger that receives parser trace and debug records.
// The zero [log.Logger] discards everything.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}
