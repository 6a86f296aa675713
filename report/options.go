package report

import (
	"time"

	"go.uber.org/zap"
)

// ============================================================================
// REPORTER OPTIONS — Functional options for New()
// ============================================================================

// Option configures reporter behavior via functional options pattern.
type Option func(*options)

type options struct {
	format string
	logger *zap.Logger
	now    func() time.Time
}

// WithFormat selects "text" (default) or "json" output.
func WithFormat(format string) Option {
	return func(o *options) {
		o.format = format
	}
}

// WithLogger attaches a logger for per-report timing entries.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithClock replaces time.Now for the "This took" line.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// applyOptions creates options from functional options.
func applyOptions(opts []Option) *options {
	o := &options{
		format: FormatText,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
