package gather

import "log/slog"

type ConvertOption func(*convState)

type convState struct {
	lenient bool
	summary bool
	sel     string
	logger  *slog.Logger
}

// WithLenient skips records with missing fields instead of failing.
func WithLenient(v bool) ConvertOption {
	return func(cs *convState) { cs.lenient = v }
}

// WithSummary adds totals of the transfer counters to the document.
func WithSummary(v bool) ConvertOption {
	return func(cs *convState) { cs.summary = v }
}

// WithSelect keeps only records for which the boolean expression src is
// true. An empty src selects everything.
func WithSelect(src string) ConvertOption {
	return func(cs *convState) { cs.sel = src }
}

func WithLogger(l *slog.Logger) ConvertOption {
	return func(cs *convState) { cs.logger = l }
}
