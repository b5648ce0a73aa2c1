package source

import "github.com/signadot/gatherconv/format"

type LoadOption func(*loadState)

type loadState struct {
	format format.Format
}

// WithFormat forces the input format instead of detecting it from the
// file name and content.
func WithFormat(f format.Format) LoadOption {
	return func(ls *loadState) { ls.format = f }
}
