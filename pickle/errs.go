package pickle

import "errors"

var (
	ErrMalformed   = errors.New("malformed pickle")
	ErrUnsupported = errors.New("unsupported pickle construct")
)
