package ir

import "errors"

var ErrCycle = errors.New("circular reference")
