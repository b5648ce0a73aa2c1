package source

import "errors"

var (
	ErrInputNotFound = errors.New("input not found")
	ErrDeserialize   = errors.New("deserialization error")
)
