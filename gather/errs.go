package gather

import (
	"errors"
	"fmt"
)

var (
	ErrFieldMissing = errors.New("field missing")
	ErrOutputWrite  = errors.New("output write error")
	ErrSelect       = errors.New("select error")
	ErrBadMapping   = errors.New("bad server mapping")
)

// FieldMissingError reports a server record lacking a required field.
type FieldMissingError struct {
	Key   string
	Field string
}

func (e *FieldMissingError) Error() string {
	return fmt.Sprintf("%s: server %q has no %s", ErrFieldMissing, e.Key, e.Field)
}

func (e *FieldMissingError) Unwrap() error {
	return ErrFieldMissing
}
