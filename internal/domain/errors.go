package domain

import (
	"errors"
	"fmt"
)

var (
	ErrMissingTime  = errors.New("missing_start_or_end_time")
	ErrInvalidTime  = errors.New("invalid_time")
	ErrInvalidRange = errors.New("start_after_end")
)

// MappingError reports a backend record that could not be normalized.
type MappingError struct {
	ID  int64
	Err error
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("map event %d: %v", e.ID, e.Err)
}

func (e *MappingError) Unwrap() error {
	return e.Err
}
