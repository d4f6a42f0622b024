package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned for reads or updates against an unknown
	// entry identifier.
	ErrNotFound = errors.New("entry not found")

	// ErrEditWindowExpired is returned when an update arrives after
	// the entry's edit window has closed. Callers surface it with a
	// distinct status so the UI can say "no longer editable".
	ErrEditWindowExpired = errors.New("edit window expired")
)

// ValidationError reports a required numeric measure missing from an
// insert or update. Nothing is written when it is returned.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("required field %s is missing", e.Field)
}
