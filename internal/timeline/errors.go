package timeline

import (
	"errors"
	"fmt"
)

var (
	ErrOutOfRange      = errors.New("time out of range")
	ErrSegmentNotFound = errors.New("segment not found")
	ErrNoDuration      = errors.New("timeline has no duration")
)

// Invariant identifies which timeline rule a rejected segment set violated.
type Invariant string

const (
	InvariantCoverage Invariant = "coverage"
	InvariantOverlap  Invariant = "non-overlap"
	InvariantOrdering Invariant = "ordering"
	InvariantBounds   Invariant = "bounds"
	InvariantSchema   Invariant = "schema"
)

// ValidationError reports a rejected segment set. The previous valid timeline
// remains authoritative; nothing is partially applied.
type ValidationError struct {
	Invariant Invariant
	Detail    string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid segments: %s violated: %s", e.Invariant, e.Detail)
}

func invalid(inv Invariant, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Invariant: inv, Detail: fmt.Sprintf(format, args...)}
}
