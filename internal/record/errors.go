package record

import "errors"

// SkipError marks a record that is deliberately left unenriched, as
// opposed to one that failed. Callers log the reason and move on.
type SkipError struct {
	Reason string
}

func (e *SkipError) Error() string { return e.Reason }

// IsSkip reports whether err marks a deliberate skip.
func IsSkip(err error) bool {
	var skip *SkipError
	return errors.As(err, &skip)
}
