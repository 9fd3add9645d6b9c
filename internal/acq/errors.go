package acq

import "fmt"

// The decoder's failures are all fatal input-validation failures: a
// geometry that disagrees with the file means any output would be silently
// wrong, so nothing is retried, truncated, or best-effort decoded.

// MissingFieldError reports a required metadata parameter that is absent.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("required parameter %q not found in metadata", e.Field)
}

// MalformedFieldError reports a parameter that is present but does not have
// the expected form (integer, integer sequence, Yes/No sequence).
type MalformedFieldError struct {
	Field  string
	Reason string
}

func (e *MalformedFieldError) Error() string {
	return fmt.Sprintf("parameter %q is malformed: %s", e.Field, e.Reason)
}

// UnsupportedWordSizeError reports a sample encoding the decoder does not
// implement. The value was read fine; it is rejected explicitly rather than
// coerced to a default.
type UnsupportedWordSizeError struct {
	WordSize string
}

func (e *UnsupportedWordSizeError) Error() string {
	return fmt.Sprintf("unsupported acquisition word size %q (only _32_BIT is supported)", e.WordSize)
}

// SizeMismatchError reports input whose length disagrees with the derived
// geometry. When Multiple is non-zero the failure is a divisibility check
// rather than an exact-length check.
type SizeMismatchError struct {
	Expected int
	Actual   int
	Multiple int
	Unit     string
}

func (e *SizeMismatchError) Error() string {
	if e.Multiple != 0 {
		return fmt.Sprintf("size mismatch: %d %s is not a multiple of %d", e.Actual, e.Unit, e.Multiple)
	}
	return fmt.Sprintf("size mismatch: expected %d %s, got %d", e.Expected, e.Unit, e.Actual)
}
