package analytics

import "errors"

var (
	// ErrInsufficientData is returned when a series is too short for the
	// requested analysis. Callers should surface "not enough data" rather
	// than a zero-confidence result.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrInvalidThreshold is returned for structurally invalid inputs such
	// as a non-positive outlier threshold.
	ErrInvalidThreshold = errors.New("invalid threshold")
)
