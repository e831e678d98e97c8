package engine

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidRange marks a malformed date range or non-positive window size.
// Rejected before any computation; the caller recovers by correcting the
// parameters.
var ErrInvalidRange = errors.New("invalid report range")

// InvalidRangeError carries the rejected parameters.
type InvalidRangeError struct {
	Start      time.Time
	End        time.Time
	WindowDays int
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid report range: start=%s end=%s windowDays=%d",
		e.Start.Format(time.DateOnly), e.End.Format(time.DateOnly), e.WindowDays)
}

func (e *InvalidRangeError) Unwrap() error {
	return ErrInvalidRange
}
