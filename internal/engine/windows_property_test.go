package engine

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestProperty_WindowCoverage validates that for any valid parameters the
// generated windows are contiguous, non-overlapping, chronologically ordered,
// and that their union exactly covers [start, end).
func TestProperty_WindowCoverage(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	base := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	properties.Property("windows tile the range exactly", prop.ForAll(
		func(rangeDays, sizeDays int) bool {
			start := base
			end := base.AddDate(0, 0, rangeDays)

			windows, err := Windows(start, end, sizeDays)
			if err != nil {
				return false
			}
			if len(windows) == 0 {
				return false
			}
			if !windows[0].Start.Equal(start) || !windows[len(windows)-1].End.Equal(end) {
				return false
			}
			for i := 1; i < len(windows); i++ {
				if !windows[i].Start.Equal(windows[i-1].End) {
					return false
				}
				if !windows[i].Start.Before(windows[i].End) {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 730),
		gen.IntRange(1, 120),
	))

	properties.Property("generation is restartable with identical output", prop.ForAll(
		func(rangeDays, sizeDays int) bool {
			start := base
			end := base.AddDate(0, 0, rangeDays)

			first, err1 := Windows(start, end, sizeDays)
			second, err2 := Windows(start, end, sizeDays)
			if err1 != nil || err2 != nil || len(first) != len(second) {
				return false
			}
			for i := range first {
				if first[i] != second[i] {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 730),
		gen.IntRange(1, 120),
	))

	properties.TestingRun(t)
}
