package engine

import (
	"time"
)

// Window is a half-open time slice [Start, End) used for cohort
// classification. Windows carry no persisted identity; the sequence is a
// pure function of (start, end, sizeDays).
type Window struct {
	Index int       `json:"index"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Windows generates the ordered, gapless window sequence covering
// [start, end). The final window is clamped to end and may be shorter than
// sizeDays; callers must not assume uniform length on the boundary window.
func Windows(start, end time.Time, sizeDays int) ([]Window, error) {
	if sizeDays <= 0 || !end.After(start) {
		return nil, &InvalidRangeError{Start: start, End: end, WindowDays: sizeDays}
	}

	var windows []Window
	cur := start
	for cur.Before(end) {
		next := cur.AddDate(0, 0, sizeDays)
		if next.After(end) {
			next = end
		}
		windows = append(windows, Window{Index: len(windows), Start: cur, End: next})
		cur = next
	}
	return windows, nil
}
