package engine

// State is a user's engagement lifecycle state within one window.
type State string

const (
	// StateNew marks the single window containing the user's first-ever
	// qualifying event across the whole tracked ecosystem.
	StateNew State = "new"
	// StateRetained marks activity in this window and the preceding one.
	StateRetained State = "retained"
	// StateResurrected marks a return after a gap: activity in this window,
	// none in the preceding window, but qualifying history before that.
	StateResurrected State = "resurrected"
	// StateChurned marks disappearance; it is only ever assigned during
	// transition computation, never by per-window classification.
	StateChurned State = "churned"
	// StateNone is the sentinel for absence from a window's state mapping.
	StateNone State = "none"
)

// ClassifyWindow assigns exactly one state to every user active in w.
// prev is the immediately preceding window; for the first window of a range
// the caller passes the virtual slice of the same size ending at w.Start, so
// that lookback beyond the range boundary still distinguishes retained and
// resurrected users. Only history strictly before w.End is consulted.
func ClassifyWindow(w Window, prev Window, hist *History) map[string]State {
	states := make(map[string]State)

	for _, user := range hist.Users() {
		if !hist.ActiveIn(user, w.Start, w.End) {
			continue
		}

		first, ok := hist.FirstSeen(user)
		switch {
		case ok && w.Contains(first):
			states[user] = StateNew
		case hist.ActiveIn(user, prev.Start, prev.End):
			states[user] = StateRetained
		default:
			// Not new and silent in the previous window: the user's history
			// predates prev, so this is a return from a gap.
			states[user] = StateResurrected
		}
	}
	return states
}

// PrecedingWindow returns the window immediately before w in the sequence,
// or the virtual same-size slice ending at w.Start when w is the first.
func PrecedingWindow(windows []Window, idx int, sizeDays int) Window {
	if idx > 0 {
		return windows[idx-1]
	}
	w := windows[idx]
	return Window{Index: -1, Start: w.Start.AddDate(0, 0, -sizeDays), End: w.Start}
}
