package engine

import (
	"sort"
	"time"

	"gitcohort/internal/ledger"
)

// History is the full qualifying activity of a scope up to some end time,
// indexed per user, plus each user's ecosystem-global first qualifying event.
// Classification is a pure function of this snapshot, which keeps it testable
// with synthetic finite histories and deterministic under recomputation.
type History struct {
	byUser map[string][]time.Time // ascending per user
	firsts map[string]time.Time   // ecosystem-global, may predate byUser entries
}

// BuildHistory indexes scope activity and first-seen times. The activity
// slice does not need to be sorted.
func BuildHistory(activity []ledger.Activity, firsts map[string]time.Time) *History {
	h := &History{
		byUser: make(map[string][]time.Time),
		firsts: make(map[string]time.Time, len(firsts)),
	}
	for _, a := range activity {
		h.byUser[a.UserID] = append(h.byUser[a.UserID], a.OccurredAt)
	}
	for user, times := range h.byUser {
		sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })
		h.byUser[user] = times
	}
	for user, at := range firsts {
		h.firsts[user] = at
	}
	return h
}

// Users returns every user with scope activity, sorted.
func (h *History) Users() []string {
	users := make([]string, 0, len(h.byUser))
	for u := range h.byUser {
		users = append(users, u)
	}
	sort.Strings(users)
	return users
}

// ActiveIn reports whether the user has at least one qualifying event in
// [start, end).
func (h *History) ActiveIn(user string, start, end time.Time) bool {
	times := h.byUser[user]
	i := sort.Search(len(times), func(i int) bool { return !times[i].Before(start) })
	return i < len(times) && times[i].Before(end)
}

// FirstSeen returns the user's first-ever qualifying event time across the
// whole tracked ecosystem. Falls back to the earliest scope activity when the
// global lookup has no entry.
func (h *History) FirstSeen(user string) (time.Time, bool) {
	if at, ok := h.firsts[user]; ok {
		return at, true
	}
	if times := h.byUser[user]; len(times) > 0 {
		return times[0], true
	}
	return time.Time{}, false
}
