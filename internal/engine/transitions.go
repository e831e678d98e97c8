package engine

import (
	"sort"
)

// TransitionLabel pairs a user's state in one window with the next, formed
// as "<from>_to_<to>".
type TransitionLabel string

// MakeLabel builds the canonical label for a state pair.
func MakeLabel(from, to State) TransitionLabel {
	return TransitionLabel(string(from) + "_to_" + string(to))
}

// TransitionCount is one row of the per-window-pair transition matrix.
type TransitionCount struct {
	Label TransitionLabel `json:"label"`
	Users int             `json:"users"`
}

// Transitions classifies every user present in either adjacent window's
// state mapping into exactly one transition label, and aggregates identical
// labels into counts. Absence from curr becomes "churned"; absence from prev
// becomes "none".
func Transitions(prev, curr map[string]State) (map[string]TransitionLabel, map[TransitionLabel]int) {
	labels := make(map[string]TransitionLabel)
	counts := make(map[TransitionLabel]int)

	for user, from := range prev {
		to, ok := curr[user]
		if !ok {
			to = StateChurned
		}
		label := MakeLabel(from, to)
		labels[user] = label
		counts[label]++
	}

	for user, to := range curr {
		if _, seen := prev[user]; seen {
			continue
		}
		label := MakeLabel(StateNone, to)
		labels[user] = label
		counts[label]++
	}

	return labels, counts
}

// SortedCounts orders a transition count mapping for rendering: descending
// count, ties broken by lexicographic label.
func SortedCounts(counts map[TransitionLabel]int) []TransitionCount {
	rows := make([]TransitionCount, 0, len(counts))
	for label, users := range counts {
		rows = append(rows, TransitionCount{Label: label, Users: users})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Users != rows[j].Users {
			return rows[i].Users > rows[j].Users
		}
		return rows[i].Label < rows[j].Label
	})
	return rows
}
