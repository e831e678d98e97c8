// Package render turns cohort reports into line-oriented console output.
package render

import (
	"fmt"
	"strings"
	"time"

	"gitcohort/internal/engine"
)

var stateColumns = []engine.State{
	engine.StateNew,
	engine.StateRetained,
	engine.StateResurrected,
}

// StatesTable renders a chronological per-window state census.
func StatesTable(r *engine.StatesReport) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "States summary  scope=%s  window=%dd  %s .. %s\n",
		r.Scope, r.WindowDays, r.Start.Format(time.DateOnly), r.End.Format(time.DateOnly))
	fmt.Fprintf(&sb, "%-12s %12s %12s %12s\n", "date", "new", "retained", "resurrected")

	for _, entry := range r.Entries {
		fmt.Fprintf(&sb, "%-12s", entry.Date.Format(time.DateOnly))
		for _, col := range stateColumns {
			fmt.Fprintf(&sb, " %12d", entry.States[col])
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// TransitionsTable renders one block per window pair, rows ordered by
// descending user count.
func TransitionsTable(r *engine.TransitionsReport) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Transitions  scope=%s  window=%dd  %s .. %s\n",
		r.Scope, r.WindowDays, r.Start.Format(time.DateOnly), r.End.Format(time.DateOnly))

	for _, entry := range r.Entries {
		fmt.Fprintf(&sb, "%s\n", entry.Date.Format(time.DateOnly))
		if len(entry.Order) == 0 {
			sb.WriteString("  (no activity)\n")
			continue
		}
		for _, row := range entry.Order {
			fmt.Fprintf(&sb, "  %-28s %6d\n", row.Label, row.Users)
		}
	}
	return sb.String()
}
