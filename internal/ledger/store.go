package ledger

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable wraps failures of the underlying activity source. A scope
// computation that hits it aborts without writing any cache entry and is
// safe to retry.
var ErrUnavailable = errors.New("activity ledger unavailable")

// Store is the query surface the cohort engine needs from the activity
// ledger.
type Store interface {
	// QualifyingEvents returns the qualifying activity for a scope with
	// occurredAt in [start, end), ordered by time then user. A zero start
	// means the beginning of history.
	QualifyingEvents(ctx context.Context, scope Scope, start, end time.Time) ([]Activity, error)

	// FirstActivities returns the first-ever qualifying event time per user,
	// across the whole tracked ecosystem regardless of scope. Users with no
	// qualifying history are absent from the result.
	FirstActivities(ctx context.Context, userIDs []string) (map[string]time.Time, error)

	// TrackedRepos lists every repository the ledger holds events for.
	TrackedRepos(ctx context.Context) ([]string, error)
}
