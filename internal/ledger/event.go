package ledger

import (
	"fmt"
	"time"
)

// Kind is the GitHub event type of an activity record.
type Kind string

const (
	KindIssues            Kind = "IssuesEvent"
	KindIssueComment      Kind = "IssueCommentEvent"
	KindPullRequest       Kind = "PullRequestEvent"
	KindPullRequestReview Kind = "PullRequestReviewEvent"
	KindPush              Kind = "PushEvent"
	KindFork              Kind = "ForkEvent"
	KindCreate            Kind = "CreateEvent"
	KindRelease           Kind = "ReleaseEvent"
	KindCommitComment     Kind = "CommitCommentEvent"

	// Passive kinds never count toward engagement.
	KindWatch  Kind = "WatchEvent"
	KindMember Kind = "MemberEvent"
	KindPublic Kind = "PublicEvent"
)

// Event is a single normalized activity record in the ledger.
// Qualifies is precomputed at ingestion time so readers never re-run the
// eligibility predicate.
type Event struct {
	// UserID is the GitHub login of the actor.
	UserID string `json:"userId"`
	// Repo is the full repository name (owner/name).
	Repo string `json:"repo"`
	// Org is the owning organization login, if any.
	Org string `json:"org,omitempty"`
	// Kind is the GitHub event type.
	Kind Kind `json:"kind"`
	// Timestamp is the physical time the event occurred (Unix microseconds).
	Timestamp int64 `json:"ts"`

	// ActorIsBot marks automation accounts.
	ActorIsBot bool `json:"actorIsBot,omitempty"`
	// ActorIsCore marks members of the maintaining team.
	ActorIsCore bool `json:"actorIsCore,omitempty"`
	// Qualifies caches the eligibility decision for this event.
	Qualifies bool `json:"qualifies"`
}

// OccurredAt returns the event time as a time.Time.
func (e Event) OccurredAt() time.Time {
	return time.UnixMicro(e.Timestamp)
}

// identity computes a unique string identifier for an event to aid deduplication.
func (e Event) identity() string {
	return fmt.Sprintf("%s|%d|%s|%s", e.UserID, e.Timestamp, e.Kind, e.Repo)
}

// Activity is the minimal projection the cohort engine reads: who did
// something, and when.
type Activity struct {
	UserID     string
	OccurredAt time.Time
}
