package ledger

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func micro(day int, hour int) int64 {
	return time.Date(2025, 1, day, hour, 0, 0, 0, time.UTC).UnixMicro()
}

func qualifying(user, repo string, ts int64) Event {
	return Event{UserID: user, Repo: repo, Kind: KindPush, Timestamp: ts, Qualifies: true}
}

func TestAppendDeduplicatesAndSorts(t *testing.T) {
	s := NewFileStore()

	e1 := qualifying("alice", "acme/widget", micro(2, 10))
	e2 := qualifying("bob", "acme/widget", micro(1, 9))

	s.Append("acme/widget", []Event{e1, e2})
	s.Append("acme/widget", []Event{e1}) // duplicate

	if got := s.Count("acme/widget"); got != 2 {
		t.Fatalf("expected 2 events after dedup, got %d", got)
	}

	acts, err := s.QualifyingEvents(context.Background(), RepoScope("acme/widget"), time.Time{}, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	if len(acts) != 2 || acts[0].UserID != "bob" || acts[1].UserID != "alice" {
		t.Errorf("expected chronological order [bob alice], got %+v", acts)
	}
}

func TestQualifyingEventsScopeAndRange(t *testing.T) {
	s := NewFileStore()
	s.Append("acme/widget", []Event{
		qualifying("alice", "acme/widget", micro(1, 0)),
		qualifying("alice", "acme/widget", micro(10, 0)),
		{UserID: "stargazer", Repo: "acme/widget", Kind: KindWatch, Timestamp: micro(2, 0)}, // not qualifying
	})
	s.Append("acme/gadget", []Event{
		qualifying("bob", "acme/gadget", micro(3, 0)),
	})

	ctx := context.Background()
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC)

	repoActs, err := s.QualifyingEvents(ctx, RepoScope("acme/widget"), start, end)
	if err != nil {
		t.Fatal(err)
	}
	if len(repoActs) != 1 || repoActs[0].UserID != "alice" {
		t.Errorf("repo scope: expected only alice inside the window, got %+v", repoActs)
	}

	combined, err := s.QualifyingEvents(ctx, Combined(), start, end)
	if err != nil {
		t.Fatal(err)
	}
	if len(combined) != 2 {
		t.Errorf("combined scope: expected 2 activities, got %+v", combined)
	}

	// Half-open interval: an event exactly at end is excluded.
	edge, err := s.QualifyingEvents(ctx, Combined(), start, time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	if len(edge) != 1 {
		t.Errorf("expected the day-3 event to fall outside [start, end), got %+v", edge)
	}
}

func TestFirstActivitiesIsEcosystemGlobal(t *testing.T) {
	s := NewFileStore()
	s.Append("acme/widget", []Event{qualifying("alice", "acme/widget", micro(5, 0))})
	s.Append("acme/gadget", []Event{
		qualifying("alice", "acme/gadget", micro(1, 0)), // earlier, different repo
		{UserID: "alice", Repo: "acme/gadget", Kind: KindWatch, Timestamp: micro(1, 0) - 1000}, // passive, ignored
	})

	firsts, err := s.FirstActivities(context.Background(), []string{"alice", "ghost"})
	if err != nil {
		t.Fatal(err)
	}

	want := time.UnixMicro(micro(1, 0))
	if got, ok := firsts["alice"]; !ok || !got.Equal(want) {
		t.Errorf("expected alice's first activity %v across repos, got %v (ok=%v)", want, got, ok)
	}
	if _, ok := firsts["ghost"]; ok {
		t.Errorf("expected no entry for a user with no history")
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()

	s := NewFileStore()
	s.Append("acme/widget", []Event{
		qualifying("alice", "acme/widget", micro(1, 0)),
		qualifying("bob", "acme/widget", micro(2, 0)),
	})
	if err := s.Save(dir, "acme/widget"); err != nil {
		t.Fatal(err)
	}

	// A corrupt line must be skipped, not fatal.
	path := filepath.Join(dir, "acme__widget.jsonl")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString("{not json\n"); err != nil {
		t.Fatal(err)
	}
	f.Close()

	reloaded := NewFileStore()
	if err := reloaded.LoadAll(dir); err != nil {
		t.Fatal(err)
	}
	if got := reloaded.Count("acme/widget"); got != 2 {
		t.Errorf("expected 2 events after reload, got %d", got)
	}

	repos, err := reloaded.TrackedRepos(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(repos) != 1 || repos[0] != "acme/widget" {
		t.Errorf("expected tracked repo acme/widget, got %v", repos)
	}
}

func TestLatestTimestamp(t *testing.T) {
	s := NewFileStore()
	if !s.LatestTimestamp("acme/widget").IsZero() {
		t.Error("expected zero time for empty repo")
	}

	s.Append("acme/widget", []Event{
		qualifying("alice", "acme/widget", micro(3, 0)),
		qualifying("bob", "acme/widget", micro(1, 0)),
	})
	want := time.UnixMicro(micro(3, 0))
	if got := s.LatestTimestamp("acme/widget"); !got.Equal(want) {
		t.Errorf("expected latest %v, got %v", want, got)
	}
}
