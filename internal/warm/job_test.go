package warm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"gitcohort/internal/engine"
	"gitcohort/internal/ledger"
	"gitcohort/internal/reportcache"
)

func seedStore() *ledger.FileStore {
	s := ledger.NewFileStore()
	s.Append("acme/widget", []ledger.Event{
		{UserID: "alice", Repo: "acme/widget", Kind: ledger.KindPush,
			Timestamp: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC).UnixMicro(), Qualifies: true},
	})
	s.Append("acme/gadget", []ledger.Event{
		{UserID: "bob", Repo: "acme/gadget", Kind: ledger.KindIssues,
			Timestamp: time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC).UnixMicro(), Qualifies: true},
	})
	return s
}

func TestRunWarmsEveryScopeAndSize(t *testing.T) {
	store := seedStore()
	cache := reportcache.NewMemory()
	now := func() time.Time { return time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC) }

	job := &Job{
		Engine:       engine.New(store, cache, engine.WithClock(now)),
		Store:        store,
		WindowSizes:  []int{7, 30},
		LookbackDays: 60,
		Parallelism:  2,
		Now:          now,
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	// 3 scopes (combined + 2 repos) x 2 sizes x 2 report kinds.
	if got := cache.Len(); got != 12 {
		t.Errorf("expected 12 cached reports, got %d", got)
	}
}

func TestRunNotifiesDownstreamCache(t *testing.T) {
	var mu sync.Mutex
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path+"?"+r.URL.RawQuery)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	store := seedStore()
	now := func() time.Time { return time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC) }

	job := &Job{
		Engine:       engine.New(store, reportcache.NewMemory(), engine.WithClock(now)),
		Store:        store,
		WindowSizes:  []int{7},
		LookbackDays: 30,
		Notifier:     NewNotifier(srv.URL),
		Now:          now,
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	mu.Lock()
	defer mu.Unlock()
	// 3 scopes x 1 size x 2 kinds.
	if len(paths) != 6 {
		t.Fatalf("expected 6 prewarm requests, got %d: %v", len(paths), paths)
	}
	states, transitions := 0, 0
	for _, p := range paths {
		switch {
		case strings.HasPrefix(p, "/reports/states"):
			states++
		case strings.HasPrefix(p, "/reports/transitions"):
			transitions++
		}
	}
	if states != 3 || transitions != 3 {
		t.Errorf("expected 3 of each kind, got states=%d transitions=%d", states, transitions)
	}
}

func TestRunContinuesPastFailingScope(t *testing.T) {
	store := seedStore()
	cache := reportcache.NewMemory()
	now := func() time.Time { return time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC) }

	job := &Job{
		Engine:       engine.New(store, cache, engine.WithClock(now)),
		Store:        store,
		WindowSizes:  []int{0, 7}, // size 0 fails validation for every scope
		LookbackDays: 30,
		Now:          now,
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	// The invalid size fails but the valid one still lands in the cache.
	if got := cache.Len(); got != 6 {
		t.Errorf("expected 6 cached reports from the surviving size, got %d", got)
	}
}
