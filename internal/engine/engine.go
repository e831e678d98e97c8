// Package engine implements the cohort state-transition engine: windowed
// lifecycle classification of external contributors and growth-accounting
// transition reports, per repository and combined across the tracked
// ecosystem.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"gitcohort/internal/ledger"
	"gitcohort/internal/metrics"
	"gitcohort/internal/reportcache"
)

// StatesEntry is one window's state census.
type StatesEntry struct {
	Date   time.Time     `json:"date"` // window start
	States map[State]int `json:"states"`
}

// StatesReport is the chronological per-window state summary for one scope.
type StatesReport struct {
	Scope      string        `json:"scope"`
	Start      time.Time     `json:"start"`
	End        time.Time     `json:"end"`
	WindowDays int           `json:"windowDays"`
	Entries    []StatesEntry `json:"entries"`
}

// TransitionsEntry is the transition matrix row for one adjacent window pair.
type TransitionsEntry struct {
	Date        time.Time               `json:"date"` // pair boundary (end of the earlier window)
	Transitions map[TransitionLabel]int `json:"transitions"`
	Order       []TransitionCount       `json:"order"`
}

// TransitionsReport holds one entry per adjacent window pair, chronological.
type TransitionsReport struct {
	Scope      string             `json:"scope"`
	Start      time.Time          `json:"start"`
	End        time.Time          `json:"end"`
	WindowDays int                `json:"windowDays"`
	Entries    []TransitionsEntry `json:"entries"`
}

// Engine computes cohort reports from a ledger.Store and memoizes finalized
// results in a reportcache.Cache. A single computation is single-threaded and
// read-only against the ledger; distinct scopes or ranges may run in
// parallel without coordination.
type Engine struct {
	store ledger.Store
	cache reportcache.Cache
	now   func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the wall clock used to decide whether a range is
// finalized. Tests pin it for determinism.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates an Engine over the given ledger and report cache. A nil cache
// disables memoization.
func New(store ledger.Store, cache reportcache.Cache, opts ...Option) *Engine {
	e := &Engine{store: store, cache: cache, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// StatesSummary returns one entry per window in [start, end): how many users
// were new, retained, or resurrected in that window under the given scope.
func (e *Engine) StatesSummary(ctx context.Context, scope ledger.Scope, start, end time.Time, windowDays int) (*StatesReport, error) {
	key := reportcache.Key("states", scope, start, end, windowDays)

	var cached StatesReport
	hit, err := e.fromCache(ctx, key, end, &cached)
	if err != nil {
		return nil, err
	}
	if hit {
		return &cached, nil
	}

	windows, states, err := e.windowStates(ctx, scope, start, end, windowDays)
	if err != nil {
		return nil, err
	}

	report := &StatesReport{
		Scope:      scope.Key(),
		Start:      start,
		End:        end,
		WindowDays: windowDays,
		Entries:    make([]StatesEntry, 0, len(windows)),
	}
	for i, w := range windows {
		census := make(map[State]int)
		for _, state := range states[i] {
			census[state]++
		}
		report.Entries = append(report.Entries, StatesEntry{Date: w.Start, States: census})
	}

	e.toCache(ctx, key, end, report)
	return report, nil
}

// TransitionsReport returns one entry per adjacent window pair in
// [start, end): the aggregated transition counts between the two windows'
// state mappings. Length is always one less than the window count.
func (e *Engine) TransitionsReport(ctx context.Context, scope ledger.Scope, start, end time.Time, windowDays int) (*TransitionsReport, error) {
	key := reportcache.Key("transitions", scope, start, end, windowDays)

	var cached TransitionsReport
	hit, err := e.fromCache(ctx, key, end, &cached)
	if err != nil {
		return nil, err
	}
	if hit {
		return &cached, nil
	}

	windows, states, err := e.windowStates(ctx, scope, start, end, windowDays)
	if err != nil {
		return nil, err
	}

	report := &TransitionsReport{
		Scope:      scope.Key(),
		Start:      start,
		End:        end,
		WindowDays: windowDays,
		Entries:    make([]TransitionsEntry, 0, max(len(windows)-1, 0)),
	}
	for i := 0; i+1 < len(windows); i++ {
		_, counts := Transitions(states[i], states[i+1])
		report.Entries = append(report.Entries, TransitionsEntry{
			Date:        windows[i].End,
			Transitions: counts,
			Order:       SortedCounts(counts),
		})
	}

	e.toCache(ctx, key, end, report)
	return report, nil
}

// windowStates runs the full pipeline: generate windows, bulk-read the
// scope's qualifying history up to end, and classify every window.
func (e *Engine) windowStates(ctx context.Context, scope ledger.Scope, start, end time.Time, windowDays int) ([]Window, []map[string]State, error) {
	windows, err := Windows(start, end, windowDays)
	if err != nil {
		return nil, nil, err
	}

	// Single bulk read; classification needs lookback beyond start to tell
	// retained and resurrected apart on the first window.
	activity, err := e.store.QualifyingEvents(ctx, scope, time.Time{}, end)
	if err != nil {
		return nil, nil, fmt.Errorf("read scope activity: %w", err)
	}
	metrics.RecordEventsRead(len(activity))

	seen := make(map[string]bool)
	var users []string
	for _, a := range activity {
		if !seen[a.UserID] {
			seen[a.UserID] = true
			users = append(users, a.UserID)
		}
	}

	firsts, err := e.store.FirstActivities(ctx, users)
	if err != nil {
		return nil, nil, fmt.Errorf("read first activities: %w", err)
	}

	hist := BuildHistory(activity, firsts)

	states := make([]map[string]State, len(windows))
	for i, w := range windows {
		states[i] = ClassifyWindow(w, PrecedingWindow(windows, i, windowDays), hist)
	}
	metrics.RecordWindowsComputed(len(windows))

	return windows, states, nil
}

// fromCache attempts a cache read. Only finalized ranges are served from the
// cache; a range whose end is still in the future keeps accumulating activity
// and is always recomputed.
func (e *Engine) fromCache(ctx context.Context, key string, end time.Time, out interface{}) (bool, error) {
	if e.cache == nil || !e.finalized(end) {
		return false, nil
	}

	payload, ok, err := e.cache.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Report cache read failed, recomputing")
		metrics.RecordCacheMiss()
		return false, nil
	}
	if !ok {
		metrics.RecordCacheMiss()
		return false, nil
	}

	if err := json.Unmarshal(payload, out); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Discarding corrupt cached report")
		metrics.RecordCacheMiss()
		return false, nil
	}
	metrics.RecordCacheHit()
	return true, nil
}

// toCache stores a finalized report. Cache write failures are logged, never
// surfaced: the computed report is still valid for the caller.
func (e *Engine) toCache(ctx context.Context, key string, end time.Time, report interface{}) {
	if e.cache == nil || !e.finalized(end) {
		return
	}

	payload, err := json.Marshal(report)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to encode report for cache")
		return
	}
	if err := e.cache.Put(ctx, key, payload); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Report cache write failed")
	}
}

func (e *Engine) finalized(end time.Time) bool {
	return end.Before(e.now())
}
