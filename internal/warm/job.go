// Package warm precomputes and caches cohort reports for the standard
// window sizes across every tracked scope, so interactive requests never pay
// full recomputation cost.
package warm

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"gitcohort/internal/engine"
	"gitcohort/internal/ledger"
	"gitcohort/internal/metrics"
)

// Job drives one warm run. Scopes are independent computations keyed by
// their own parameters, so they fan out in parallel without coordination.
type Job struct {
	Engine       *engine.Engine
	Store        ledger.Store
	WindowSizes  []int
	LookbackDays int
	Parallelism  int
	Notifier     *Notifier // optional

	// Now is overridable for tests; defaults to time.Now.
	Now func() time.Time
}

// Run computes both report kinds for every scope and window size. A failure
// aborts only the current scope/window-size combination; the run moves on
// and reports the failure count at the end.
func (j *Job) Run(ctx context.Context) error {
	runID := uuid.NewString()
	started := time.Now()

	now := time.Now
	if j.Now != nil {
		now = j.Now
	}
	parallelism := j.Parallelism
	if parallelism <= 0 {
		parallelism = 4
	}

	// Report ranges end at the last midnight so every warmed window is
	// finalized and safe to cache indefinitely.
	end := now().UTC().Truncate(24 * time.Hour)
	start := end.AddDate(0, 0, -j.LookbackDays)

	repos, err := j.Store.TrackedRepos(ctx)
	if err != nil {
		return fmt.Errorf("list tracked repos: %w", err)
	}

	scopes := make([]ledger.Scope, 0, len(repos)+1)
	scopes = append(scopes, ledger.Combined())
	for _, repo := range repos {
		scopes = append(scopes, ledger.RepoScope(repo))
	}

	log.Info().
		Str("run", runID).
		Int("scopes", len(scopes)).
		Ints("windowSizes", j.WindowSizes).
		Time("start", start).
		Time("end", end).
		Msg("Warm run starting")

	var computed, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)

	for _, scope := range scopes {
		scope := scope
		g.Go(func() error {
			for _, size := range j.WindowSizes {
				if err := j.warmScope(gctx, scope, start, end, size); err != nil {
					failed.Add(1)
					metrics.RecordScopeFailed()
					log.Error().Err(err).
						Str("run", runID).
						Str("scope", scope.Key()).
						Int("window", size).
						Msg("Scope computation failed, moving on")
					continue
				}
				computed.Add(1)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	elapsed := time.Since(started)
	metrics.ObserveRunDuration(elapsed.Seconds())

	log.Info().
		Str("run", runID).
		Int64("computed", computed.Load()).
		Int64("failed", failed.Load()).
		Dur("elapsed", elapsed).
		Msg("Warm run finished")
	return nil
}

func (j *Job) warmScope(ctx context.Context, scope ledger.Scope, start, end time.Time, windowDays int) error {
	if _, err := j.Engine.StatesSummary(ctx, scope, start, end, windowDays); err != nil {
		return fmt.Errorf("states summary: %w", err)
	}
	if _, err := j.Engine.TransitionsReport(ctx, scope, start, end, windowDays); err != nil {
		return fmt.Errorf("transitions: %w", err)
	}

	log.Info().Str("scope", scope.Key()).Int("window", windowDays).Msg("Reports warmed")

	if j.Notifier != nil {
		for _, kind := range []string{"states", "transitions"} {
			if err := j.Notifier.Notify(ctx, kind, scope.Key(), windowDays, start, end); err != nil {
				log.Warn().Err(err).Str("scope", scope.Key()).Msg("Prewarm notification failed")
			}
		}
	}
	return nil
}
