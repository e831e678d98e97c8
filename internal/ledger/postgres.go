package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// PostgresStore is the production ledger implementation backed by Postgres.
type PostgresStore struct {
	db *sqlx.DB
}

// OpenPostgres connects to the database behind dsn and verifies connectivity
// with a ping.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open ledger db: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping ledger db: %w", errors.Join(ErrUnavailable, err))
	}
	return &PostgresStore{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// EnsureSchema creates the activity_events table if it does not already exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	const tbl = `
	CREATE TABLE IF NOT EXISTS activity_events (
		user_id    varchar(128) NOT NULL,
		repo       varchar(256) NOT NULL,
		org        varchar(128) NOT NULL DEFAULT '',
		kind       varchar(64)  NOT NULL,
		ts         bigint       NOT NULL,
		actor_is_bot  boolean NOT NULL DEFAULT false,
		actor_is_core boolean NOT NULL DEFAULT false,
		qualifies     boolean NOT NULL DEFAULT false,
		PRIMARY KEY (user_id, ts, kind, repo)
	);
	`
	if _, err := s.db.ExecContext(ctx, tbl); err != nil {
		return fmt.Errorf("ensure activity_events: %w", err)
	}

	const idx = `
	CREATE INDEX IF NOT EXISTS idx_activity_events_qualifying
	ON activity_events (repo, ts) WHERE qualifies;
	`
	if _, err := s.db.ExecContext(ctx, idx); err != nil {
		return fmt.Errorf("ensure qualifying index: %w", err)
	}

	const idxUser = `
	CREATE INDEX IF NOT EXISTS idx_activity_events_user
	ON activity_events (user_id, ts) WHERE qualifies;
	`
	if _, err := s.db.ExecContext(ctx, idxUser); err != nil {
		return fmt.Errorf("ensure user index: %w", err)
	}
	return nil
}

type eventRow struct {
	UserID      string `db:"user_id"`
	Repo        string `db:"repo"`
	Org         string `db:"org"`
	Kind        string `db:"kind"`
	Timestamp   int64  `db:"ts"`
	ActorIsBot  bool   `db:"actor_is_bot"`
	ActorIsCore bool   `db:"actor_is_core"`
	Qualifies   bool   `db:"qualifies"`
}

// InsertEvents writes a batch of events, silently skipping duplicates so
// re-ingestion of overlapping pages is idempotent.
func (s *PostgresStore) InsertEvents(ctx context.Context, events []Event) error {
	if len(events) == 0 {
		return nil
	}

	const stmt = `
	INSERT INTO activity_events
		(user_id, repo, org, kind, ts, actor_is_bot, actor_is_core, qualifies)
	VALUES
		(:user_id, :repo, :org, :kind, :ts, :actor_is_bot, :actor_is_core, :qualifies)
	ON CONFLICT (user_id, ts, kind, repo) DO NOTHING;
	`

	rows := make([]eventRow, 0, len(events))
	for _, e := range events {
		rows = append(rows, eventRow{
			UserID:      e.UserID,
			Repo:        e.Repo,
			Org:         e.Org,
			Kind:        string(e.Kind),
			Timestamp:   e.Timestamp,
			ActorIsBot:  e.ActorIsBot,
			ActorIsCore: e.ActorIsCore,
			Qualifies:   e.Qualifies,
		})
	}

	if _, err := s.db.NamedExecContext(ctx, stmt, rows); err != nil {
		return fmt.Errorf("insert events: %w", errors.Join(ErrUnavailable, err))
	}
	return nil
}

// QualifyingEvents returns qualifying activity for the scope in [start, end),
// ordered by time then user.
func (s *PostgresStore) QualifyingEvents(ctx context.Context, scope Scope, start, end time.Time) ([]Activity, error) {
	query := `
	SELECT user_id, ts FROM activity_events
	WHERE qualifies AND ts >= $1 AND ts < $2
	`
	args := []interface{}{startMicros(start), end.UnixMicro()}

	switch {
	case scope.Repo != "":
		query += " AND repo = $3"
		args = append(args, scope.Repo)
	case scope.Org != "":
		query += " AND org = $3"
		args = append(args, scope.Org)
	}
	query += " ORDER BY ts, user_id;"

	var rows []struct {
		UserID    string `db:"user_id"`
		Timestamp int64  `db:"ts"`
	}
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("query qualifying events: %w", errors.Join(ErrUnavailable, err))
	}

	result := make([]Activity, 0, len(rows))
	for _, r := range rows {
		result = append(result, Activity{UserID: r.UserID, OccurredAt: time.UnixMicro(r.Timestamp)})
	}
	return result, nil
}

// FirstActivities returns the first-ever qualifying event time per user
// across the whole ecosystem.
func (s *PostgresStore) FirstActivities(ctx context.Context, userIDs []string) (map[string]time.Time, error) {
	if len(userIDs) == 0 {
		return map[string]time.Time{}, nil
	}

	query, args, err := sqlx.In(`
	SELECT user_id, MIN(ts) AS ts FROM activity_events
	WHERE qualifies AND user_id IN (?)
	GROUP BY user_id;`, userIDs)
	if err != nil {
		return nil, fmt.Errorf("build first-activity query: %w", err)
	}
	query = s.db.Rebind(query)

	var rows []struct {
		UserID    string `db:"user_id"`
		Timestamp int64  `db:"ts"`
	}
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("query first activities: %w", errors.Join(ErrUnavailable, err))
	}

	firsts := make(map[string]time.Time, len(rows))
	for _, r := range rows {
		firsts[r.UserID] = time.UnixMicro(r.Timestamp)
	}
	return firsts, nil
}

// TrackedRepos lists every repository the ledger holds events for.
func (s *PostgresStore) TrackedRepos(ctx context.Context) ([]string, error) {
	var repos []string
	const query = `SELECT DISTINCT repo FROM activity_events ORDER BY repo;`
	if err := s.db.SelectContext(ctx, &repos, query); err != nil {
		return nil, fmt.Errorf("query tracked repos: %w", errors.Join(ErrUnavailable, err))
	}
	return repos, nil
}

func startMicros(start time.Time) int64 {
	if start.IsZero() {
		return 0
	}
	return start.UnixMicro()
}
