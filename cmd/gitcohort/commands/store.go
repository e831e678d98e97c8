package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"gitcohort/internal/ledger"
	"gitcohort/internal/reportcache"
)

// openStore selects the ledger implementation: Postgres when DATABASE_URL is
// configured, the JSONL file ledger otherwise. The returned cleanup is safe
// to call unconditionally.
func openStore(ctx context.Context) (ledger.Store, func(), error) {
	if cfg.DatabaseURL != "" {
		pg, err := ledger.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres ledger: %w", err)
		}
		if err := pg.EnsureSchema(ctx); err != nil {
			pg.Close()
			return nil, nil, fmt.Errorf("ensure ledger schema: %w", err)
		}
		log.Debug().Msg("Using Postgres ledger")
		return pg, func() { pg.Close() }, nil
	}

	fs := ledger.NewFileStore()
	if err := fs.LoadAll(cfg.LedgerDir); err != nil {
		return nil, nil, fmt.Errorf("load ledger files: %w", err)
	}
	log.Debug().Str("dir", cfg.LedgerDir).Msg("Using file ledger")
	return fs, func() {}, nil
}

// openCache opens the persistent SQLite report cache, falling back to a
// process-local cache when no path is configured.
func openCache() (reportcache.Cache, func(), error) {
	if cfg.CachePath == "" {
		return reportcache.NewMemory(), func() {}, nil
	}
	db, err := reportcache.OpenSQLite(cfg.CachePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open report cache: %w", err)
	}
	return db, func() { db.Close() }, nil
}

// parseScope turns the --scope flag into a ledger scope: "combined",
// "org:<login>", or a repository's "owner/name".
func parseScope(raw string) ledger.Scope {
	switch {
	case raw == "" || raw == "combined":
		return ledger.Combined()
	case len(raw) > 4 && raw[:4] == "org:":
		return ledger.OrgScope(raw[4:])
	default:
		return ledger.RepoScope(raw)
	}
}
