package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"gitcohort/internal/github"
)

// AppConfig holds the complete application configuration.
type AppConfig struct {
	GitHub github.Config

	DataPath  string
	LogDir    string
	LedgerDir string
	CachePath string // SQLite report cache; empty keeps the cache in memory

	// DatabaseURL selects the Postgres ledger when set; otherwise the JSONL
	// file ledger under LedgerDir is used.
	DatabaseURL string

	// TrackedRepos is the ecosystem under observation (owner/name entries).
	TrackedRepos []string
	// CoreActors and BotActors seed the per-run actor directory snapshot.
	CoreActors []string
	BotActors  []string

	// WindowSizes are the window lengths (days) the warm job precomputes.
	WindowSizes []int
	// WarmLookbackDays bounds how far back warmed reports reach.
	WarmLookbackDays int
	// PrewarmURL, when set, receives one GET per warmed report so a
	// downstream HTTP cache can pre-fill the public endpoints.
	PrewarmURL string
	// MetricsAddr, when set, serves prometheus metrics during warm runs.
	MetricsAddr string
}

// Load loads the configuration from .env files and environment variables.
func Load() (*AppConfig, error) {
	// 1. Try to load from the executable's directory first
	exePath, err := os.Executable()
	exeDir := ""
	if err == nil {
		exeDir = filepath.Dir(exePath)
		envPath := filepath.Join(exeDir, ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}

	// 2. Fallback to current working directory (useful for development/go run)
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables or binary-relative .env")
	}

	// 3. Resolve data paths
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		if exeDir != "" {
			dataPath = exeDir
		} else {
			dataPath = "."
		}
	}

	logDir := filepath.Join(dataPath, "logs")
	ledgerDir := filepath.Join(dataPath, "ledger")

	if err := os.MkdirAll(logDir, 0755); err != nil {
		log.Warn().Err(err).Str("path", logDir).Msg("Failed to create log directory")
	}
	if err := os.MkdirAll(ledgerDir, 0755); err != nil {
		log.Warn().Err(err).Str("path", ledgerDir).Msg("Failed to create ledger directory")
	}

	delaySecs, _ := strconv.Atoi(getEnv("GITHUB_REQUEST_DELAY_SECONDS", "1"))

	cfg := &AppConfig{
		GitHub: github.Config{
			BaseURL:      getEnv("GITHUB_API_URL", ""),
			Token:        getEnv("GITHUB_TOKEN", ""),
			RequestDelay: time.Duration(delaySecs) * time.Second,
		},
		DataPath:         dataPath,
		LogDir:           logDir,
		LedgerDir:        ledgerDir,
		CachePath:        getEnv("REPORT_CACHE_PATH", filepath.Join(dataPath, "reports.db")),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		TrackedRepos:     splitList(getEnv("TRACKED_REPOS", "")),
		CoreActors:       splitList(getEnv("CORE_ACTORS", "")),
		BotActors:        splitList(getEnv("BOT_ACTORS", "")),
		WindowSizes:      splitInts(getEnv("WINDOW_SIZES", "7,14,30,90")),
		WarmLookbackDays: getEnvInt("WARM_LOOKBACK_DAYS", 365),
		PrewarmURL:       getEnv("PREWARM_URL", ""),
		MetricsAddr:      getEnv("METRICS_ADDR", ""),
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var items []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

func splitInts(raw string) []int {
	var sizes []int
	for _, part := range splitList(raw) {
		if n, err := strconv.Atoi(part); err == nil && n > 0 {
			sizes = append(sizes, n)
		}
	}
	return sizes
}
