package ledger

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// FileStore provides thread-safe, chronological storage for activity events,
// partitioned by repository and persisted as one JSONL file per repository.
// It is the default ledger implementation for offline and development use.
type FileStore struct {
	mu   sync.RWMutex
	logs map[string][]Event // partitioned by repo (owner/name)
}

// NewFileStore creates a new empty FileStore.
func NewFileStore() *FileStore {
	return &FileStore{
		logs: make(map[string][]Event),
	}
}

// Append adds new events to the log for a repository, ensuring chronological
// order and deduplication.
func (s *FileStore) Append(repo string, events []Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := s.logs[repo]

	existing := make(map[string]bool, len(stored))
	for _, e := range stored {
		existing[e.identity()] = true
	}

	newCount := 0
	for _, e := range events {
		if !existing[e.identity()] {
			existing[e.identity()] = true
			stored = append(stored, e)
			newCount++
		}
	}

	if newCount == 0 {
		return
	}

	// Sort by timestamp, then kind, then user for deterministic ordering.
	sort.Slice(stored, func(i, j int) bool {
		if stored[i].Timestamp != stored[j].Timestamp {
			return stored[i].Timestamp < stored[j].Timestamp
		}
		if stored[i].Kind != stored[j].Kind {
			return stored[i].Kind < stored[j].Kind
		}
		return stored[i].UserID < stored[j].UserID
	})

	s.logs[repo] = stored
}

// Load reads events from a JSONL cache file for the given repository.
// Unparsable lines are skipped and logged, never fatal to the whole load.
func (s *FileStore) Load(dataDir string, repo string) error {
	path := filepath.Join(dataDir, repoFilename(repo))
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // No data yet, not an error
		}
		return fmt.Errorf("failed to open ledger file: %w", err)
	}
	defer file.Close()

	var events []Event
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var e Event
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			log.Warn().Err(err).Str("repo", repo).Msg("Skipping invalid JSON line in ledger file")
			continue
		}
		events = append(events, e)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading ledger file: %w", err)
	}

	log.Info().Str("repo", repo).Int("count", len(events)).Msg("Loaded events from ledger file")
	s.Append(repo, events)
	return nil
}

// LoadAll loads every repository ledger file found in dataDir.
func (s *FileStore) LoadAll(dataDir string) error {
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read ledger directory: %w", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".jsonl") {
			continue
		}
		if err := s.Load(dataDir, repoFromFilename(name)); err != nil {
			return err
		}
	}
	return nil
}

// Save persists events for the given repository to a JSONL file. The write
// goes to a temp file first and is renamed into place, so readers never see
// a partially written ledger.
func (s *FileStore) Save(dataDir string, repo string) error {
	s.mu.RLock()
	stored, ok := s.logs[repo]
	s.mu.RUnlock()

	if !ok || len(stored) == 0 {
		return nil
	}

	path := filepath.Join(dataDir, repoFilename(repo))
	tmpPath := path + ".tmp"

	file, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create temp ledger file: %w", err)
	}

	writer := bufio.NewWriter(file)
	encoder := json.NewEncoder(writer)

	for _, e := range stored {
		if err := encoder.Encode(e); err != nil {
			file.Close()
			os.Remove(tmpPath)
			return fmt.Errorf("failed to encode event: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to flush writer: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close file: %w", err)
	}

	// Atomic rename
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename ledger file: %w", err)
	}

	log.Info().Str("repo", repo).Int("count", len(stored)).Msg("Ledger events saved")
	return nil
}

// LatestTimestamp returns the time of the most recent event for a repository.
func (s *FileStore) LatestTimestamp(repo string) time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.logs[repo]
	if !ok || len(stored) == 0 {
		return time.Time{}
	}

	// Events are sorted, so the last one is the latest
	return time.UnixMicro(stored[len(stored)-1].Timestamp)
}

// Count returns the number of events stored for a repository.
func (s *FileStore) Count(repo string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.logs[repo])
}

// QualifyingEvents returns qualifying activity for the scope in [start, end),
// ordered by time then user.
func (s *FileStore) QualifyingEvents(ctx context.Context, scope Scope, start, end time.Time) ([]Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	startTs := start.UnixMicro()
	endTs := end.UnixMicro()

	var result []Activity
	for _, stored := range s.logs {
		for _, e := range stored {
			if !e.Qualifies || !scope.Matches(e) {
				continue
			}
			if !start.IsZero() && e.Timestamp < startTs {
				continue
			}
			if e.Timestamp >= endTs {
				continue
			}
			result = append(result, Activity{UserID: e.UserID, OccurredAt: e.OccurredAt()})
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].OccurredAt.Equal(result[j].OccurredAt) {
			return result[i].OccurredAt.Before(result[j].OccurredAt)
		}
		return result[i].UserID < result[j].UserID
	})
	return result, nil
}

// FirstActivities returns the first-ever qualifying event time per user
// across every tracked repository.
func (s *FileStore) FirstActivities(ctx context.Context, userIDs []string) (map[string]time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[string]bool, len(userIDs))
	for _, u := range userIDs {
		wanted[u] = true
	}

	firsts := make(map[string]time.Time)
	for _, stored := range s.logs {
		for _, e := range stored {
			if !e.Qualifies || !wanted[e.UserID] {
				continue
			}
			at := e.OccurredAt()
			if cur, ok := firsts[e.UserID]; !ok || at.Before(cur) {
				firsts[e.UserID] = at
			}
		}
	}
	return firsts, nil
}

// TrackedRepos lists every repository the store holds events for.
func (s *FileStore) TrackedRepos(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	repos := make([]string, 0, len(s.logs))
	for repo := range s.logs {
		repos = append(repos, repo)
	}
	sort.Strings(repos)
	return repos, nil
}

// repoFilename maps owner/name to a filesystem-safe JSONL filename.
func repoFilename(repo string) string {
	return strings.ReplaceAll(repo, "/", "__") + ".jsonl"
}

func repoFromFilename(name string) string {
	return strings.ReplaceAll(strings.TrimSuffix(name, ".jsonl"), "__", "/")
}
