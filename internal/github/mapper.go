package github

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"gitcohort/internal/ledger"
)

// Normalize converts an API event into a tagged ledger event. Returns an
// error for records that cannot be parsed; callers skip those rather than
// aborting the batch.
func Normalize(dto EventDTO, dir *ledger.ActorDirectory) (ledger.Event, error) {
	if dto.Actor.Login == "" || dto.Repo.Name == "" {
		return ledger.Event{}, fmt.Errorf("event %s: missing actor or repo", dto.ID)
	}

	occurred, err := time.Parse(time.RFC3339, dto.CreatedAt)
	if err != nil {
		return ledger.Event{}, fmt.Errorf("event %s: bad created_at %q: %w", dto.ID, dto.CreatedAt, err)
	}

	org := ""
	if dto.Org != nil {
		org = dto.Org.Login
	}
	if org == "" {
		// Fall back to the repo owner so org scoping works without the
		// optional org block.
		if idx := strings.Index(dto.Repo.Name, "/"); idx > 0 {
			org = dto.Repo.Name[:idx]
		}
	}

	ev := ledger.Event{
		UserID:    dto.Actor.Login,
		Repo:      dto.Repo.Name,
		Org:       org,
		Kind:      ledger.Kind(dto.Type),
		Timestamp: occurred.UnixMicro(),
	}
	if isBotLogin(dto.Actor.Login) {
		ev.ActorIsBot = true
		ev.Qualifies = false
		return ev, nil
	}
	return ledger.Tag(ev, dir), nil
}

// NormalizeAll converts a page of API events, skipping and logging malformed
// records.
func NormalizeAll(dtos []EventDTO, dir *ledger.ActorDirectory) []ledger.Event {
	events := make([]ledger.Event, 0, len(dtos))
	for _, dto := range dtos {
		ev, err := Normalize(dto, dir)
		if err != nil {
			log.Warn().Err(err).Msg("Skipping malformed event")
			continue
		}
		events = append(events, ev)
	}
	return events
}

// isBotLogin catches GitHub's app-account convention in addition to the
// configured bot directory.
func isBotLogin(login string) bool {
	return strings.HasSuffix(login, "[bot]")
}
