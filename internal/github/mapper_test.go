package github

import (
	"testing"

	"gitcohort/internal/ledger"
)

func dto(login, repo, typ, createdAt string) EventDTO {
	return EventDTO{
		ID:        "1",
		Type:      typ,
		Actor:     ActorDTO{ID: 7, Login: login},
		Repo:      RepoDTO{ID: 9, Name: repo},
		CreatedAt: createdAt,
	}
}

func TestNormalizeTagsEligibility(t *testing.T) {
	dir := ledger.NewActorDirectory(nil, []string{"maintainer"})

	ev, err := Normalize(dto("alice", "acme/widget", "PushEvent", "2025-03-01T12:00:00Z"), dir)
	if err != nil {
		t.Fatal(err)
	}
	if !ev.Qualifies || ev.Org != "acme" || ev.Kind != ledger.KindPush {
		t.Errorf("unexpected normalized event: %+v", ev)
	}

	ev, err = Normalize(dto("maintainer", "acme/widget", "PushEvent", "2025-03-01T12:00:00Z"), dir)
	if err != nil {
		t.Fatal(err)
	}
	if !ev.ActorIsCore || ev.Qualifies {
		t.Errorf("core actor must not qualify: %+v", ev)
	}

	ev, err = Normalize(dto("alice", "acme/widget", "WatchEvent", "2025-03-01T12:00:00Z"), dir)
	if err != nil {
		t.Fatal(err)
	}
	if ev.Qualifies {
		t.Errorf("passive kind must not qualify: %+v", ev)
	}
}

func TestNormalizeBotSuffix(t *testing.T) {
	ev, err := Normalize(dto("dependabot[bot]", "acme/widget", "PullRequestEvent", "2025-03-01T12:00:00Z"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if !ev.ActorIsBot || ev.Qualifies {
		t.Errorf("app accounts must be tagged as bots: %+v", ev)
	}
}

func TestNormalizeAllSkipsMalformed(t *testing.T) {
	dtos := []EventDTO{
		dto("alice", "acme/widget", "PushEvent", "2025-03-01T12:00:00Z"),
		dto("", "acme/widget", "PushEvent", "2025-03-01T12:00:00Z"),      // missing actor
		dto("bob", "acme/widget", "PushEvent", "not-a-timestamp"),        // corrupt payload
		dto("carol", "acme/widget", "IssuesEvent", "2025-03-02T08:30:00Z"),
	}

	events := NormalizeAll(dtos, nil)
	if len(events) != 2 {
		t.Fatalf("expected 2 normalized events, got %d", len(events))
	}
	if events[0].UserID != "alice" || events[1].UserID != "carol" {
		t.Errorf("unexpected survivors: %+v", events)
	}
}

func TestExplicitOrgWinsOverRepoOwner(t *testing.T) {
	d := dto("alice", "acme/widget", "PushEvent", "2025-03-01T12:00:00Z")
	d.Org = &OrgDTO{ID: 3, Login: "acme-org"}

	ev, err := Normalize(d, nil)
	if err != nil {
		t.Fatal(err)
	}
	if ev.Org != "acme-org" {
		t.Errorf("explicit org must win, got %q", ev.Org)
	}
}
