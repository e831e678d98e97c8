package reportcache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"gitcohort/internal/ledger"
)

func TestKeyAddressesFullParameterTuple(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	base := Key("states", ledger.Combined(), start, end, 7)
	variants := []string{
		Key("transitions", ledger.Combined(), start, end, 7),
		Key("states", ledger.RepoScope("acme/widget"), start, end, 7),
		Key("states", ledger.Combined(), start.AddDate(0, 0, 1), end, 7),
		Key("states", ledger.Combined(), start, end.AddDate(0, 0, 1), 7),
		Key("states", ledger.Combined(), start, end, 14),
	}
	for _, v := range variants {
		if v == base {
			t.Errorf("distinct parameters must yield distinct keys: %q", v)
		}
	}

	if again := Key("states", ledger.Combined(), start, end, 7); again != base {
		t.Errorf("identical parameters must yield identical keys: %q vs %q", base, again)
	}
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if _, ok, err := m.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}

	payload := []byte(`{"entries":[]}`)
	if err := m.Put(ctx, "k", payload); err != nil {
		t.Fatal(err)
	}

	// The cache must hold its own copy.
	payload[0] = 'X'

	got, ok, err := m.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if string(got) != `{"entries":[]}` {
		t.Errorf("cached payload mutated: %s", got)
	}
}

func TestSQLiteCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "reports.db")

	c, err := OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}

	if err := c.Put(ctx, "k", []byte("v1")); err != nil {
		t.Fatal(err)
	}
	// Last-writer-wins upsert.
	if err := c.Put(ctx, "k", []byte("v2")); err != nil {
		t.Fatal(err)
	}

	got, ok, err := c.Get(ctx, "k")
	if err != nil || !ok || string(got) != "v2" {
		t.Fatalf("expected v2, got %q ok=%v err=%v", got, ok, err)
	}
	c.Close()

	// Entries survive a reopen.
	c2, err := OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	defer c2.Close()

	got, ok, err = c2.Get(ctx, "k")
	if err != nil || !ok || string(got) != "v2" {
		t.Fatalf("expected persisted v2 after reopen, got %q ok=%v err=%v", got, ok, err)
	}
}
