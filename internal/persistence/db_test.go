package persistence

import (
	"path/filepath"
	"testing"

	"hoop-club/internal/game"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "stats.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestSaveAndListMatches tests match persistence and newest-first
// ordering.
func TestSaveAndListMatches(t *testing.T) {
	db := openTestDB(t)

	first := MatchRecord{Seed: 42, LevelID: "courtyard", Ticks: 18000, ScoreLeft: 11, ScoreRight: 7}
	second := MatchRecord{Seed: 43, LevelID: "rooftop", Ticks: 24000, ScoreLeft: 9, ScoreRight: 11}
	if err := db.SaveMatch(first); err != nil {
		t.Fatal(err)
	}
	if err := db.SaveMatch(second); err != nil {
		t.Fatal(err)
	}

	recs, err := db.RecentMatches(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d matches, want 2", len(recs))
	}
	if recs[0].Seed != 43 || recs[1].Seed != 42 {
		t.Errorf("matches not newest first: %d, %d", recs[0].Seed, recs[1].Seed)
	}
	if recs[0].LevelID != "rooftop" || recs[0].ScoreRight != 11 {
		t.Errorf("record = %+v", recs[0])
	}
	if recs[0].FinishedAt == 0 {
		t.Error("finished_at should default to now")
	}

	limited, err := db.RecentMatches(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 1 {
		t.Errorf("limit ignored: got %d", len(limited))
	}
}

// TestInsertAndFilterEvents tests the event sink and type filtering.
func TestInsertAndFilterEvents(t *testing.T) {
	db := openTestDB(t)

	batch := []game.Event{
		game.NewEvent(game.EventTypeShot, 100, "agent-left", game.ShotPayload{AgentID: "agent-left"}),
		game.NewEvent(game.EventTypeScore, 101, "agent-left", game.ScorePayload{AgentID: "agent-left"}),
		game.NewEvent(game.EventTypeShot, 200, "agent-right", game.ShotPayload{AgentID: "agent-right"}),
	}
	for i := range batch {
		batch[i].Sequence = uint64(i + 1)
	}
	db.InsertEvents(batch)

	all, err := db.RecentEvents("", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d events, want 3", len(all))
	}
	if all[0].Tick != 200 {
		t.Errorf("events not newest first: first tick %d", all[0].Tick)
	}

	shots, err := db.RecentEvents("shot", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(shots) != 2 {
		t.Fatalf("got %d shots, want 2", len(shots))
	}
	for _, e := range shots {
		if e.Type != "shot" {
			t.Errorf("filter leaked type %q", e.Type)
		}
	}

	none, err := db.RecentEvents("steal", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(none) != 0 {
		t.Errorf("got %d steals, want 0", len(none))
	}
}

// TestInsertEventsEmptyBatch tests that an empty flush is a no-op.
func TestInsertEventsEmptyBatch(t *testing.T) {
	db := openTestDB(t)
	db.InsertEvents(nil)

	events, err := db.RecentEvents("", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 0 {
		t.Errorf("got %d events", len(events))
	}
}
