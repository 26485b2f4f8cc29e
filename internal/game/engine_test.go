package game

import (
	"testing"

	"hoop-club/internal/ai"
	"hoop-club/internal/arena"
)

func newTestEngine(t *testing.T, seed int64, targetScore int) *Engine {
	t.Helper()
	db := arena.DefaultDatabase()
	def, ok := db.Get("courtyard")
	if !ok {
		t.Fatal("courtyard level missing")
	}
	provider := arena.NewProvider(def.Build())
	profiles, err := ai.NewProfileStore("")
	if err != nil {
		t.Fatal(err)
	}
	cfg := DefaultEngineConfig()
	cfg.Seed = seed
	cfg.TargetScore = targetScore
	return NewEngine(cfg, provider, profiles, nil)
}

// TestEngineDeterminism tests that two engines with the same seed stay
// bit-identical tick for tick.
func TestEngineDeterminism(t *testing.T) {
	e1 := newTestEngine(t, 12345, 0)
	e2 := newTestEngine(t, 12345, 0)

	const ticks = 900
	for i := 0; i < ticks; i++ {
		e1.Step()
		e2.Step()
	}
	if d1, d2 := e1.StateDigest(), e2.StateDigest(); d1 != d2 {
		t.Fatalf("digests diverged after %d ticks: %x vs %x", ticks, d1, d2)
	}

	e3 := newTestEngine(t, 99999, 0)
	for i := 0; i < ticks; i++ {
		e3.Step()
	}
	if e1.StateDigest() == e3.StateDigest() {
		t.Error("different seeds produced identical state digests")
	}
}

// TestEngineTickAndSnapshot tests the published snapshot contents.
func TestEngineTickAndSnapshot(t *testing.T) {
	e := newTestEngine(t, 7, 0)
	e.Step()

	if e.TickCount() != 1 {
		t.Fatalf("tick count = %d, want 1", e.TickCount())
	}

	snap := e.GetSnapshot()
	if snap.TickNumber != 1 {
		t.Errorf("snapshot tick = %d, want 1", snap.TickNumber)
	}
	if snap.LevelID != "courtyard" {
		t.Errorf("snapshot level = %q, want courtyard", snap.LevelID)
	}
	if len(snap.Agents) != 2 {
		t.Fatalf("snapshot has %d agents, want 2", len(snap.Agents))
	}
	if snap.Agents[0].Side != "left" || snap.Agents[1].Side != "right" {
		t.Errorf("agent sides = %s/%s, want left/right", snap.Agents[0].Side, snap.Agents[1].Side)
	}
	if snap.Agents[0].Goal == "" {
		t.Error("agents should have decided a goal by the first tick")
	}
	if snap.Ball.State == "" {
		t.Error("ball snapshot missing state")
	}

	// Snapshots advance their sequence every tick.
	seq := snap.Sequence
	e.Step()
	if next := e.GetSnapshot().Sequence; next <= seq {
		t.Errorf("sequence did not advance: %d then %d", seq, next)
	}
}

// TestEngineSpawn tests initial placement and possession.
func TestEngineSpawn(t *testing.T) {
	e := newTestEngine(t, 7, 0)

	if !e.players[0].HasBall {
		t.Error("the home player inbounds at kickoff")
	}
	if e.ball.State != BallHeld {
		t.Errorf("ball state = %s, want held", e.ball.State)
	}
	if e.players[0].X >= 0 || e.players[1].X <= 0 {
		t.Errorf("spawn xs = %f / %f, want opposite halves", e.players[0].X, e.players[1].X)
	}
	if !e.players[0].Grounded || !e.players[1].Grounded {
		t.Error("players spawn grounded")
	}
}

// TestEngineGraphRebuildOnSwap tests that an arena swap bumps the
// generation and rebuilds the graph on the next tick.
func TestEngineGraphRebuildOnSwap(t *testing.T) {
	e := newTestEngine(t, 7, 0)
	e.Step()

	g := e.NavGraph()
	if g == nil || g.Generation != 1 {
		t.Fatalf("graph generation = %v, want 1", g)
	}
	if got := e.Stats()["graph_rebuilds"]; got != 1 {
		t.Errorf("rebuilds = %d, want 1", got)
	}

	db := arena.DefaultDatabase()
	def, _ := db.Get("blacktop")
	e.SwapArena(def.Build())
	e.Step()

	g = e.NavGraph()
	if g.Generation != 2 {
		t.Errorf("graph generation after swap = %d, want 2", g.Generation)
	}
	if got := e.Stats()["graph_rebuilds"]; got != 2 {
		t.Errorf("rebuilds after swap = %d, want 2", got)
	}
	if e.GetSnapshot().LevelID != "blacktop" {
		t.Errorf("snapshot level = %q, want blacktop", e.GetSnapshot().LevelID)
	}
}

// TestEngineScoringEndsMatch tests score attribution and the target
// score cutoff.
func TestEngineScoringEndsMatch(t *testing.T) {
	e := newTestEngine(t, 7, 1)
	a, _ := e.provider.Current()
	basket := a.Basket(arena.SideRight)
	zone := basket.ScoreZone()

	// Drop the ball down through the right score zone.
	e.ball.State = BallInFlight
	e.ball.X = basket.Pos.X
	e.ball.prevY = zone.Top + 10
	e.ball.Y = zone.Top - 5
	e.ball.VY = -100

	e.resolveScoring(a)

	left, right := e.Score()
	if left != 1 || right != 0 {
		t.Fatalf("score = %d-%d, want 1-0 for the left side", left, right)
	}
	if !e.MatchOver() {
		t.Error("reaching the target score ends the match")
	}

	// A finished match no longer advances.
	before := e.TickCount()
	e.Step()
	if e.TickCount() != before {
		t.Error("ticks must not advance after the match ends")
	}
}

// TestEngineInboundAfterScore tests that play resumes with the
// conceding side when the target is not yet reached.
func TestEngineInboundAfterScore(t *testing.T) {
	e := newTestEngine(t, 7, 5)
	a, _ := e.provider.Current()
	basket := a.Basket(arena.SideLeft)
	zone := basket.ScoreZone()

	e.ball.State = BallInFlight
	e.ball.X = basket.Pos.X
	e.ball.prevY = zone.Top + 10
	e.ball.Y = zone.Top - 5
	e.ball.VY = -100

	e.resolveScoring(a)

	left, right := e.Score()
	if left != 0 || right != 1 {
		t.Fatalf("score = %d-%d, want 0-1 for the right side", left, right)
	}
	if e.MatchOver() {
		t.Error("the match continues below the target score")
	}
	// The side that was scored on inbounds.
	if !e.players[arena.SideLeft].HasBall {
		t.Error("the conceding left side should inbound")
	}
}

// TestEngineSetProfile tests that profile assignment shows up in the
// next snapshot.
func TestEngineSetProfile(t *testing.T) {
	e := newTestEngine(t, 7, 0)
	e.SetProfile(arena.SideRight, "rusher")
	e.Step()

	snap := e.GetSnapshot()
	if snap.Agents[1].Profile != "rusher" {
		t.Errorf("profile = %q, want rusher", snap.Agents[1].Profile)
	}
}
