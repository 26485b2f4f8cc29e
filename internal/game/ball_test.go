package game

import (
	"testing"

	"hoop-club/internal/arena"
)

func blacktopArena(t *testing.T) *arena.Arena {
	t.Helper()
	def, ok := arena.DefaultDatabase().Get("blacktop")
	if !ok {
		t.Fatal("blacktop level missing")
	}
	return def.Build()
}

// TestBallPossession tests the hand-off helpers.
func TestBallPossession(t *testing.T) {
	p := &Player{ID: "agent-left", HeldTicks: 99}
	var b Ball

	b.GiveTo(p)
	if b.State != BallHeld || b.HolderID != "agent-left" {
		t.Errorf("after GiveTo: state=%s holder=%q", b.State, b.HolderID)
	}
	if !p.HasBall || p.HeldTicks != 0 {
		t.Errorf("holder flags: hasBall=%v heldTicks=%d", p.HasBall, p.HeldTicks)
	}

	b.Drop()
	if b.State != BallFree || b.HolderID != "" {
		t.Errorf("after Drop: state=%s holder=%q", b.State, b.HolderID)
	}
}

// TestBallCarry tests that a held ball tracks its holder.
func TestBallCarry(t *testing.T) {
	p := &Player{ID: "agent-left", X: 120, Y: -418, VX: 50, VY: -10}
	var b Ball
	b.GiveTo(p)
	b.carry(p, 64)

	if b.X != 120 || b.Y != -418+64*0.4 {
		t.Errorf("carried ball at (%f, %f)", b.X, b.Y)
	}
	if b.VX != 50 || b.VY != -10 {
		t.Errorf("carried ball velocity (%f, %f)", b.VX, b.VY)
	}
}

// TestBallComesToRest tests that a dropped ball bounces down to a stop
// on the floor.
func TestBallComesToRest(t *testing.T) {
	a := blacktopArena(t)
	cfg := DefaultBallConfig()
	b := Ball{X: 0, Y: a.FloorY + 200, State: BallFree}

	dt := 1.0 / 60.0
	for i := 0; i < 600; i++ {
		b.step(a, cfg, dt)
	}

	if b.Y != a.FloorY+cfg.Radius {
		t.Errorf("resting y = %f, want %f", b.Y, a.FloorY+cfg.Radius)
	}
	if b.VY != 0 {
		t.Errorf("resting vy = %f, want 0", b.VY)
	}
}

// TestBallFlightEndsOnBounce tests that any bounce turns a shot into a
// loose ball.
func TestBallFlightEndsOnBounce(t *testing.T) {
	a := blacktopArena(t)
	cfg := DefaultBallConfig()
	b := Ball{X: 0, Y: a.FloorY + 30, VY: -200, State: BallInFlight, ShooterID: "agent-left"}

	dt := 1.0 / 60.0
	for i := 0; i < 10 && b.State == BallInFlight; i++ {
		b.step(a, cfg, dt)
	}

	if b.State != BallFree {
		t.Fatalf("ball state = %s, want free", b.State)
	}
	if b.ShooterID != "" {
		t.Errorf("shooter id %q should clear on bounce", b.ShooterID)
	}
}

// TestBallWallBounce tests wall reflection with restitution.
func TestBallWallBounce(t *testing.T) {
	a := blacktopArena(t)
	cfg := DefaultBallConfig()
	maxX := a.Width/2 - arena.WallThickness - cfg.Radius
	b := Ball{X: maxX - 1, Y: 0, VX: 500, State: BallFree}

	b.step(a, cfg, 1.0/60.0)

	if b.X != maxX {
		t.Errorf("x = %f, want clamped to %f", b.X, maxX)
	}
	if b.VX != -500*cfg.Restitution {
		t.Errorf("vx = %f, want %f", b.VX, -500*cfg.Restitution)
	}
}

// TestCrossedScoreZone tests the downward-crossing detector.
func TestCrossedScoreZone(t *testing.T) {
	a := blacktopArena(t)
	basket := a.Basket(arena.SideRight)
	zone := basket.ScoreZone()

	made := Ball{State: BallInFlight, X: basket.Pos.X, VY: -100,
		prevY: zone.Top + 5, Y: zone.Top - 5}
	if !made.crossedScoreZone(basket) {
		t.Error("downward crossing through the zone should score")
	}

	rising := made
	rising.VY = 100
	if rising.crossedScoreZone(basket) {
		t.Error("a rising ball cannot score")
	}

	wide := made
	wide.X = zone.Left - 50
	if wide.crossedScoreZone(basket) {
		t.Error("a ball outside the zone cannot score")
	}

	under := made
	under.prevY = zone.Top - 1
	if under.crossedScoreZone(basket) {
		t.Error("a ball already below the rim cannot score")
	}

	loose := made
	loose.State = BallFree
	if loose.crossedScoreZone(basket) {
		t.Error("only an in-flight ball scores")
	}
}
