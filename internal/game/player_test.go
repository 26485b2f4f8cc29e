package game

import (
	"testing"

	"hoop-club/internal/ai"
	"hoop-club/internal/arena"
)

// TestPlayerAcceleration tests ground acceleration toward the commanded
// axis and deceleration when the stick is released.
func TestPlayerAcceleration(t *testing.T) {
	spec := ai.DefaultMovementSpec()
	dt := 1.0 / 60.0
	p := &Player{Grounded: true}

	p.SetIntent(ai.Intent{MoveAxis: 1})
	p.applyMovement(spec, dt)
	if want := GroundAccel * dt; p.VX != want {
		t.Errorf("first tick vx = %f, want %f", p.VX, want)
	}

	// Enough ticks to saturate at full speed.
	for i := 0; i < 60; i++ {
		p.applyMovement(spec, dt)
	}
	if p.VX != spec.MoveSpeed {
		t.Errorf("saturated vx = %f, want %f", p.VX, spec.MoveSpeed)
	}

	p.SetIntent(ai.Intent{})
	for i := 0; i < 60; i++ {
		p.applyMovement(spec, dt)
	}
	if p.VX != 0 {
		t.Errorf("vx = %f after release, want 0", p.VX)
	}
}

// TestPlayerJumpHold tests hold-fraction scaling and the tap floor.
func TestPlayerJumpHold(t *testing.T) {
	spec := ai.DefaultMovementSpec()
	dt := 1.0 / 60.0

	full := &Player{Grounded: true}
	full.SetIntent(ai.Intent{Jump: true, JumpHold: 1})
	full.applyMovement(spec, dt)
	if full.VY != spec.JumpVelocity {
		t.Errorf("full hold vy = %f, want %f", full.VY, spec.JumpVelocity)
	}
	if full.Grounded {
		t.Error("jumping leaves the ground")
	}

	tap := &Player{Grounded: true}
	tap.SetIntent(ai.Intent{Jump: true, JumpHold: 0.05})
	tap.applyMovement(spec, dt)
	if want := spec.JumpVelocity * MinJumpFactor; tap.VY != want {
		t.Errorf("tap vy = %f, want floor %f", tap.VY, want)
	}

	air := &Player{Grounded: false}
	air.SetIntent(ai.Intent{Jump: true, JumpHold: 1})
	air.applyMovement(spec, dt)
	if air.VY != 0 {
		t.Error("airborne players cannot jump")
	}
}

// TestPlayerGravity tests asymmetric rise/fall gravity and the terminal
// fall speed.
func TestPlayerGravity(t *testing.T) {
	spec := ai.DefaultMovementSpec()
	dt := 1.0 / 60.0

	rising := &Player{VY: 100}
	rising.applyGravity(spec, dt)
	if want := 100 - spec.GravityRise*dt; rising.VY != want {
		t.Errorf("rising vy = %f, want %f", rising.VY, want)
	}

	falling := &Player{VY: -100}
	falling.applyGravity(spec, dt)
	if want := -100 - spec.GravityFall*dt; falling.VY != want {
		t.Errorf("falling vy = %f, want %f", falling.VY, want)
	}

	plummet := &Player{VY: -TerminalFallSpeed}
	plummet.applyGravity(spec, dt)
	if plummet.VY != -TerminalFallSpeed {
		t.Errorf("vy = %f, want capped at %f", plummet.VY, -TerminalFallSpeed)
	}

	grounded := &Player{Grounded: true}
	grounded.applyGravity(spec, dt)
	if grounded.VY != 0 {
		t.Error("gravity must not pull a grounded player")
	}
}

// TestPlayerOneWayPlatform tests landing on a platform top from above
// while passing freely from below.
func TestPlayerOneWayPlatform(t *testing.T) {
	spec := ai.DefaultMovementSpec()
	def, _ := arena.DefaultDatabase().Get("blacktop")
	a := def.Build()
	plat := arena.Platform{
		Bounds: arena.RectFromCenter(0, -300, 200, 20),
	}
	a.Platforms = append(a.Platforms, plat)

	halfH := spec.PlayerHeight / 2
	top := plat.Bounds.Top
	dt := 1.0 / 60.0

	lander := &Player{X: 0, Y: top + halfH + 1, VY: -200}
	lander.integrate(a, spec, dt)
	if !lander.Grounded || lander.Y != top+halfH || lander.VY != 0 {
		t.Errorf("landing failed: grounded=%v y=%f vy=%f", lander.Grounded, lander.Y, lander.VY)
	}

	riser := &Player{X: 0, Y: top - halfH - 1, VY: 400}
	riser.integrate(a, spec, dt)
	if riser.Grounded || riser.VY != 400 {
		t.Errorf("rising through the platform blocked: grounded=%v vy=%f", riser.Grounded, riser.VY)
	}
}

// TestPlayerWallClamp tests the arena side walls.
func TestPlayerWallClamp(t *testing.T) {
	spec := ai.DefaultMovementSpec()
	def, _ := arena.DefaultDatabase().Get("blacktop")
	a := def.Build()

	maxX := a.Width/2 - arena.WallThickness - spec.PlayerWidth/2
	p := &Player{X: maxX - 1, Y: 0, VX: 600}
	p.integrate(a, spec, 1.0/60.0)
	if p.X != maxX || p.VX != 0 {
		t.Errorf("right wall: x=%f vx=%f, want x=%f vx=0", p.X, p.VX, maxX)
	}

	q := &Player{X: -maxX + 1, Y: 0, VX: -600}
	q.integrate(a, spec, 1.0/60.0)
	if q.X != -maxX || q.VX != 0 {
		t.Errorf("left wall: x=%f vx=%f, want x=%f vx=0", q.X, q.VX, -maxX)
	}
}

// TestPlayerFloorNet tests the hard floor stop.
func TestPlayerFloorNet(t *testing.T) {
	spec := ai.DefaultMovementSpec()
	def, _ := arena.DefaultDatabase().Get("blacktop")
	a := def.Build()

	halfH := spec.PlayerHeight / 2
	p := &Player{X: 0, Y: a.FloorY + halfH + 2, VY: -1200}
	p.integrate(a, spec, 1.0/60.0)
	if !p.Grounded || p.Y != a.FloorY+halfH || p.VY != 0 {
		t.Errorf("floor stop failed: grounded=%v y=%f vy=%f", p.Grounded, p.Y, p.VY)
	}
}
