package ai

import (
	"math"
	"testing"

	"hoop-club/internal/arena"
)

// TestCapabilityDerivation tests that derived values follow from the
// movement spec.
func TestCapabilityDerivation(t *testing.T) {
	spec := DefaultMovementSpec()
	caps := NewCapabilities(spec)

	wantHeight := spec.JumpVelocity * spec.JumpVelocity / (2 * spec.GravityRise)
	if math.Abs(caps.MaxJumpHeight-wantHeight) > 1e-9 {
		t.Errorf("MaxJumpHeight = %f, want %f", caps.MaxJumpHeight, wantHeight)
	}

	wantPeak := spec.JumpVelocity / spec.GravityRise
	if math.Abs(caps.TimeToPeak-wantPeak) > 1e-9 {
		t.Errorf("TimeToPeak = %f, want %f", caps.TimeToPeak, wantPeak)
	}

	if caps.MaxJumpReach <= 0 {
		t.Errorf("MaxJumpReach should be positive, got %f", caps.MaxJumpReach)
	}
}

// TestTimeToRise tests the ascent time solution and its reachability
// flag.
func TestTimeToRise(t *testing.T) {
	caps := NewCapabilities(DefaultMovementSpec())

	tRise, ok := caps.TimeToRise(100)
	if !ok {
		t.Fatal("100 units should be reachable")
	}
	if tRise <= 0 || tRise >= caps.TimeToPeak {
		t.Errorf("rise time %f should be in (0, %f)", tRise, caps.TimeToPeak)
	}

	// At the apex the rise time equals the time to peak.
	tApex, ok := caps.TimeToRise(caps.MaxJumpHeight)
	if !ok {
		t.Fatal("apex should be reachable")
	}
	if math.Abs(tApex-caps.TimeToPeak) > 1e-6 {
		t.Errorf("apex rise time %f, want %f", tApex, caps.TimeToPeak)
	}

	if _, ok := caps.TimeToRise(caps.MaxJumpHeight + 1); ok {
		t.Error("above the apex should not be reachable")
	}

	if tZero, ok := caps.TimeToRise(0); !ok || tZero != 0 {
		t.Errorf("zero rise should be (0, true), got (%f, %v)", tZero, ok)
	}
}

// TestCanReachHeight tests the collision-box margin on jump
// reachability.
func TestCanReachHeight(t *testing.T) {
	caps := NewCapabilities(DefaultMovementSpec())
	margin := caps.Spec.PlayerHeight * 0.1

	if !caps.CanReachHeight(0, -50) {
		t.Error("dropping down is always reachable")
	}
	if !caps.CanReachHeight(0, caps.MaxJumpHeight-margin-1) {
		t.Error("rise within margin should be reachable")
	}
	if caps.CanReachHeight(0, caps.MaxJumpHeight) {
		t.Error("the bare apex leaves no room for the collision box")
	}
}

// TestJumpHoldFor tests the hold fraction bounds and monotonicity.
func TestJumpHoldFor(t *testing.T) {
	caps := NewCapabilities(DefaultMovementSpec())

	if h := caps.JumpHoldFor(caps.MaxJumpHeight); h != 1 {
		t.Errorf("full-height hold = %f, want 1", h)
	}
	if h := caps.JumpHoldFor(-10); h != 0.2 {
		t.Errorf("downhill hold = %f, want 0.2", h)
	}

	low := caps.JumpHoldFor(30)
	high := caps.JumpHoldFor(150)
	if low >= high {
		t.Errorf("hold should grow with rise: %f >= %f", low, high)
	}
	if low < 0.2 || high > 1 {
		t.Errorf("holds %f, %f out of [0.2, 1]", low, high)
	}
}

// TestHorizontalReach tests reach up and down.
func TestHorizontalReach(t *testing.T) {
	caps := NewCapabilities(DefaultMovementSpec())

	reachLow, ok := caps.HorizontalReachUp(50)
	if !ok {
		t.Fatal("50 should be reachable")
	}
	reachHigh, ok := caps.HorizontalReachUp(180)
	if !ok {
		t.Fatal("180 should be reachable")
	}
	if reachHigh >= reachLow {
		t.Errorf("higher rises leave less air time: %f >= %f", reachHigh, reachLow)
	}

	if _, ok := caps.HorizontalReachUp(caps.MaxJumpHeight + 10); ok {
		t.Error("reach above the apex should fail")
	}

	if d := caps.HorizontalReachDown(0); d != 0 {
		t.Errorf("zero fall drifts zero, got %f", d)
	}
	if caps.HorizontalReachDown(200) <= caps.HorizontalReachDown(50) {
		t.Error("longer falls drift farther")
	}
}

// TestCeilingClearance tests overhead platform detection.
func TestCeilingClearance(t *testing.T) {
	caps := NewCapabilities(DefaultMovementSpec())
	pos := arena.Vec2{X: 0, Y: -418}

	// Ceiling 58 units above the head.
	low := []arena.Platform{{
		Bounds: arena.RectFromCenter(0, -318, 200, 20),
		Role:   arena.RoleGeneric,
	}}
	if caps.HasCeilingClearance(pos, 100, low) {
		t.Error("100-unit jump under a 58-unit ceiling should be blocked")
	}
	if !caps.HasCeilingClearance(pos, 40, low) {
		t.Error("40-unit hop should clear")
	}

	// Same ceiling but off to the side.
	side := []arena.Platform{{
		Bounds: arena.RectFromCenter(400, -318, 200, 20),
		Role:   arena.RoleGeneric,
	}}
	if !caps.HasCeilingClearance(pos, 100, side) {
		t.Error("offset platform should not block")
	}

	x, ok := caps.FindClearJumpX(pos, 100, low)
	if !ok {
		t.Fatal("a clear takeoff should exist beside the ceiling")
	}
	if !caps.HasCeilingClearance(arena.Vec2{X: x, Y: pos.Y}, 100, low) {
		t.Errorf("returned x %f is not actually clear", x)
	}
}
