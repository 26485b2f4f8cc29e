package ai

import (
	"math"
	"testing"

	"hoop-club/internal/arena"
)

// TestGeometricQuality tests the positional scoring model against the
// right basket.
func TestGeometricQuality(t *testing.T) {
	basket := arena.Vec2{X: 750, Y: -200}
	floorY := -450.0

	// Elevated sweet spot: above the rim, mid-range in front.
	sweet := GeometricQuality(arena.Vec2{X: 450, Y: -68}, basket, floorY)
	if sweet < QualityExcellent {
		t.Errorf("sweet spot quality = %f, want >= %f", sweet, QualityExcellent)
	}

	// Directly under the rim leaves no arc.
	under := GeometricQuality(arena.Vec2{X: 740, Y: -418}, basket, floorY)
	if under >= sweet {
		t.Errorf("under-rim quality %f should be below sweet spot %f", under, sweet)
	}

	// Behind the backboard is worse than the same spot in front.
	behind := GeometricQuality(arena.Vec2{X: 790, Y: -100}, basket, floorY)
	front := GeometricQuality(arena.Vec2{X: 600, Y: -100}, basket, floorY)
	if behind >= front {
		t.Errorf("behind quality %f should be below in-front quality %f", behind, front)
	}

	// Ground-level heaves lose the low-position penalty.
	high := GeometricQuality(arena.Vec2{X: 450, Y: -100}, basket, floorY)
	low := GeometricQuality(arena.Vec2{X: 450, Y: -418}, basket, floorY)
	if low >= high {
		t.Errorf("floor quality %f should be below elevated quality %f", low, high)
	}

	// Everything stays inside the clamp.
	for _, pos := range []arena.Vec2{
		{X: 800, Y: -449}, {X: -800, Y: 449}, {X: 750, Y: 400}, {X: 760, Y: -210},
	} {
		q := GeometricQuality(pos, basket, floorY)
		if q < 0.1 || q > 1.0 {
			t.Errorf("quality at %+v = %f, out of [0.1, 1.0]", pos, q)
		}
	}
}

// TestScaleMinQuality tests profile minimum scaling against sparse
// levels.
func TestScaleMinQuality(t *testing.T) {
	// A level at or above the reference leaves minimums alone.
	if got := ScaleMinQuality(0.55, ReferenceMaxQuality); got != 0.55 {
		t.Errorf("at-reference scale = %f, want 0.55", got)
	}
	if got := ScaleMinQuality(0.55, 0.95); got != 0.55 {
		t.Errorf("above-reference scale = %f, want 0.55", got)
	}

	// Half the reference halves the minimum.
	got := ScaleMinQuality(0.55, ReferenceMaxQuality/2)
	if math.Abs(got-0.275) > 1e-9 {
		t.Errorf("half-reference scale = %f, want 0.275", got)
	}

	// Degenerate level data leaves the minimum untouched.
	if got := ScaleMinQuality(0.55, 0); got != 0.55 {
		t.Errorf("zero-max scale = %f, want 0.55", got)
	}
}
