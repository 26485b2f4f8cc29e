package ai

import (
	"math"

	"hoop-club/internal/arena"
)

// ============================================
// MOVEMENT CAPABILITIES
// ============================================

// MovementSpec is the movement tuning an agent runs on. Asymmetric
// gravity: rise is floatier than fall.
type MovementSpec struct {
	GravityRise  float64 // applied while moving upward
	GravityFall  float64 // applied while falling
	JumpVelocity float64 // initial vertical speed of a full jump
	MoveSpeed    float64 // max horizontal speed
	PlayerWidth  float64
	PlayerHeight float64
}

// DefaultMovementSpec returns the standard player tuning.
func DefaultMovementSpec() MovementSpec {
	return MovementSpec{
		GravityRise:  980,
		GravityFall:  1400,
		JumpVelocity: 650,
		MoveSpeed:    300,
		PlayerWidth:  32,
		PlayerHeight: 64,
	}
}

// Capabilities derives what an agent can physically reach from its
// movement spec. Every consumer of jump math goes through this type;
// the formulas live nowhere else.
type Capabilities struct {
	Spec MovementSpec

	// MaxJumpHeight is the apex of a fully held jump: v^2 / (2*gRise).
	MaxJumpHeight float64
	// TimeToPeak is the time to reach that apex: v / gRise.
	TimeToPeak float64
	// MaxJumpReach is the horizontal distance covered over a full jump
	// that lands back at takeoff height.
	MaxJumpReach float64
}

func NewCapabilities(spec MovementSpec) *Capabilities {
	c := &Capabilities{Spec: spec}
	c.MaxJumpHeight = spec.JumpVelocity * spec.JumpVelocity / (2 * spec.GravityRise)
	c.TimeToPeak = spec.JumpVelocity / spec.GravityRise
	c.MaxJumpReach = spec.MoveSpeed * (c.TimeToPeak + c.TimeToFall(c.MaxJumpHeight))
	return c
}

// TimeToFall returns the time to fall a height h from rest.
func (c *Capabilities) TimeToFall(h float64) float64 {
	if h <= 0 {
		return 0
	}
	return math.Sqrt(2 * h / c.Spec.GravityFall)
}

// TimeToRise returns the time for a full jump to first reach height h,
// and false if the jump cannot reach it.
func (c *Capabilities) TimeToRise(h float64) (float64, bool) {
	if h <= 0 {
		return 0, true
	}
	v := c.Spec.JumpVelocity
	disc := v*v - 2*c.Spec.GravityRise*h
	if disc < 0 {
		return 0, false
	}
	return (v - math.Sqrt(disc)) / c.Spec.GravityRise, true
}

// CanReachHeight reports whether a jump from fromY can land on a
// surface at toY, leaving margin for the collision box.
func (c *Capabilities) CanReachHeight(fromY, toY float64) bool {
	rise := toY - fromY
	if rise <= 0 {
		return true
	}
	return rise <= c.MaxJumpHeight-c.Spec.PlayerHeight*0.1
}

// HorizontalReachUp returns how far an agent can travel horizontally
// while jumping up a rise of h, and false if h is out of reach.
// The window is ascent to h plus the hang past it.
func (c *Capabilities) HorizontalReachUp(h float64) (float64, bool) {
	t, ok := c.TimeToRise(h)
	if !ok {
		return 0, false
	}
	remaining := c.MaxJumpHeight - h
	airTime := t + (c.TimeToPeak - t) + c.TimeToFall(remaining)
	return c.Spec.MoveSpeed * airTime, true
}

// HorizontalReachDown returns how far an agent drifts horizontally
// while falling a height h off an edge.
func (c *Capabilities) HorizontalReachDown(h float64) float64 {
	return c.Spec.MoveSpeed * c.TimeToFall(h)
}

// JumpHoldFor returns the jump-hold duration that peaks near a rise of
// h, normalized into [0,1] of a full hold. Short hops release early.
func (c *Capabilities) JumpHoldFor(h float64) float64 {
	if h >= c.MaxJumpHeight {
		return 1
	}
	if h <= 0 {
		return 0.2
	}
	frac := math.Sqrt(h / c.MaxJumpHeight)
	return clamp(frac, 0.2, 1)
}

// HasCeilingClearance reports whether a jump of rise h from pos is
// free of platforms directly overhead.
func (c *Capabilities) HasCeilingClearance(pos arena.Vec2, h float64, platforms []arena.Platform) bool {
	headY := pos.Y + c.Spec.PlayerHeight/2
	for _, p := range platforms {
		b := p.Bounds
		if b.Bottom <= headY {
			continue
		}
		if pos.X+c.Spec.PlayerWidth/2 < b.Left || pos.X-c.Spec.PlayerWidth/2 > b.Right {
			continue
		}
		if b.Bottom-headY < h {
			return false
		}
	}
	return true
}

// FindClearJumpX searches near pos for the closest x with ceiling
// clearance for a jump of rise h. Returns false when no spot within
// half a jump reach is clear.
func (c *Capabilities) FindClearJumpX(pos arena.Vec2, h float64, platforms []arena.Platform) (float64, bool) {
	if c.HasCeilingClearance(pos, h, platforms) {
		return pos.X, true
	}
	step := c.Spec.PlayerWidth
	for off := step; off <= c.MaxJumpReach/2; off += step {
		for _, x := range []float64{pos.X - off, pos.X + off} {
			if c.HasCeilingClearance(arena.Vec2{X: x, Y: pos.Y}, h, platforms) {
				return x, true
			}
		}
	}
	return 0, false
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
