package game

import (
	"math"

	"hoop-club/internal/ai"
	"hoop-club/internal/arena"
)

// Acceleration tuning. Ground control is crisp, air control mushier.
const (
	GroundAccel = 2400.0
	GroundDecel = 1800.0
	AirAccel    = 1500.0
	AirDecel    = 900.0

	TerminalFallSpeed = 1200.0

	// MinJumpFactor is the weakest jump a tap produces, as a fraction
	// of full jump velocity.
	MinJumpFactor = 0.2
)

// Player is one agent in the match. Controller is nil for externally
// driven players; they receive intents through SetIntent.
type Player struct {
	ID      string
	Name    string
	Side    arena.Side // the basket this player defends
	Profile string

	X, Y     float64
	VX, VY   float64
	Grounded bool

	HasBall   bool
	HeldTicks int

	Controller *ai.Controller
	intent     ai.Intent

	// stealCooldown gates contest attempts so a steal isn't re-rolled
	// every tick at melee range.
	stealCooldown int
}

// TargetSide returns the side whose basket this player scores on.
func (p *Player) TargetSide() arena.Side {
	return p.Side.Opposite()
}

// Pos returns the player's center.
func (p *Player) Pos() arena.Vec2 {
	return arena.Vec2{X: p.X, Y: p.Y}
}

// SetIntent installs this tick's control input. For controller-driven
// players the engine calls this with the controller's output; for
// external players the API layer does.
func (p *Player) SetIntent(in ai.Intent) {
	p.intent = in
}

// Intent returns the input applied this tick.
func (p *Player) Intent() ai.Intent {
	return p.intent
}

// applyMovement integrates one tick of horizontal control and jumping.
func (p *Player) applyMovement(spec ai.MovementSpec, dt float64) {
	targetVX := clampF(p.intent.MoveAxis, -1, 1) * spec.MoveSpeed

	accel, decel := AirAccel, AirDecel
	if p.Grounded {
		accel, decel = GroundAccel, GroundDecel
	}

	if p.intent.MoveAxis != 0 {
		p.VX = approach(p.VX, targetVX, accel*dt)
	} else {
		p.VX = approach(p.VX, 0, decel*dt)
	}

	if p.intent.Jump && p.Grounded {
		// Jump height scales with the hold fraction: a full hold
		// launches at full velocity, a tap at MinJumpFactor of it.
		factor := clampF(p.intent.JumpHold, MinJumpFactor, 1)
		p.VY = spec.JumpVelocity * factor
		p.Grounded = false
	}
}

// applyGravity integrates vertical motion with asymmetric gravity.
func (p *Player) applyGravity(spec ai.MovementSpec, dt float64) {
	if p.Grounded {
		return
	}
	g := spec.GravityFall
	if p.VY > 0 {
		g = spec.GravityRise
	}
	p.VY -= g * dt
	if p.VY < -TerminalFallSpeed {
		p.VY = -TerminalFallSpeed
	}
}

// integrate moves the player and resolves collisions against the
// arena. Platforms are one-way: only a falling player lands on them.
func (p *Player) integrate(a *arena.Arena, spec ai.MovementSpec, dt float64) {
	halfW := spec.PlayerWidth / 2
	halfH := spec.PlayerHeight / 2
	prevFeet := p.Y - halfH

	p.X += p.VX * dt
	p.Y += p.VY * dt

	// Walls.
	minX := -a.Width/2 + arena.WallThickness + halfW
	maxX := a.Width/2 - arena.WallThickness - halfW
	if p.X < minX {
		p.X = minX
		p.VX = 0
	}
	if p.X > maxX {
		p.X = maxX
		p.VX = 0
	}

	// One-way platform landing.
	p.Grounded = false
	feet := p.Y - halfH
	if p.VY <= 0 {
		for _, plat := range a.Platforms {
			top := plat.Bounds.Top
			if prevFeet >= top-1 && feet <= top {
				if p.X+halfW > plat.Bounds.Left && p.X-halfW < plat.Bounds.Right {
					p.Y = top + halfH
					p.VY = 0
					p.Grounded = true
					break
				}
			}
		}
	}

	// Hard floor safety net.
	if p.Y-halfH < a.FloorY {
		p.Y = a.FloorY + halfH
		p.VY = 0
		p.Grounded = true
	}
}

func approach(v, target, step float64) float64 {
	if v < target {
		return math.Min(v+step, target)
	}
	return math.Max(v-step, target)
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
