package game

import (
	"hoop-club/internal/arena"
)

// BallState is where the ball is in its lifecycle.
type BallState int

const (
	BallFree BallState = iota
	BallHeld
	BallInFlight
)

func (s BallState) String() string {
	switch s {
	case BallHeld:
		return "held"
	case BallInFlight:
		return "in_flight"
	default:
		return "free"
	}
}

// BallConfig tunes ball physics and shooting.
type BallConfig struct {
	Radius       float64
	Gravity      float64
	Restitution  float64 // bounce energy kept
	RollFriction float64 // horizontal decay per second on ground
	PickupRadius float64

	// Shooting: flight time grows with distance, noise with bad
	// position and poor charge.
	BaseFlightTime  float64
	FlightTimePer   float64 // seconds per world unit of distance
	MaxAngleNoise   float64 // radians of scatter at worst accuracy
	RestSpeed       float64 // below this the ball stops bouncing
}

func DefaultBallConfig() BallConfig {
	return BallConfig{
		Radius:         14,
		Gravity:        800,
		Restitution:    0.7,
		RollFriction:   2.0,
		PickupRadius:   50,
		BaseFlightTime: 0.6,
		FlightTimePer:  1.0 / 500.0,
		MaxAngleNoise:  0.22,
		RestSpeed:      40,
	}
}

// Ball is the single game ball.
type Ball struct {
	X, Y     float64
	VX, VY   float64
	State    BallState
	HolderID string

	// ShooterID is who released the current flight, for score credit.
	ShooterID string

	// prevY supports the downward-crossing test for scoring.
	prevY float64
}

// Pos returns the ball center.
func (b *Ball) Pos() arena.Vec2 {
	return arena.Vec2{X: b.X, Y: b.Y}
}

// GiveTo puts the ball in a player's hands.
func (b *Ball) GiveTo(p *Player) {
	b.State = BallHeld
	b.HolderID = p.ID
	b.ShooterID = ""
	b.VX, b.VY = 0, 0
	p.HasBall = true
	p.HeldTicks = 0
}

// Drop releases the ball in place, free.
func (b *Ball) Drop() {
	b.State = BallFree
	b.HolderID = ""
}

// carry keeps a held ball glued to its holder.
func (b *Ball) carry(holder *Player, playerHeight float64) {
	b.X = holder.X
	b.Y = holder.Y + playerHeight*0.4
	b.VX, b.VY = holder.VX, holder.VY
}

// step integrates one tick of free or in-flight ball physics.
func (b *Ball) step(a *arena.Arena, cfg BallConfig, dt float64) {
	if b.State == BallHeld {
		return
	}

	b.prevY = b.Y
	b.VY -= cfg.Gravity * dt
	b.X += b.VX * dt
	b.Y += b.VY * dt

	// Walls.
	minX := -a.Width/2 + arena.WallThickness + cfg.Radius
	maxX := a.Width/2 - arena.WallThickness - cfg.Radius
	if b.X < minX {
		b.X = minX
		b.VX = -b.VX * cfg.Restitution
	}
	if b.X > maxX {
		b.X = maxX
		b.VX = -b.VX * cfg.Restitution
	}

	// Platform tops, one-way like players.
	if b.VY < 0 {
		prevBottom := b.prevY - cfg.Radius
		bottom := b.Y - cfg.Radius
		for _, plat := range a.Platforms {
			top := plat.Bounds.Top
			if prevBottom >= top-1 && bottom <= top {
				if b.X > plat.Bounds.Left && b.X < plat.Bounds.Right {
					b.Y = top + cfg.Radius
					b.bounce(cfg, dt)
					break
				}
			}
		}
	}

	if b.Y-cfg.Radius < a.FloorY {
		b.Y = a.FloorY + cfg.Radius
		b.bounce(cfg, dt)
	}
}

func (b *Ball) bounce(cfg BallConfig, dt float64) {
	b.VY = -b.VY * cfg.Restitution
	if b.VY < cfg.RestSpeed {
		b.VY = 0
	}
	// Rolling friction once grounded.
	b.VX -= b.VX * cfg.RollFriction * dt
	if b.VY == 0 && absFloat(b.VX) < cfg.RestSpeed/2 {
		b.VX = 0
	}
	// Any bounce ends a shot; a dead ball is up for grabs.
	if b.State == BallInFlight {
		b.State = BallFree
		b.ShooterID = ""
	}
}

// crossedScoreZone reports whether the ball passed down through the
// basket's score zone this tick.
func (b *Ball) crossedScoreZone(basket arena.Basket) bool {
	if b.State != BallInFlight || b.VY >= 0 {
		return false
	}
	zone := basket.ScoreZone()
	if b.X < zone.Left || b.X > zone.Right {
		return false
	}
	return b.prevY > zone.Top && b.Y <= zone.Top
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
