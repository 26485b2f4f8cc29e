package arena

import (
	"math"
	"sync"
)

// ============================================
// ARENA GEOMETRY
// ============================================

// World dimensions. Y grows upward, origin at the arena center.
const (
	Width  = 1600.0
	Height = 900.0
	FloorY = -Height / 2.0 // -450

	WallThickness     = 20.0
	PlatformThickness = 20.0

	BasketRimRadius   = 12.0
	BasketScoreWidth  = 70.0
	BasketScoreHeight = 30.0
)

// Vec2 is a 2D point or direction in world units.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (v Vec2) Add(o Vec2) Vec2    { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2    { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }

func (v Vec2) Length() float64 {
	return math.Hypot(v.X, v.Y)
}

func (v Vec2) DistanceTo(o Vec2) float64 {
	return math.Hypot(v.X-o.X, v.Y-o.Y)
}

// Lerp returns the point a fraction t of the way from v to o.
func (v Vec2) Lerp(o Vec2, t float64) Vec2 {
	return Vec2{v.X + (o.X-v.X)*t, v.Y + (o.Y-v.Y)*t}
}

// Rect is an axis-aligned box. Top > Bottom because Y grows upward.
type Rect struct {
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Top    float64 `json:"top"`
}

func RectFromCenter(cx, cy, w, h float64) Rect {
	return Rect{Left: cx - w/2, Right: cx + w/2, Bottom: cy - h/2, Top: cy + h/2}
}

func (r Rect) Width() float64   { return r.Right - r.Left }
func (r Rect) Height() float64  { return r.Top - r.Bottom }
func (r Rect) CenterX() float64 { return (r.Left + r.Right) / 2 }
func (r Rect) CenterY() float64 { return (r.Bottom + r.Top) / 2 }

func (r Rect) Contains(p Vec2) bool {
	return p.X >= r.Left && p.X <= r.Right && p.Y >= r.Bottom && p.Y <= r.Top
}

// OverlapX reports the horizontal overlap interval of two rects.
// ok is false when the rects do not overlap horizontally.
func (r Rect) OverlapX(o Rect) (left, right float64, ok bool) {
	left = math.Max(r.Left, o.Left)
	right = math.Min(r.Right, o.Right)
	return left, right, left < right
}

// Role classifies what a platform is for. The nav layer uses it to
// bias defensive and shooting placement.
type Role int

const (
	RoleFloor Role = iota
	RoleGeneric
	RoleStep
	RoleRim
)

func (r Role) String() string {
	switch r {
	case RoleFloor:
		return "floor"
	case RoleStep:
		return "step"
	case RoleRim:
		return "rim"
	default:
		return "generic"
	}
}

// Platform is a one-way standable surface. Agents collide with its
// top edge only when falling onto it.
type Platform struct {
	Bounds Rect `json:"bounds"`
	Role   Role `json:"role"`
}

// Side identifies one of the two baskets / teams.
type Side int

const (
	SideLeft Side = iota
	SideRight
)

func (s Side) String() string {
	if s == SideLeft {
		return "left"
	}
	return "right"
}

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == SideLeft {
		return SideRight
	}
	return SideLeft
}

// Basket is a scoring target mounted on one wall.
type Basket struct {
	Side Side `json:"side"`
	Pos  Vec2 `json:"pos"` // rim center
}

// ScoreZone is the region the ball must pass through, moving downward,
// to count as a made shot.
func (b Basket) ScoreZone() Rect {
	return RectFromCenter(b.Pos.X, b.Pos.Y, BasketScoreWidth, BasketScoreHeight)
}

// Arena is a fully built playable level: normalized platforms
// (floor included) plus the two baskets.
type Arena struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Width     float64    `json:"width"`
	Height    float64    `json:"height"`
	FloorY    float64    `json:"floorY"`
	Platforms []Platform `json:"platforms"`
	Baskets   [2]Basket  `json:"baskets"`
}

// Basket returns the basket on the given side.
func (a *Arena) Basket(s Side) Basket {
	return a.Baskets[s]
}

// Floor returns the floor platform. Every built arena has one.
func (a *Arena) Floor() Platform {
	for _, p := range a.Platforms {
		if p.Role == RoleFloor {
			return p
		}
	}
	return Platform{Bounds: Rect{Left: -a.Width / 2, Right: a.Width / 2, Bottom: a.FloorY - PlatformThickness, Top: a.FloorY}, Role: RoleFloor}
}

// Elevated reports whether the arena has any standable surface above
// the floor. Arenas without one force the defensive fallback policy.
func (a *Arena) Elevated() bool {
	for _, p := range a.Platforms {
		if p.Role != RoleFloor {
			return true
		}
	}
	return false
}

// ============================================
// ARENA PROVIDER
// ============================================

// Provider hands out the active arena together with a monotonically
// increasing generation. Consumers that cache derived structures
// (the nav graph) compare generations instead of tracking dirtiness
// themselves: a cached structure is current iff its recorded
// generation equals the provider's.
type Provider struct {
	mu         sync.RWMutex
	current    *Arena
	generation uint64
}

func NewProvider(a *Arena) *Provider {
	return &Provider{current: a, generation: 1}
}

// Current returns the active arena and the generation it was set at.
func (p *Provider) Current() (*Arena, uint64) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current, p.generation
}

// Generation returns the current generation without taking the arena.
func (p *Provider) Generation() uint64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.generation
}

// Swap installs a new arena and bumps the generation. Every swap
// invalidates all derived caches, even if the geometry is identical.
func (p *Provider) Swap(a *Arena) uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = a
	p.generation++
	return p.generation
}

// Touch bumps the generation without replacing the arena, for in-place
// edits to platform geometry.
func (p *Provider) Touch() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.generation++
	return p.generation
}
