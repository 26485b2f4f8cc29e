package ai

import (
	"hoop-club/internal/arena"
)

// ============================================
// SHOT QUALITY
// ============================================

// Quality bands. Selection logic compares against these rather than
// raw numbers.
const (
	QualityExcellent  = 0.75
	QualityGood       = 0.55
	QualityAcceptable = 0.40
	QualityDesperate  = 0.25

	// ReferenceMaxQuality is the best quality a well-formed level
	// offers. Profile minimums are expressed relative to it.
	ReferenceMaxQuality = 0.85
)

// GeometricQuality scores a shot from pos at a basket using position
// alone, in [0.1, 1.0]. Elevation near rim height dominates; being
// behind the rim or directly under it is punished.
func GeometricQuality(pos, basket arena.Vec2, floorY float64) float64 {
	q := 0.45

	dy := pos.Y - basket.Y
	if dy > 0 {
		q += clamp(dy/250, 0, 1) * 0.4
	} else {
		q -= clamp(-dy/800, 0, 1) * 0.15
	}

	// Horizontal offset toward the court interior. Baskets face
	// inward, so "in front" means toward x=0.
	var front float64
	if basket.X < 0 {
		front = pos.X - basket.X
	} else {
		front = basket.X - pos.X
	}

	if front < 0 {
		// Behind the backboard.
		q -= clamp(-front/150, 0, 1) * 0.25
	} else if front >= 100 && front <= 400 {
		// Sweet spot: close enough to hit, far enough for an arc.
		q += 0.15
	}

	if front >= 0 && front < 60 {
		// Directly under the rim, no room for an arc.
		q -= 0.2
	}

	if pos.Y < floorY+100 {
		// Ground-level heaves rarely clear the rim.
		q -= 0.1
	}

	return clamp(q, 0.1, 1.0)
}

// ScaleMinQuality adapts a profile's minimum shot quality to what a
// level actually offers. A level whose best spot scores below the
// reference scales every minimum down proportionally, so agents on
// sparse levels still shoot.
func ScaleMinQuality(profileMin, levelMax float64) float64 {
	if levelMax <= 0 {
		return profileMin
	}
	scale := levelMax / ReferenceMaxQuality
	if scale > 1 {
		scale = 1
	}
	return profileMin * scale
}

// ShotEvaluator scores shooting positions. With measured grids loaded
// it samples them; otherwise it falls back to the geometric model.
type ShotEvaluator struct {
	grids  *GridSet
	floorY float64
}

// NewShotEvaluator builds an evaluator for an arena. grids may be nil.
func NewShotEvaluator(floorY float64, grids *GridSet) *ShotEvaluator {
	return &ShotEvaluator{grids: grids, floorY: floorY}
}

// Evaluate scores a shot from pos at the basket on the given side.
func (e *ShotEvaluator) Evaluate(pos arena.Vec2, basket arena.Basket) float64 {
	if e.grids != nil {
		if g := e.grids.Grid(basket.Side); g != nil {
			if v, ok := g.SampleWorld(pos); ok {
				return v
			}
		}
	}
	return GeometricQuality(pos, basket.Pos, e.floorY)
}
