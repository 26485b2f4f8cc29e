package ai

import (
	"math"

	"hoop-club/internal/arena"
)

// ============================================
// PLAN FOLLOWER
// ============================================

// ReplanReason says why the active plan was abandoned.
type ReplanReason int

const (
	ReplanNone ReplanReason = iota
	ReplanNoPlan
	ReplanTargetMoved
	ReplanStuck
	ReplanGraphRebuilt
)

func (r ReplanReason) String() string {
	switch r {
	case ReplanNoPlan:
		return "no_plan"
	case ReplanTargetMoved:
		return "target_moved"
	case ReplanStuck:
		return "stuck"
	case ReplanGraphRebuilt:
		return "graph_rebuilt"
	default:
		return "none"
	}
}

// PlanStep is the movement the follower wants this tick.
type PlanStep struct {
	// MoveTowardX is the x the agent should drive toward. Valid when
	// Moving is true.
	MoveTowardX float64
	Moving      bool
	// WantJump fires a jump this tick with the given hold fraction.
	WantJump bool
	JumpHold float64
	// Done means the final waypoint has been reached.
	Done bool
}

// PlanFollower executes a plan one tick at a time. While airborne from
// a planned jump or drop it keeps driving toward the landing point for
// the entire arc; losing horizontal drive mid-jump undershoots the
// landing.
type PlanFollower struct {
	plan *Plan
	cfg  NavConfig

	airborne bool
	landing  arena.Vec2

	// stuck detection
	lastDist   float64
	stuckTicks int
}

func NewPlanFollower(cfg NavConfig) *PlanFollower {
	return &PlanFollower{cfg: cfg}
}

// SetPlan installs a new plan and resets execution state.
func (f *PlanFollower) SetPlan(p *Plan) {
	f.plan = p
	f.airborne = false
	f.lastDist = math.MaxFloat64
	f.stuckTicks = 0
}

// Clear drops the active plan.
func (f *PlanFollower) Clear() {
	f.SetPlan(nil)
}

// Plan returns the active plan, nil when idle.
func (f *PlanFollower) Plan() *Plan { return f.plan }

// Active reports whether an unfinished plan is installed.
func (f *PlanFollower) Active() bool {
	return f.plan != nil && !f.plan.Done()
}

// CheckReplan decides whether the plan must be recomputed before this
// tick's step. target is where the agent wants to be now; generation
// is the current arena generation.
func (f *PlanFollower) CheckReplan(target arena.Vec2, generation uint64) ReplanReason {
	if f.plan == nil {
		return ReplanNoPlan
	}
	if f.plan.Generation != generation {
		return ReplanGraphRebuilt
	}
	if f.plan.TargetPoint.DistanceTo(target) > f.cfg.ReplanDistance {
		return ReplanTargetMoved
	}
	if f.stuckTicks >= f.cfg.StuckTicks {
		return ReplanStuck
	}
	return ReplanNone
}

// Step advances plan execution for one tick and returns the movement
// to perform.
func (f *PlanFollower) Step(pos arena.Vec2, grounded bool) PlanStep {
	if f.plan == nil {
		return PlanStep{Done: true}
	}

	// Airborne leg of a jump or drop: hold course to the landing.
	if f.airborne {
		if grounded {
			f.airborne = false
			f.plan.Advance()
			f.resetStuck()
		} else {
			return PlanStep{MoveTowardX: f.landing.X, Moving: true}
		}
	}

	wp := f.plan.Current()
	if wp == nil {
		return PlanStep{Done: true}
	}

	dist := math.Abs(pos.X - wp.Point.X)
	f.trackProgress(dist)

	switch wp.Action {
	case ActionMoveTo:
		if dist <= f.cfg.PositionTolerance {
			f.plan.Advance()
			f.resetStuck()
			if f.plan.Done() {
				return PlanStep{Done: true}
			}
			return f.Step(pos, grounded)
		}
		return PlanStep{MoveTowardX: wp.Point.X, Moving: true}

	case ActionJumpAt:
		if dist > f.cfg.PositionTolerance {
			return PlanStep{MoveTowardX: wp.Point.X, Moving: true}
		}
		if !grounded {
			// Still settling from a prior hop; wait for ground.
			return PlanStep{MoveTowardX: wp.Point.X, Moving: true}
		}
		f.airborne = true
		f.landing = wp.Landing
		f.resetStuck()
		return PlanStep{
			MoveTowardX: wp.Landing.X,
			Moving:      true,
			WantJump:    true,
			JumpHold:    wp.JumpHold,
		}

	case ActionDropFrom:
		if grounded && dist > f.cfg.PositionTolerance {
			return PlanStep{MoveTowardX: wp.Point.X, Moving: true}
		}
		// Walk off the edge toward the landing.
		f.airborne = true
		f.landing = wp.Landing
		f.resetStuck()
		return PlanStep{MoveTowardX: wp.Landing.X, Moving: true}
	}
	return PlanStep{Done: true}
}

func (f *PlanFollower) trackProgress(dist float64) {
	if dist < f.lastDist-f.cfg.StuckEpsilon {
		f.lastDist = dist
		f.stuckTicks = 0
		return
	}
	f.stuckTicks++
}

func (f *PlanFollower) resetStuck() {
	f.lastDist = math.MaxFloat64
	f.stuckTicks = 0
}

// Stuck reports whether progress has stalled past the threshold.
func (f *PlanFollower) Stuck() bool {
	return f.stuckTicks >= f.cfg.StuckTicks
}
