package ai

import (
	"errors"
	"math/rand"

	"hoop-club/internal/arena"
)

// ============================================
// AGENT CONTROLLER
// ============================================

// GoalChange reports a goal transition for event logging.
type GoalChange struct {
	AgentID string
	From    Goal
	To      Goal
	Tick    uint64
}

// ReplanEvent reports a plan recomputation.
type ReplanEvent struct {
	AgentID string
	Reason  ReplanReason
	Tick    uint64
	Failed  bool
}

// Controller runs one agent's full decision pipeline each tick:
// select a goal, keep a plan toward its target, and write an intent.
// It owns no world state; everything it knows arrives in the view.
type Controller struct {
	ID string

	caps     *Capabilities
	eval     *ShotEvaluator
	selector *Selector
	follower *PlanFollower
	cfg      NavConfig

	state GoalState

	// direct is set when planning failed and the agent is driving
	// straight at the target instead. The target and generation it
	// failed against gate the retry.
	direct           bool
	directTarget     arena.Vec2
	directGeneration uint64

	OnGoalChange func(GoalChange)
	OnReplan     func(ReplanEvent)
}

// NewController wires a controller around an injected RNG. The RNG is
// the only source of randomness in the pipeline; seeding it fixes the
// agent's behavior for identical inputs.
func NewController(id string, caps *Capabilities, eval *ShotEvaluator, rng *rand.Rand, navCfg NavConfig, goalCfg GoalConfig) *Controller {
	return &Controller{
		ID:       id,
		caps:     caps,
		eval:     eval,
		selector: NewSelector(rng, goalCfg),
		follower: NewPlanFollower(navCfg),
		cfg:      navCfg,
	}
}

// State returns the current goal state for inspection.
func (c *Controller) State() GoalState { return c.state }

// Goal returns the current goal.
func (c *Controller) Goal() Goal { return c.state.Current }

// Update runs one decision tick against the given view and graph and
// returns the intent for physics to apply. A stale or missing plan is
// recomputed within this same tick, so a moved target never costs an
// idle frame.
func (c *Controller) Update(view WorldView, graph *NavGraph, prof Profile) Intent {
	prev, changed := c.selector.Update(&c.state, view, prof, graph, c.eval)
	if changed {
		c.follower.Clear()
		c.direct = false
		if c.OnGoalChange != nil {
			c.OnGoalChange(GoalChange{AgentID: c.ID, From: prev, To: c.state.Current, Tick: view.Tick})
		}
	}

	step := c.navigate(view, graph)
	return buildIntent(&c.state, view, prof, step, c.caps)
}

// navigate keeps a plan alive toward the current target and steps it.
func (c *Controller) navigate(view WorldView, graph *NavGraph) PlanStep {
	target := c.state.Target
	if target.Kind == TargetNone {
		return PlanStep{Done: true}
	}

	// Close point targets on our own level need no planner.
	if target.Kind == TargetPoint && nearSameLevel(view.Pos, target.Point, c.caps) {
		c.follower.Clear()
		c.direct = false
		return directStep(view.Pos, target.Point, c.cfg)
	}

	generation := uint64(0)
	if graph != nil {
		generation = graph.Generation
	}

	if c.direct {
		// Retry planning only once the target or the arena changed;
		// until then keep driving.
		moved := c.directTarget.DistanceTo(target.Point) > c.cfg.ReplanDistance
		if !moved && c.directGeneration == generation {
			return directStep(view.Pos, target.Point, c.cfg)
		}
		c.replan(view, graph, target, ReplanTargetMoved)
	} else if reason := c.follower.CheckReplan(target.Point, generation); reason != ReplanNone {
		c.replan(view, graph, target, reason)
	}

	if c.direct || !c.follower.Active() {
		return directStep(view.Pos, target.Point, c.cfg)
	}
	return c.follower.Step(view.Pos, view.Grounded)
}

func (c *Controller) replan(view WorldView, graph *NavGraph, target Target, reason ReplanReason) {
	var plan *Plan
	var err error
	if graph == nil || len(graph.Nodes) == 0 {
		err = ErrDegenerateArena
	} else if target.Kind == TargetNode && graph.Node(target.Node) != nil {
		start := graph.FindNodeAt(view.Pos, c.cfg.PositionTolerance*2, c.caps.Spec.PlayerHeight)
		if start == NoNode {
			start = graph.FindClosestNode(view.Pos)
		}
		plan, err = FindPathToNode(graph, view.Pos, start, target.Node, target.Point, c.cfg)
	} else {
		plan, err = FindPath(graph, c.caps, view.Pos, target.Point, c.cfg)
	}

	failed := err != nil
	if failed {
		// Unreachable or degenerate: fall back to the direct drive so
		// the agent still does something useful.
		if errors.Is(err, ErrUnreachable) || errors.Is(err, ErrDegenerateArena) {
			c.direct = true
			c.directTarget = target.Point
			if graph != nil {
				c.directGeneration = graph.Generation
			} else {
				c.directGeneration = 0
			}
			c.follower.Clear()
		}
	} else {
		c.direct = false
		c.follower.SetPlan(plan)
	}

	if c.OnReplan != nil {
		c.OnReplan(ReplanEvent{AgentID: c.ID, Reason: reason, Tick: view.Tick, Failed: failed})
	}
}

// nearSameLevel reports whether two points are on roughly the same
// height and close enough to walk between without the planner.
func nearSameLevel(a, b arena.Vec2, caps *Capabilities) bool {
	if absF(a.Y-b.Y) > caps.Spec.PlayerHeight {
		return false
	}
	return absF(a.X-b.X) < caps.Spec.MoveSpeed
}

// directStep drives straight at a point, used for close-range chasing
// and as the unreachable-target fallback.
func directStep(pos, target arena.Vec2, cfg NavConfig) PlanStep {
	if absF(pos.X-target.X) <= cfg.PositionTolerance {
		return PlanStep{Done: true}
	}
	return PlanStep{MoveTowardX: target.X, Moving: true}
}

func absF(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
