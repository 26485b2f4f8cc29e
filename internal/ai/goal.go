package ai

import (
	"math/rand"

	"hoop-club/internal/arena"
)

// ============================================
// GOAL SELECTION
// ============================================

// Goal is what an agent is currently trying to do.
type Goal int

const (
	GoalIdle Goal = iota
	GoalChaseBall
	GoalAttackWithBall
	GoalChargeShot
	GoalAttemptSteal
	GoalInterceptDefense
	GoalPressureDefense
)

func (g Goal) String() string {
	switch g {
	case GoalChaseBall:
		return "chase_ball"
	case GoalAttackWithBall:
		return "attack_with_ball"
	case GoalChargeShot:
		return "charge_shot"
	case GoalAttemptSteal:
		return "attempt_steal"
	case GoalInterceptDefense:
		return "intercept_defense"
	case GoalPressureDefense:
		return "pressure_defense"
	default:
		return "idle"
	}
}

// TargetKind says how a goal's target should be interpreted.
type TargetKind int

const (
	TargetNone TargetKind = iota
	TargetPoint
	TargetNode
)

// Target is where a goal wants the agent to be. Node targets carry the
// point wanted on that node.
type Target struct {
	Kind  TargetKind
	Point arena.Vec2
	Node  NodeID
}

// PointTarget builds a point target.
func PointTarget(p arena.Vec2) Target {
	return Target{Kind: TargetPoint, Point: p, Node: NoNode}
}

// NodeTarget builds a node target anchored at point.
func NodeTarget(id NodeID, p arena.Vec2) Target {
	return Target{Kind: TargetNode, Point: p, Node: id}
}

// WorldView is the per-tick snapshot one agent decides from. It is a
// value; the selector never mutates shared state through it.
type WorldView struct {
	Tick     uint64
	TickRate float64

	Pos      arena.Vec2
	Vel      arena.Vec2
	Grounded bool

	HasBall   bool
	HeldTicks int // how long we have held the ball

	BallPos  arena.Vec2
	BallFree bool

	Opponent        arena.Vec2
	OpponentHasBall bool

	TargetBasket   arena.Basket // the one we score on
	DefendedBasket arena.Basket
}

// DefensePolicy picks the fallback defensive stance on arenas with no
// elevated platform to intercept from.
type DefensePolicy int

const (
	// DefenseContain holds the floor midway between the opponent and
	// the defended basket.
	DefenseContain DefensePolicy = iota
	// DefenseShadow mirrors the opponent's x from the floor.
	DefenseShadow
)

func (p DefensePolicy) String() string {
	if p == DefenseShadow {
		return "shadow"
	}
	return "contain"
}

// ParseDefensePolicy maps a config string to a policy, defaulting to
// contain.
func ParseDefensePolicy(s string) DefensePolicy {
	if s == "shadow" {
		return DefenseShadow
	}
	return DefenseContain
}

// GoalConfig tunes selection dynamics.
type GoalConfig struct {
	// HysteresisExitScale widens a goal's entry threshold once the
	// goal is held, so boundary dither cannot flip the goal.
	HysteresisExitScale float64
	// StealCommitTicks locks AttemptSteal for this many ticks after
	// entry.
	StealCommitTicks int
	// AntiStallTicks is how long the agent may hold the ball before
	// its shot quality minimum starts relaxing.
	AntiStallTicks int
	// AntiStallRelaxTicks is how long the relaxation takes to reach
	// zero, at which point any position qualifies.
	AntiStallRelaxTicks int
	// DefensePolicy is the ramp-less arena fallback.
	DefensePolicy DefensePolicy
}

func DefaultGoalConfig() GoalConfig {
	return GoalConfig{
		HysteresisExitScale: 1.2,
		StealCommitTicks:    30,
		AntiStallTicks:      300,
		AntiStallRelaxTicks: 300,
	}
}

// GoalState is an agent's persistent selection state across ticks.
type GoalState struct {
	Current Goal
	Target  Target

	EnteredTick uint64
	// CommitUntil locks the goal until this tick.
	CommitUntil uint64

	// Charge bookkeeping, managed by the intent writer.
	ChargeTicks       int
	ChargeTargetTicks int
}

// TicksInGoal returns how long the current goal has been held.
func (s *GoalState) TicksInGoal(now uint64) int {
	if now < s.EnteredTick {
		return 0
	}
	return int(now - s.EnteredTick)
}

// Selector picks goals by walking an ordered rule list: the first rule
// whose predicate passes wins. Hysteresis and commitment wrap the
// rules rather than living inside them.
type Selector struct {
	rules []goalRule
	rng   *rand.Rand
	cfg   GoalConfig
}

type selectorCtx struct {
	view  WorldView
	prof  Profile
	graph *NavGraph
	eval  *ShotEvaluator
	state *GoalState
	cfg   GoalConfig
	rng   *rand.Rand

	// effMinQuality is the profile minimum scaled to the level and
	// relaxed by anti-stall.
	effMinQuality float64
}

type goalRule struct {
	name   string
	goal   Goal
	when   func(*selectorCtx) bool
	target func(*selectorCtx) Target
}

// NewSelector builds a selector around an injected RNG. Two selectors
// seeded identically and fed identical views make identical choices.
func NewSelector(rng *rand.Rand, cfg GoalConfig) *Selector {
	s := &Selector{rng: rng, cfg: cfg}
	s.rules = []goalRule{
		{name: "charge_shot", goal: GoalChargeShot, when: canChargeShot, target: chargeShotTarget},
		{name: "attack", goal: GoalAttackWithBall, when: hasBall, target: attackTarget},
		{name: "steal", goal: GoalAttemptSteal, when: canSteal, target: stealTarget},
		{name: "pressure", goal: GoalPressureDefense, when: canPressure, target: pressureTarget},
		{name: "intercept", goal: GoalInterceptDefense, when: opponentHasBall, target: interceptTarget},
		{name: "chase", goal: GoalChaseBall, when: ballFree, target: chaseTarget},
		{name: "idle", goal: GoalIdle, when: always, target: idleTarget},
	}
	return s
}

// Update selects the goal for this tick and writes it into state.
// Returns the previous goal and whether the goal changed.
func (s *Selector) Update(state *GoalState, view WorldView, prof Profile, graph *NavGraph, eval *ShotEvaluator) (Goal, bool) {
	ctx := &selectorCtx{
		view:  view,
		prof:  prof,
		graph: graph,
		eval:  eval,
		state: state,
		cfg:   s.cfg,
		rng:   s.rng,
	}
	ctx.effMinQuality = s.effectiveMinQuality(ctx)

	prev := state.Current

	// Commitment: a committed goal holds until its timer expires or
	// its premise disappears (gaining the ball ends a steal attempt).
	if view.Tick < state.CommitUntil && !view.HasBall {
		if state.Current == GoalAttemptSteal && view.OpponentHasBall {
			state.Target = stealTarget(ctx)
			return prev, false
		}
	}

	// A started charge runs to its release.
	if state.Current == GoalChargeShot && view.HasBall {
		return prev, false
	}

	for _, r := range s.rules {
		if !r.when(ctx) {
			continue
		}
		target := r.target(ctx)
		if r.goal == state.Current {
			state.Target = target
			return prev, false
		}
		state.Current = r.goal
		state.Target = target
		state.EnteredTick = view.Tick
		state.CommitUntil = 0
		switch r.goal {
		case GoalAttemptSteal:
			state.CommitUntil = view.Tick + uint64(s.cfg.StealCommitTicks)
		case GoalChargeShot:
			s.armCharge(state, view, prof)
		}
		return prev, true
	}
	return prev, false
}

// armCharge draws the charge duration for this shot from the injected
// RNG, between the profile's min and max.
func (s *Selector) armCharge(state *GoalState, view WorldView, prof Profile) {
	span := prof.ChargeMax - prof.ChargeMin
	secs := prof.ChargeMin + s.rng.Float64()*span
	state.ChargeTicks = 0
	state.ChargeTargetTicks = int(secs * view.TickRate)
	if state.ChargeTargetTicks < 1 {
		state.ChargeTargetTicks = 1
	}
}

// effectiveMinQuality scales the profile minimum to the level's best
// and relaxes it progressively once the ball has been held too long,
// so possession can never deadlock against a sparse arena.
func (s *Selector) effectiveMinQuality(ctx *selectorCtx) float64 {
	min := ctx.prof.MinShotQuality
	if ctx.graph != nil {
		min = ScaleMinQuality(min, ctx.graph.LevelMaxShotQuality)
	}
	if !ctx.view.HasBall || ctx.view.HeldTicks <= s.cfg.AntiStallTicks {
		return min
	}
	over := ctx.view.HeldTicks - s.cfg.AntiStallTicks
	frac := float64(over) / float64(s.cfg.AntiStallRelaxTicks)
	return min * clamp(1-frac, 0, 1)
}

// exitThreshold widens base when the agent already holds goal, the
// hysteresis half of enter/exit asymmetry.
func (ctx *selectorCtx) exitThreshold(base float64, goal Goal) float64 {
	if ctx.state.Current == goal {
		return base * ctx.cfg.HysteresisExitScale
	}
	return base
}

// ============================================
// RULE PREDICATES AND TARGET BUILDERS
// ============================================

func always(*selectorCtx) bool { return true }

func hasBall(ctx *selectorCtx) bool { return ctx.view.HasBall }

func opponentHasBall(ctx *selectorCtx) bool { return ctx.view.OpponentHasBall }

func ballFree(ctx *selectorCtx) bool { return ctx.view.BallFree }

// canChargeShot passes when the agent holds the ball on a spot good
// enough to shoot from.
func canChargeShot(ctx *selectorCtx) bool {
	v := ctx.view
	if !v.HasBall || !v.Grounded {
		return false
	}
	if v.Pos.DistanceTo(v.TargetBasket.Pos) > ctx.prof.ShootRange {
		return false
	}
	return ctx.eval.Evaluate(v.Pos, v.TargetBasket) >= ctx.effMinQuality
}

func chargeShotTarget(ctx *selectorCtx) Target {
	return PointTarget(ctx.view.Pos)
}

// attackTarget picks the spot to shoot from. A good current spot is
// kept unless a clearly better one exists and the agent has been
// positioning long enough; constant re-targeting reads as wandering.
func attackTarget(ctx *selectorCtx) Target {
	v := ctx.view
	g := ctx.graph
	if g == nil || len(g.Nodes) == 0 {
		return PointTarget(basketApproach(v.TargetBasket, v.Pos))
	}

	currentQ := ctx.eval.Evaluate(v.Pos, v.TargetBasket)
	best := g.FindShootingNode(v.TargetBasket, ctx.prof.ShootRange, ctx.effMinQuality)
	if best == NoNode {
		best = g.FindElevatedPlatform(v.TargetBasket.Side, ctx.effMinQuality)
	}
	if best == NoNode {
		best = g.FindBestShotPosition(v.TargetBasket.Side)
	}
	if best == NoNode {
		return PointTarget(basketApproach(v.TargetBasket, v.Pos))
	}

	node := g.Node(best)
	bestQ := node.ShotQuality(v.TargetBasket.Side)

	if currentQ >= ctx.effMinQuality {
		patience := int(ctx.prof.PositionPatience * v.TickRate)
		settled := ctx.state.TicksInGoal(v.Tick) >= patience
		if bestQ-currentQ < ctx.prof.SeekThreshold || !settled {
			return PointTarget(v.Pos)
		}
	}
	return NodeTarget(best, shotPointOnNode(node, v.TargetBasket))
}

// shotPointOnNode picks where to stand on a node: biased toward the
// basket but clear of the edge.
func shotPointOnNode(n *NavNode, basket arena.Basket) arena.Vec2 {
	x := n.ClampX(n.Center.X + (basket.Pos.X-n.Center.X)*0.25)
	return arena.Vec2{X: x, Y: n.Center.Y}
}

// basketApproach is the graphless fallback: a floor spot in front of
// the basket.
func basketApproach(basket arena.Basket, from arena.Vec2) arena.Vec2 {
	dir := 1.0
	if basket.Pos.X < 0 {
		dir = -1.0
	}
	return arena.Vec2{X: basket.Pos.X - dir*250, Y: from.Y}
}

func canSteal(ctx *selectorCtx) bool {
	v := ctx.view
	if !v.OpponentHasBall {
		return false
	}
	limit := ctx.exitThreshold(ctx.prof.StealRange, GoalAttemptSteal)
	return v.Pos.DistanceTo(v.Opponent) < limit
}

func stealTarget(ctx *selectorCtx) Target {
	return PointTarget(ctx.view.Opponent)
}

// canPressure passes when the opponent holds the ball within harass
// range. Aggression stretches the envelope.
func canPressure(ctx *selectorCtx) bool {
	v := ctx.view
	if !v.OpponentHasBall {
		return false
	}
	base := ctx.prof.PressureDistance * (0.75 + ctx.prof.Aggression*0.5)
	limit := ctx.exitThreshold(base, GoalPressureDefense)
	return v.Pos.DistanceTo(v.Opponent) < limit
}

// pressureTarget stands just off the ball handler on the basket side,
// close enough to contest the next move.
func pressureTarget(ctx *selectorCtx) Target {
	v := ctx.view
	return PointTarget(v.Opponent.Lerp(v.DefendedBasket.Pos, 0.2))
}

// interceptTarget places the defender on the line from the ball
// handler to the defended basket. DefensiveIQ moves the stand-off
// point from near the basket toward the handler. An elevated handler
// is met from a defensive platform when the arena has one; otherwise
// the configured fallback policy applies.
func interceptTarget(ctx *selectorCtx) Target {
	v := ctx.view
	frac := clamp(0.25+ctx.prof.DefensiveIQ*0.5, 0, 0.9)
	point := v.Opponent.Lerp(v.DefendedBasket.Pos, frac)

	g := ctx.graph
	if g == nil || len(g.Nodes) == 0 {
		return PointTarget(point)
	}

	floor := g.Node(g.FindFloorNode())
	opponentElevated := floor != nil && v.Opponent.Y > floor.TopY+120
	if opponentElevated {
		if id := g.FindDefensivePlatform(v.Opponent, v.DefendedBasket.Pos, v.Opponent.Y, 64); id != NoNode {
			n := g.Node(id)
			return NodeTarget(id, arena.Vec2{X: n.ClampX(point.X), Y: n.Center.Y})
		}
		// Ramp-less arena.
		if floor != nil {
			switch ctx.cfg.DefensePolicy {
			case DefenseShadow:
				return PointTarget(arena.Vec2{X: floor.ClampX(v.Opponent.X), Y: floor.Center.Y})
			default:
				mid := (v.Opponent.X + v.DefendedBasket.Pos.X) / 2
				return PointTarget(arena.Vec2{X: floor.ClampX(mid), Y: floor.Center.Y})
			}
		}
	}
	return PointTarget(point)
}

func chaseTarget(ctx *selectorCtx) Target {
	return PointTarget(ctx.view.BallPos)
}

// idleTarget drifts back to the agent's own half.
func idleTarget(ctx *selectorCtx) Target {
	v := ctx.view
	home := v.DefendedBasket.Pos.Lerp(arena.Vec2{X: 0, Y: v.Pos.Y}, 0.5)
	return PointTarget(arena.Vec2{X: home.X, Y: v.Pos.Y})
}
