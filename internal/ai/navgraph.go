package ai

import (
	"math"

	"hoop-club/internal/arena"
)

// ============================================
// NAVIGATION GRAPH
// ============================================

// NavConfig tunes graph construction and plan following.
type NavConfig struct {
	// PositionTolerance is how close an agent must be to a target x to
	// count as arrived.
	PositionTolerance float64
	// JumpTolerance offsets takeoff points inward from overlap
	// boundaries so the arc clears the platform edge.
	JumpTolerance float64
	// MaxHopGap is the widest same-height gap crossed with a short hop.
	MaxHopGap float64
	// ReplanDistance is how far a plan's target may drift before the
	// plan is recomputed.
	ReplanDistance float64
	// StuckTicks is how many ticks without progress trigger a replan.
	StuckTicks int
	// StuckEpsilon is the minimum per-tick progress that counts.
	StuckEpsilon float64
}

func DefaultNavConfig() NavConfig {
	return NavConfig{
		PositionTolerance: 30,
		JumpTolerance:     8,
		MaxHopGap:         150,
		ReplanDistance:    60,
		StuckTicks:        45,
		StuckEpsilon:      1.0,
	}
}

// NodeID indexes a node within its graph. NoNode marks absence.
type NodeID int

const NoNode NodeID = -1

// EdgeKind is how an edge is traversed.
type EdgeKind int

const (
	EdgeWalk EdgeKind = iota
	EdgeJump
	EdgeDrop
)

func (k EdgeKind) String() string {
	switch k {
	case EdgeWalk:
		return "walk"
	case EdgeJump:
		return "jump"
	default:
		return "drop"
	}
}

// NodeClass is a platform's tactical classification, derived from its
// precomputed shot qualities.
type NodeClass int

const (
	ClassFloor NodeClass = iota
	ClassRamp
	ClassShotPosition
	ClassDeadZone
)

func (c NodeClass) String() string {
	switch c {
	case ClassFloor:
		return "floor"
	case ClassRamp:
		return "ramp"
	case ClassShotPosition:
		return "shot_position"
	default:
		return "dead_zone"
	}
}

// NavNode is one standable surface.
type NavNode struct {
	ID      NodeID
	Center  arena.Vec2
	LeftX   float64
	RightX  float64
	TopY    float64
	IsFloor bool
	Role    arena.Role
	Class   NodeClass

	// Shot quality from this node at each basket, precomputed at
	// build time.
	ShotQualityLeft  float64
	ShotQualityRight float64
}

// ClampX returns the closest x on the node to the given x.
func (n *NavNode) ClampX(x float64) float64 {
	return clamp(x, n.LeftX, n.RightX)
}

// ShotQuality returns the node's quality at the basket on side.
func (n *NavNode) ShotQuality(side arena.Side) float64 {
	if side == arena.SideLeft {
		return n.ShotQualityLeft
	}
	return n.ShotQualityRight
}

// NavEdge is a traversal from one node to another.
type NavEdge struct {
	To       NodeID
	Kind     EdgeKind
	Cost     float64
	TakeoffX float64 // where to start the jump/drop/walk
	LandingX float64 // where the traversal ends on the target node
	JumpHold float64 // jump button hold fraction, 0 for walks and drops
}

// NavGraph is the precomputed navigation structure for one arena. It
// records the arena generation it was built from; a graph is current
// iff that generation matches the provider's.
type NavGraph struct {
	Nodes      []NavNode
	Edges      [][]NavEdge
	Generation uint64

	// LevelMaxShotQuality is the best standable quality the arena
	// offers, used to scale profile minimums.
	LevelMaxShotQuality float64
}

// Current reports whether the graph matches the given arena
// generation.
func (g *NavGraph) Current(generation uint64) bool {
	return g != nil && g.Generation == generation
}

// Node returns a node by ID, nil if out of range.
func (g *NavGraph) Node(id NodeID) *NavNode {
	if id < 0 || int(id) >= len(g.Nodes) {
		return nil
	}
	return &g.Nodes[id]
}

// GraphBuilder constructs nav graphs. All jump feasibility questions
// are answered by the shared capability model.
type GraphBuilder struct {
	caps *Capabilities
	eval *ShotEvaluator
	cfg  NavConfig
}

func NewGraphBuilder(caps *Capabilities, eval *ShotEvaluator, cfg NavConfig) *GraphBuilder {
	return &GraphBuilder{caps: caps, eval: eval, cfg: cfg}
}

// Build constructs a graph for the arena at the given generation. The
// whole graph is rebuilt every time; nothing is patched incrementally.
func (b *GraphBuilder) Build(a *arena.Arena, generation uint64) *NavGraph {
	g := &NavGraph{Generation: generation}

	standY := b.caps.Spec.PlayerHeight / 2
	for i, p := range a.Platforms {
		bounds := p.Bounds
		node := NavNode{
			ID:      NodeID(i),
			Center:  arena.Vec2{X: bounds.CenterX(), Y: bounds.Top + standY},
			LeftX:   bounds.Left,
			RightX:  bounds.Right,
			TopY:    bounds.Top,
			IsFloor: p.Role == arena.RoleFloor,
			Role:    p.Role,
		}
		stand := arena.Vec2{X: node.Center.X, Y: node.TopY + standY}
		node.ShotQualityLeft = b.eval.Evaluate(stand, a.Basket(arena.SideLeft))
		node.ShotQualityRight = b.eval.Evaluate(stand, a.Basket(arena.SideRight))
		node.Class = classifyNode(&node)
		g.Nodes = append(g.Nodes, node)

		best := math.Max(node.ShotQualityLeft, node.ShotQualityRight)
		if best > g.LevelMaxShotQuality {
			g.LevelMaxShotQuality = best
		}
	}

	g.Edges = make([][]NavEdge, len(g.Nodes))
	for i := range g.Nodes {
		for j := range g.Nodes {
			if i == j {
				continue
			}
			if e, ok := b.edgeBetween(&g.Nodes[i], &g.Nodes[j], g.Nodes); ok {
				g.Edges[i] = append(g.Edges[i], e)
			}
		}
	}
	return g
}

func classifyNode(n *NavNode) NodeClass {
	if n.IsFloor {
		return ClassFloor
	}
	best := math.Max(n.ShotQualityLeft, n.ShotQualityRight)
	worst := math.Min(n.ShotQualityLeft, n.ShotQualityRight)
	switch {
	case worst < QualityDesperate:
		return ClassDeadZone
	case best >= QualityGood:
		return ClassShotPosition
	default:
		return ClassRamp
	}
}

// trajectoryBlocked reports whether another platform sits inside the
// vertical and horizontal window a traversal between from and to
// passes through.
func (b *GraphBuilder) trajectoryBlocked(from, to *NavNode, nodes []NavNode) bool {
	minY := math.Min(from.TopY, to.TopY)
	maxY := math.Max(from.TopY, to.TopY)
	left := math.Min(from.Center.X, to.Center.X)
	right := math.Max(from.Center.X, to.Center.X)
	halfH := b.caps.Spec.PlayerHeight / 2
	halfW := b.caps.Spec.PlayerWidth / 2

	for i := range nodes {
		n := &nodes[i]
		if n.ID == from.ID || n.ID == to.ID || n.IsFloor {
			continue
		}
		if n.TopY <= minY+halfH || n.TopY >= maxY-halfH {
			continue
		}
		if n.RightX > left-halfW && n.LeftX < right+halfW {
			return true
		}
	}
	return false
}

// edgeBetween decides whether from connects to to and how. Takeoff and
// landing points for jumps between horizontally overlapping platforms
// are placed outside the overlap interval so the arc clears the upper
// platform's edge instead of hitting its underside.
func (b *GraphBuilder) edgeBetween(from, to *NavNode, nodes []NavNode) (NavEdge, bool) {
	if b.trajectoryBlocked(from, to, nodes) {
		return NavEdge{}, false
	}

	heightDiff := to.TopY - from.TopY

	var gap float64
	switch {
	case to.LeftX > from.RightX:
		gap = to.LeftX - from.RightX
	case from.LeftX > to.RightX:
		gap = from.LeftX - to.RightX
	default:
		gap = 0
	}

	halfW := b.caps.Spec.PlayerWidth / 2

	switch {
	case heightDiff > 0:
		// Jump up.
		if !b.caps.CanReachHeight(from.TopY, to.TopY) {
			return NavEdge{}, false
		}
		reach, ok := b.caps.HorizontalReachUp(heightDiff)
		if !ok {
			return NavEdge{}, false
		}
		if gap > reach+b.cfg.PositionTolerance {
			return NavEdge{}, false
		}

		edgeMargin := halfW + b.cfg.JumpTolerance
		var takeoff, landing float64
		switch {
		case to.LeftX > from.RightX:
			takeoff = from.RightX
			landing = to.LeftX + edgeMargin
		case from.LeftX > to.RightX:
			takeoff = from.LeftX
			landing = to.RightX - edgeMargin
		default:
			overlapLeft := math.Max(from.LeftX, to.LeftX)
			overlapRight := math.Min(from.RightX, to.RightX)
			if from.Center.X < to.Center.X {
				takeoff = math.Max(overlapLeft-halfW-b.cfg.JumpTolerance, from.LeftX)
				landing = overlapLeft + edgeMargin
			} else {
				takeoff = math.Min(overlapRight+halfW+b.cfg.JumpTolerance, from.RightX)
				landing = overlapRight - edgeMargin
			}
		}

		hold := clamp(heightDiff/b.caps.MaxJumpHeight*1.2, 0.1, 1.0)
		return NavEdge{
			To:       to.ID,
			Kind:     EdgeJump,
			Cost:     heightDiff + gap*0.5,
			TakeoffX: takeoff,
			LandingX: landing,
			JumpHold: hold,
		}, true

	case heightDiff < -b.caps.Spec.PlayerHeight:
		// Drop down.
		fall := -heightDiff
		reach := b.caps.HorizontalReachDown(fall)
		if gap > reach+b.cfg.PositionTolerance {
			return NavEdge{}, false
		}

		var takeoff, landing float64
		if to.Center.X > from.Center.X {
			takeoff = from.RightX
			landing = to.ClampX(from.RightX + reach*0.5)
		} else {
			takeoff = from.LeftX
			landing = to.ClampX(from.LeftX - reach*0.5)
		}
		return NavEdge{
			To:       to.ID,
			Kind:     EdgeDrop,
			Cost:     fall*0.3 + gap*0.5,
			TakeoffX: takeoff,
			LandingX: landing,
		}, true

	default:
		// Similar height.
		if gap > b.cfg.PositionTolerance {
			if gap > b.cfg.MaxHopGap {
				return NavEdge{}, false
			}
			var takeoff, landing float64
			if to.LeftX > from.RightX {
				takeoff = from.RightX - b.cfg.JumpTolerance
				landing = to.LeftX + b.cfg.JumpTolerance
			} else {
				takeoff = from.LeftX + b.cfg.JumpTolerance
				landing = to.RightX - b.cfg.JumpTolerance
			}
			return NavEdge{
				To:       to.ID,
				Kind:     EdgeJump,
				Cost:     gap,
				TakeoffX: takeoff,
				LandingX: landing,
				JumpHold: 0.1,
			}, true
		}

		var walkX float64
		if to.Center.X > from.Center.X {
			walkX = to.LeftX + b.cfg.PositionTolerance
		} else {
			walkX = to.RightX - b.cfg.PositionTolerance
		}
		return NavEdge{
			To:       to.ID,
			Kind:     EdgeWalk,
			Cost:     math.Abs(from.Center.X-to.Center.X) * 0.1,
			TakeoffX: walkX,
			LandingX: walkX,
		}, true
	}
}

// ============================================
// NODE QUERIES
// ============================================

// FindNodeAt returns the node an agent at pos is standing on.
func (g *NavGraph) FindNodeAt(pos arena.Vec2, tolerance float64, playerHeight float64) NodeID {
	for i := range g.Nodes {
		n := &g.Nodes[i]
		if pos.X < n.LeftX-tolerance || pos.X > n.RightX+tolerance {
			continue
		}
		if math.Abs(pos.Y-n.TopY) < playerHeight/2+tolerance {
			return n.ID
		}
	}
	return NoNode
}

// FindClosestNode returns the node whose center is nearest to target.
func (g *NavGraph) FindClosestNode(target arena.Vec2) NodeID {
	best := NoNode
	bestDist := math.MaxFloat64
	for i := range g.Nodes {
		d := g.Nodes[i].Center.DistanceTo(target)
		if d < bestDist {
			bestDist = d
			best = g.Nodes[i].ID
		}
	}
	return best
}

// FindShootingNode returns the best node to shoot at the basket on
// side: highest quality within shootRange of the basket, distance
// breaking ties. When nothing within range qualifies, the best
// qualifying node anywhere is returned so the agent still has
// somewhere to go. Dead zones never qualify.
func (g *NavGraph) FindShootingNode(basket arena.Basket, shootRange, minQuality float64) NodeID {
	best := NoNode
	bestQ := -1.0
	bestDist := math.MaxFloat64
	for i := range g.Nodes {
		n := &g.Nodes[i]
		if n.Class == ClassDeadZone {
			continue
		}
		q := n.ShotQuality(basket.Side)
		if q < minQuality {
			continue
		}
		d := n.Center.DistanceTo(basket.Pos)
		if d > shootRange {
			continue
		}
		if q > bestQ || (q == bestQ && d < bestDist) {
			best, bestQ, bestDist = n.ID, q, d
		}
	}
	if best != NoNode {
		return best
	}

	// Nothing in range; head for the best qualifying spot anywhere.
	for i := range g.Nodes {
		n := &g.Nodes[i]
		if n.Class == ClassDeadZone {
			continue
		}
		q := n.ShotQuality(basket.Side)
		if q >= minQuality && q > bestQ {
			best, bestQ = n.ID, q
		}
	}
	return best
}

// FindBestShotPosition returns the highest-quality node for the basket
// on side regardless of range.
func (g *NavGraph) FindBestShotPosition(side arena.Side) NodeID {
	best := NoNode
	bestQ := -1.0
	for i := range g.Nodes {
		n := &g.Nodes[i]
		if n.Class == ClassDeadZone {
			continue
		}
		if q := n.ShotQuality(side); q > bestQ {
			best, bestQ = n.ID, q
		}
	}
	return best
}

// FindDefensivePlatform returns an elevated node positioned between an
// opponent and the defended basket, at or above the opponent's height.
// Returns NoNode on arenas with no suitable elevated surface.
func (g *NavGraph) FindDefensivePlatform(opponent, basket arena.Vec2, minHeight, playerHeight float64) NodeID {
	defendLeft := basket.X < opponent.X
	best := NoNode
	bestScore := math.MaxFloat64
	for i := range g.Nodes {
		n := &g.Nodes[i]
		if n.IsFloor {
			continue
		}
		if n.TopY < minHeight-playerHeight {
			continue
		}
		onSide := n.Center.X > opponent.X
		if defendLeft {
			onSide = n.Center.X < opponent.X
		}
		xDist := math.Abs(n.Center.X - opponent.X)

		score := xDist
		if xDist < 50 {
			score = 100
		}
		if !onSide {
			score += 500
		}
		score += math.Abs(n.TopY-opponent.Y) * 0.5

		if score < bestScore {
			bestScore = score
			best = n.ID
		}
	}
	return best
}

// FindFloorNode returns the floor node.
func (g *NavGraph) FindFloorNode() NodeID {
	for i := range g.Nodes {
		if g.Nodes[i].IsFloor {
			return g.Nodes[i].ID
		}
	}
	return NoNode
}

// FindElevatedPlatform returns the highest non-floor node with at
// least a relaxed fraction of minQuality at the basket on side. Used
// when no proper shooting node is available.
func (g *NavGraph) FindElevatedPlatform(side arena.Side, minQuality float64) NodeID {
	best := NoNode
	bestY := -math.MaxFloat64
	bestQ := -1.0
	for i := range g.Nodes {
		n := &g.Nodes[i]
		if n.IsFloor || n.Class == ClassDeadZone {
			continue
		}
		q := n.ShotQuality(side)
		if q < minQuality*0.7 {
			continue
		}
		if n.TopY > bestY || (n.TopY == bestY && q > bestQ) {
			best, bestY, bestQ = n.ID, n.TopY, q
		}
	}
	return best
}

