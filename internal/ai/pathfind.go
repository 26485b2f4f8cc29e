package ai

import (
	"container/heap"
	"math"

	"hoop-club/internal/arena"
)

// ============================================
// A* PATH PLANNER
// ============================================

// WaypointAction says how to leave the current position.
type WaypointAction int

const (
	// ActionMoveTo walks to the waypoint's x on the current surface.
	ActionMoveTo WaypointAction = iota
	// ActionJumpAt jumps at the waypoint's x with the given hold, then
	// drives toward Landing for the whole airborne arc.
	ActionJumpAt
	// ActionDropFrom walks off the platform edge at the waypoint's x
	// toward Landing.
	ActionDropFrom
)

func (a WaypointAction) String() string {
	switch a {
	case ActionMoveTo:
		return "move_to"
	case ActionJumpAt:
		return "jump_at"
	default:
		return "drop_from"
	}
}

// Waypoint is one step of a plan. For jumps and drops, Landing is
// where the arc should end on the next surface.
type Waypoint struct {
	Point    arena.Vec2
	Action   WaypointAction
	JumpHold float64
	Landing  arena.Vec2
}

// Plan is an executable route to a target.
type Plan struct {
	Waypoints []Waypoint
	Index     int

	GoalNode    NodeID
	TargetPoint arena.Vec2 // the point the plan was computed against
	TotalCost   float64
	Generation  uint64 // graph generation the plan was built from
}

// Done reports whether every waypoint has been consumed.
func (p *Plan) Done() bool {
	return p == nil || p.Index >= len(p.Waypoints)
}

// Current returns the active waypoint, nil when done.
func (p *Plan) Current() *Waypoint {
	if p.Done() {
		return nil
	}
	return &p.Waypoints[p.Index]
}

// Advance moves to the next waypoint.
func (p *Plan) Advance() {
	if p != nil && p.Index < len(p.Waypoints) {
		p.Index++
	}
}

type searchNode struct {
	id    NodeID
	gCost float64
	fCost float64
	index int
}

type searchHeap []*searchNode

func (h searchHeap) Len() int            { return len(h) }
func (h searchHeap) Less(i, j int) bool  { return h[i].fCost < h[j].fCost }
func (h searchHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *searchHeap) Push(x interface{}) { n := x.(*searchNode); n.index = len(*h); *h = append(*h, n) }
func (h *searchHeap) Pop() interface{} {
	old := *h
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*h = old[:len(old)-1]
	return n
}

// heuristic underestimates remaining cost. Vertical distance is
// weighted up because level changes need jumps or drops.
func heuristic(from, to arena.Vec2) float64 {
	return math.Abs(from.X-to.X) + math.Abs(from.Y-to.Y)*1.5
}

type cameFromEntry struct {
	parent NodeID
	edge   NavEdge
	set    bool
}

// FindPath plans a route from start to the node the target position
// sits on. Returns ErrDegenerateArena when the graph is empty and
// ErrUnreachable when start or target is off the graph or no route
// connects them.
func FindPath(g *NavGraph, caps *Capabilities, start, target arena.Vec2, cfg NavConfig) (*Plan, error) {
	if g == nil || len(g.Nodes) == 0 {
		return nil, ErrDegenerateArena
	}
	startNode := g.FindNodeAt(start, cfg.PositionTolerance*2, caps.Spec.PlayerHeight)
	if startNode == NoNode {
		startNode = g.FindClosestNode(start)
	}
	goalNode := g.FindNodeAt(target, cfg.PositionTolerance*2, caps.Spec.PlayerHeight)
	if goalNode == NoNode {
		goalNode = g.FindClosestNode(target)
	}
	if startNode == NoNode || goalNode == NoNode {
		return nil, ErrUnreachable
	}
	return FindPathToNode(g, start, startNode, goalNode, target, cfg)
}

// FindPathToNode runs A* from startNode to goalNode and expands the
// node route into waypoints. target is the exact point wanted on the
// goal node; the final waypoint clamps it into the node's span.
func FindPathToNode(g *NavGraph, start arena.Vec2, startNode, goalNode NodeID, target arena.Vec2, cfg NavConfig) (*Plan, error) {
	if g == nil || len(g.Nodes) == 0 {
		return nil, ErrDegenerateArena
	}
	if g.Node(startNode) == nil || g.Node(goalNode) == nil {
		return nil, ErrUnreachable
	}

	if startNode == goalNode {
		return singleNodePlan(g, startNode, start, target, cfg), nil
	}

	gScores := make([]float64, len(g.Nodes))
	for i := range gScores {
		gScores[i] = math.MaxFloat64
	}
	gScores[startNode] = 0
	cameFrom := make([]cameFromEntry, len(g.Nodes))

	goalCenter := g.Nodes[goalNode].Center
	open := &searchHeap{}
	heap.Init(open)
	heap.Push(open, &searchNode{
		id:    startNode,
		gCost: 0,
		fCost: heuristic(g.Nodes[startNode].Center, goalCenter),
	})

	for open.Len() > 0 {
		current := heap.Pop(open).(*searchNode)
		if current.id == goalNode {
			return reconstruct(g, cameFrom, startNode, goalNode, start, target, current.gCost, cfg), nil
		}
		// Stale heap entry; a cheaper route was already expanded.
		if current.gCost > gScores[current.id]+1e-6 {
			continue
		}
		for _, edge := range g.Edges[current.id] {
			tentative := current.gCost + edge.Cost
			if tentative >= gScores[edge.To] {
				continue
			}
			gScores[edge.To] = tentative
			cameFrom[edge.To] = cameFromEntry{parent: current.id, edge: edge, set: true}
			heap.Push(open, &searchNode{
				id:    edge.To,
				gCost: tentative,
				fCost: tentative + heuristic(g.Nodes[edge.To].Center, goalCenter),
			})
		}
	}
	return nil, ErrUnreachable
}

// singleNodePlan walks along the node the agent already stands on.
func singleNodePlan(g *NavGraph, node NodeID, start, target arena.Vec2, cfg NavConfig) *Plan {
	n := g.Node(node)
	x := finalX(n, target.X, cfg)
	p := &Plan{GoalNode: node, TargetPoint: target, Generation: g.Generation}
	if math.Abs(start.X-x) > cfg.PositionTolerance {
		p.Waypoints = append(p.Waypoints, Waypoint{
			Point:  arena.Vec2{X: x, Y: n.Center.Y},
			Action: ActionMoveTo,
		})
	}
	return p
}

// finalX clamps the wanted x into the node span, keeping off the very
// edges. Narrow nodes use their center.
func finalX(n *NavNode, wantX float64, cfg NavConfig) float64 {
	if n.RightX-n.LeftX <= cfg.PositionTolerance*2 {
		return n.Center.X
	}
	return clamp(wantX, n.LeftX+cfg.PositionTolerance, n.RightX-cfg.PositionTolerance)
}

// reconstruct converts the A* parent chain into waypoints: walk to the
// takeoff point, perform the transition, repeat, then walk to the
// final x on the goal node.
func reconstruct(g *NavGraph, cameFrom []cameFromEntry, startNode, goalNode NodeID, start, target arena.Vec2, totalCost float64, cfg NavConfig) *Plan {
	route := []NodeID{goalNode}
	for cur := goalNode; cameFrom[cur].set && cur != startNode; {
		cur = cameFrom[cur].parent
		route = append(route, cur)
	}
	for i, j := 0, len(route)-1; i < j; i, j = i+1, j-1 {
		route[i], route[j] = route[j], route[i]
	}

	p := &Plan{GoalNode: goalNode, TargetPoint: target, TotalCost: totalCost, Generation: g.Generation}
	currentX := start.X

	for i := 0; i+1 < len(route); i++ {
		to := route[i+1]
		entry := cameFrom[to]
		if !entry.set {
			continue
		}
		edge := entry.edge
		fromNode := g.Node(route[i])
		toNode := g.Node(to)

		if math.Abs(currentX-edge.TakeoffX) > cfg.PositionTolerance {
			p.Waypoints = append(p.Waypoints, Waypoint{
				Point:  arena.Vec2{X: edge.TakeoffX, Y: fromNode.Center.Y},
				Action: ActionMoveTo,
			})
		}

		landing := arena.Vec2{X: edge.LandingX, Y: toNode.Center.Y}
		switch edge.Kind {
		case EdgeWalk:
			p.Waypoints = append(p.Waypoints, Waypoint{
				Point:  landing,
				Action: ActionMoveTo,
			})
		case EdgeJump:
			p.Waypoints = append(p.Waypoints, Waypoint{
				Point:    arena.Vec2{X: edge.TakeoffX, Y: fromNode.Center.Y},
				Action:   ActionJumpAt,
				JumpHold: edge.JumpHold,
				Landing:  landing,
			})
		case EdgeDrop:
			p.Waypoints = append(p.Waypoints, Waypoint{
				Point:   arena.Vec2{X: edge.TakeoffX, Y: fromNode.Center.Y},
				Action:  ActionDropFrom,
				Landing: landing,
			})
		}
		currentX = edge.LandingX
	}

	goal := g.Node(goalNode)
	x := finalX(goal, target.X, cfg)
	if math.Abs(currentX-x) > cfg.PositionTolerance {
		p.Waypoints = append(p.Waypoints, Waypoint{
			Point:  arena.Vec2{X: x, Y: goal.Center.Y},
			Action: ActionMoveTo,
		})
	}
	return p
}
