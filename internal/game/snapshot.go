package game

import (
	"sync/atomic"
	"time"
)

// AgentSnapshot is an immutable copy of agent state for readers.
// Value types only so a published snapshot can never mutate.
type AgentSnapshot struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Side     string  `json:"side"`
	Profile  string  `json:"profile"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	VX       float64 `json:"vx"`
	VY       float64 `json:"vy"`
	Grounded bool    `json:"grounded"`
	HasBall  bool    `json:"hasBall"`
	Goal     string  `json:"goal"`
	Charge   float64 `json:"charge"` // charge progress in [0,1], 0 when not charging
}

// BallSnapshot is an immutable copy of ball state.
type BallSnapshot struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	VX       float64 `json:"vx"`
	VY       float64 `json:"vy"`
	State    string  `json:"state"`
	HolderID string  `json:"holderId,omitempty"`
}

// Snapshot is a complete immutable game state published once per tick.
type Snapshot struct {
	Sequence   uint64    `json:"sequence"`
	Timestamp  time.Time `json:"timestamp"`
	TickNumber uint64    `json:"tickNumber"`
	RNGSeed    int64     `json:"rngSeed"`

	LevelID    string `json:"levelId"`
	Generation uint64 `json:"generation"`

	Agents     []AgentSnapshot `json:"agents"`
	Ball       BallSnapshot    `json:"ball"`
	ScoreLeft  int             `json:"scoreLeft"`
	ScoreRight int             `json:"scoreRight"`
}

// SnapshotPool triple-buffers snapshots so readers (websocket hub,
// HTTP handlers) never take the engine lock.
type SnapshotPool struct {
	snapshots [3]Snapshot
	writeIdx  uint32 // atomic - producer index
	readIdx   uint32 // atomic - consumer index
	sequence  uint64 // atomic - monotonic sequence
}

func NewSnapshotPool(maxAgents int) *SnapshotPool {
	pool := &SnapshotPool{}
	for i := 0; i < 3; i++ {
		pool.snapshots[i].Agents = make([]AgentSnapshot, 0, maxAgents)
	}
	return pool
}

// AcquireWrite gets the next write slot (producer only, called from
// the game tick). Slices are reset but keep capacity.
func (p *SnapshotPool) AcquireWrite() *Snapshot {
	idx := atomic.AddUint32(&p.writeIdx, 1) % 3
	snap := &p.snapshots[idx]

	snap.Agents = snap.Agents[:0]
	snap.Sequence = atomic.AddUint64(&p.sequence, 1)
	snap.Timestamp = time.Now()

	return snap
}

// PublishWrite marks write complete and advances the read pointer.
func (p *SnapshotPool) PublishWrite() {
	atomic.StoreUint32(&p.readIdx, atomic.LoadUint32(&p.writeIdx))
}

// AcquireRead gets the latest complete snapshot (consumers).
func (p *SnapshotPool) AcquireRead() *Snapshot {
	idx := atomic.LoadUint32(&p.readIdx) % 3
	return &p.snapshots[idx]
}
