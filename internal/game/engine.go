package game

import (
	"fmt"
	"hash/fnv"
	"log"
	"math"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"hoop-club/internal/ai"
	"hoop-club/internal/arena"
)

// StealConfig tunes possession contests.
type StealConfig struct {
	// Chance is the per-attempt success probability.
	Chance float64
	// CooldownTicks gates attempts so melee range doesn't re-roll the
	// contest every tick.
	CooldownTicks int
}

func DefaultStealConfig() StealConfig {
	return StealConfig{Chance: 0.35, CooldownTicks: 30}
}

// EngineConfig is everything an engine needs at construction.
type EngineConfig struct {
	TickRate int
	// Seed fixes all randomness. Zero means seed from the clock.
	Seed int64
	// TargetScore ends the match when a side reaches it. Zero plays
	// forever.
	TargetScore int

	Movement ai.MovementSpec
	Nav      ai.NavConfig
	Goals    ai.GoalConfig
	Ball     BallConfig
	Steal    StealConfig
}

func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		TickRate: 60,
		Movement: ai.DefaultMovementSpec(),
		Nav:      ai.DefaultNavConfig(),
		Goals:    ai.DefaultGoalConfig(),
		Ball:     DefaultBallConfig(),
		Steal:    DefaultStealConfig(),
	}
}

// Engine runs the match: a fixed-tick loop that rebuilds the nav graph
// when the arena generation moves, runs each agent's controller, and
// integrates physics. All mutation happens under mu inside tick;
// readers consume published snapshots instead of locking.
type Engine struct {
	mu  sync.RWMutex
	cfg EngineConfig

	provider *arena.Provider
	profiles *ai.ProfileStore
	caps     *ai.Capabilities
	eval     *ai.ShotEvaluator
	builder  *ai.GraphBuilder
	graph    *ai.NavGraph

	players [2]*Player
	ball    Ball

	scoreLeft  int
	scoreRight int
	matchOver  bool

	tickCount uint64
	running   bool
	ticker    *time.Ticker
	stopChan  chan struct{}

	// Deterministic RNG for replay consistency
	rng     *rand.Rand
	rngSeed int64

	snapshots *SnapshotPool
	eventLog  *EventLog

	// Counters for observability
	graphRebuilds uint64 // atomic
	replans       uint64 // atomic
	failedPlans   uint64 // atomic
	goalChanges   uint64 // atomic
	shotsTaken    uint64 // atomic
	stealsMade    uint64 // atomic
}

// NewEngine builds an engine for the provider's current arena. Agent
// controllers get their own RNG streams derived from the engine seed,
// so goal selection is reproducible per seed.
func NewEngine(cfg EngineConfig, provider *arena.Provider, profiles *ai.ProfileStore, grids *ai.GridSet) *Engine {
	if cfg.TickRate <= 0 {
		cfg.TickRate = 60
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	cfg.Seed = seed

	a, _ := provider.Current()
	caps := ai.NewCapabilities(cfg.Movement)
	eval := ai.NewShotEvaluator(a.FloorY, grids)

	e := &Engine{
		cfg:       cfg,
		provider:  provider,
		profiles:  profiles,
		caps:      caps,
		eval:      eval,
		builder:   ai.NewGraphBuilder(caps, eval, cfg.Nav),
		stopChan:  make(chan struct{}),
		rng:       rand.New(rand.NewSource(seed)),
		rngSeed:   seed,
		snapshots: NewSnapshotPool(2),
		eventLog:  NewEventLog(),
	}

	names := [2]string{"home", "away"}
	for i := 0; i < 2; i++ {
		side := arena.Side(i)
		id := fmt.Sprintf("agent-%s", side)
		agentRNG := rand.New(rand.NewSource(seed + int64(i) + 1))
		ctrl := ai.NewController(id, caps, eval, agentRNG, cfg.Nav, cfg.Goals)
		ctrl.OnGoalChange = e.onGoalChange
		ctrl.OnReplan = e.onReplan
		e.players[i] = &Player{
			ID:         id,
			Name:       names[i],
			Side:       side,
			Profile:    "balanced",
			Controller: ctrl,
		}
	}

	e.resetPositions(a)
	e.ball.GiveTo(e.players[0])
	return e
}

// EventLog exposes the engine's event log for sinks and lifecycle.
func (e *Engine) EventLog() *EventLog { return e.eventLog }

// NavGraph returns the current navigation graph. Graphs are replaced
// wholesale on rebuild, never mutated, so sharing the pointer is safe.
func (e *Engine) NavGraph() *ai.NavGraph {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.graph
}

// Seed returns the seed the engine was started with.
func (e *Engine) Seed() int64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cfg.Seed
}

// SetProfile assigns a named profile to the player on side.
func (e *Engine) SetProfile(side arena.Side, name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.players[side].Profile = name
}

// Start begins the game loop
func (e *Engine) Start() {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	e.running = true
	e.mu.Unlock()

	e.ticker = time.NewTicker(time.Second / time.Duration(e.cfg.TickRate))

	go func() {
		for {
			select {
			case <-e.ticker.C:
				e.Step()
			case <-e.stopChan:
				return
			}
		}
	}()

	log.Printf("🏀 Match engine started at %d TPS", e.cfg.TickRate)
}

// Stop stops the game loop
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		return
	}

	e.running = false
	if e.ticker != nil {
		e.ticker.Stop()
	}
	close(e.stopChan)
	log.Println("🛑 Match engine stopped")
}

// Step advances the simulation one tick. The server loop calls it on
// a ticker; harnesses and tests call it directly.
func (e *Engine) Step() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.matchOver {
		return
	}

	e.tickCount++
	dt := 1.0 / float64(e.cfg.TickRate)

	// Log tick boundary with RNG seed for deterministic replay, then
	// advance the seed.
	e.eventLog.EmitSimple(EventTypeTick, e.tickCount, "",
		TickPayload{RNGSeed: e.rngSeed, DeltaTimeNs: int64(dt * 1e9)})
	e.rngSeed = e.rng.Int63()
	e.rng.Seed(e.rngSeed)

	a, generation := e.provider.Current()

	// The graph is current iff its generation matches the arena's.
	// Any mismatch is a wholesale rebuild.
	if !e.graph.Current(generation) {
		e.graph = e.builder.Build(a, generation)
		atomic.AddUint64(&e.graphRebuilds, 1)
	}

	// Decide: every controller sees the same pre-tick world.
	for i, p := range e.players {
		if p.Controller == nil {
			continue
		}
		view := e.viewFor(a, p, e.players[1-i])
		prof := e.profiles.Get(p.Profile)
		p.SetIntent(p.Controller.Update(view, e.graph, prof))
	}

	// Act.
	for _, p := range e.players {
		p.applyMovement(e.cfg.Movement, dt)
		p.applyGravity(e.cfg.Movement, dt)
		p.integrate(a, e.cfg.Movement, dt)
		if p.stealCooldown > 0 {
			p.stealCooldown--
		}
		if p.HasBall {
			p.HeldTicks++
		}
	}

	e.resolvePossession()
	e.resolveShot(a)
	e.ball.step(a, e.cfg.Ball, dt)
	if holder := e.holder(); holder != nil {
		e.ball.carry(holder, e.cfg.Movement.PlayerHeight)
	}
	e.resolveScoring(a)

	e.publishSnapshot(a, generation)
}

// viewFor assembles one agent's immutable view of the world.
func (e *Engine) viewFor(a *arena.Arena, p, opp *Player) ai.WorldView {
	return ai.WorldView{
		Tick:            e.tickCount,
		TickRate:        float64(e.cfg.TickRate),
		Pos:             p.Pos(),
		Vel:             arena.Vec2{X: p.VX, Y: p.VY},
		Grounded:        p.Grounded,
		HasBall:         p.HasBall,
		HeldTicks:       p.HeldTicks,
		BallPos:         e.ball.Pos(),
		BallFree:        e.ball.State == BallFree,
		Opponent:        opp.Pos(),
		OpponentHasBall: opp.HasBall,
		TargetBasket:    a.Basket(p.TargetSide()),
		DefendedBasket:  a.Basket(p.Side),
	}
}

func (e *Engine) holder() *Player {
	for _, p := range e.players {
		if p.HasBall {
			return p
		}
	}
	return nil
}

// resolvePossession handles pickups of a free ball and steal contests
// against a holder.
func (e *Engine) resolvePossession() {
	holder := e.holder()

	for i, p := range e.players {
		if !p.Intent().Pickup {
			continue
		}

		if holder == nil && e.ball.State == BallFree {
			if p.Pos().DistanceTo(e.ball.Pos()) <= e.cfg.Ball.PickupRadius {
				e.ball.GiveTo(p)
				e.eventLog.EmitSimple(EventTypePickup, e.tickCount, p.ID,
					PickupPayload{AgentID: p.ID, X: e.ball.X, Y: e.ball.Y})
				return
			}
			continue
		}

		opp := e.players[1-i]
		if holder != opp || p.stealCooldown > 0 {
			continue
		}
		dist := p.Pos().DistanceTo(opp.Pos())
		prof := e.profiles.Get(p.Profile)
		if dist > prof.StealRange {
			continue
		}
		p.stealCooldown = e.cfg.Steal.CooldownTicks
		if e.rng.Float64() >= e.cfg.Steal.Chance {
			continue
		}
		opp.HasBall = false
		e.ball.GiveTo(p)
		atomic.AddUint64(&e.stealsMade, 1)
		e.eventLog.EmitSimple(EventTypeSteal, e.tickCount, p.ID,
			StealPayload{StealerID: p.ID, VictimID: opp.ID, Distance: dist})
		return
	}
}

// resolveShot launches the ball when a charging holder releases.
func (e *Engine) resolveShot(a *arena.Arena) {
	holder := e.holder()
	if holder == nil || !holder.Intent().Release {
		return
	}

	basket := a.Basket(holder.TargetSide())
	prof := e.profiles.Get(holder.Profile)
	quality := e.eval.Evaluate(holder.Pos(), basket)

	state := ai.GoalState{}
	if holder.Controller != nil {
		state = holder.Controller.State()
	}
	chargeSecs := float64(state.ChargeTicks) / float64(e.cfg.TickRate)
	chargeFrac := clampF(chargeSecs/prof.ChargeMax, 0, 1)

	holder.HasBall = false
	e.ball.Drop()
	e.ball.State = BallInFlight
	e.ball.ShooterID = holder.ID
	e.launchAt(basket.Pos, quality, chargeFrac)

	atomic.AddUint64(&e.shotsTaken, 1)
	e.eventLog.EmitSimple(EventTypeShot, e.tickCount, holder.ID,
		ShotPayload{AgentID: holder.ID, X: e.ball.X, Y: e.ball.Y, Charge: chargeFrac, Quality: quality})
}

// launchAt solves a ballistic arc from the ball to the target and
// scatters it by how bad the position and charge were.
func (e *Engine) launchAt(target arena.Vec2, quality, chargeFrac float64) {
	cfg := e.cfg.Ball
	dx := target.X - e.ball.X
	dy := target.Y - e.ball.Y
	dist := math.Hypot(dx, dy)

	t := cfg.BaseFlightTime + dist*cfg.FlightTimePer
	vx := dx / t
	vy := (dy + 0.5*cfg.Gravity*t*t) / t

	accuracy := quality * chargeFrac
	noise := (e.rng.Float64()*2 - 1) * (1 - accuracy) * cfg.MaxAngleNoise
	sin, cos := math.Sin(noise), math.Cos(noise)
	e.ball.VX = vx*cos - vy*sin
	e.ball.VY = vx*sin + vy*cos
	e.ball.prevY = e.ball.Y
}

// resolveScoring checks both baskets for a made shot.
func (e *Engine) resolveScoring(a *arena.Arena) {
	for _, side := range []arena.Side{arena.SideLeft, arena.SideRight} {
		basket := a.Basket(side)
		if !e.ball.crossedScoreZone(basket) {
			continue
		}

		// A basket on `side` is scored by the player attacking it.
		var scorer *Player
		for _, p := range e.players {
			if p.TargetSide() == side {
				scorer = p
			}
		}
		if side == arena.SideLeft {
			e.scoreRight++
		} else {
			e.scoreLeft++
		}

		e.eventLog.EmitSimple(EventTypeScore, e.tickCount, scorer.ID, ScorePayload{
			AgentID:    scorer.ID,
			Basket:     side.String(),
			ScoreLeft:  e.scoreLeft,
			ScoreRight: e.scoreRight,
		})
		log.Printf("🎯 %s scores on the %s basket (%d - %d)",
			scorer.Name, side, e.scoreLeft, e.scoreRight)

		if e.cfg.TargetScore > 0 &&
			(e.scoreLeft >= e.cfg.TargetScore || e.scoreRight >= e.cfg.TargetScore) {
			e.matchOver = true
			e.eventLog.EmitSimple(EventTypeMatchEnd, e.tickCount, "", MatchEndPayload{
				ScoreLeft:  e.scoreLeft,
				ScoreRight: e.scoreRight,
				Ticks:      e.tickCount,
				Seed:       e.cfg.Seed,
			})
			return
		}

		// Conceding side inbounds.
		e.resetPositions(a)
		e.ball.GiveTo(e.players[side])
		return
	}
}

// resetPositions puts both players back at their spawn spots.
func (e *Engine) resetPositions(a *arena.Arena) {
	floor := a.Floor()
	spawnY := floor.Bounds.Top + e.cfg.Movement.PlayerHeight/2
	for _, p := range e.players {
		x := a.Width / 4
		if p.Side == arena.SideLeft {
			x = -x
		}
		p.X, p.Y = x, spawnY
		p.VX, p.VY = 0, 0
		p.Grounded = true
		p.HasBall = false
		p.HeldTicks = 0
	}
	e.ball.X, e.ball.Y = 0, spawnY
	e.ball.VX, e.ball.VY = 0, 0
	e.ball.State = BallFree
	e.ball.HolderID = ""
}

// SwapArena installs a new arena, bumping the generation so the next
// tick rebuilds the nav graph, and restarts positions.
func (e *Engine) SwapArena(a *arena.Arena) {
	e.mu.Lock()
	defer e.mu.Unlock()

	generation := e.provider.Swap(a)
	e.eval = ai.NewShotEvaluator(a.FloorY, nil)
	e.builder = ai.NewGraphBuilder(e.caps, e.eval, e.cfg.Nav)
	e.resetPositions(a)
	e.ball.GiveTo(e.players[0])
	e.eventLog.EmitSimple(EventTypeLevelChange, e.tickCount, "",
		LevelChangePayload{LevelID: a.ID, Generation: generation})
}

func (e *Engine) onGoalChange(gc ai.GoalChange) {
	atomic.AddUint64(&e.goalChanges, 1)
	e.eventLog.EmitSimple(EventTypeGoalChange, gc.Tick, gc.AgentID,
		GoalChangePayload{AgentID: gc.AgentID, From: gc.From.String(), To: gc.To.String()})
}

func (e *Engine) onReplan(re ai.ReplanEvent) {
	atomic.AddUint64(&e.replans, 1)
	if re.Failed {
		atomic.AddUint64(&e.failedPlans, 1)
	}
	e.eventLog.EmitSimple(EventTypeReplan, re.Tick, re.AgentID,
		ReplanPayload{AgentID: re.AgentID, Reason: re.Reason.String(), Failed: re.Failed})
}

// publishSnapshot copies the post-tick state into the lock-free pool.
func (e *Engine) publishSnapshot(a *arena.Arena, generation uint64) {
	snap := e.snapshots.AcquireWrite()
	snap.TickNumber = e.tickCount
	snap.RNGSeed = e.rngSeed
	snap.LevelID = a.ID
	snap.Generation = generation
	snap.ScoreLeft = e.scoreLeft
	snap.ScoreRight = e.scoreRight

	for _, p := range e.players {
		goal := ""
		charge := 0.0
		if p.Controller != nil {
			state := p.Controller.State()
			goal = state.Current.String()
			if state.Current == ai.GoalChargeShot && state.ChargeTargetTicks > 0 {
				charge = clampF(float64(state.ChargeTicks)/float64(state.ChargeTargetTicks), 0, 1)
			}
		}
		snap.Agents = append(snap.Agents, AgentSnapshot{
			ID:       p.ID,
			Name:     p.Name,
			Side:     p.Side.String(),
			Profile:  p.Profile,
			X:        p.X,
			Y:        p.Y,
			VX:       p.VX,
			VY:       p.VY,
			Grounded: p.Grounded,
			HasBall:  p.HasBall,
			Goal:     goal,
			Charge:   charge,
		})
	}

	snap.Ball = BallSnapshot{
		X: e.ball.X, Y: e.ball.Y,
		VX: e.ball.VX, VY: e.ball.VY,
		State:    e.ball.State.String(),
		HolderID: e.ball.HolderID,
	}

	e.snapshots.PublishWrite()
}

// GetSnapshot returns the latest published snapshot without taking the
// engine lock.
func (e *Engine) GetSnapshot() *Snapshot {
	return e.snapshots.AcquireRead()
}

// Score returns the current score.
func (e *Engine) Score() (left, right int) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.scoreLeft, e.scoreRight
}

// MatchOver reports whether the target score has been reached.
func (e *Engine) MatchOver() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.matchOver
}

// TickCount returns the number of ticks simulated.
func (e *Engine) TickCount() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.tickCount
}

// Stats returns counters for observability scraping.
func (e *Engine) Stats() map[string]uint64 {
	return map[string]uint64{
		"graph_rebuilds": atomic.LoadUint64(&e.graphRebuilds),
		"replans":        atomic.LoadUint64(&e.replans),
		"failed_plans":   atomic.LoadUint64(&e.failedPlans),
		"goal_changes":   atomic.LoadUint64(&e.goalChanges),
		"shots_taken":    atomic.LoadUint64(&e.shotsTaken),
		"steals_made":    atomic.LoadUint64(&e.stealsMade),
	}
}

// StateDigest hashes the dynamic state, for determinism checks: two
// runs with the same seed and tick count must produce equal digests.
func (e *Engine) StateDigest() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()

	h := fnv.New64a()
	write := func(v float64) {
		var buf [8]byte
		bits := math.Float64bits(v)
		for i := 0; i < 8; i++ {
			buf[i] = byte(bits >> (8 * i))
		}
		h.Write(buf[:])
	}
	for _, p := range e.players {
		write(p.X)
		write(p.Y)
		write(p.VX)
		write(p.VY)
		if p.HasBall {
			write(1)
		} else {
			write(0)
		}
	}
	write(e.ball.X)
	write(e.ball.Y)
	write(float64(e.scoreLeft))
	write(float64(e.scoreRight))
	return h.Sum64()
}
