package game

import (
	"encoding/json"
	"time"
)

// EventType enum for event classification
type EventType uint8

const (
	EventTypeUnknown EventType = iota
	EventTypeTick              // Tick boundary with RNG seed
	EventTypeGoalChange
	EventTypeReplan
	EventTypePickup
	EventTypeSteal
	EventTypeShot
	EventTypeScore
	EventTypeLevelChange
	EventTypeMatchEnd
)

// EventVersion for backwards compatibility in replay
const EventVersion uint8 = 1

// Event is the core event structure for the event log
type Event struct {
	Version   uint8     `json:"version"`   // Schema version
	Type      EventType `json:"type"`      // Event type
	Timestamp int64     `json:"timestamp"` // Unix nano
	Sequence  uint64    `json:"sequence"`  // Monotonic sequence
	TickNum   uint64    `json:"tickNum"`   // Game tick this occurred in
	AgentID   string    `json:"agentId"`   // Source agent (for rate limiting)
	Payload   []byte    `json:"payload"`   // JSON-encoded payload
}

// String returns human-readable event type
func (t EventType) String() string {
	switch t {
	case EventTypeTick:
		return "tick"
	case EventTypeGoalChange:
		return "goal_change"
	case EventTypeReplan:
		return "replan"
	case EventTypePickup:
		return "pickup"
	case EventTypeSteal:
		return "steal"
	case EventTypeShot:
		return "shot"
	case EventTypeScore:
		return "score"
	case EventTypeLevelChange:
		return "level_change"
	case EventTypeMatchEnd:
		return "match_end"
	default:
		return "unknown"
	}
}

// Typed payloads for different event types

// TickPayload contains tick boundary information for replay
type TickPayload struct {
	RNGSeed     int64 `json:"rngSeed"`
	DeltaTimeNs int64 `json:"deltaTimeNs"`
}

// GoalChangePayload records an agent switching goals
type GoalChangePayload struct {
	AgentID string `json:"agentId"`
	From    string `json:"from"`
	To      string `json:"to"`
}

// ReplanPayload records a navigation replan and why it happened
type ReplanPayload struct {
	AgentID string `json:"agentId"`
	Reason  string `json:"reason"`
	Failed  bool   `json:"failed"`
}

// PickupPayload records a loose ball pickup
type PickupPayload struct {
	AgentID string  `json:"agentId"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
}

// StealPayload records a possession change by steal
type StealPayload struct {
	StealerID string  `json:"stealerId"`
	VictimID  string  `json:"victimId"`
	Distance  float64 `json:"distance"`
}

// ShotPayload records a released shot
type ShotPayload struct {
	AgentID string  `json:"agentId"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Charge  float64 `json:"charge"`
	Quality float64 `json:"quality"`
}

// ScorePayload records a made basket
type ScorePayload struct {
	AgentID    string `json:"agentId"`
	Basket     string `json:"basket"`
	ScoreLeft  int    `json:"scoreLeft"`
	ScoreRight int    `json:"scoreRight"`
}

// LevelChangePayload records an arena swap
type LevelChangePayload struct {
	LevelID    string `json:"levelId"`
	Generation uint64 `json:"generation"`
}

// MatchEndPayload records final score
type MatchEndPayload struct {
	ScoreLeft  int    `json:"scoreLeft"`
	ScoreRight int    `json:"scoreRight"`
	Ticks      uint64 `json:"ticks"`
	Seed       int64  `json:"seed"`
}

// EncodePayload marshals a payload to JSON bytes
func EncodePayload(payload interface{}) []byte {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	return data
}

// NewEvent creates a new event with the current timestamp
func NewEvent(eventType EventType, tickNum uint64, agentID string, payload interface{}) Event {
	return Event{
		Version:   EventVersion,
		Type:      eventType,
		Timestamp: time.Now().UnixNano(),
		TickNum:   tickNum,
		AgentID:   agentID,
		Payload:   EncodePayload(payload),
	}
}
