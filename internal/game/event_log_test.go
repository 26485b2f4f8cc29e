package game

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// TestEventLogRequiresStart tests that emits before Start are dropped.
func TestEventLogRequiresStart(t *testing.T) {
	el := NewEventLog()
	if el.EmitSimple(EventTypeTick, 1, "", TickPayload{RNGSeed: 1}) {
		t.Error("emit before Start should return false")
	}
	if el.GetTotalCount() != 0 {
		t.Errorf("total = %d, want 0", el.GetTotalCount())
	}
	if el.GetStats()["running"].(bool) {
		t.Error("stats should report not running")
	}
}

// TestEventLogSinkDelivery tests that every emitted event reaches a
// registered sink, in order, by the time Stop returns.
func TestEventLogSinkDelivery(t *testing.T) {
	el := NewEventLog()

	var mu sync.Mutex
	var got []Event
	el.AddSink(func(batch []Event) {
		mu.Lock()
		got = append(got, batch...)
		mu.Unlock()
	})

	if err := el.Start(""); err != nil {
		t.Fatal(err)
	}

	if !el.EmitSimple(EventTypePickup, 10, "agent-left", PickupPayload{AgentID: "agent-left"}) {
		t.Fatal("emit failed")
	}
	if !el.EmitSimple(EventTypeShot, 11, "agent-left", ShotPayload{AgentID: "agent-left"}) {
		t.Fatal("emit failed")
	}
	if !el.EmitSimple(EventTypeScore, 12, "agent-left", ScorePayload{AgentID: "agent-left"}) {
		t.Fatal("emit failed")
	}

	// Stop does a final flush before returning.
	el.Stop()

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 3 {
		t.Fatalf("sink received %d events, want 3", len(got))
	}
	wantTypes := []EventType{EventTypePickup, EventTypeShot, EventTypeScore}
	for i, ev := range got {
		if ev.Type != wantTypes[i] {
			t.Errorf("event %d type = %s, want %s", i, ev.Type, wantTypes[i])
		}
		if ev.Sequence != uint64(i+1) {
			t.Errorf("event %d sequence = %d, want %d", i, ev.Sequence, i+1)
		}
		if ev.TickNum != uint64(10+i) {
			t.Errorf("event %d tick = %d, want %d", i, ev.TickNum, 10+i)
		}
	}
}

// TestEventLogFileOutput tests the JSONL file stream.
func TestEventLogFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	el := NewEventLog()
	if err := el.Start(path); err != nil {
		t.Fatal(err)
	}

	el.EmitSimple(EventTypeGoalChange, 5, "agent-right",
		GoalChangePayload{AgentID: "agent-right", From: "idle", To: "chase_ball"})
	el.Stop()

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		t.Fatal("file is empty")
	}
	var ev Event
	if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
		t.Fatalf("bad JSONL line: %v", err)
	}
	if ev.Type != EventTypeGoalChange || ev.TickNum != 5 || ev.AgentID != "agent-right" {
		t.Errorf("decoded event = %+v", ev)
	}
	var payload GoalChangePayload
	if err := json.Unmarshal(ev.Payload, &payload); err != nil {
		t.Fatalf("bad payload: %v", err)
	}
	if payload.To != "chase_ball" {
		t.Errorf("payload to = %q", payload.To)
	}
	if scanner.Scan() {
		t.Error("expected a single line")
	}
}

// TestEventLogAgentRateLimit tests that a chatty agent gets throttled
// without affecting the counters of accepted events.
func TestEventLogAgentRateLimit(t *testing.T) {
	el := NewEventLog()
	if err := el.Start(""); err != nil {
		t.Fatal(err)
	}
	defer el.Stop()

	accepted := 0
	for i := 0; i < MaxEventsPerAgent; i++ {
		if el.EmitSimple(EventTypeReplan, uint64(i), "agent-left",
			ReplanPayload{AgentID: "agent-left", Reason: "stuck"}) {
			accepted++
		}
	}

	if el.GetDroppedCount() == 0 {
		t.Error("a replan storm should trip the per-agent limiter")
	}
	if got := el.GetTotalCount(); got != uint64(accepted) {
		t.Errorf("total = %d, want %d accepted", got, accepted)
	}
}
