package game

import (
	"encoding/json"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

const (
	EventBufferSize     = 1024                   // Circular buffer size
	MaxEventsPerSec     = 10000                  // Global rate limit
	MaxEventsPerAgent   = 200                    // Per-agent rate limit per second
	BatchFlushSize      = 64                     // Events per batch write
	BatchFlushInterval  = 100 * time.Millisecond // How often to flush
	AgentLimiterCleanup = 5 * time.Minute        // Cleanup interval for agent limiters
)

// BatchSink receives flushed event batches. The persistence layer
// registers one to mirror the JSONL stream into SQLite. Sinks run on
// the writer goroutine and must not block for long.
type BatchSink func(batch []Event)

// EventLog provides bounded, rate-limited event logging with backpressure
type EventLog struct {
	// Circular buffer (lock-free SPSC pattern)
	buffer    [EventBufferSize]Event
	writeHead uint64 // atomic - producer position
	readHead  uint64 // atomic - consumer position

	// Rate limiting keeps a chatty agent (replan storms) from
	// starving the log
	globalLimiter *rate.Limiter
	agentLimiters sync.Map // map[string]*agentLimiterEntry

	// Async writer
	writerWg sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
	running  atomic.Bool

	// File output
	filePath string
	file     *os.File
	fileMu   sync.Mutex

	// Extra consumers of flushed batches
	sinkMu sync.RWMutex
	sinks  []BatchSink

	// Stats for monitoring
	droppedCount uint64 // atomic
	totalCount   uint64 // atomic
}

// agentLimiterEntry tracks per-agent rate limiting
type agentLimiterEntry struct {
	limiter  *rate.Limiter
	lastUsed time.Time
}

// NewEventLog creates a new bounded event log
func NewEventLog() *EventLog {
	return &EventLog{
		globalLimiter: rate.NewLimiter(MaxEventsPerSec, MaxEventsPerSec/10),
		stopChan:      make(chan struct{}),
	}
}

// AddSink registers a batch consumer. Safe to call before Start.
func (el *EventLog) AddSink(sink BatchSink) {
	el.sinkMu.Lock()
	defer el.sinkMu.Unlock()
	el.sinks = append(el.sinks, sink)
}

// Start begins the async writer goroutine. filePath may be empty to
// run with sinks only.
func (el *EventLog) Start(filePath string) error {
	if el.running.Load() {
		return nil
	}

	el.filePath = filePath

	if filePath != "" {
		file, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}
		el.file = file
	}

	el.running.Store(true)
	el.writerWg.Add(2)
	go el.writerLoop()
	go el.cleanupLoop()

	return nil
}

// Stop gracefully shuts down the event log
func (el *EventLog) Stop() {
	el.stopOnce.Do(func() {
		el.running.Store(false)
		close(el.stopChan)
		el.writerWg.Wait()

		el.fileMu.Lock()
		if el.file != nil {
			el.file.Close()
		}
		el.fileMu.Unlock()
	})
}

// Emit adds an event with rate limiting.
// Returns false if rate limited or buffer full.
func (el *EventLog) Emit(event Event) bool {
	if !el.running.Load() {
		return false
	}

	if !el.globalLimiter.Allow() {
		atomic.AddUint64(&el.droppedCount, 1)
		return false
	}

	if event.AgentID != "" {
		limiter := el.getAgentLimiter(event.AgentID)
		if !limiter.Allow() {
			atomic.AddUint64(&el.droppedCount, 1)
			return false
		}
	}

	// Acquire write slot in circular buffer
	head := atomic.AddUint64(&el.writeHead, 1)
	tail := atomic.LoadUint64(&el.readHead)

	// Buffer full: drop oldest events (rolling window)
	if head-tail >= EventBufferSize {
		atomic.AddUint64(&el.readHead, 1)
		atomic.AddUint64(&el.droppedCount, 1)
	}

	// head is one past the slot for this event: event n lives at
	// index n-1, matching collectBatch's tail..head-1 scan.
	event.Sequence = head
	idx := (head - 1) % EventBufferSize
	el.buffer[idx] = event

	atomic.AddUint64(&el.totalCount, 1)
	return true
}

// EmitSimple is a convenience method to emit an event with automatic creation
func (el *EventLog) EmitSimple(eventType EventType, tickNum uint64, agentID string, payload interface{}) bool {
	return el.Emit(NewEvent(eventType, tickNum, agentID, payload))
}

// getAgentLimiter returns/creates a per-agent rate limiter
func (el *EventLog) getAgentLimiter(agentID string) *rate.Limiter {
	if entry, ok := el.agentLimiters.Load(agentID); ok {
		e := entry.(*agentLimiterEntry)
		e.lastUsed = time.Now()
		return e.limiter
	}

	entry := &agentLimiterEntry{
		limiter:  rate.NewLimiter(MaxEventsPerAgent, MaxEventsPerAgent/10),
		lastUsed: time.Now(),
	}
	actual, _ := el.agentLimiters.LoadOrStore(agentID, entry)
	return actual.(*agentLimiterEntry).limiter
}

// writerLoop batches and writes events to disk asynchronously
func (el *EventLog) writerLoop() {
	defer el.writerWg.Done()

	ticker := time.NewTicker(BatchFlushInterval)
	defer ticker.Stop()

	batch := make([]Event, 0, BatchFlushSize)

	for {
		select {
		case <-el.stopChan:
			// Final flush
			batch = el.collectBatch(batch[:0])
			if len(batch) > 0 {
				el.flushBatch(batch)
			}
			return

		case <-ticker.C:
			batch = el.collectBatch(batch[:0])
			if len(batch) > 0 {
				el.flushBatch(batch)
			}
		}
	}
}

// cleanupLoop removes stale agent limiters to prevent memory leak
func (el *EventLog) cleanupLoop() {
	defer el.writerWg.Done()

	ticker := time.NewTicker(AgentLimiterCleanup)
	defer ticker.Stop()

	for {
		select {
		case <-el.stopChan:
			return
		case <-ticker.C:
			el.cleanupAgentLimiters()
		}
	}
}

func (el *EventLog) cleanupAgentLimiters() {
	cutoff := time.Now().Add(-AgentLimiterCleanup)
	el.agentLimiters.Range(func(key, value interface{}) bool {
		entry := value.(*agentLimiterEntry)
		if entry.lastUsed.Before(cutoff) {
			el.agentLimiters.Delete(key)
		}
		return true
	})
}

// collectBatch reads available events from circular buffer
func (el *EventLog) collectBatch(batch []Event) []Event {
	head := atomic.LoadUint64(&el.writeHead)
	tail := atomic.LoadUint64(&el.readHead)

	for i := tail; i < head && len(batch) < BatchFlushSize; i++ {
		idx := i % EventBufferSize
		batch = append(batch, el.buffer[idx])
	}

	if len(batch) > 0 {
		atomic.AddUint64(&el.readHead, uint64(len(batch)))
	}

	return batch
}

// flushBatch writes events to disk (append-only, newline-delimited
// JSON) and hands the batch to registered sinks.
func (el *EventLog) flushBatch(batch []Event) {
	el.fileMu.Lock()
	if el.file != nil {
		for _, event := range batch {
			data, err := json.Marshal(event)
			if err != nil {
				continue
			}
			el.file.Write(data)
			el.file.Write([]byte("\n"))
		}
	}
	el.fileMu.Unlock()

	el.sinkMu.RLock()
	sinks := el.sinks
	el.sinkMu.RUnlock()
	for _, sink := range sinks {
		sink(batch)
	}
}

// GetStats returns metrics for monitoring
func (el *EventLog) GetStats() map[string]interface{} {
	head := atomic.LoadUint64(&el.writeHead)
	tail := atomic.LoadUint64(&el.readHead)

	return map[string]interface{}{
		"total":   atomic.LoadUint64(&el.totalCount),
		"dropped": atomic.LoadUint64(&el.droppedCount),
		"pending": head - tail,
		"running": el.running.Load(),
	}
}

// GetDroppedCount returns the number of dropped events
func (el *EventLog) GetDroppedCount() uint64 {
	return atomic.LoadUint64(&el.droppedCount)
}

// GetTotalCount returns the total number of events processed
func (el *EventLog) GetTotalCount() uint64 {
	return atomic.LoadUint64(&el.totalCount)
}
