package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// DefaultMaxSpectators caps total websocket connections when the
	// server config doesn't say otherwise.
	DefaultMaxSpectators = 500

	// MaxWSConnectionsPerIP caps spectator connections per client IP.
	MaxWSConnectionsPerIP = 10

	// SnapshotBroadcastInterval is the spectator push cadence. The
	// simulation ticks faster than this; viewers only need a rendering
	// rate.
	SnapshotBroadcastInterval = 50 * time.Millisecond
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if IsAllowedOrigin(origin) {
			return true
		}
		log.Printf("⚠️ WebSocket connection rejected from origin: %s", origin)
		RecordConnectionRejected("origin")
		return false
	},
}

// WebSocketHub fans match snapshots out to spectator connections.
// Spectators are read-only; the hub never receives anything beyond
// close frames.
type WebSocketHub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]string // conn -> source IP

	maxTotal  int
	ipLimiter *WebSocketRateLimiter
}

func NewWebSocketHub(maxSpectators int) *WebSocketHub {
	if maxSpectators <= 0 {
		maxSpectators = DefaultMaxSpectators
	}
	return &WebSocketHub{
		clients:   make(map[*websocket.Conn]string),
		maxTotal:  maxSpectators,
		ipLimiter: NewWebSocketRateLimiter(MaxWSConnectionsPerIP),
	}
}

// ClientCount returns the number of connected spectators.
func (h *WebSocketHub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast sends an event envelope to every spectator. Connections
// that fail to write are dropped.
func (h *WebSocketHub) Broadcast(event string, data interface{}) {
	msg, err := json.Marshal(map[string]interface{}{
		"event": event,
		"data":  data,
	})
	if err != nil {
		return
	}

	var dead []*websocket.Conn
	h.mu.Lock()
	for conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			dead = append(dead, conn)
		}
	}
	for _, conn := range dead {
		h.dropLocked(conn)
	}
	count := len(h.clients)
	h.mu.Unlock()

	IncrementWSMessages()
	if len(dead) > 0 {
		UpdateWSConnections(count)
	}
}

// dropLocked removes a connection and frees its IP slot. Caller holds
// mu.
func (h *WebSocketHub) dropLocked(conn *websocket.Conn) {
	ip, ok := h.clients[conn]
	if !ok {
		return
	}
	h.ipLimiter.Release(ip)
	delete(h.clients, conn)
	conn.Close()
}

// StartBroadcastLoop starts pushing match snapshots to spectators.
// Only new ticks are sent; an idle engine produces no traffic.
func (h *WebSocketHub) StartBroadcastLoop(engine EngineInterface) {
	ticker := time.NewTicker(SnapshotBroadcastInterval)

	go func() {
		var lastSeq uint64
		for range ticker.C {
			if h.ClientCount() == 0 {
				continue
			}

			snapshot := engine.GetSnapshot()
			if snapshot == nil || snapshot.Sequence == lastSeq {
				continue
			}
			lastSeq = snapshot.Sequence

			h.Broadcast("match:snapshot", snapshot)

			if engine.MatchOver() {
				left, right := engine.Score()
				h.Broadcast("match:over", map[string]interface{}{
					"left":  left,
					"right": right,
				})
			}
		}
	}()
}

// HandleWebSocket upgrades a spectator connection, enforcing the total
// and per-IP caps.
func (h *WebSocketHub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ip := GetClientIP(r)

	if h.ClientCount() >= h.maxTotal {
		log.Printf("⚠️ WebSocket connection rejected: spectator cap reached (%d)", h.maxTotal)
		RecordConnectionRejected("ws_total_limit")
		http.Error(w, "Too many connections", http.StatusServiceUnavailable)
		return
	}

	if !h.ipLimiter.Allow(ip) {
		log.Printf("⚠️ WebSocket connection rejected from %s: per-IP limit reached", ip)
		RecordConnectionRejected("ws_ip_limit")
		http.Error(w, "Too many connections from your IP", http.StatusTooManyRequests)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		h.ipLimiter.Release(ip)
		return
	}

	h.mu.Lock()
	h.clients[conn] = ip
	count := len(h.clients)
	h.mu.Unlock()

	log.Printf("📱 Spectator connected from %s (%d total)", ip, count)
	UpdateWSConnections(count)

	// Drain client messages; the read loop only exists to detect
	// disconnects.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		h.mu.Lock()
		h.dropLocked(conn)
		count := len(h.clients)
		h.mu.Unlock()
		log.Printf("📱 Spectator disconnected (%d remaining)", count)
		UpdateWSConnections(count)
	}()
}
