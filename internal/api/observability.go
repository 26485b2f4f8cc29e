package api

import (
	"encoding/json"
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hoop-club/internal/game"
)

// Metrics with bounded cardinality (no per-client labels to prevent DoS)
var (
	// Simulation metrics
	graphRebuilds = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nav_graph_rebuilds_total",
		Help: "Navigation graph rebuilds after arena changes",
	})

	replans = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nav_replans_total",
		Help: "Path replans by trigger",
	}, []string{"reason"}) // Bounded: "no_plan", "target_moved", "stuck", "graph_rebuilt"

	failedPlans = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nav_failed_plans_total",
		Help: "Plans that fell back to direct movement",
	})

	goalChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agent_goal_changes_total",
		Help: "Goal transitions by new goal",
	}, []string{"goal"}) // Bounded by the goal enum

	shotsTaken = promauto.NewCounter(prometheus.CounterOpts{
		Name: "match_shots_total",
		Help: "Shots released",
	})

	baskets = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "match_baskets_total",
		Help: "Baskets scored by side",
	}, []string{"side"}) // Bounded: "left", "right"

	steals = promauto.NewCounter(prometheus.CounterOpts{
		Name: "match_steals_total",
		Help: "Successful steal contests",
	})

	// Event log metrics
	eventLogTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "event_log_total",
		Help: "Total events logged",
	})

	eventLogDropped = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "event_log_dropped_total",
		Help: "Events dropped due to rate limiting or buffer full",
	})

	// DoS detection metrics - use ONLY bounded label values
	connectionRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "connection_rejected_total",
		Help: "Connections rejected by rate limiter or origin check",
	}, []string{"reason"}) // Bounded: "rate_limit", "origin", "ws_total_limit", "ws_ip_limit"

	// WebSocket metrics
	wsConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "websocket_connections_active",
		Help: "Currently active WebSocket connections",
	})

	wsMessagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "websocket_messages_total",
		Help: "Total WebSocket messages sent",
	})
)

// ObservabilityConfig configures the debug server
type ObservabilityConfig struct {
	Enabled       bool
	ListenAddr    string // MUST be "127.0.0.1:6060" in production
	BasicAuthUser string // Optional basic auth
	BasicAuthPass string
}

// DefaultObservabilityConfig returns safe defaults
func DefaultObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		Enabled:    true,
		ListenAddr: "127.0.0.1:6060", // Localhost only - NEVER expose externally
	}
}

// StartDebugServer starts the internal observability server
// CRITICAL: This MUST bind to localhost only to prevent pprof-based DoS
func StartDebugServer(cfg ObservabilityConfig) error {
	if !cfg.Enabled {
		log.Println("📊 Debug server disabled")
		return nil
	}

	// SECURITY: Validate address is localhost
	if cfg.ListenAddr != "127.0.0.1:6060" && cfg.ListenAddr != "localhost:6060" {
		// Only allow external binding if explicitly enabled via env
		if os.Getenv("ALLOW_DEBUG_EXTERNAL") != "true" {
			log.Println("⚠️ Debug server forced to localhost for security")
			cfg.ListenAddr = "127.0.0.1:6060"
		}
	}

	mux := http.NewServeMux()

	// pprof endpoints for profiling
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	// Prometheus metrics endpoint
	mux.Handle("/metrics", promhttp.Handler())

	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Optional basic auth wrapper
	var handler http.Handler = mux
	if cfg.BasicAuthUser != "" {
		handler = basicAuthMiddleware(cfg.BasicAuthUser, cfg.BasicAuthPass, mux)
	}

	go func() {
		log.Printf("📊 Debug server starting on %s", cfg.ListenAddr)
		log.Printf("   - pprof:   http://%s/debug/pprof/", cfg.ListenAddr)
		log.Printf("   - metrics: http://%s/metrics", cfg.ListenAddr)

		if err := http.ListenAndServe(cfg.ListenAddr, handler); err != nil {
			log.Printf("⚠️ Debug server error: %v", err)
		}
	}()

	return nil
}

// basicAuthMiddleware adds basic authentication to the handler
func basicAuthMiddleware(user, pass string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || u != user || p != pass {
			w.Header().Set("WWW-Authenticate", `Basic realm="debug"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RecordGraphRebuild increments the graph rebuild counter
func RecordGraphRebuild() {
	graphRebuilds.Inc()
}

// RecordReplan increments the replan counter for the given trigger
func RecordReplan(reason string, failed bool) {
	replans.WithLabelValues(reason).Inc()
	if failed {
		failedPlans.Inc()
	}
}

// RecordGoalChange increments the goal transition counter
func RecordGoalChange(goal string) {
	goalChanges.WithLabelValues(goal).Inc()
}

// RecordShot increments the shot counter
func RecordShot() {
	shotsTaken.Inc()
}

// RecordBasket increments the basket counter for the scoring side
func RecordBasket(side string) {
	baskets.WithLabelValues(side).Inc()
}

// RecordSteal increments the steal counter
func RecordSteal() {
	steals.Inc()
}

// UpdateEventLogStats updates event log gauges, called periodically
// from the main loop
func UpdateEventLogStats(total, dropped uint64) {
	eventLogTotal.Set(float64(total))
	eventLogDropped.Set(float64(dropped))
}

// MetricsSink is a game.BatchSink that mirrors the event stream into
// Prometheus. Attach it to the engine's event log alongside the
// persistence sink.
func MetricsSink(batch []game.Event) {
	for _, e := range batch {
		switch e.Type {
		case game.EventTypeGoalChange:
			var p game.GoalChangePayload
			if json.Unmarshal(e.Payload, &p) == nil {
				RecordGoalChange(p.To)
			}
		case game.EventTypeReplan:
			var p game.ReplanPayload
			if json.Unmarshal(e.Payload, &p) == nil {
				RecordReplan(p.Reason, p.Failed)
			}
		case game.EventTypeShot:
			RecordShot()
		case game.EventTypeSteal:
			RecordSteal()
		case game.EventTypeScore:
			var p game.ScorePayload
			if json.Unmarshal(e.Payload, &p) == nil {
				RecordBasket(p.Basket)
			}
		case game.EventTypeLevelChange:
			// Every arena swap forces a graph rebuild on the next tick.
			RecordGraphRebuild()
		}
	}
}

// StartEventLogStatsLoop keeps the event log gauges current. Returns
// immediately; the updates run on their own ticker.
func StartEventLogStatsLoop(el *game.EventLog, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	go func() {
		for range time.Tick(interval) {
			UpdateEventLogStats(el.GetTotalCount(), el.GetDroppedCount())
		}
	}()
}

// RecordConnectionRejected increments the rejection counter
// reason must be one of: "rate_limit", "origin", "ws_total_limit", "ws_ip_limit"
func RecordConnectionRejected(reason string) {
	connectionRejected.WithLabelValues(reason).Inc()
}

// UpdateWSConnections updates WebSocket connection count
func UpdateWSConnections(count int) {
	wsConnectionsActive.Set(float64(count))
}

// IncrementWSMessages increments WebSocket message counter
func IncrementWSMessages() {
	wsMessagesTotal.Inc()
}
