package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"hoop-club/internal/ai"
	"hoop-club/internal/arena"
	"hoop-club/internal/game"
	"hoop-club/internal/persistence"
)

// EngineInterface defines the engine methods used by the API.
// This interface enables mocking for tests without spinning up the full
// simulation loop. Keep this minimal - only include methods the API
// layer actually calls.
type EngineInterface interface {
	// GetSnapshot returns the latest lock-free immutable snapshot
	GetSnapshot() *game.Snapshot
	// Score returns the current score
	Score() (left, right int)
	// MatchOver reports whether the match has been decided
	MatchOver() bool
	// TickCount returns the number of ticks simulated
	TickCount() uint64
	// Stats returns decision and navigation counters
	Stats() map[string]uint64
	// NavGraph returns the current navigation graph
	NavGraph() *ai.NavGraph
	// Seed returns the match seed
	Seed() int64
	// SetProfile swaps the behaviour profile of the agent defending the
	// given side
	SetProfile(side arena.Side, name string)
	// SwapArena replaces the arena mid-match
	SwapArena(a *arena.Arena)
}

// StatsStore is the subset of the persistence layer the API reads
// from. A nil store disables the history endpoints.
type StatsStore interface {
	RecentMatches(limit int) ([]persistence.MatchRecord, error)
	RecentEvents(eventType string, limit int) ([]persistence.EventRecord, error)
}

// RouterConfig contains all dependencies needed to construct the HTTP
// router. This struct is designed for dependency injection and
// testability.
//
// Example usage in tests:
//
//	cfg := api.RouterConfig{
//	    Engine: mockEngine,
//	    RateLimitConfig: &api.RateLimitConfig{
//	        RequestsPerSecond: 1000, // High limit for tests
//	        Burst:             1000,
//	    },
//	}
//	router := api.NewRouter(cfg)
//	ts := httptest.NewServer(router)
type RouterConfig struct {
	// Engine is the match engine (required)
	Engine EngineInterface

	// Levels is the arena database (required)
	Levels *arena.Database

	// Profiles is the agent profile store (required)
	Profiles *ai.ProfileStore

	// Store is the optional stats database. If nil, the match and
	// event history endpoints return 404.
	Store StatsStore

	// RateLimiter is an optional pre-configured rate limiter.
	// If nil, a new one will be created using RateLimitConfig.
	RateLimiter *IPRateLimiter

	// RateLimitConfig is optional configuration for the rate limiter.
	// Only used if RateLimiter is nil. If both are nil, uses
	// DefaultRateLimitConfig.
	RateLimitConfig *RateLimitConfig

	// CORSOrigins is an optional list of allowed CORS origins.
	// If nil, uses the default origins.
	CORSOrigins []string

	// MaxSpectators caps total websocket connections. Zero uses
	// DefaultMaxSpectators. Only NewServer reads this; the pure router
	// has no websocket route.
	MaxSpectators int

	// DisableLogging disables the request logger middleware (useful
	// for benchmarks).
	DisableLogging bool
}

// routerHandlers holds the handler functions for the router.
type routerHandlers struct {
	engine   EngineInterface
	levels   *arena.Database
	profiles *ai.ProfileStore
	store    StatsStore
}

// NewRouter constructs the HTTP router with all middleware and routes.
//
// IMPORTANT: This function is PURE - it has no side effects:
//   - No goroutines are started
//   - No network listeners are opened
//   - No background workers are launched
//
// This makes it safe to use in tests with httptest.NewServer.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Middleware - Order matters!
	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	// Rate limiting (BEFORE CORS to reject early and save CPU)
	rateLimiter := cfg.RateLimiter
	if rateLimiter == nil {
		rateLimitCfg := DefaultRateLimitConfig
		if cfg.RateLimitConfig != nil {
			rateLimitCfg = *cfg.RateLimitConfig
		}
		rateLimiter = NewIPRateLimiter(rateLimitCfg)
	}
	r.Use(rateLimiter.Middleware)

	// CORS configuration
	corsOrigins := cfg.CORSOrigins
	if corsOrigins == nil {
		corsOrigins = []string{
			"http://localhost:*",
			"http://127.0.0.1:*",
		}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	h := &routerHandlers{
		engine:   cfg.Engine,
		levels:   cfg.Levels,
		profiles: cfg.Profiles,
		store:    cfg.Store,
	}

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Match state
		r.Get("/snapshot", h.handleGetSnapshot)
		r.Get("/score", h.handleGetScore)
		r.Get("/stats", h.handleGetStats)
		r.Get("/navgraph", h.handleGetNavGraph)

		// Agent behaviour
		r.Get("/profiles", h.handleGetProfiles)
		r.Post("/agent/profile", h.handleSetProfile)

		// Arena control
		r.Get("/levels", h.handleGetLevels)
		r.Post("/level", h.handleSetLevel)

		// History (requires the stats database)
		r.Get("/matches", h.handleGetMatches)
		r.Get("/events", h.handleGetEvents)
	})

	r.Get("/healthz", handleHealthz)

	return r
}
