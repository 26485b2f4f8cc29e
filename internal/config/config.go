// Package config provides centralized configuration management.
// This is the SINGLE SOURCE OF TRUTH for all simulation and server
// settings.
//
// IMPORTANT: When changing values, only modify this file.
// All other parts of the codebase should reference these values.
package config

import (
	"os"
	"strconv"

	"hoop-club/internal/ai"
	"hoop-club/internal/game"
)

// =============================================================================
// SIMULATION CONFIGURATION
// =============================================================================

// SimConfig holds the match simulation settings.
type SimConfig struct {
	TickRate    int    // Simulation ticks per second
	Seed        int64  // RNG seed, 0 = seed from clock
	TargetScore int    // baskets to win, 0 = endless
	LevelID     string // arena to load from the level database
	// DefensePolicy is the fallback stance on arenas without
	// elevated platforms: "contain" or "shadow".
	DefensePolicy string
	// Profiles for the two agents by name.
	HomeProfile string
	AwayProfile string
}

// DefaultSim returns the default simulation configuration.
func DefaultSim() SimConfig {
	return SimConfig{
		TickRate:      60,
		TargetScore:   11,
		LevelID:       "courtyard",
		DefensePolicy: "contain",
		HomeProfile:   "balanced",
		AwayProfile:   "balanced",
	}
}

// SimFromEnv returns simulation configuration with environment
// variable overrides.
func SimFromEnv() SimConfig {
	cfg := DefaultSim()

	if tr := getEnvInt("TICK_RATE", 0); tr > 0 {
		cfg.TickRate = tr
	}
	if s := getEnvInt64("MATCH_SEED", 0); s != 0 {
		cfg.Seed = s
	}
	if ts := getEnvInt("TARGET_SCORE", -1); ts >= 0 {
		cfg.TargetScore = ts
	}
	if lvl := os.Getenv("LEVEL_ID"); lvl != "" {
		cfg.LevelID = lvl
	}
	if dp := os.Getenv("DEFENSE_POLICY"); dp != "" {
		cfg.DefensePolicy = dp
	}
	if p := os.Getenv("HOME_PROFILE"); p != "" {
		cfg.HomeProfile = p
	}
	if p := os.Getenv("AWAY_PROFILE"); p != "" {
		cfg.AwayProfile = p
	}

	return cfg
}

// EngineConfig assembles the game engine configuration from this
// simulation config and the library defaults.
func (c SimConfig) EngineConfig() game.EngineConfig {
	cfg := game.DefaultEngineConfig()
	cfg.TickRate = c.TickRate
	cfg.Seed = c.Seed
	cfg.TargetScore = c.TargetScore
	cfg.Goals.DefensePolicy = ai.ParseDefensePolicy(c.DefensePolicy)
	return cfg
}

// =============================================================================
// SERVER CONFIGURATION
// =============================================================================

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port       int
	DebugPort  int // pprof + prometheus, 0 disables
	MaxClients int // websocket spectator cap
}

// DefaultServer returns the default server configuration.
func DefaultServer() ServerConfig {
	return ServerConfig{
		Port:       3000,
		DebugPort:  6060,
		MaxClients: 100,
	}
}

// ServerFromEnv returns server configuration with environment variable
// overrides.
func ServerFromEnv() ServerConfig {
	cfg := DefaultServer()

	if p := getEnvInt("PORT", 0); p > 0 {
		cfg.Port = p
	}
	if p := getEnvInt("DEBUG_PORT", -1); p >= 0 {
		cfg.DebugPort = p
	}
	if mc := getEnvInt("MAX_CLIENTS", 0); mc > 0 {
		cfg.MaxClients = mc
	}

	return cfg
}

// =============================================================================
// DATA PATHS
// =============================================================================

// PathsConfig holds file locations for levels, profiles, measured shot
// grids, the event log, and the stats database.
type PathsConfig struct {
	Levels   string // YAML level database, empty = built-in levels
	Profiles string // YAML agent profiles, empty = defaults only
	Heatmaps string // directory of measured shot grid CSVs
	EventLog string // JSONL event stream, empty disables file output
	StatsDB  string // SQLite database, empty disables persistence
}

// DefaultPaths returns the default data paths.
func DefaultPaths() PathsConfig {
	return PathsConfig{
		Levels:   "assets/levels.yaml",
		Profiles: "assets/profiles.yaml",
		Heatmaps: "assets/heatmaps",
		EventLog: "data/events.jsonl",
		StatsDB:  "data/stats.db",
	}
}

// PathsFromEnv returns data paths with environment variable overrides.
func PathsFromEnv() PathsConfig {
	cfg := DefaultPaths()

	if p, ok := os.LookupEnv("LEVELS_PATH"); ok {
		cfg.Levels = p
	}
	if p, ok := os.LookupEnv("PROFILES_PATH"); ok {
		cfg.Profiles = p
	}
	if p, ok := os.LookupEnv("HEATMAPS_DIR"); ok {
		cfg.Heatmaps = p
	}
	if p, ok := os.LookupEnv("EVENT_LOG_PATH"); ok {
		cfg.EventLog = p
	}
	if p, ok := os.LookupEnv("STATS_DB_PATH"); ok {
		cfg.StatsDB = p
	}

	return cfg
}

// =============================================================================
// COMPLETE APP CONFIGURATION
// =============================================================================

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Sim    SimConfig
	Server ServerConfig
	Paths  PathsConfig
}

// Load returns the complete configuration with environment overrides.
func Load() AppConfig {
	return AppConfig{
		Sim:    SimFromEnv(),
		Server: ServerFromEnv(),
		Paths:  PathsFromEnv(),
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvInt64(key string, defaultVal int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return defaultVal
}
