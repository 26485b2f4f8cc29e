package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hoop-club/internal/ai"
	"hoop-club/internal/api"
	"hoop-club/internal/arena"
	"hoop-club/internal/config"
	"hoop-club/internal/game"
	"hoop-club/internal/persistence"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("💡 No .env file found, using environment variables only")
	}

	log.Println("🏀 ================================")
	log.Println("🏀  HOOP CLUB - MATCH ENGINE")
	log.Println("🏀 ================================")

	// Load centralized configuration (SSOT - Single Source of Truth)
	appConfig := config.Load()
	simCfg := appConfig.Sim
	serverCfg := appConfig.Server
	paths := appConfig.Paths

	// Level database
	levels, err := arena.LoadDatabase(paths.Levels)
	if err != nil {
		log.Fatalf("❌ Level database: %v", err)
	}
	levelDef, ok := levels.Get(simCfg.LevelID)
	if !ok {
		log.Fatalf("❌ Unknown level %q", simCfg.LevelID)
	}
	provider := arena.NewProvider(levelDef.Build())
	log.Printf("🏟️ Level: %s (%d platform defs)", levelDef.Name, len(levelDef.Platforms))

	// Agent profiles with hot reload
	profiles, err := ai.NewProfileStore(paths.Profiles)
	if err != nil {
		log.Fatalf("❌ Profiles: %v", err)
	}
	if err := profiles.Watch(); err != nil {
		log.Printf("⚠️ Profile hot reload disabled: %v", err)
	}
	defer profiles.Close()

	// Measured shot grids are optional; geometry covers levels without
	// them.
	grids, err := ai.LoadGridSet(paths.Heatmaps, simCfg.LevelID,
		arena.Width, arena.Height, ai.DefaultCellSize)
	if err != nil {
		log.Fatalf("❌ Shot grids: %v", err)
	}
	if grids != nil {
		log.Printf("🗺️ Measured shot grids loaded for %s", simCfg.LevelID)
	}

	// Match engine
	engine := game.NewEngine(simCfg.EngineConfig(), provider, profiles, grids)
	engine.SetProfile(arena.SideLeft, simCfg.HomeProfile)
	engine.SetProfile(arena.SideRight, simCfg.AwayProfile)
	log.Printf("🎲 Seed: %d", engine.Seed())

	// Stats database (optional)
	var store *persistence.DB
	if paths.StatsDB != "" {
		store, err = persistence.Open(paths.StatsDB)
		if err != nil {
			log.Printf("⚠️ Stats database disabled: %v", err)
		} else {
			defer store.Close()
			engine.EventLog().AddSink(store.InsertEvents)
			log.Printf("💾 Stats database: %s", paths.StatsDB)
		}
	}

	// Event log
	if err := engine.EventLog().Start(paths.EventLog); err != nil {
		log.Printf("⚠️ Event log disabled: %v", err)
	} else if paths.EventLog != "" {
		log.Printf("📝 Event log: %s", paths.EventLog)
	}

	// Debug server (pprof + prometheus)
	if serverCfg.DebugPort > 0 && os.Getenv("DISABLE_DEBUG_SERVER") != "true" {
		debugCfg := api.DefaultObservabilityConfig()
		debugCfg.ListenAddr = fmt.Sprintf("127.0.0.1:%d", serverCfg.DebugPort)
		if err := api.StartDebugServer(debugCfg); err != nil {
			log.Printf("⚠️ Debug server disabled: %v", err)
		}
		engine.EventLog().AddSink(api.MetricsSink)
		api.StartEventLogStatsLoop(engine.EventLog(), 10*time.Second)
	}

	// API server
	var apiStore api.StatsStore
	if store != nil {
		apiStore = store
	}
	server := api.NewServer(api.RouterConfig{
		Engine:        engine,
		Levels:        levels,
		Profiles:      profiles,
		Store:         apiStore,
		MaxSpectators: serverCfg.MaxClients,
	})

	engine.Start()

	go func() {
		addr := fmt.Sprintf(":%d", serverCfg.Port)
		if err := server.Start(addr); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	log.Println("✅ Server ready! Press Ctrl+C to stop.")
	<-quit

	log.Println("🛑 Shutting down...")
	server.Stop()
	engine.Stop()
	engine.EventLog().Stop()

	if store != nil {
		left, right := engine.Score()
		err := store.SaveMatch(persistence.MatchRecord{
			Seed:       engine.Seed(),
			LevelID:    simCfg.LevelID,
			Ticks:      int64(engine.TickCount()),
			ScoreLeft:  left,
			ScoreRight: right,
		})
		if err != nil {
			log.Printf("⚠️ Match save failed: %v", err)
		}
	}

	log.Println("👋 Goodbye!")
}
