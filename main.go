package main

import (
	"time"

	"go.uber.org/zap"

	"cogui/internal/config"
	"cogui/internal/database"
	"cogui/internal/engine"
	logger "cogui/internal/logging"
	"cogui/internal/repository"
	"cogui/internal/router"
	"cogui/internal/session"
	"cogui/internal/store"
)

func main() {
	// Initialize Logger
	log, err := logger.Init(".")
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	// Initialize Configuration
	if err := config.Init(".", log); err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Initialize Database. Failure is not fatal: the pipeline keeps running
	// on in-memory state without persistence.
	var persister store.Persister
	if err := database.Init(log); err != nil {
		log.Warn("Running without persistence", zap.Error(err))
	} else {
		persister = repository.Persister{}
	}

	// Load adaptation rules; fall back to the compiled set.
	rules := engine.DefaultRules()
	if path := config.Conf.Pipeline.RulesFile; path != "" {
		loaded, err := engine.LoadRules(path)
		if err != nil {
			log.Warn("Failed to load adaptation rules, using defaults", zap.Error(err))
		} else {
			rules = loaded
			log.Info("Adaptation rules loaded", zap.String("file", path), zap.Int("rules", len(rules)))
		}
	}
	adaptationEngine := engine.New(rules)

	manager := session.NewManager(log, config.Conf.SignalConfig(), func(sessionID string) store.Options {
		return store.Options{
			Engine:     adaptationEngine,
			Persister:  persister,
			Log:        log,
			StorageKey: config.Conf.Preferences.StorageKey + ":" + sessionID,
			SessionID:  sessionID,
			Config:     config.Conf.AdaptiveDefaults(),
		}
	})
	manager.StartSweeper(time.Minute, 30*time.Minute)
	defer manager.Stop()

	r := router.Setup(log, manager)

	port := ":" + config.Conf.Server.Port
	log.Info("Server listening on http://localhost" + port)
	if err := r.Run(port); err != nil {
		log.Fatal("Failed to run Gin server", zap.Error(err))
	}
}
