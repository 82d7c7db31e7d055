// @title Q&A Forum API
// @version 1.0
// @description REST backend for a programming questions and answers forum.

// @license.name MIT

// @host localhost:5000
// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

package main

import (
	"flag"
	"log"
	"path/filepath"
	"qa_forum_backend/internal/app"
	"qa_forum_backend/internal/config"
	"qa_forum_backend/pkg/logger"
)

func main() {
	configDir := flag.String("config", "configs", "directory containing config.yaml")
	migrateOnly := flag.Bool("migrate-only", false, "run database migrations and exit")
	migrate := flag.Bool("migrate", false, "run database migrations on startup, even in release mode")
	watch := flag.Bool("watch-config", true, "reload SMTP and AI settings when config.yaml changes")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	cfg.ForceMigrate = *migrate || *migrateOnly
	cfg.MigrateOnly = *migrateOnly

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	if *migrateOnly {
		log.Println("Database migration completed, exiting")
		return
	}

	if *watch {
		application.ConfigFile = filepath.Join(*configDir, "config.yaml")
	}

	application.Run()
}
