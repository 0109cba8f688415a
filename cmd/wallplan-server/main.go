// wallplan-server exposes the wall panel planner as an HTTP JSON API with
// SQLite-backed override sets.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/piwi3910/wallplan/internal/project"
	"github.com/piwi3910/wallplan/internal/service"
	"github.com/piwi3910/wallplan/internal/store"
)

func main() {
	cfg := service.LoadConfig()

	// The app config supplies paths the environment leaves unset
	appConfig, err := project.LoadAppConfig(project.DefaultConfigPath())
	if err != nil {
		log.Printf("load app config: %v", err)
	}
	if os.Getenv("WALLPLAN_DB_PATH") == "" && appConfig.DatabasePath != "" {
		cfg.DBPath = appConfig.DatabasePath
	}
	if cfg.PresetsPath == "" {
		cfg.PresetsPath = appConfig.PresetsPath
	}

	db, err := store.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	overrides := store.New(db)
	if err := overrides.Init(context.Background()); err != nil {
		log.Fatalf("init db: %v", err)
	}

	srv := service.NewServer(overrides)
	if cfg.PresetsPath != "" {
		presets, err := project.LoadPresets(cfg.PresetsPath)
		if err != nil {
			log.Fatalf("load presets: %v", err)
		}
		srv.Presets = presets
	}
	if cfg.Environment == "development" {
		srv.Logger = log.New(os.Stderr, "", log.LstdFlags)
	}

	app := srv.App(cfg)

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Printf("Starting wallplan server on %s (env: %s, db: %s)", addr, cfg.Environment, cfg.DBPath)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
