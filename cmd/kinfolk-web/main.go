// Command kinfolk-web runs the Kinfolk HTTP API server.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/scrypster/kinfolk/internal/config"
	"github.com/scrypster/kinfolk/internal/server"
	"github.com/scrypster/kinfolk/internal/storage"
	"github.com/scrypster/kinfolk/internal/storage/postgres"
	"github.com/scrypster/kinfolk/internal/storage/sqlite"
)

func main() {
	dataPath := flag.String("data", "", "Data directory for the SQLite database (overrides config)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *dataPath != "" {
		cfg.Storage.DataPath = *dataPath
	}

	store, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer store.Close()

	// The SQLite store carries the settings table; reload config so
	// persisted user settings override the environment.
	if sqliteStore, ok := store.(*sqlite.Store); ok {
		if dbCfg, err := config.LoadConfigFromDB(sqliteStore.GetDB()); err == nil {
			dbCfg.Storage = cfg.Storage
			cfg = dbCfg
		}
	}

	// Setup context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addr, _ := server.Start(ctx, cfg, store)
	log.Printf("Kinfolk API running at http://%s", addr)

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down gracefully...")
	cancel()
	time.Sleep(1 * time.Second) // Give time for connections to close
}

// openStore builds the storage backend named by the config.
func openStore(cfg *config.Config) (storage.Store, error) {
	if cfg.Storage.StorageEngine == "postgres" {
		return postgres.New(cfg.Storage.PostgresDSN)
	}
	if err := os.MkdirAll(cfg.Storage.DataPath, 0o755); err != nil {
		return nil, err
	}
	return sqlite.New(cfg.Storage.DataPath + "/kinfolk.db")
}
