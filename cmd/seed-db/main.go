// Command seed-db creates the schema and loads the sample alerts and
// resources into an empty database, then exits.
package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/joho/godotenv"

	"github.com/mr1hm/go-disaster-prep/internal/config"
	"github.com/mr1hm/go-disaster-prep/internal/logging"
	"github.com/mr1hm/go-disaster-prep/internal/repository"
	"github.com/mr1hm/go-disaster-prep/internal/seed"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level)

	db, err := repository.NewSQLiteDB(cfg.DB.Path)
	if err != nil {
		logging.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := seed.Apply(ctx, db, db, time.Now().UTC()); err != nil {
		logging.Fatalf("Failed to seed database: %v", err)
	}
	slog.Info("database ready", "path", cfg.DB.Path)
}
