package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"how-far-is-it/internal/app"
	"how-far-is-it/internal/config"
	"how-far-is-it/internal/domain"
	"how-far-is-it/internal/platform/logging"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// dbtool prepares a SQL storage backend: it creates the schema and, when
// SEED_PATH points at a state file, replaces the stored homes and
// landmarks with its contents.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger := logging.Setup(cfg.Log.Level, cfg.Log.Format)

	if cfg.Storage.Backend != config.BackendSQLite && cfg.Storage.Backend != config.BackendPostgres {
		log.Fatalf("dbtool needs a sql storage backend, got %q", cfg.Storage.Backend)
	}

	ctx := context.Background()

	logger.Info("Initializing database schema...", slog.String("backend", cfg.Storage.Backend))
	rt, err := app.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	defer rt.Close()
	logger.Info("Schema ready.")

	seedPath := strings.TrimSpace(os.Getenv("SEED_PATH"))
	if seedPath == "" {
		return
	}

	logger.Info("Seeding state...", slog.String("path", seedPath))
	if err := seedFromJSON(ctx, rt, seedPath); err != nil {
		logger.Error("seeding failed", slog.Any("err", err))
		rt.Close()
		os.Exit(1)
	}
	logger.Info("Seeding complete.",
		slog.Int("homes", len(rt.Registry.Homes())),
		slog.Int("landmarks", len(rt.Registry.Landmarks())),
	)
}

func seedFromJSON(ctx context.Context, rt *app.Runtime, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("seed: read %q: %w", path, err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()

	state := domain.EmptyState()
	if err := dec.Decode(&state); err != nil {
		return fmt.Errorf("seed: decode %q: %w", path, err)
	}

	if err := rt.Registry.Import(ctx, state); err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	return nil
}
