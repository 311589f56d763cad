package main

import (
	"context"
	"how-far-is-it/internal/app"
	"how-far-is-it/internal/cli"
	"how-far-is-it/internal/config"
	"how-far-is-it/internal/platform/logging"
	"os"

	"github.com/joho/godotenv"
)

var version = "dev"

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
	logger := logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx := context.Background()
	rt, err := app.New(ctx, cfg, logger)
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	deps := cli.Dependencies{
		Locations:           rt.Registry,
		Routes:              rt.Aggregator,
		DefaultLandmarkName: cfg.Landmarks.DefaultName,
		SessionOnlyHomes:    !cfg.Storage.PersistHomes,
		Version:             version,
	}
	if rt.Geocoder != nil {
		deps.Geocoder = rt.Geocoder
	}

	exitCode := cli.Execute(ctx, os.Args[1:], deps, os.Stdout, os.Stderr)
	_ = rt.Close()
	os.Exit(exitCode)
}
