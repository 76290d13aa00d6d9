package main

import (
	"context"
	"flag"
	"log"

	"github.com/Black-And-White-Club/advent-board/app"
	"github.com/Black-And-White-Club/advent-board/config"
)

func main() {
	configFile := flag.String("config", "config.yaml", "Path to the configuration file")
	flag.Parse()

	ctx, cancel := app.WithShutdownSignals(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application, err := app.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize app: %v", err)
	}
	defer application.Close()

	if err := application.Run(ctx); err != nil {
		application.Logger.Error("Application stopped with error", "error", err)
	}
}
