package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Podium-Debate/podium-engine/app"
	"github.com/Podium-Debate/podium-engine/config"
	"github.com/Podium-Debate/podium-engine/internal/observability"
)

func main() {
	configFile := flag.String("config", "config.yaml", "Path to the configuration file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	obs, err := observability.Init(ctx, observability.Config{
		ServiceName:    "podium-engine",
		Environment:    cfg.Observability.Environment,
		MetricsAddress: cfg.Observability.MetricsAddress,
		OTLPEndpoint:   cfg.Observability.OTLPEndpoint,
		OTLPInsecure:   cfg.Observability.OTLPInsecure,
		SampleRate:     cfg.Observability.SampleRate,
	})
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}

	engine := &app.App{}
	if err := engine.Initialize(ctx, cfg, obs); err != nil {
		log.Fatalf("failed to initialize engine: %v", err)
	}

	if err := engine.Run(ctx); err != nil {
		obs.Logger.Error("engine stopped with error", "error", err)
	}

	shutdownCtx := context.Background()
	if err := engine.Close(shutdownCtx); err != nil {
		obs.Logger.Error("shutdown error", "error", err)
	}
	if err := obs.Close(shutdownCtx); err != nil {
		log.Printf("failed to shut down observability: %v", err)
	}
}
