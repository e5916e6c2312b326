package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"dailybrief/internal/app"
	"dailybrief/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()

	a, err := app.New(cfg)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	if err := a.Run(ctx); err != nil {
		log.Fatalf("service failed: %v", err)
	}
}
