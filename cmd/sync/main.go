package main

import (
	"context"
	"log"

	"studio-assistant-be/internal/bootstrap"
	"studio-assistant-be/internal/config"
	"studio-assistant-be/pkg/database"
	"studio-assistant-be/pkg/events"
)

// Full index rebuild. Run after bulk imports or embedding model
// changes; incremental updates flow through the change consumer.
func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	container := bootstrap.NewContainer(gormDB, cfg)
	defer container.Logger.Sync()

	ctx := context.Background()

	count, err := container.Orchestrator.RebuildAll(ctx)
	if err != nil {
		log.Fatalf("Rebuild failed: %v", err)
	}
	log.Printf("Rebuild complete: %d documents indexed", count)

	if container.NatsPublisher != nil {
		evt := events.NewIndexRebuilt(count)
		if err := container.NatsPublisher.Publish(ctx, evt); err != nil {
			log.Printf("Warn: failed to publish rebuild event: %v", err)
		}
		container.NatsPublisher.Close()
	}
}
