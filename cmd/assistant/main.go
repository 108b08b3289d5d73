package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"studio-assistant-be/internal/bootstrap"
	"studio-assistant-be/internal/config"
	"studio-assistant-be/internal/dto"
	"studio-assistant-be/pkg/database"
	"studio-assistant-be/pkg/events"
	pktNats "studio-assistant-be/pkg/nats"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Interactive console for exercising the router and retrieval pipeline
// against a live index. One process = one conversation session.
func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	var gormDB *gorm.DB
	if cfg.Database.Connection != "" {
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
		if err != nil {
			log.Panicf("Unable to connect to GORM DB: %v", err)
		}
		gormDB = db
	} else {
		log.Println("No DB_CONNECTION_STRING set, running with in-memory index")
	}

	container := bootstrap.NewContainer(gormDB, cfg)
	defer container.Logger.Sync()

	ctx := context.Background()

	if container.ConsumerService != nil {
		if err := container.ConsumerService.Consume(ctx); err != nil {
			log.Printf("Background Consumer Error: %v", err)
		}
	}

	// Changes announced by sibling services arrive over NATS and drive
	// the same re-index path as local ones.
	if container.Orchestrator != nil {
		subscriber, err := pktNats.NewSubscriber(cfg.App.NatsURL)
		if err != nil {
			log.Printf("NATS subscriber unavailable: %v", err)
		} else {
			defer subscriber.Close()
			subject := pktNats.Subject(events.TypeKnowledgeChanged)
			if err := subscriber.Subscribe(subject, "assistant-indexer", container.Orchestrator.HandleKnowledgeEvent); err != nil {
				log.Printf("NATS subscribe failed: %v", err)
			}
		}
	}

	sessionID := uuid.NewString()
	callerID := os.Getenv("ASSISTANT_CALLER_ID")

	color.Cyan("🚀 Studio Assistant Console")
	color.Cyan("Session: %s", sessionID)
	fmt.Println("Type a question, or :quit to exit.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == ":quit" || line == ":q" {
			break
		}

		resp, err := container.AssistantService.Ask(ctx, dto.AssistantAskRequest{
			SessionId: sessionID,
			CallerId:  callerID,
			Query:     line,
		})
		if err != nil {
			color.Red("Failed: %v", err)
			continue
		}

		color.Yellow("Model: %s (complexity %d)", resp.Model, resp.Complexity)
		for i, m := range resp.Matches {
			color.Green("%d. [%s] %s (score %.3f)", i+1, m.Category, m.Title, m.FinalScore)
			fmt.Printf("   %s\n", m.Snippet)
		}
		fmt.Println(resp.Summary)
	}
}
