package bootstrap

import (
	"context"
	"log"
	"os"

	"studio-assistant-be/internal/config"
	"studio-assistant-be/internal/pkg/logger"
	"studio-assistant-be/internal/repository/implementation"
	"studio-assistant-be/internal/repository/memory"
	"studio-assistant-be/internal/service"
	"studio-assistant-be/pkg/ai/classifier"
	"studio-assistant-be/pkg/ai/router"
	"studio-assistant-be/pkg/embedding"
	"studio-assistant-be/pkg/indexsync"
	"studio-assistant-be/pkg/rag"
	"studio-assistant-be/pkg/vector"

	pktNats "studio-assistant-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	AssistantService service.IAssistantService
	PublisherService service.IPublisherService

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	Router       *router.Router
	Pipeline     *rag.Pipeline
	Index        *vector.Index
	Orchestrator *indexsync.Orchestrator

	NatsPublisher *pktNats.Publisher
	Logger        logger.ILogger
}

// NewContainer wires everything. A nil db is allowed for local runs:
// the index falls back to the in-memory backend and sync is limited to
// documents pushed through Index.Upsert directly.
func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	stdLogger := log.New(os.Stdout, "", log.LstdFlags)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Embedding Provider
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	// 4. Vector Backend
	var backend vector.Backend
	if db != nil {
		backend = implementation.NewKnowledgeVectorRepository(db)
		log.Printf("[INFO] Using Vector Backend: PGVECTOR")
	} else {
		backend = vector.NewMemoryBackend()
		log.Printf("[INFO] Using Vector Backend: MEMORY")
	}

	index := vector.NewIndex(backend, embeddingProvider, vector.DefaultConfig(), stdLogger)

	// 5. Classifier
	cls := classifier.New(cfg.Ai.ConfidenceFloor)

	// 6. Session Store
	var sessions router.SessionStore
	if cfg.Ai.SessionStore == "redis" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{
				Addr: cfg.App.RedisURL,
			}
		}
		rdb := redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
		sessions = router.NewRedisSessionStore(rdb, cfg.Ai.SessionTTL, stdLogger)
		log.Printf("[INFO] Using Session Store: REDIS")
	} else {
		sessions = memory.NewSessionRepository(cfg.Ai.SessionTTL)
		log.Printf("[INFO] Using Session Store: MEMORY")
	}

	// 7. Router + Retrieval Pipeline
	modelRouter := router.NewRouter(cls, sessions, router.DefaultConfig(), stdLogger)

	ragCfg := rag.DefaultConfig()
	ragCfg.MaxResults = cfg.Ai.MaxResults
	ragCfg.MinSimilarity = cfg.Ai.MinSimilarity
	ragCfg.MultiCategoryMin = cfg.Ai.MultiCategoryMin
	ragCfg.DecayWindowDays = float64(cfg.Ai.DecayWindowDays)
	pipeline := rag.NewPipeline(cls, index, ragCfg, stdLogger)

	// 8. Index Sync
	var orchestrator *indexsync.Orchestrator
	if db != nil {
		rowSource := implementation.NewKnowledgeRowSource(db)
		orchestrator = indexsync.NewOrchestrator(index, rowSource, rowSource.Types(), stdLogger)
	}

	// 9. NATS (optional; sibling services listen for rebuild events)
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// 10. Services
	publisherService := service.NewPublisherService(cfg.Ai.KnowledgeTopic, pubSub, natsPub)

	var consumerService service.IConsumerService
	if orchestrator != nil {
		consumerService = service.NewConsumerService(
			pubSub,
			cfg.Ai.KnowledgeTopic,
			orchestrator,
		)
	}

	assistantService := service.NewAssistantService(modelRouter, pipeline, sysLogger)

	return &Container{
		AssistantService: assistantService,
		PublisherService: publisherService,
		ConsumerService:  consumerService,
		Router:           modelRouter,
		Pipeline:         pipeline,
		Index:            index,
		Orchestrator:     orchestrator,
		NatsPublisher:    natsPub,
		Logger:           sysLogger,
	}
}
