package bootstrap

import (
	"context"
	"log"
	"time"

	"codeframe-be/internal/cache"
	"codeframe-be/internal/config"
	"codeframe-be/internal/controller"
	"codeframe-be/internal/pkg/logger"
	"codeframe-be/internal/repository/unitofwork"
	"codeframe-be/internal/service"
	"codeframe-be/pkg/brand"
	"codeframe-be/pkg/embedding"
	"codeframe-be/pkg/events"
	"codeframe-be/pkg/llm/factory"
	"codeframe-be/pkg/llm/guard"
	"codeframe-be/pkg/queue"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	GenerationController controller.IGenerationController
	HierarchyController  controller.IHierarchyController

	// Background services (exposed for main.go to run)
	WorkerService    service.IWorkerService
	ProgressListener service.IProgressListener

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)
	progressPublisher := events.NewProgressPublisher(pubSub)

	// 3. Providers
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

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.GoogleGemini,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	brandValidator := brand.NewHTTPValidator(cfg.Keys.BrandAPIURL, cfg.Keys.BrandAPIKey)

	// 4. Infrastructure: NATS job queue and Redis status cache
	jobPublisher, err := queue.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect NATS publisher: %v", err)
	}
	jobSubscriber, err := queue.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect NATS subscriber: %v", err)
	}

	redisCache, err := cache.NewRedisCache(cfg.App.RedisURL)
	if err != nil {
		log.Fatalf("[FATAL] Invalid Redis URL: %v", err)
	}
	if err := redisCache.Ping(context.Background()); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}
	statusCache := cache.NewLayeredCache(redisCache)

	// 5. LLM guards, shared per process; the cost guard is created per job
	// inside the worker.
	limiter := guard.NewLimiter(cfg.Pipeline.MaxLLMPerMinute, time.Minute, cfg.Pipeline.LLMQueueDepth)
	breaker := guard.NewBreaker(cfg.Pipeline.BreakerThreshold,
		time.Duration(cfg.Pipeline.BreakerCooldownSecs)*time.Second)

	// 6. Services
	embeddingService := service.NewEmbeddingService(uowFactory, embeddingProvider, sysLogger)
	generationService := service.NewGenerationService(
		uowFactory,
		jobPublisher,
		llmProvider,
		brandValidator,
		cfg.Pipeline,
		sysLogger,
	)
	statusService := service.NewStatusService(uowFactory, statusCache, sysLogger)
	hierarchyService := service.NewHierarchyService(uowFactory, sysLogger)

	workerLogger := logger.NewIsolatedLogger("logs/worker.log")
	workerService := service.NewWorkerService(
		uowFactory,
		embeddingService,
		llmProvider,
		limiter,
		breaker,
		guard.DefaultRates,
		brandValidator,
		jobSubscriber,
		progressPublisher,
		cfg.Pipeline,
		workerLogger,
	)

	progressListener := service.NewProgressListener(pubSub, statusCache, sysLogger)

	// 7. Controllers
	return &Container{
		GenerationController: controller.NewGenerationController(generationService, statusService),
		HierarchyController:  controller.NewHierarchyController(hierarchyService),
		WorkerService:        workerService,
		ProgressListener:     progressListener,
		Logger:               sysLogger,
	}
}
