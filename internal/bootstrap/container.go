package bootstrap

import (
	"context"
	"fmt"
	"log"
	"time"

	"qna-chat-be/internal/config"
	"qna-chat-be/internal/constant"
	"qna-chat-be/internal/controller"
	"qna-chat-be/internal/pkg/logger"
	"qna-chat-be/internal/repository/implementation"
	"qna-chat-be/internal/service"
	"qna-chat-be/internal/websocket"
	"qna-chat-be/pkg/canned"
	"qna-chat-be/pkg/composer"
	"qna-chat-be/pkg/embedding"
	"qna-chat-be/pkg/guardrail"
	"qna-chat-be/pkg/llm/factory"
	"qna-chat-be/pkg/pipeline"
	"qna-chat-be/pkg/rephrase"
	"qna-chat-be/pkg/retrieval"
	"qna-chat-be/pkg/router"

	pktNats "qna-chat-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const ingestTopic = "ingest.passage"

type Container struct {
	// Controllers
	ChatbotController controller.IChatbotController
	PassageController controller.IPassageController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	NotifierService service.INotifierService
	WatchdogService service.IWatchdogService
	IngestService   service.IIngestService

	// WebSockets
	WebSocketHub *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	pipelineLogger := logger.NewPipelineLogger(cfg.App.PipelineLogPath)

	// 2. In-Process Queue (passage ingest)
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Embedding Provider
	var embeddingProvider embedding.Provider
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

	// 4. Infrastructure
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Fatalf("[FATAL] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Fatalf("[FATAL] Failed to connect to NATS Subscriber: %v", err)
	}

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

	// 5. Repositories
	conversationRepo := implementation.NewConversationRepository(db)
	questionRepo := implementation.NewQuestionRepository(db)
	answerRepo := implementation.NewAnswerRepository(db)
	passageRepo := implementation.NewPassageRepository(db)

	// 6. Answer Pipeline
	registry := canned.NewRegistry(constant.DefaultCannedFixed, constant.DefaultCannedByLabel, time.Now().UnixNano())
	searchService := service.NewSearchService(
		embeddingProvider,
		passageRepo,
		cfg.Ai.SearchTopK,
		cfg.Ai.SearchThreshold,
		cfg.Ai.SearchCacheTTL,
		"en",
		sysLogger,
	)
	historyService := service.NewHistoryService(questionRepo)
	runner, err := buildRunner(cfg, registry, searchService, historyService, pipelineLogger)
	if err != nil {
		log.Fatalf("[FATAL] Failed to build answer pipeline: %v", err)
	}

	// 7. WebSocket Hub
	wsLogger := logger.NewZapLogger("logs/notify.log", cfg.App.Environment == "production")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 8. Services
	publisherService := service.NewPublisherService(ingestTopic, pubSub)
	ingestService := service.NewIngestService(publisherService, pubSub, ingestTopic, passageRepo, embeddingProvider)

	usageService := service.NewUsageService(rdb, cfg.Usage.DailyQuestionLimit, sysLogger)
	chatbotService := service.NewChatbotService(conversationRepo, questionRepo, answerRepo, usageService, natsPub, sysLogger)
	answerService := service.NewAnswerService(runner, questionRepo, answerRepo, natsPub, sysLogger)
	consumerService := service.NewConsumerService(natsSub, answerService, sysLogger)
	notifierService := service.NewNotifierService(natsSub, conversationRepo, wsHub, wsLogger)
	watchdogService := service.NewWatchdogService(
		questionRepo,
		answerRepo,
		registry,
		natsPub,
		cfg.Watchdog.Interval,
		cfg.Watchdog.Timeout,
		sysLogger,
	)

	// 9. Controllers
	return &Container{
		ChatbotController: controller.NewChatbotController(chatbotService, wsHub),
		PassageController: controller.NewPassageController(ingestService),

		ConsumerService: consumerService,
		NotifierService: notifierService,
		WatchdogService: watchdogService,
		IngestService:   ingestService,

		WebSocketHub: wsHub,
	}
}

// buildRunner assembles the fixed step chain. Construction fails loudly on
// configuration defects (unknown provider keys, uncompilable taxonomy
// schemas); runtime provider failures are handled inside the steps.
func buildRunner(
	cfg *config.Config,
	registry *canned.Registry,
	searcher retrieval.Searcher,
	history rephrase.HistoryProvider,
	pipelineLogger *log.Logger,
) (*pipeline.Runner, error) {
	opts := factory.Options{
		OpenAIAPIKey:  cfg.Keys.OpenAI,
		ClaudeAPIKey:  cfg.Keys.Claude,
		OllamaBaseURL: cfg.Ai.OllamaBaseURL,
	}

	guardrailClient, err := factory.NewClient(cfg.Ai.GuardrailProvider, cfg.Ai.GuardrailModel, opts)
	if err != nil {
		return nil, fmt.Errorf("guardrail client: %w", err)
	}
	checker := guardrail.NewLLMChecker(guardrailClient, cfg.Ai.GuardrailModel, pipelineLogger)

	rephraseClient, err := factory.NewClient(cfg.Ai.RephraseProvider, cfg.Ai.RephraseModel, opts)
	if err != nil {
		return nil, fmt.Errorf("rephrase client: %w", err)
	}
	rephraser, err := rephrase.New(cfg.Ai.RephraseProvider, rephraseClient, cfg.Ai.RephraseModel)
	if err != nil {
		return nil, err
	}

	routerClient, err := factory.NewClient(cfg.Ai.RouterProvider, cfg.Ai.RouterModel, opts)
	if err != nil {
		return nil, fmt.Errorf("router client: %w", err)
	}
	taxonomy := constant.DefaultTaxonomy()
	routerStep, err := router.NewStep(routerClient, cfg.Ai.RouterModel, taxonomy, registry, pipelineLogger)
	if err != nil {
		return nil, err
	}

	tracker := &pipeline.LogTracker{Logger: pipelineLogger}
	composerConfig := composer.Config{
		SystemTemplate: constant.ComposerSystemTemplate,
		Examples:       constant.ComposerExamples,
	}
	composerStep, err := buildComposerStep(cfg, opts, composerConfig, registry, tracker, pipelineLogger)
	if err != nil {
		return nil, err
	}

	return pipeline.NewRunner(pipelineLogger,
		guardrail.NewForbiddenTermsStep(cfg.Ai.ForbiddenWords, registry),
		guardrail.NewJailbreakStep(checker, constant.JailbreakPolicy, registry),
		rephrase.NewStep(history, rephraser, cfg.Ai.RephraseHistoryDepth, constant.ExcludedRephraseStatuses, pipelineLogger),
		routerStep,
		guardrail.NewQuestionRoutingStep(checker, constant.QuestionRoutingPolicy, registry, taxonomy.GenuineLabel),
		retrieval.NewStep(searcher, registry, pipelineLogger),
		composerStep,
		guardrail.NewAnswerStep(checker, constant.AnswerPolicy, registry),
	), nil
}

func buildComposerStep(
	cfg *config.Config,
	opts factory.Options,
	config composer.Config,
	registry *canned.Registry,
	tracker pipeline.ErrorTracker,
	pipelineLogger *log.Logger,
) (pipeline.Step, error) {
	switch cfg.Ai.ComposerStrategy {
	case "openai":
		client, err := factory.NewClient("openai", cfg.Ai.ComposerModel, opts)
		if err != nil {
			return nil, err
		}
		return composer.NewOpenAIStep(client, cfg.Ai.ComposerModel, config, registry, tracker, pipelineLogger), nil
	case "claude":
		client, err := factory.NewClient("claude", cfg.Ai.ComposerModel, opts)
		if err != nil {
			return nil, err
		}
		return composer.NewClaudeStep(client, cfg.Ai.ComposerModel, config, registry, tracker, pipelineLogger), nil
	case "legacy":
		client, err := factory.NewClient("openai", cfg.Ai.ComposerModel, opts)
		if err != nil {
			return nil, err
		}
		return composer.NewLegacyStep(client, cfg.Ai.ComposerModel, config, cfg.Ai.ForbiddenWords, registry, tracker, pipelineLogger), nil
	default:
		return nil, fmt.Errorf("unsupported composer strategy: %s", cfg.Ai.ComposerStrategy)
	}
}
