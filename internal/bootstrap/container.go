package bootstrap

import (
	"log"
	"time"

	"ai-assistant-be/internal/config"
	"ai-assistant-be/internal/controller"
	"ai-assistant-be/internal/pkg/logger"
	"ai-assistant-be/internal/pkg/mailer"
	"ai-assistant-be/internal/service"
	"ai-assistant-be/pkg/embedding"
	"ai-assistant-be/pkg/facts"
	"ai-assistant-be/pkg/generation"
	"ai-assistant-be/pkg/lead"
	"ai-assistant-be/pkg/llm"
	"ai-assistant-be/pkg/llm/ollama"
	"ai-assistant-be/pkg/llm/openai"
	"ai-assistant-be/pkg/retrieval"
	"ai-assistant-be/pkg/retrieval/postgres"
	"ai-assistant-be/pkg/session"

	pktNats "ai-assistant-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController controller.IChatController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// Session store (exposed so main.go can run the TTL sweeper)
	SessionStore *session.Store

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	zapRaw := sysLogger.Raw()

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.Email,
		cfg.SMTP.SenderName,
	)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// 3. AI Providers
	var embeddingProvider embedding.Provider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.EmbeddingModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.EmbeddingModel)
	} else {
		embeddingProvider = embedding.NewOpenAIProvider(
			cfg.Ai.LLMBaseURL,
			cfg.Ai.LLMAPIKey,
			cfg.Ai.EmbeddingModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OPENAI (%s)", cfg.Ai.EmbeddingModel)
	}

	var llmProvider llm.LLMProvider
	if cfg.Ai.LLMProvider == "ollama" {
		llmProvider = ollama.NewProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.LLMModel)
	} else {
		llmProvider = openai.NewProvider(cfg.Ai.LLMBaseURL, cfg.Ai.LLMAPIKey, cfg.Ai.LLMModel)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Retrieval + Generation
	retriever := retrieval.NewRetriever(
		embeddingProvider,
		postgres.NewVectorSource(db),
		postgres.NewFTSSource(db),
		cfg.Retrieval.Alpha,
		zapRaw,
	)

	generator := generation.NewGenerator(llmProvider, retriever, generation.Config{
		Temperature:     cfg.Ai.Temperature,
		MaxTokens:       cfg.Ai.MaxTokens,
		MinSimilarity:   cfg.Ai.MinSimilarity,
		EnableSelfQuery: cfg.Ai.EnableSelfQuery,
	}, zapRaw)

	// 5. Conversation State
	sessionStore := session.NewStore(
		time.Duration(cfg.Session.TTLMinutes)*time.Minute,
		zapRaw,
	)

	ctaPolicy := lead.Policy{
		CooldownTurns: cfg.Session.CTACooldown,
		MaxAttempts:   cfg.Session.CTAMaxOffers,
	}

	factsLookup := facts.NewCachedLookup(
		facts.NewRepository(db),
		time.Duration(cfg.Session.FactsTTLSecs)*time.Second,
	)

	// 6. Services
	chatService := service.NewChatService(
		sessionStore,
		ctaPolicy,
		factsLookup,
		generator,
		retriever,
		pubSub,
		cfg.Retrieval.TopK,
		cfg.Retrieval.MaxContextChars,
		sysLogger,
	)

	consumerService := service.NewConsumerService(
		pubSub,
		service.LeadCapturedTopic,
		natsPublisherOrNil(natsPub, err),
		emailService,
		cfg.App.LeadNotifyEmail,
	)

	// 7. Controllers
	return &Container{
		ChatController:  controller.NewChatController(chatService),
		ConsumerService: consumerService,
		SessionStore:    sessionStore,
		Logger:          sysLogger,
	}
}

// natsPublisherOrNil keeps the consumer wiring nil-safe when NATS is down
// at boot. A typed nil inside the interface would dodge the nil checks.
func natsPublisherOrNil(pub *pktNats.Publisher, err error) service.EventPublisher {
	if err != nil || pub == nil {
		return nil
	}
	return pub
}
