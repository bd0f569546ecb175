package main

import (
	"context"
	"os/signal"
	"syscall"

	"fryerbot/internal/bot"
	"fryerbot/internal/config"
	"fryerbot/internal/data/store"
	jobmodel "fryerbot/internal/domain/jobModel"
	"fryerbot/internal/rag"
	"fryerbot/internal/rag/embedding/openaiEmbedding"
	"fryerbot/internal/rag/llm/openaiChat"
	"fryerbot/internal/rag/vectorDB/qdrantDB"
	"fryerbot/pkg/logger_i"
)

func main() {

	logger_i.Init()
	var logger = logger_i.NewLogger("main")

	//config
	config.LoadDotenv()
	if err := config.ValidateBotEnv(); err != nil {
		logger.Error("Configuration error", "error", err)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	vectorDatabase := qdrantDB.GetQdrantClient(ctx)
	embeddingService := openaiEmbedding.GetOpenAIEmbeddingClient(config.OpenAIEmbeddingModel(), config.OpenAIAPIKey())
	llmProvider := openaiChat.GetOpenAIChatClient(config.OpenAIModel(), config.OpenAIAPIKey())

	if vectorDatabase == nil || embeddingService == nil || llmProvider == nil {
		logger.Error("One or more external services failed to initialize. Shutting down.")
		logger.Debug("Available services : ", "VectorDB", vectorDatabase != nil, "EmbeddingService", embeddingService != nil, "LLMProvider", llmProvider != nil)
		return
	}

	if err := vectorDatabase.EnsureCollection(ctx, config.CollectionName()); err != nil {
		logger.Error("Qdrant is unreachable", "error", err)
		return
	}
	if count, err := vectorDatabase.CountDocuments(ctx, config.CollectionName()); err == nil {
		logger.Info("Connected to Qdrant", "documents", count)
	}

	ragService := rag.NewService(vectorDatabase, llmProvider, embeddingService)

	var messageStore jobmodel.MessageStore
	if redisStore := store.GetRedisMessageStore(ctx); redisStore != nil {
		messageStore = redisStore
	} else {
		logger.Error("Redis is offline, chat history is in-memory only")
		messageStore = store.InitMessageStore()
	}

	telegramBot, err := bot.New(config.TelegramBotToken(), ragService, messageStore)
	if err != nil {
		logger.Error("Failed to start the bot", "error", err)
		return
	}

	telegramBot.Run(ctx)
	logger.Info("Bot stopped")
}
