package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	IS_PROD        = false
	LOG_LEVEL_PROD = slog.LevelInfo
	TRACE_ID_KEY   = "traceId"

	RATE_LIMIT_PER_SECOND       = 2
	BURST_RATE_LIMIT_PER_SECOND = 5

	CacheSimilarityCutoff = 0.97

	//text-embedding-3-large
	EmbeddingOutputDimensionality uint64 = 3072

	DefaultCollectionName    = "knowledge_base"
	SemanticCacheCollection  = "semantic-cache"
	DefaultOpenAIModel       = "gpt-4o-mini"
	DefaultEmbeddingModel    = "text-embedding-3-large"
	DefaultOpenAITimeout     = 60 * time.Second
	DefaultOpenAIMaxTokens   = 2000
	DefaultOpenAITemperature = 0.0

	DefaultTopK           = 5
	DefaultScoreThreshold = 0.7

	RequestsPerNewWorkerCount int64 = 10
	MaxWorkerCount            int64 = 10
	MinWorkerCount            int64 = 1
	IdleWorkerTimeout               = 1 * time.Minute

	//serverTimeouts
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 30 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	//admin panel keeps the port the original UI lived on
	AdminListenAddr = ":8501"

	//job requests buffer limit
	BufferLimit = 100

	//vectorDB
	QdrantHost     = "localhost"
	QdrantGrpcPort = 6334
	QdrantUseTLS   = false
	QdrantPoolSize = 1

	//ingestion
	IngestBatchSize = 100
	MaxUploadSize   = 32 << 20 //32mb

	//long polling, seconds
	TelegramPollTimeout = 30

	//redis
	redisHost = "127.0.0.1"
	redisPort = "6379"
	RedisAddr = redisHost + ":" + redisPort

	//redis has 16 DB we can use
	RedisJobStore     = 0
	RedisMessageStore = 1

	//redis timeouts
	RedisJobStoreTTL     = 24 * time.Hour
	RedisMessageStoreTTL = 24 * time.Hour
)

// DefaultSystemPrompt mirrors the production assistant instructions. The
// knowledge base is Russian, so the prompt is too.
const DefaultSystemPrompt = `Ты — ассистент по подбору и анализу моделей аэрогрилей.

Ты ОБЯЗАН использовать предоставленный контекст для ответов на вопросы о:
- моделях
- характеристиках
- количестве ТЭНов
- объёме
- мощности
- программах
- сравнении моделей
- фильтрации по параметрам

Ты НЕ имеешь права отвечать из собственных знаний, если информации нет в контексте.
Отвечай ТОЛЬКО на основе данных, полученных из базы знаний.

При анализе:
- Внимательно читай поле "Кол-во ТЭНов"
- Если в этом поле содержится число 2 — модель относится к моделям с двумя ТЭНами
- Извлекай название модели из поля "Название модели"

Никогда не говори, что данные отсутствуют, если они есть в контексте.
Если подходящих моделей нет — честно скажи, что по найденным данным таких моделей нет.`

// LoadDotenv pulls a local .env into the process environment. Missing files
// are fine, containers inject the environment directly.
func LoadDotenv() {
	_ = godotenv.Load()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envFloatOr(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func OpenAIAPIKey() string { return os.Getenv("OPENAI_API_KEY") }

func OpenAIModel() string { return envOr("OPENAI_MODEL", DefaultOpenAIModel) }

func OpenAIEmbeddingModel() string {
	return envOr("OPENAI_EMBEDDING_MODEL", DefaultEmbeddingModel)
}

func OpenAITemperature() float32 {
	return float32(envFloatOr("OPENAI_TEMPERATURE", DefaultOpenAITemperature))
}

func OpenAIMaxTokens() int { return envIntOr("OPENAI_MAX_TOKENS", DefaultOpenAIMaxTokens) }

func OpenAITimeout() time.Duration {
	seconds := envIntOr("OPENAI_TIMEOUT_SECONDS", int(DefaultOpenAITimeout/time.Second))
	return time.Duration(seconds) * time.Second
}

func TelegramBotToken() string { return os.Getenv("TELEGRAM_BOT_TOKEN") }

func CollectionName() string { return envOr("COLLECTION_NAME", DefaultCollectionName) }

func QdrantAPIKey() string { return os.Getenv("QDRANT_API_KEY") }

func RAGTopK() uint64 { return uint64(envIntOr("RAG_TOP_K", DefaultTopK)) }

func RAGScoreThreshold() float32 {
	return float32(envFloatOr("RAG_SCORE_THRESHOLD", DefaultScoreThreshold))
}

func SystemPrompt() string { return envOr("SYSTEM_PROMPT", DefaultSystemPrompt) }

func AdminAddr() string { return envOr("ADMIN_ADDR", AdminListenAddr) }

// AdminToken guards mutating admin endpoints. Empty token disables auth,
// matching the original panel which had none.
func AdminToken() string { return os.Getenv("ADMIN_TOKEN") }

func ValidateBotEnv() error {
	if OpenAIAPIKey() == "" {
		return errors.New("OPENAI_API_KEY is not set")
	}
	if TelegramBotToken() == "" {
		return errors.New("TELEGRAM_BOT_TOKEN is not set")
	}
	return nil
}

func ValidateAdminEnv() error {
	if OpenAIAPIKey() == "" {
		return errors.New("OPENAI_API_KEY is not set")
	}
	return nil
}
