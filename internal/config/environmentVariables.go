package config

import (
	"log/slog"
	"os"
	"time"
)

const (
	LogLevelProd = slog.LevelInfo
	TRACE_ID_KEY = "traceId"

	RateLimitPerSecond      = 5
	BurstRateLimitPerSecond = 10

	//retry envelope
	RetryBaseDelay       = 500 * time.Millisecond
	MaxRetryAttemptsProd = 3
	MaxRetryAttemptsDev  = 1

	//worker pool
	RequestsPerNewWorkerCount int64 = 10
	MaxWorkerCount            int64 = 10
	MinWorkerCount            int64 = 1
	IdleWorkerTimeout               = 1 * time.Minute
	JobExecutionTimeout             = 5 * time.Minute

	//serverTimeouts
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 30 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	ServerListenAddr = ":3000"

	//job requests buffer limit
	BufferLimit = 100

	//uploads
	MaxUploadSize int64 = 32 << 20 //32mb

	//object store
	BlobBaseDir    = "blob_data"
	SignedURLTTL   = 15 * time.Minute
	TempUploadsDir = "temporary_data"

	//extraction
	ExtractionCacheSize     = 512
	ExtractionCacheTTL      = 30 * time.Minute
	ExtractionCallTimeout   = 90 * time.Second
	ExtractionPollInterval  = 2 * time.Second
	ExtractionMaxPageChunks = 300

	//vectorDB
	QdrantConnectionTimeout            = 30 * time.Second
	QdrantGrpcPort                     = 6334
	QdrantUseTLS                       = false
	QdrantPoolSize                     = 1
	SearchCollectionName               = "audit-documents"
	EmbeddingOutputDimensionality int32 = 1536
	SearchDefaultLimit                 = 5
	SearchMaxLimit                     = 25
	IndexedSnippetLimit                = 2000

	//llm
	GeminiModelName      = "gemini-2.5-flash-lite-preview-09-2025"
	OpenAIModelName      = "gpt-4o-mini"
	GoogleEmbeddingModel = "gemini-embedding-001"

	//assistant
	ChatHistoryWindow     = 10
	ChatHistoryPageLimit  = 50
	ChatGroundingLimit    = 5
	AssistantInstruction  = "You are an audit assistant. Answer only from the provided context. If the context is insufficient to answer, say so explicitly instead of guessing."
	AssistantFallbackText = "I'm sorry, I couldn't produce an answer right now. Please try again in a moment."

	//signals
	SignalsCallTimeout = 60 * time.Second

	//redis
	redisHost = "127.0.0.1"
	redisPort = "6379"
	RedisAddr = redisHost + ":" + redisPort

	//redis has 16 DB we can use
	RedisJobStore      = 0
	RedisDocumentStore = 1
	RedisChatStore     = 2

	//redis timeouts
	RedisJobStoreTTL = 24 * time.Hour
)

// IsProd is driven by APP_ENV so retry budgets and log handlers switch together.
func IsProd() bool {
	return os.Getenv("APP_ENV") == "production"
}

func MaxRetryAttempts() int {
	if IsProd() {
		return MaxRetryAttemptsProd
	}
	return MaxRetryAttemptsDev
}

func GoogleAPIKey() string {
	return os.Getenv("GOOGLE_API_KEY")
}

func OpenAIAPIKey() string {
	return os.Getenv("OPENAI_API_KEY")
}

func AuthToken() string {
	return os.Getenv("API_AUTH_TOKEN")
}

// NoAuthBypass disables the bearer gate for local runs only.
func NoAuthBypass() bool {
	return !IsProd() && os.Getenv("AUTH_BYPASS") == "1"
}

func ExtractionEndpoint() string {
	return os.Getenv("EXTRACTION_ENDPOINT")
}

func ExtractionAPIKey() string {
	return os.Getenv("EXTRACTION_API_KEY")
}

func SigningSecret() string {
	if v := os.Getenv("BLOB_SIGNING_SECRET"); v != "" {
		return v
	}
	return "local-dev-signing-secret"
}

func QdrantHost() string {
	if v := os.Getenv("QDRANT_HOST"); v != "" {
		return v
	}
	return "localhost"
}
