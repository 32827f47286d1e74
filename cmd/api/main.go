// @title           Document Intelligence API
// @version         1.0
// @description     Ingests audit documents, runs structured extraction and derived-signal analysis, and answers grounded questions about them.

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/ai"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/assistant"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/config"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/data/store"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/domain/docmodel"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/domain/jobmodel"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/extraction"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/handlers"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/job"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/objectstore"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/pipeline"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/retry"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/search"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/search/embedding"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/server"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/signals"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/worker"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/pkg/logger_i"
)

var (
	listenAddr        string
	requestCount      int64
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {

	_ = godotenv.Load()

	logger_i.Init()
	var logger = logger_i.NewLogger("main")

	//config
	flag.StringVar(&listenAddr, "listen-addr", config.ServerListenAddr, "server listen address")
	flag.Parse()

	//init buffered job channel
	jobChannel := make(chan jobmodel.Job, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	//init job service and job store
	serviceConfig := job.ServiceConfig{
		JobChannel:        jobChannel,
		RequestCount:      requestCount,
		DispatcherChannel: dispatcherChannel,
	}
	logger.Info("Starting job service")

	if redisJobs := store.GetRedisJobStore(serviceContext); redisJobs != nil {
		serviceConfig.JobStore = redisJobs
	} else {
		logger.Error("Redis job store is offline, falling back to in-memory")
		serviceConfig.JobStore = store.InitInMemoryJobStore()
	}
	jobService := job.InitJobService(serviceConfig)

	var documents docmodel.DocumentStore
	if redisDocuments := store.GetRedisDocumentStore(serviceContext); redisDocuments != nil {
		documents = redisDocuments
	} else {
		logger.Error("Redis document store is offline, falling back to in-memory")
		documents = store.InitInMemoryDocumentStore()
	}

	var conversations docmodel.ConversationStore
	if redisConversations := store.GetRedisConversationStore(serviceContext); redisConversations != nil {
		conversations = redisConversations
	} else {
		logger.Error("Redis conversation store is offline, falling back to in-memory")
		conversations = store.InitInMemoryConversationStore()
	}

	blobs, err := objectstore.NewFilesystem(config.BlobBaseDir, config.SigningSecret())
	if err != nil {
		logger.Error("Could not initialize object store. Shutting down.", "error", err)
		return
	}

	//extraction: external service when configured, local engine otherwise
	var extractionService extraction.Service
	if endpoint := config.ExtractionEndpoint(); endpoint != "" {
		extractionService = extraction.NewHTTPService(endpoint, config.ExtractionAPIKey())
	} else {
		logger.Info("No extraction endpoint configured, using local extraction engine")
		extractionService = extraction.NewLocalService(blobs)
	}
	extractionCache := extraction.NewCache(config.ExtractionCacheSize, config.ExtractionCacheTTL)
	analyzer := extraction.NewAnalyzer(extractionService, blobs, extractionCache, retry.DefaultOptions())

	//completion provider: gemini first, openai as the alternate
	var provider ai.Provider
	if key := config.GoogleAPIKey(); key != "" {
		provider, err = ai.NewGemini(serviceContext, key, config.GeminiModelName)
		if err != nil {
			logger.Error("Could not initialize Gemini provider. Shutting down.", "error", err)
			return
		}
	} else if key := config.OpenAIAPIKey(); key != "" {
		provider = ai.NewOpenAI(key, config.OpenAIModelName)
	} else {
		logger.Error("No completion provider configured. Shutting down.")
		return
	}

	engine := signals.NewEngine(provider, retry.DefaultOptions())

	//search index is optional: without it, search and chat grounding degrade
	var index search.Index
	if key := config.GoogleAPIKey(); key != "" {
		embedder, err := embedding.NewGoogleEmbedder(serviceContext, key, config.GoogleEmbeddingModel)
		if err != nil {
			logger.Error("Could not initialize embedder, search disabled", "error", err)
		} else {
			index, err = search.NewQdrantIndex(serviceContext, config.QdrantHost(), config.QdrantGrpcPort, embedder)
			if err != nil {
				logger.Error("Could not reach Qdrant, search disabled", "error", err)
				index = nil
			}
		}
	} else {
		logger.Warn("No embedding key configured, search disabled")
	}

	asst := assistant.New(provider, conversations, index)
	pipelineService := pipeline.NewService(blobs, documents, analyzer, engine, index, asst)

	handlers.InitJobHandler(jobService, pipelineService)

	//init worker pool
	worker.InitServices(jobService, pipelineService)
	worker.InitWorkerPool(stopWorkerChannel, &workerWaitGroup)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr)

	<-stopExecution
	logger.Info("Server stopped")
}
