package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"fryerbot/internal/config"
	"fryerbot/internal/data/store"
	jobmodel "fryerbot/internal/domain/jobModel"
	"fryerbot/internal/handlers"
	"fryerbot/internal/job"
	"fryerbot/internal/rag"
	"fryerbot/internal/rag/embedding/openaiEmbedding"
	"fryerbot/internal/rag/llm/openaiChat"
	"fryerbot/internal/rag/vectorDB/qdrantDB"
	"fryerbot/internal/server"
	"fryerbot/internal/worker"
	"fryerbot/pkg/logger_i"
)

var (
	listenAddr        string
	requestCount      int64
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {

	logger_i.Init()
	var logger = logger_i.NewLogger("main")

	//config
	config.LoadDotenv()
	if err := config.ValidateAdminEnv(); err != nil {
		logger.Error("Configuration error", "error", err)
		return
	}
	flag.StringVar(&listenAddr, "listen-addr", config.AdminAddr(), "server listen address")
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

	jobStore := store.GetRedisJobStore(serviceContext)
	messageStore := store.GetRedisMessageStore(serviceContext)
	if jobStore == nil || messageStore == nil {
		logger.Error("Redis stores are offline")
		serviceConfig.JobStore = store.InitInMemoryJobStore()
		serviceConfig.MessageStore = store.InitMessageStore()
	} else {
		serviceConfig.JobStore = jobStore
		serviceConfig.MessageStore = messageStore
	}
	service := job.InitJobService(serviceConfig)

	vectorDatabase := qdrantDB.GetQdrantClient(serviceContext)
	embeddingService := openaiEmbedding.GetOpenAIEmbeddingClient(config.OpenAIEmbeddingModel(), config.OpenAIAPIKey())
	llmProvider := openaiChat.GetOpenAIChatClient(config.OpenAIModel(), config.OpenAIAPIKey())

	if vectorDatabase == nil || embeddingService == nil || llmProvider == nil {
		logger.Error("One or more external services failed to initialize. Shutting down.")
		logger.Debug("Available services : ", "VectorDB", vectorDatabase != nil, "EmbeddingService", embeddingService != nil, "LLMProvider", llmProvider != nil)
		return
	}

	ragService := rag.NewService(vectorDatabase, llmProvider, embeddingService)

	handlers.InitJobHandler(service, ragService)

	//init worker pool
	worker.InitServices(service, ragService)
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
