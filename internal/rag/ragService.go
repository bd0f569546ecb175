package rag

import (
	"context"
	"errors"
	"time"

	"fryerbot/internal/adapter/utils"
	"fryerbot/internal/config"
	"fryerbot/internal/domain/jobModel"
	"fryerbot/internal/ingest"
	"fryerbot/internal/metrics"
	"fryerbot/internal/rag/embedding"
	"fryerbot/internal/rag/llm"
	"fryerbot/internal/rag/vectorDB"
	"fryerbot/pkg/logger_i"
)

// Service is the only surface the worker and the bot talk to. The vector
// store, the embedder and the LLM stay behind it so both callers can be
// tested against mocks.
type Service interface {
	ProcessRequest(ctx context.Context, job jobModel.Job, messageHistory []string) jobModel.Job
	IngestCatalog(ctx context.Context, job jobModel.Job) jobModel.Job
	CountDocuments(ctx context.Context) (uint64, error)
}

type service struct {
	vectorDB    vectorDB.DataProcessor
	llmProvider llm.Provider
	embedder    embedding.Embedder
	logger      *logger_i.Logger
}

// NewService constructor
func NewService(vector vectorDB.DataProcessor, llm llm.Provider, em embedding.Embedder) Service {
	return &service{
		vectorDB:    vector,
		llmProvider: llm,
		embedder:    em,
		logger:      logger_i.NewLogger("RAG Service"),
	}
}

func (s *service) ProcessRequest(ctx context.Context, jobt jobModel.Job, messageHistory []string) jobModel.Job {
	inMethodLogger := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "JobId", jobt.Id)

	processContext, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	jobt.CurrentStep = jobModel.RAGCall

	// Embedding
	queryVector, err := s.executeEmbeddingStep(processContext, inMethodLogger, &jobt)
	if err != nil {
		return s.jobError(jobt, err, "EMBEDDING_FAILURE", true)
	}

	// Cache Check
	cachedAnswer, found := s.executeCacheCheckStep(ctx, inMethodLogger, &jobt, queryVector)
	if found {
		return returnOutput(jobt, cachedAnswer)
	}

	// Vector DB Search
	matches, err := s.executeVectorSearchStep(processContext, inMethodLogger, &jobt, queryVector)
	if err != nil {
		return s.jobError(jobt, err, "VECTOR_DB_FAILURE", true)
	}

	// LLM Generation
	answer, err := s.executeLLMStep(processContext, inMethodLogger, &jobt, matches, messageHistory)
	if err != nil {
		return s.jobError(jobt, err, "LLM_GENERATION_FAILURE", true)
	}

	//Background Cache Save
	go func() {
		if err := s.vectorDB.SaveToCache(ctx, utils.GetNewUUID(), queryVector, answer); err != nil {
			s.logger.Error("Failed to save to cache")
		}
	}()

	return returnOutput(jobt, answer)
}

func (s *service) IngestCatalog(ctx context.Context, job jobModel.Job) jobModel.Job {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("catalog_ingestion", time.Since(start)) }()
	j := ingest.ProcessCatalogIngestion(ctx, job, s.embedder, s.vectorDB)
	if j.Status != jobModel.JobStatusComplete {
		return s.jobError(j, errors.New("catalog ingestion failed"), "INGESTION_FAILURE", true)
	}
	metrics.SetIndexedDocuments(j.JobPayload.IndexedCount)
	return j
}

func (s *service) CountDocuments(ctx context.Context) (uint64, error) {
	return s.vectorDB.CountDocuments(ctx, config.CollectionName())
}
