package rag

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"fryerbot/internal/config"
	"fryerbot/internal/domain/catalogModel"
	"fryerbot/internal/domain/jobModel"
	"fryerbot/internal/metrics"
	"fryerbot/internal/rag/vectorDB"
	"fryerbot/pkg/logger_i"
)

func returnOutput(job jobModel.Job, ans string) jobModel.Job {
	job.JobPayload.Answer = ans
	job.CurrentStep = jobModel.Complete
	return job
}

func logOutput(job jobModel.Job, status jobModel.InternalStatus, log *logger_i.Logger) jobModel.Job {
	job.CurrentStep = status
	log.Debug("ProcessRequest", "Current Status", job.CurrentStep)
	return job
}

func (s *service) jobError(job jobModel.Job, err error, message string, canRetry bool) jobModel.Job {
	s.logger.Error(message, "error", err)

	job.Error = jobModel.JobError{
		Code:    http.StatusInternalServerError,
		Message: "Internal Server Error",
		Retry:   canRetry,
	}
	job.Status = jobModel.JobStatusError
	return job
}

func (s *service) executeEmbeddingStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job) ([]float32, error) {
	*job = logOutput(*job, jobModel.EmbeddingAPICall, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("embedding", time.Since(start)) }()

	return s.embedder.GetEmbedding(ctx, job.JobPayload.Question)
}

func (s *service) executeCacheCheckStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, emb []float32) (string, bool) {
	*job = logOutput(*job, jobModel.CacheCall, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("cache_lookup", time.Since(start)) }()

	ans, found, _ := s.vectorDB.GetCachedAnswer(ctx, emb)
	return ans, found
}

func (s *service) executeVectorSearchStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, emb []float32) ([]string, error) {
	*job = logOutput(*job, jobModel.VectorDBCall, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("vector_search", time.Since(start)) }()

	hits, err := s.vectorDB.Search(ctx, emb, vectorSearchParams())
	if err != nil {
		return nil, err
	}
	job.JobPayload.Sources = hitSources(hits)
	return FormatMatches(hits), nil
}

func (s *service) executeLLMStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, matches []string, history []string) (string, error) {
	*job = logOutput(*job, jobModel.LLMCall, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("llm_generation", time.Since(start)) }()

	return s.llmProvider.Generate(ctx, job.JobPayload.Question, matches, history)
}

func vectorSearchParams() vectorDB.SearchParams {
	return vectorDB.SearchParams{
		TopK:           config.RAGTopK(),
		ScoreThreshold: config.RAGScoreThreshold(),
	}
}

// FormatMatches renders hits as the numbered context blocks the system
// prompt refers to.
func FormatMatches(hits []catalogModel.SearchHit) []string {
	matches := make([]string, 0, len(hits))
	for i, hit := range hits {
		matches = append(matches, fmt.Sprintf("Документ %d (релевантность: %.2f):\n%s", i+1, hit.Score, hit.Text))
	}
	return matches
}

func hitSources(hits []catalogModel.SearchHit) []string {
	sources := make([]string, 0, len(hits))
	for _, hit := range hits {
		sources = append(sources, fmt.Sprintf("Модель: %s, Артикул: %s", hit.Model, hit.Article))
	}
	return sources
}
