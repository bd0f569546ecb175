package ingest

import (
	"context"
	"fmt"
	"os"

	"fryerbot/internal/config"
	"fryerbot/internal/domain/catalogModel"
	"fryerbot/internal/domain/jobModel"
	"fryerbot/internal/rag/embedding"
	"fryerbot/internal/rag/vectorDB"
	"fryerbot/pkg/logger_i"
)

var logger *logger_i.Logger

// ProcessCatalogIngestion runs the full reindex for an uploaded sheet:
// read, forward-fill, normalize, embed in batches, upsert.
func ProcessCatalogIngestion(ctx context.Context, job jobModel.Job, e embedding.Embedder, vectorDatabase vectorDB.DataProcessor) jobModel.Job {
	logger = logger_i.NewLogger("Catalog Ingestion")
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	fileName := job.JobPayload.IngestFileName
	filePath := job.JobPayload.IngestFilePath

	log.Info("Processing catalog", "filename", fileName, "recreate", job.JobPayload.Recreate)

	job.CurrentStep = jobModel.IngestProcessing

	docs, err := loadDocuments(filePath)
	if err != nil {
		log.Error("Error reading catalog", "error", err)
		job.Status = jobModel.JobStatusError
		job.Error.Message = "Error reading catalog file"
		return job
	}

	if len(docs) == 0 {
		log.Warn("No indexable rows in catalog", "filename", fileName)
		job.Status = jobModel.JobStatusError
		job.Error.Message = "Catalog contains no indexable rows"
		return job
	}

	collection := config.CollectionName()
	if job.JobPayload.Recreate {
		err = vectorDatabase.RecreateCollection(ctx, collection)
	} else {
		err = vectorDatabase.EnsureCollection(ctx, collection)
	}
	if err != nil {
		log.Error("Error preparing collection", "error", err)
		job.Status = jobModel.JobStatusError
		job.Error.Message = "Error preparing collection"
		return job
	}

	if err := BatchIngest(ctx, docs, vectorDatabase, e); err != nil {
		log.Error("Error indexing catalog", "error", err)
		job.Status = jobModel.JobStatusError
		job.Error.Message = "Error indexing catalog"
		return job
	}

	if err := os.Remove(filePath); err != nil {
		log.Error("Error removing uploaded file", "error", err)
	}

	log.Info("Catalog indexed", "documents", len(docs))
	job.JobPayload.IndexedCount = len(docs)
	job.Status = jobModel.JobStatusComplete
	return job
}

func loadDocuments(filePath string) ([]catalogModel.Document, error) {
	reader, err := NewCatalogReader(filePath)
	if err != nil {
		return nil, err
	}
	rows, err := reader.ReadRows()
	if err != nil {
		return nil, err
	}
	return BuildDocuments(rows), nil
}

// BatchIngest embeds and upserts documents in fixed-size batches so one
// oversized sheet cannot blow a single embedding request.
func BatchIngest(ctx context.Context, docs []catalogModel.Document, vectorDatabase vectorDB.DataProcessor, embedder embedding.Embedder) error {
	collection := config.CollectionName()

	for i := 0; i < len(docs); i += config.IngestBatchSize {
		end := i + config.IngestBatchSize
		if end > len(docs) {
			end = len(docs)
		}

		currentBatch := docs[i:end]

		texts := make([]string, len(currentBatch))
		for j, d := range currentBatch {
			texts[j] = d.Text
		}

		vectors, err := embedder.BatchEmbedding(ctx, texts)
		if err != nil {
			return fmt.Errorf("embedding batch failed: %w", err)
		}

		if err := vectorDatabase.UpsertBatch(ctx, collection, currentBatch, vectors); err != nil {
			return fmt.Errorf("upserting to qdrant failed: %w", err)
		}
	}

	return nil
}
