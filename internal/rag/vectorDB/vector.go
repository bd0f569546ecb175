package vectorDB

import (
	"context"

	"fryerbot/internal/domain/catalogModel"
)

type SearchParams struct {
	TopK           uint64
	ScoreThreshold float32
}

type DataProcessor interface {
	Search(ctx context.Context, vectorVal []float32, params SearchParams) ([]catalogModel.SearchHit, error)
	GetCachedAnswer(ctx context.Context, queryVector []float32) (string, bool, error)
	SaveToCache(ctx context.Context, id string, vector []float32, answer string) error

	// catalog ingestion calls
	EnsureCollection(ctx context.Context, collectionName string) error
	RecreateCollection(ctx context.Context, collectionName string) error
	UpsertBatch(ctx context.Context, collectionName string, docs []catalogModel.Document, vectors [][]float32) error
	CountDocuments(ctx context.Context, collectionName string) (uint64, error)
}
