package rag_test

import (
	"context"

	"fryerbot/internal/domain/catalogModel"
	"fryerbot/internal/rag/vectorDB"
)

// MockVectorDB implements vectorDB.DataProcessor
type MockVectorDB struct {
	// Control fields to simulate different behaviors
	OnSearch             func(ctx context.Context, vectorVal []float32, params vectorDB.SearchParams) ([]catalogModel.SearchHit, error)
	OnGetCachedAnswer    func(ctx context.Context, queryVector []float32) (string, bool, error)
	OnSaveToCache        func(ctx context.Context, id string, vector []float32, answer string) error
	OnEnsureCollection   func(ctx context.Context, name string) error
	OnRecreateCollection func(ctx context.Context, name string) error
	OnUpsertBatch        func(ctx context.Context, name string, docs []catalogModel.Document, vectors [][]float32) error
	OnCountDocuments     func(ctx context.Context, name string) (uint64, error)
}

func (m *MockVectorDB) Search(ctx context.Context, v []float32, params vectorDB.SearchParams) ([]catalogModel.SearchHit, error) {
	if m.OnSearch != nil {
		return m.OnSearch(ctx, v, params)
	}
	return []catalogModel.SearchHit{{Text: "default context", Score: 0.9}}, nil
}

func (m *MockVectorDB) GetCachedAnswer(ctx context.Context, v []float32) (string, bool, error) {
	if m.OnGetCachedAnswer != nil {
		return m.OnGetCachedAnswer(ctx, v)
	}
	return "", false, nil
}

func (m *MockVectorDB) SaveToCache(ctx context.Context, id string, v []float32, a string) error {
	if m.OnSaveToCache != nil {
		return m.OnSaveToCache(ctx, id, v, a)
	}
	return nil
}

func (m *MockVectorDB) EnsureCollection(ctx context.Context, name string) error {
	if m.OnEnsureCollection != nil {
		return m.OnEnsureCollection(ctx, name)
	}
	return nil
}

func (m *MockVectorDB) RecreateCollection(ctx context.Context, name string) error {
	if m.OnRecreateCollection != nil {
		return m.OnRecreateCollection(ctx, name)
	}
	return nil
}

func (m *MockVectorDB) UpsertBatch(ctx context.Context, name string, docs []catalogModel.Document, vectors [][]float32) error {
	if m.OnUpsertBatch != nil {
		return m.OnUpsertBatch(ctx, name, docs, vectors)
	}
	return nil
}

func (m *MockVectorDB) CountDocuments(ctx context.Context, name string) (uint64, error) {
	if m.OnCountDocuments != nil {
		return m.OnCountDocuments(ctx, name)
	}
	return 0, nil
}

type MockEmbedder struct {
	OnGetEmbedding   func(ctx context.Context, text string) ([]float32, error)
	OnBatchEmbedding func(ctx context.Context, texts []string) ([][]float32, error)
}

func (m *MockEmbedder) BatchEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	if m.OnBatchEmbedding != nil {
		return m.OnBatchEmbedding(ctx, texts)
	}
	// Return dummy vectors matching batch size
	return make([][]float32, len(texts)), nil
}

func (m *MockEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	if m.OnGetEmbedding != nil {
		return m.OnGetEmbedding(ctx, query)
	}
	return []float32{0.1}, nil
}

// MockLLM implements llm.Provider
type MockLLM struct {
	OnGenerate func(ctx context.Context, query string, matches []string, history []string) (string, error)
}

func (m *MockLLM) Generate(ctx context.Context, q string, mth []string, hist []string) (string, error) {
	if m.OnGenerate != nil {
		return m.OnGenerate(ctx, q, mth, hist)
	}
	return "mocked llm response", nil
}
