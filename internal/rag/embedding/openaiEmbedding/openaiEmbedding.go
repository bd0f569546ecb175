package openaiEmbedding

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"fryerbot/internal/config"
	"fryerbot/internal/rag/embedding"
	"fryerbot/pkg/logger_i"

	goopenai "github.com/sashabaranov/go-openai"
)

var logger *logger_i.Logger
var once sync.Once
var embeddingClient *client

type client struct {
	openAI *goopenai.Client
	model  string
}

func newOpenAIEmbedder(modelName string, apikey string) {
	if apikey == "" {
		logger.Error("OpenAI API key is empty")
		return
	}

	cfg := goopenai.DefaultConfig(apikey)
	cfg.HTTPClient = &http.Client{Timeout: config.OpenAITimeout()}

	embeddingClient = &client{
		openAI: goopenai.NewClientWithConfig(cfg),
		model:  modelName,
	}
	logger.Info("OpenAI embedding client created", "model", modelName)
}

func GetOpenAIEmbeddingClient(modelName string, apikey string) embedding.Embedder {
	once.Do(func() {
		logger = logger_i.NewLogger("openai_embedding")
		newOpenAIEmbedder(modelName, apikey)
	})

	//if init still fails
	if embeddingClient == nil {
		return nil
	}
	return &client{openAI: embeddingClient.openAI, model: embeddingClient.model}
}

func (c *client) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	vectors, err := c.embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (c *client) BatchEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	return c.embed(ctx, texts)
}

func (c *client) embed(ctx context.Context, texts []string) ([][]float32, error) {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	resp, err := c.openAI.CreateEmbeddings(ctx, goopenai.EmbeddingRequest{
		Input:          texts,
		Model:          goopenai.EmbeddingModel(c.model),
		EncodingFormat: goopenai.EmbeddingEncodingFormatFloat,
	})
	if err != nil {
		log.Error("Error getting embeddings from OpenAI", "error", err.Error())
		return nil, err
	}
	if len(resp.Data) != len(texts) {
		log.Error("Embedding count mismatch", "want", len(texts), "got", len(resp.Data))
		return nil, errors.New("embedding response is incomplete")
	}

	vectors := make([][]float32, len(resp.Data))
	for i, item := range resp.Data {
		vectors[i] = item.Embedding
	}
	return vectors, nil
}
