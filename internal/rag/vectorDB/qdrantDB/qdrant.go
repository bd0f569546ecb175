package qdrantDB

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"

	"fryerbot/internal/config"
	"fryerbot/internal/domain/catalogModel"
	"fryerbot/internal/rag/vectorDB"
	"fryerbot/pkg/logger_i"

	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
)

// batches of 3072-dim vectors plus full row payloads need more headroom
// than the default 4MB grpc message limit
const grpcMaxMessageSize = 32 * 1024 * 1024

var logger *logger_i.Logger
var qdrantInstance *qdrant.Client
var once sync.Once
var dimension = config.EmbeddingOutputDimensionality

type ClientHolder struct {
	QObj *qdrant.Client
}

func GetQdrantClient(ctx context.Context) *ClientHolder {

	once.Do(func() {
		logger = logger_i.NewLogger("Qdrant")
		res := newClient()
		if res != nil {
			qdrantInstance = res
			initCacheCollection(ctx, qdrantInstance)
			go closeQdrant(ctx, qdrantInstance)
		}
	})

	if qdrantInstance == nil {
		return nil
	}
	return &ClientHolder{
		QObj: qdrantInstance,
	}
}

func newClient() *qdrant.Client {

	host := os.Getenv("QDRANT_HOST")
	port, er := strconv.Atoi(os.Getenv("QDRANT_PORT"))

	if host == "" || er != nil {
		host = config.QdrantHost
		port = config.QdrantGrpcPort
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     host,
		Port:     port,
		APIKey:   config.QdrantAPIKey(),
		UseTLS:   config.QdrantUseTLS,
		PoolSize: uint(config.QdrantPoolSize),
		GrpcOptions: []grpc.DialOption{
			grpc.WithDefaultCallOptions(
				grpc.MaxCallRecvMsgSize(grpcMaxMessageSize),
				grpc.MaxCallSendMsgSize(grpcMaxMessageSize),
			),
		},
	})
	if err != nil {
		logger.Error("could not instantiate qdrant client", "error:", err)
		return nil
	}

	err = createCollection(context.Background(), client, config.CollectionName())
	if err != nil {
		logger.Error("could not create collection", "collectionName", config.CollectionName(), "error:", err)
		return nil
	}

	return client
}

func closeQdrant(ctx context.Context, qi *qdrant.Client) {
	<-ctx.Done()
	logger.Info("Shutting down Qdrant")
	err := qi.Close()
	if err != nil {
		logger.Error("could not close Qdrant", "error:", err)
	}
	logger.Info("Closed Qdrant")
}

func (db *ClientHolder) Search(ctx context.Context, vectorFloat []float32, params vectorDB.SearchParams) ([]catalogModel.SearchHit, error) {
	loggr := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))
	result, err := db.QObj.Query(ctx, &qdrant.QueryPoints{
		CollectionName: config.CollectionName(),
		Query:          qdrant.NewQuery(vectorFloat...),
		Limit:          qdrant.PtrOf(params.TopK),
		ScoreThreshold: qdrant.PtrOf(params.ScoreThreshold),
		WithPayload:    qdrant.NewWithPayload(true),
	})

	if err != nil {
		loggr.Error("Error querying Qdrant", "error:", err)
		return nil, err
	}

	hits := make([]catalogModel.SearchHit, 0, len(result))
	for _, hit := range result {
		hits = append(hits, catalogModel.SearchHit{
			ID:      pointIDString(hit.Id),
			Score:   hit.Score,
			Text:    hit.Payload["text"].GetStringValue(),
			Model:   hit.Payload[catalogModel.ColModel].GetStringValue(),
			Article: hit.Payload[catalogModel.ColArticle].GetStringValue(),
		})
	}

	loggr.Debug("Vector search done", "hits", len(hits))
	return hits, nil
}

func (db *ClientHolder) EnsureCollection(ctx context.Context, collectionName string) error {
	return createCollection(ctx, db.QObj, collectionName)
}

// RecreateCollection drops all points. Used when the admin replaces the
// catalog wholesale to avoid stale variants.
func (db *ClientHolder) RecreateCollection(ctx context.Context, collectionName string) error {
	loggr := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))
	exists, err := db.QObj.CollectionExists(ctx, collectionName)
	if err != nil {
		return err
	}
	if exists {
		if err := db.QObj.DeleteCollection(ctx, collectionName); err != nil {
			return fmt.Errorf("deleting collection %q: %w", collectionName, err)
		}
		loggr.Info("Dropped collection", "collection", collectionName)
	}
	return createCollection(ctx, db.QObj, collectionName)
}

func (db *ClientHolder) UpsertBatch(ctx context.Context, collectionName string, docs []catalogModel.Document, vectors [][]float32) error {
	if len(docs) != len(vectors) {
		return fmt.Errorf("mismatch: got %d documents but %d vectors", len(docs), len(vectors))
	}

	qdrantPoints := make([]*qdrant.PointStruct, len(docs))

	for i, doc := range docs {
		payload := map[string]any{"text": doc.Text}
		for k, v := range doc.Payload {
			if v == nil {
				continue
			}
			payload[k] = v
		}

		qdrantPoints[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(doc.ID),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: qdrant.NewValueMap(payload),
		}
	}

	_, err := db.QObj.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collectionName,
		Points:         qdrantPoints,
		Wait:           qdrant.PtrOf(true),
	})

	if err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}

	return nil
}

func (db *ClientHolder) CountDocuments(ctx context.Context, collectionName string) (uint64, error) {
	return db.QObj.Count(ctx, &qdrant.CountPoints{
		CollectionName: collectionName,
		Exact:          qdrant.PtrOf(true),
	})
}

func createCollection(ctx context.Context, client *qdrant.Client, collectionName string) error {
	if collectionName == "" {
		return errors.New("empty collection name")
	}

	exists, err := client.CollectionExists(ctx, collectionName)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	err = client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	return err
}

func pointIDString(id *qdrant.PointId) string {
	if id == nil {
		return ""
	}
	if uuid := id.GetUuid(); uuid != "" {
		return uuid
	}
	return strconv.FormatUint(id.GetNum(), 10)
}
