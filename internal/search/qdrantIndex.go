package search

import (
	"context"
	"fmt"
	"time"

	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/config"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/domain/docmodel"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/metrics"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/pkg/logger_i"
	"github.com/qdrant/go-client/qdrant"
)

type qdrantIndex struct {
	client     *qdrant.Client
	embedder   Embedder
	collection string
	logger     *logger_i.Logger
}

// NewQdrantIndex connects to qdrant and makes sure the document collection
// exists. One point per document, point id = document id, so upserting the
// same document replaces rather than duplicates.
func NewQdrantIndex(ctx context.Context, host string, port int, embedder Embedder) (Index, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     host,
		Port:     port,
		UseTLS:   config.QdrantUseTLS,
		PoolSize: uint(config.QdrantPoolSize),
	})
	if err != nil {
		return nil, fmt.Errorf("could not connect to qdrant: %w", err)
	}

	idx := &qdrantIndex{
		client:     client,
		embedder:   embedder,
		collection: config.SearchCollectionName,
		logger:     logger_i.NewLogger("Qdrant"),
	}
	if err := idx.ensureCollection(ctx); err != nil {
		return nil, err
	}

	go func() {
		<-ctx.Done()
		idx.logger.Info("Shutting down qdrant client")
		if err := client.Close(); err != nil {
			idx.logger.Error("Could not close qdrant client", "error", err)
		}
	}()

	return idx, nil
}

func (q *qdrantIndex) ensureCollection(ctx context.Context) error {
	exists, err := q.client.CollectionExists(ctx, q.collection)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(config.EmbeddingOutputDimensionality),
			Distance: qdrant.Distance_Cosine,
		}),
	})
}

func (q *qdrantIndex) Index(ctx context.Context, doc docmodel.UploadedDocument, text string) error {
	log := q.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "documentId", doc.Id)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("index_upsert", time.Since(start)) }()

	snippet := text
	if len(snippet) > config.IndexedSnippetLimit {
		snippet = snippet[:config.IndexedSnippetLimit]
	}

	vector, err := q.embedder.Embed(ctx, snippet)
	if err != nil {
		return err
	}

	_, err = q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collection,
		Points: []*qdrant.PointStruct{{
			Id:      qdrant.NewID(doc.Id),
			Vectors: qdrant.NewVectors(vector...),
			Payload: qdrant.NewValueMap(map[string]any{
				"content":      snippet,
				"doc_name":     doc.Name,
				"scope":        doc.Scope,
				"content_type": doc.ContentType,
				"indexed_at":   time.Now().Unix(),
			}),
		}},
		Wait: qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}
	log.Debug("Indexed document")
	return nil
}

func (q *qdrantIndex) Search(ctx context.Context, scope string, query string, limit int) ([]Result, error) {
	log := q.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "scope", scope)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("index_search", time.Since(start)) }()

	if limit <= 0 || limit > config.SearchMaxLimit {
		limit = config.SearchDefaultLimit
	}

	vector, err := q.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	points := &qdrant.QueryPoints{
		CollectionName: q.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	}
	if scope != "" {
		points.Filter = &qdrant.Filter{
			Must: []*qdrant.Condition{qdrant.NewMatch("scope", scope)},
		}
	}

	hits, err := q.client.Query(ctx, points)
	if err != nil {
		log.Error("Error querying qdrant", "error", err)
		return nil, fmt.Errorf("%w: %v", docmodel.ErrTransient, err)
	}

	results := make([]Result, 0, len(hits))
	for _, hit := range hits {
		results = append(results, Result{
			DocumentId: hit.Id.GetUuid(),
			Name:       hit.Payload["doc_name"].GetStringValue(),
			Scope:      hit.Payload["scope"].GetStringValue(),
			Snippet:    hit.Payload["content"].GetStringValue(),
			Score:      hit.Score,
		})
	}
	log.Debug("Search complete", "hits", len(results))
	return results, nil
}
