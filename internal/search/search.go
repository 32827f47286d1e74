package search

import (
	"context"

	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/domain/docmodel"
)

type Result struct {
	DocumentId string  `json:"document_id"`
	Name       string  `json:"name"`
	Scope      string  `json:"scope"`
	Snippet    string  `json:"snippet"`
	Score      float32 `json:"score"`
}

// Index is the full-text/semantic retrieval collaborator. Index is
// idempotent per document id: re-indexing replaces the unit. Search filters
// to a scope when one is given.
type Index interface {
	Index(ctx context.Context, doc docmodel.UploadedDocument, text string) error
	Search(ctx context.Context, scope string, query string, limit int) ([]Result, error)
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
