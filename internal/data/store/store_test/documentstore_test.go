package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/data/redisStore"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/data/store"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/domain/docmodel"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newDocumentStore(t *testing.T) *store.RedisDocumentStore {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return store.TestDocumentStore(redisStore.NewTestStore(client))
}

func TestRedisDocumentStore_DocumentRoundtrip(t *testing.T) {
	docStore := newDocumentStore(t)
	ctx := context.Background()

	doc := docmodel.UploadedDocument{
		Id:          "doc-1",
		Scope:       "engagement-7",
		Name:        "invoice.pdf",
		Location:    "blob_data/doc-1.pdf",
		ContentType: "application/pdf",
		Size:        1234,
		Status:      docmodel.StatusUploaded,
		UploadedAt:  time.Now().UTC(),
	}

	if err := docStore.SaveDocument(ctx, doc); err != nil {
		t.Fatalf("SaveDocument failed: %v", err)
	}

	got, found := docStore.GetDocument(ctx, "doc-1")
	if !found {
		t.Fatal("document not found after save")
	}
	if got.Name != doc.Name || got.Scope != doc.Scope || got.Status != docmodel.StatusUploaded {
		t.Errorf("document mismatch: got %+v", got)
	}

	if _, found := docStore.GetDocument(ctx, "ghost"); found {
		t.Error("expected found=false for unknown document")
	}
}

func TestRedisDocumentStore_ExtractionFirstWriterWins(t *testing.T) {
	docStore := newDocumentStore(t)
	ctx := context.Background()

	first := docmodel.CanonicalExtraction{
		DocumentId: "doc-1",
		Profile:    docmodel.ProfileInvoice,
		Content:    "original content",
		Pages:      1,
	}
	second := first
	second.Content = "overwrite attempt"

	won, err := docStore.SaveExtraction(ctx, first)
	if err != nil {
		t.Fatalf("SaveExtraction failed: %v", err)
	}
	if !won {
		t.Fatal("first write should win")
	}

	won, err = docStore.SaveExtraction(ctx, second)
	if err != nil {
		t.Fatalf("second SaveExtraction failed: %v", err)
	}
	if won {
		t.Error("second write must not overwrite the first")
	}

	got, found := docStore.GetExtraction(ctx, "doc-1", docmodel.ProfileInvoice)
	if !found {
		t.Fatal("extraction not found")
	}
	if got.Content != "original content" {
		t.Errorf("extraction was overwritten: got %q", got.Content)
	}
}

func TestRedisDocumentStore_ExtractionKeyedByProfile(t *testing.T) {
	docStore := newDocumentStore(t)
	ctx := context.Background()

	generic := docmodel.CanonicalExtraction{DocumentId: "doc-1", Profile: docmodel.ProfileGeneric, Content: "generic"}
	invoice := docmodel.CanonicalExtraction{DocumentId: "doc-1", Profile: docmodel.ProfileInvoice, Content: "invoice"}

	if _, err := docStore.SaveExtraction(ctx, generic); err != nil {
		t.Fatal(err)
	}
	if won, err := docStore.SaveExtraction(ctx, invoice); err != nil || !won {
		t.Fatalf("different profile should be an independent record, won=%v err=%v", won, err)
	}

	got, _ := docStore.GetExtraction(ctx, "doc-1", docmodel.ProfileInvoice)
	if got.Content != "invoice" {
		t.Errorf("wrong record for invoice profile: %q", got.Content)
	}
}

func TestRedisDocumentStore_AnalysisRoundtrip(t *testing.T) {
	docStore := newDocumentStore(t)
	ctx := context.Background()

	result := docmodel.AnalysisResult{
		DocumentId:      "doc-1",
		Profile:         docmodel.ProfileGeneric,
		Summary:         "quarterly expense report",
		RedFlags:        []string{"duplicate line item"},
		Highlights:      []string{},
		ConfidenceScore: 0.7,
		CreatedAt:       time.Now().UTC(),
	}

	if err := docStore.SaveAnalysis(ctx, result); err != nil {
		t.Fatalf("SaveAnalysis failed: %v", err)
	}

	got, found := docStore.GetAnalysis(ctx, "doc-1", docmodel.ProfileGeneric)
	if !found {
		t.Fatal("analysis not found after save")
	}
	if got.Summary != result.Summary || got.ConfidenceScore != 0.7 {
		t.Errorf("analysis mismatch: got %+v", got)
	}
	if len(got.RedFlags) != 1 {
		t.Errorf("expected one red flag, got %d", len(got.RedFlags))
	}
}
