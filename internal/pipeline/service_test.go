package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/ai"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/data/store"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/domain/docmodel"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/domain/jobmodel"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/extraction"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/retry"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/search"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/signals"
)

type MockBlobStore struct {
	Puts atomic.Int64
}

func (m *MockBlobStore) Put(ctx context.Context, data []byte, name, contentType string) (string, error) {
	m.Puts.Add(1)
	return "blob_data/" + name, nil
}

func (m *MockBlobStore) SignedURL(location string, ttl time.Duration) (string, error) {
	return "file:///" + location + "?exp=1&sig=test", nil
}

func (m *MockBlobStore) Delete(ctx context.Context, location string) error {
	return nil
}

type MockExtractor struct {
	Calls     atomic.Int64
	OnExtract func(signedURL string, profile docmodel.Profile) (*extraction.RawResult, error)
}

func (m *MockExtractor) Extract(ctx context.Context, signedURL string, profile docmodel.Profile) (*extraction.RawResult, error) {
	m.Calls.Add(1)
	if m.OnExtract != nil {
		return m.OnExtract(signedURL, profile)
	}
	return &extraction.RawResult{Content: "extracted text"}, nil
}

type MockIndex struct {
	Indexed atomic.Int64
	OnIndex func(doc docmodel.UploadedDocument, text string) error
}

func (m *MockIndex) Index(ctx context.Context, doc docmodel.UploadedDocument, text string) error {
	m.Indexed.Add(1)
	if m.OnIndex != nil {
		return m.OnIndex(doc, text)
	}
	return nil
}

func (m *MockIndex) Search(ctx context.Context, scope, query string, limit int) ([]search.Result, error) {
	return nil, nil
}

type MockProvider struct {
	OnComplete func(system string, messages []ai.Message) (ai.Completion, error)
}

func (m *MockProvider) Complete(ctx context.Context, system string, messages []ai.Message) (ai.Completion, error) {
	if m.OnComplete != nil {
		return m.OnComplete(system, messages)
	}
	return ai.Completion{Text: "SUMMARY: a short summary\nRED FLAGS:\nnone\nHIGHLIGHTS:\nnone"}, nil
}

type fixture struct {
	service   Service
	documents *store.InMemoryDocumentStore
	blobs     *MockBlobStore
	extractor *MockExtractor
	index     *MockIndex
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	opts := retry.Options{MaxAttempts: 1, BaseDelay: 0}
	blobs := &MockBlobStore{}
	documents := store.InitInMemoryDocumentStore()
	extractor := &MockExtractor{}
	index := &MockIndex{}
	analyzer := extraction.NewAnalyzer(extractor, blobs, nil, opts)
	engine := signals.NewEngine(&MockProvider{}, opts)
	return &fixture{
		service:   NewService(blobs, documents, analyzer, engine, index, nil),
		documents: documents,
		blobs:     blobs,
		extractor: extractor,
		index:     index,
	}
}

func writeTempUpload(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "upload.pdf")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func ingestJob(tempPath string) jobmodel.Job {
	return jobmodel.Job{
		Id:      "job-1",
		JobType: jobmodel.JobTypeIngest,
		JobPayload: jobmodel.JobPayload{
			Scope:        "engagement-7",
			DocumentId:   "doc-1",
			DocumentName: "invoice.pdf",
			ContentType:  "application/pdf",
			TempPath:     tempPath,
			Size:         11,
		},
	}
}

func analyzeJob(profile docmodel.Profile) jobmodel.Job {
	return jobmodel.Job{
		Id:      "job-2",
		JobType: jobmodel.JobTypeAnalyze,
		JobPayload: jobmodel.JobPayload{
			DocumentId: "doc-1",
			Profile:    profile,
		},
	}
}

func TestIngestDocument_StoresBlobAndRecord(t *testing.T) {
	f := newFixture(t)
	tempPath := writeTempUpload(t, "hello world")

	result := f.service.IngestDocument(context.Background(), ingestJob(tempPath))
	if result.Status == jobmodel.JobStatusError {
		t.Fatalf("ingest failed: %+v", result.Error)
	}
	if result.CurrentStep != jobmodel.Complete {
		t.Errorf("expected Complete, got %s", result.CurrentStep)
	}

	doc, found := f.documents.GetDocument(context.Background(), "doc-1")
	if !found {
		t.Fatal("document record missing after ingest")
	}
	if doc.Status != docmodel.StatusUploaded || doc.Location == "" {
		t.Errorf("document record wrong: %+v", doc)
	}
	if f.blobs.Puts.Load() != 1 {
		t.Errorf("expected one blob write, got %d", f.blobs.Puts.Load())
	}

	if _, err := os.Stat(tempPath); !os.IsNotExist(err) {
		t.Error("temp upload was not removed after ingest")
	}
}

func TestIngestDocument_MissingTempFileFails(t *testing.T) {
	f := newFixture(t)

	result := f.service.IngestDocument(context.Background(), ingestJob("/nonexistent/upload.pdf"))
	if result.Status != jobmodel.JobStatusError {
		t.Fatal("expected ingest to fail for a missing temp file")
	}
	if result.Error.Retry {
		t.Error("a missing upload is not retryable")
	}
}

func TestAnalyzeDocument_HappyPath(t *testing.T) {
	f := newFixture(t)
	tempPath := writeTempUpload(t, "hello world")
	f.service.IngestDocument(context.Background(), ingestJob(tempPath))

	result := f.service.AnalyzeDocument(context.Background(), analyzeJob(docmodel.ProfileGeneric))
	if result.Status == jobmodel.JobStatusError {
		t.Fatalf("analyze failed: %+v", result.Error)
	}
	if result.JobPayload.Analysis == nil {
		t.Fatal("analysis missing from completed job")
	}
	if result.JobPayload.Analysis.Summary != "a short summary" {
		t.Errorf("unexpected summary: %q", result.JobPayload.Analysis.Summary)
	}

	doc, _ := f.documents.GetDocument(context.Background(), "doc-1")
	if doc.Status != docmodel.StatusAnalyzed {
		t.Errorf("expected analyzed status, got %s", doc.Status)
	}
	if _, found := f.documents.GetExtraction(context.Background(), "doc-1", docmodel.ProfileGeneric); !found {
		t.Error("extraction record missing")
	}
	if f.index.Indexed.Load() != 1 {
		t.Errorf("expected one index write, got %d", f.index.Indexed.Load())
	}
}

func TestAnalyzeDocument_IdempotentPerProfile(t *testing.T) {
	f := newFixture(t)
	tempPath := writeTempUpload(t, "hello world")
	f.service.IngestDocument(context.Background(), ingestJob(tempPath))

	first := f.service.AnalyzeDocument(context.Background(), analyzeJob(docmodel.ProfileGeneric))
	if first.Status == jobmodel.JobStatusError {
		t.Fatalf("first analyze failed: %+v", first.Error)
	}
	callsAfterFirst := f.extractor.Calls.Load()

	second := f.service.AnalyzeDocument(context.Background(), analyzeJob(docmodel.ProfileGeneric))
	if second.Status == jobmodel.JobStatusError {
		t.Fatalf("second analyze failed: %+v", second.Error)
	}
	if f.extractor.Calls.Load() != callsAfterFirst {
		t.Error("re-analysis must not call the extraction service again")
	}
	if second.JobPayload.Analysis == nil || second.JobPayload.Analysis.Summary != first.JobPayload.Analysis.Summary {
		t.Error("re-analysis must return the stored result")
	}

	// A different profile is an independent analysis.
	third := f.service.AnalyzeDocument(context.Background(), analyzeJob(docmodel.ProfileInvoice))
	if third.Status == jobmodel.JobStatusError {
		t.Fatalf("invoice analyze failed: %+v", third.Error)
	}
	if f.extractor.Calls.Load() != callsAfterFirst+1 {
		t.Error("a new profile should run extraction")
	}
}

func TestAnalyzeDocument_UnknownDocument(t *testing.T) {
	f := newFixture(t)

	result := f.service.AnalyzeDocument(context.Background(), analyzeJob(docmodel.ProfileGeneric))
	if result.Status != jobmodel.JobStatusError {
		t.Fatal("expected error for unknown document")
	}
	if result.Error.Code != 404 {
		t.Errorf("expected 404 error code, got %d", result.Error.Code)
	}
}

func TestAnalyzeDocument_ExtractionFailureMarksDocument(t *testing.T) {
	f := newFixture(t)
	tempPath := writeTempUpload(t, "hello world")
	f.service.IngestDocument(context.Background(), ingestJob(tempPath))

	f.extractor.OnExtract = func(signedURL string, profile docmodel.Profile) (*extraction.RawResult, error) {
		return nil, docmodel.ErrTransient
	}

	result := f.service.AnalyzeDocument(context.Background(), analyzeJob(docmodel.ProfileGeneric))
	if result.Status != jobmodel.JobStatusError {
		t.Fatal("expected analyze to fail")
	}
	if !result.Error.Retry {
		t.Error("transient extraction failures are retryable")
	}

	doc, _ := f.documents.GetDocument(context.Background(), "doc-1")
	if doc.Status != docmodel.StatusError {
		t.Errorf("expected error status on document, got %s", doc.Status)
	}
}

func TestAnalyzeDocument_IndexFailureIsBestEffort(t *testing.T) {
	f := newFixture(t)
	tempPath := writeTempUpload(t, "hello world")
	f.service.IngestDocument(context.Background(), ingestJob(tempPath))

	f.index.OnIndex = func(doc docmodel.UploadedDocument, text string) error {
		return errors.New("qdrant offline")
	}

	result := f.service.AnalyzeDocument(context.Background(), analyzeJob(docmodel.ProfileGeneric))
	if result.Status == jobmodel.JobStatusError {
		t.Fatalf("index failure must not fail analysis: %+v", result.Error)
	}

	doc, _ := f.documents.GetDocument(context.Background(), "doc-1")
	if doc.Status != docmodel.StatusAnalyzed {
		t.Errorf("expected analyzed status despite index failure, got %s", doc.Status)
	}
}

func TestSearch_ValidatesQuery(t *testing.T) {
	f := newFixture(t)
	if _, err := f.service.Search(context.Background(), "scope", "", 5); !errors.Is(err, docmodel.ErrValidation) {
		t.Errorf("empty query should be a validation error, got %v", err)
	}
}
