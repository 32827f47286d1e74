package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/assistant"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/config"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/domain/docmodel"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/domain/jobmodel"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/extraction"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/metrics"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/objectstore"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/search"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/signals"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/pkg/logger_i"
)

// Service is the public contract the worker and handlers depend on. The
// implementation stays private so callers never reach the extraction client,
// the signal engine or the index directly.
type Service interface {
	IngestDocument(ctx context.Context, job jobmodel.Job) jobmodel.Job
	AnalyzeDocument(ctx context.Context, job jobmodel.Job) jobmodel.Job
	GetDocument(ctx context.Context, id string) (docmodel.UploadedDocument, bool)
	GetAnalysis(ctx context.Context, documentId string, profile docmodel.Profile) (docmodel.AnalysisResult, bool)
	Search(ctx context.Context, scope, query string, limit int) ([]search.Result, error)
	Chat(ctx context.Context, scope, question string) (docmodel.ConversationTurn, error)
	ChatHistory(ctx context.Context, scope string, limit int, cursor string) ([]docmodel.ConversationTurn, string, error)
}

type service struct {
	blobs     objectstore.Store
	documents docmodel.DocumentStore
	analyzer  *extraction.Analyzer
	signals   *signals.Engine
	index     search.Index
	assistant *assistant.Assistant
	logger    *logger_i.Logger

	inFlightMutex sync.Mutex
	inFlight      map[string]bool
}

func NewService(
	blobs objectstore.Store,
	documents docmodel.DocumentStore,
	analyzer *extraction.Analyzer,
	engine *signals.Engine,
	index search.Index,
	asst *assistant.Assistant,
) Service {
	return &service{
		blobs:     blobs,
		documents: documents,
		analyzer:  analyzer,
		signals:   engine,
		index:     index,
		assistant: asst,
		logger:    logger_i.NewLogger("Pipeline Service :"),
		inFlight:  make(map[string]bool),
	}
}

// IngestDocument moves the spooled upload into the object store and records
// the document. The temp file is removed on every path out.
func (s *service) IngestDocument(ctx context.Context, job jobmodel.Job) jobmodel.Job {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "JobId", job.Id)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("document_ingestion", time.Since(start)) }()
	defer func() {
		if job.JobPayload.TempPath != "" {
			if err := os.Remove(job.JobPayload.TempPath); err != nil && !os.IsNotExist(err) {
				log.Error("Failed to remove temp upload", "path", job.JobPayload.TempPath, "error", err)
			}
		}
	}()

	job.CurrentStep = jobmodel.IngestStoring
	log.Debug("IngestDocument", "Current Status", job.CurrentStep)

	data, err := os.ReadFile(job.JobPayload.TempPath)
	if err != nil {
		return s.jobError(job, err, "UPLOAD_READ_FAILURE", false)
	}

	location, err := s.blobs.Put(ctx, data, job.JobPayload.DocumentName, job.JobPayload.ContentType)
	if err != nil {
		return s.jobError(job, err, "BLOB_STORE_FAILURE", true)
	}

	doc := docmodel.UploadedDocument{
		Id:          job.JobPayload.DocumentId,
		Scope:       job.JobPayload.Scope,
		Name:        job.JobPayload.DocumentName,
		Location:    location,
		ContentType: job.JobPayload.ContentType,
		Size:        job.JobPayload.Size,
		Status:      docmodel.StatusUploaded,
		UploadedAt:  time.Now().UTC(),
	}
	if err := s.documents.SaveDocument(ctx, doc); err != nil {
		return s.jobError(job, err, "DOCUMENT_SAVE_FAILURE", true)
	}

	job.JobPayload.Document = &doc
	job.CurrentStep = jobmodel.Complete
	return job
}

// AnalyzeDocument runs extraction, signal derivation and indexing for one
// (document, profile) pair. Re-running for an already analyzed pair returns
// the stored result without touching the extraction service.
func (s *service) AnalyzeDocument(ctx context.Context, job jobmodel.Job) jobmodel.Job {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "JobId", job.Id)
	docId := job.JobPayload.DocumentId
	profile := job.JobPayload.Profile

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("document_analysis", time.Since(start)) }()

	doc, found := s.documents.GetDocument(ctx, docId)
	if !found {
		return s.jobError(job, docmodel.ErrNotFound, "DOCUMENT_NOT_FOUND", false)
	}

	// Idempotency gate: a finished analysis is immutable.
	if existing, ok := s.documents.GetAnalysis(ctx, docId, profile); ok {
		log.Debug("Analysis already recorded, returning stored result")
		job.JobPayload.Analysis = &existing
		job.CurrentStep = jobmodel.Complete
		return job
	}

	key := docId + "|" + string(profile)
	if !s.tryAcquire(key) {
		return s.jobError(job, fmt.Errorf("analysis already running for %s", docId), "ANALYSIS_IN_FLIGHT", true)
	}
	defer s.release(key)

	doc.Status = docmodel.StatusProcessing
	if err := s.documents.SaveDocument(ctx, doc); err != nil {
		log.Error("Failed to record processing status", "error", err)
	}

	job.CurrentStep = jobmodel.AnalyzeExtract
	log.Debug("AnalyzeDocument", "Current Status", job.CurrentStep)
	extracted, err := s.analyzer.Analyze(ctx, doc, profile)
	if err != nil {
		s.markError(ctx, doc, log)
		return s.jobError(job, err, "EXTRACTION_FAILURE", docmodel.IsRetryable(err))
	}
	if _, err := s.documents.SaveExtraction(ctx, extracted); err != nil {
		s.markError(ctx, doc, log)
		return s.jobError(job, err, "EXTRACTION_SAVE_FAILURE", true)
	}
	// The stored record is canonical from here on, even if another run won
	// the write.
	if stored, ok := s.documents.GetExtraction(ctx, docId, profile); ok {
		extracted = stored
	}

	job.CurrentStep = jobmodel.AnalyzeSignals
	log.Debug("AnalyzeDocument", "Current Status", job.CurrentStep)
	analysis, err := s.signals.Derive(ctx, extracted)
	if err != nil {
		s.markError(ctx, doc, log)
		return s.jobError(job, err, "SIGNAL_DERIVATION_FAILURE", docmodel.IsRetryable(err))
	}
	if err := s.documents.SaveAnalysis(ctx, analysis); err != nil {
		s.markError(ctx, doc, log)
		return s.jobError(job, err, "ANALYSIS_SAVE_FAILURE", true)
	}

	doc.Status = docmodel.StatusAnalyzed
	if err := s.documents.SaveDocument(ctx, doc); err != nil {
		log.Error("Failed to record analyzed status", "error", err)
	}

	// Indexing is best effort. Search lags, analysis does not fail.
	job.CurrentStep = jobmodel.AnalyzeIndexing
	log.Debug("AnalyzeDocument", "Current Status", job.CurrentStep)
	if s.index != nil {
		if err := s.index.Index(ctx, doc, extracted.Content); err != nil {
			log.Error("Indexing failed, document will not be searchable yet", "error", err)
		}
	}

	job.JobPayload.Analysis = &analysis
	job.CurrentStep = jobmodel.Complete
	return job
}

func (s *service) GetDocument(ctx context.Context, id string) (docmodel.UploadedDocument, bool) {
	return s.documents.GetDocument(ctx, id)
}

func (s *service) GetAnalysis(ctx context.Context, documentId string, profile docmodel.Profile) (docmodel.AnalysisResult, bool) {
	return s.documents.GetAnalysis(ctx, documentId, profile)
}

func (s *service) Search(ctx context.Context, scope, query string, limit int) ([]search.Result, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", docmodel.ErrValidation)
	}
	if s.index == nil {
		return []search.Result{}, nil
	}
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("search", time.Since(start)) }()
	return s.index.Search(ctx, scope, query, limit)
}

func (s *service) Chat(ctx context.Context, scope, question string) (docmodel.ConversationTurn, error) {
	if s.assistant == nil {
		return docmodel.ConversationTurn{}, errors.New("assistant is not configured")
	}
	return s.assistant.Ask(ctx, scope, question)
}

func (s *service) ChatHistory(ctx context.Context, scope string, limit int, cursor string) ([]docmodel.ConversationTurn, string, error) {
	if s.assistant == nil {
		return nil, "", errors.New("assistant is not configured")
	}
	return s.assistant.History(ctx, scope, limit, cursor)
}

func (s *service) tryAcquire(key string) bool {
	s.inFlightMutex.Lock()
	defer s.inFlightMutex.Unlock()
	if s.inFlight[key] {
		return false
	}
	s.inFlight[key] = true
	return true
}

func (s *service) release(key string) {
	s.inFlightMutex.Lock()
	defer s.inFlightMutex.Unlock()
	delete(s.inFlight, key)
}

func (s *service) markError(ctx context.Context, doc docmodel.UploadedDocument, log *logger_i.Logger) {
	doc.Status = docmodel.StatusError
	if err := s.documents.SaveDocument(ctx, doc); err != nil {
		log.Error("Failed to record error status", "error", err)
	}
}

func (s *service) jobError(job jobmodel.Job, err error, message string, canRetry bool) jobmodel.Job {
	s.logger.Error(message, "error", err)

	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, docmodel.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, docmodel.ErrValidation), errors.Is(err, docmodel.ErrUnsupportedProfile):
		code = http.StatusBadRequest
	case errors.Is(err, docmodel.ErrTimeout):
		code = http.StatusGatewayTimeout
	}

	job.Error = jobmodel.JobError{
		Code:    code,
		Message: message,
		Retry:   canRetry,
	}
	job.Status = jobmodel.JobStatusError
	job.CurrentStep = jobmodel.Error
	return job
}
