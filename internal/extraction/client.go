package extraction

import (
	"context"
	"time"

	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/config"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/domain/docmodel"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/metrics"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/objectstore"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/retry"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/pkg/logger_i"
)

// Analyzer drives one document through the extraction service: cache gate,
// signed read handle, retry envelope around the external call, normalization,
// cache fill. Two racing calls for the same document+profile may both reach
// the service; that is accepted, the cache only prevents redundant calls
// after the first completes.
type Analyzer struct {
	service   Service
	store     objectstore.Store
	cache     Cache
	retryOpts retry.Options
	logger    *logger_i.Logger
}

func NewAnalyzer(service Service, store objectstore.Store, cache Cache, retryOpts retry.Options) *Analyzer {
	if cache == nil {
		cache = NoopCache{}
	}
	return &Analyzer{
		service:   service,
		store:     store,
		cache:     cache,
		retryOpts: retryOpts,
		logger:    logger_i.NewLogger("ExtractionClient"),
	}
}

func (a *Analyzer) Analyze(ctx context.Context, doc docmodel.UploadedDocument, profile docmodel.Profile) (docmodel.CanonicalExtraction, error) {
	log := a.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "documentId", doc.Id, "profile", profile)

	if cached, found := a.cache.Get(doc.Location, profile); found {
		log.Debug("Extraction cache hit")
		return cached, nil
	}

	signedURL, err := a.store.SignedURL(doc.Location, config.SignedURLTTL)
	if err != nil {
		log.Error("Could not issue read handle", "error", err)
		return docmodel.CanonicalExtraction{}, err
	}

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("extraction", time.Since(start)) }()

	raw, err := retry.Do(ctx, "extraction", a.retryOpts, func(ctx context.Context) (*RawResult, error) {
		return a.service.Extract(ctx, signedURL, profile)
	})
	if err != nil {
		log.Error("Extraction failed", "error", err)
		return docmodel.CanonicalExtraction{}, err
	}

	canonical := Normalize(raw, profile, doc.Id)
	a.cache.Set(doc.Location, profile, canonical)
	log.Debug("Extraction complete", "pages", canonical.Pages, "tables", len(canonical.Tables), "entities", len(canonical.Entities))
	return canonical, nil
}
