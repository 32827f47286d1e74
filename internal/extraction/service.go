package extraction

import (
	"context"

	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/domain/docmodel"
)

// Service is the external OCR/structured-extraction collaborator. Submit the
// signed read handle, get the raw service-shaped result back once the remote
// operation reaches a terminal state.
type Service interface {
	Extract(ctx context.Context, signedURL string, profile docmodel.Profile) (*RawResult, error)
}
