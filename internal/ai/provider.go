package ai

import (
	"context"

	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/domain/docmodel"
)

type Message struct {
	Role    docmodel.Role
	Content string
}

// Completion is the generated text plus usage accounting from the provider.
type Completion struct {
	Text             string
	PromptTokens     int64
	CompletionTokens int64
}

// Provider is the generative completion collaborator. The system instruction
// is carried separately because providers model it differently.
type Provider interface {
	Complete(ctx context.Context, system string, messages []Message) (Completion, error)
}
