package ai

import (
	"context"
	"fmt"

	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/domain/docmodel"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/pkg/logger_i"
	"google.golang.org/genai"
)

type geminiProvider struct {
	client    *genai.Client
	modelName string
	logger    *logger_i.Logger
}

func NewGemini(ctx context.Context, apiKey string, modelName string) (Provider, error) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &geminiProvider{
		client:    c,
		modelName: modelName,
		logger:    logger_i.NewLogger("llm_gemini"),
	}, nil
}

func (p *geminiProvider) Complete(ctx context.Context, system string, messages []Message) (Completion, error) {
	contents := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		role := genai.RoleUser
		if m.Role == docmodel.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: m.Content}},
		})
	}

	contentConfig := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		},
	}

	result, err := p.client.Models.GenerateContent(ctx, p.modelName, contents, contentConfig)
	if err != nil {
		p.logger.Error("Gemini generation failed", "error", err)
		return Completion{}, fmt.Errorf("%w: %v", docmodel.ErrTransient, err)
	}

	completion := Completion{Text: result.Text()}
	if result.UsageMetadata != nil {
		completion.PromptTokens = int64(result.UsageMetadata.PromptTokenCount)
		completion.CompletionTokens = int64(result.UsageMetadata.CandidatesTokenCount)
	}
	return completion, nil
}
