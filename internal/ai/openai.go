package ai

import (
	"context"
	"fmt"

	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/domain/docmodel"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type openaiProvider struct {
	client    openai.Client
	modelName string
	logger    *logger_i.Logger
}

// NewOpenAI is the alternate completion backend, selected when an OpenAI key
// is configured and no Google key is.
func NewOpenAI(apiKey string, modelName string) Provider {
	return &openaiProvider{
		client:    openai.NewClient(option.WithAPIKey(apiKey)),
		modelName: modelName,
		logger:    logger_i.NewLogger("llm_openai"),
	}
}

func (p *openaiProvider) Complete(ctx context.Context, system string, messages []Message) (Completion, error) {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(p.modelName),
		Messages: make([]openai.ChatCompletionMessageParamUnion, 0, len(messages)+1),
	}
	params.Messages = append(params.Messages, openai.SystemMessage(system))
	for _, m := range messages {
		if m.Role == docmodel.RoleAssistant {
			params.Messages = append(params.Messages, openai.AssistantMessage(m.Content))
		} else {
			params.Messages = append(params.Messages, openai.UserMessage(m.Content))
		}
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		p.logger.Error("OpenAI generation failed", "error", err)
		return Completion{}, fmt.Errorf("%w: %v", docmodel.ErrTransient, err)
	}
	if len(resp.Choices) == 0 {
		return Completion{}, fmt.Errorf("%w: empty completion", docmodel.ErrTransient)
	}

	return Completion{
		Text:             resp.Choices[0].Message.Content,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}, nil
}
