package embedding

import (
	"context"
	"fmt"

	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/config"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/internal/domain/docmodel"
	"github.com/TechGirlNerd900/ESUSAUDITAI-sub001/pkg/logger_i"
	"google.golang.org/genai"
)

var dimension = config.EmbeddingOutputDimensionality

type Client struct {
	genAi  *genai.Client
	model  string
	logger *logger_i.Logger
}

func NewGoogleEmbedder(ctx context.Context, apiKey string, modelName string) (*Client, error) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("creating embedding client: %w", err)
	}
	return &Client{
		genAi:  c,
		model:  modelName,
		logger: logger_i.NewLogger("google_embedding"),
	}, nil
}

func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	result, err := c.genAi.Models.EmbedContent(ctx, c.model, genai.Text(text),
		&genai.EmbedContentConfig{OutputDimensionality: &dimension, TaskType: "RETRIEVAL_DOCUMENT"})
	if err != nil {
		c.logger.Error("Error getting embedding", "error", err)
		return nil, fmt.Errorf("%w: %v", docmodel.ErrTransient, err)
	}
	if len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("%w: empty embedding response", docmodel.ErrTransient)
	}
	return result.Embeddings[0].Values, nil
}
