package llm

import (
	"context"
	"fmt"
	"time"

	"erp-assistant/internal/common/config"

	"google.golang.org/genai"
)

// GenAIClient calls Gemini through the google genai SDK.
type GenAIClient struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

func NewGenAIClient(ctx context.Context, cfg config.LLMConfig) (*GenAIClient, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GenAIClient{
		client:  client,
		model:   cfg.Model,
		timeout: config.GetDuration(cfg.Timeout),
	}, nil
}

func (c *GenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return "", classify(err, c.timeout)
	}
	return resp.Text(), nil
}
