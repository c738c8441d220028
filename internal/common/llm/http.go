package llm

import (
	"context"
	"strings"
	"time"

	"erp-assistant/internal/common/config"
	commonhttp "erp-assistant/internal/common/http"
)

// HTTPClient talks to a GenAI gateway that exposes POST /api/ai/generate.
type HTTPClient struct {
	client  *commonhttp.Client
	url     string
	model   string
	timeout time.Duration
}

type generateRequest struct {
	Prompt string `json:"prompt"`
	Model  string `json:"model,omitempty"`
}

type generateResponse struct {
	Text string `json:"text"`
}

func NewHTTPClient(cfg config.LLMConfig) *HTTPClient {
	timeout := config.GetDuration(cfg.Timeout)
	client := commonhttp.NewClient(timeout)
	if cfg.APIKey != "" {
		client = client.WithHeader("Authorization", "Bearer "+cfg.APIKey)
	}

	return &HTTPClient{
		client:  client,
		url:     strings.TrimRight(cfg.BaseURL, "/") + "/api/ai/generate",
		model:   cfg.Model,
		timeout: timeout,
	}
}

func (c *HTTPClient) Generate(ctx context.Context, prompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var out generateResponse
	if err := c.client.PostJSON(ctx, c.url, generateRequest{Prompt: prompt, Model: c.model}, &out); err != nil {
		return "", classify(err, c.timeout)
	}
	return out.Text, nil
}
