// Package llm wraps the language model collaborator used for intent
// classification and answer synthesis.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"erp-assistant/internal/common/config"
	apperrors "erp-assistant/internal/common/errors"
	"erp-assistant/internal/common/logger"
)

// Generator answers a single prompt with free text. Implementations return
// *errors.StandardError values with LLM_* codes.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// New builds the configured provider. A missing Gemini key does not fail
// startup; every call then reports LLM_NOT_CONFIGURED.
func New(ctx context.Context, cfg config.LLMConfig, log logger.Logger) (Generator, error) {
	switch cfg.Provider {
	case config.ProviderHTTP:
		return NewHTTPClient(cfg), nil
	case config.ProviderGenAI, "":
		if cfg.APIKey == "" {
			log.Warn("Gemini API key is not set, language model calls will fail", nil)
			return Unconfigured{}, nil
		}
		return NewGenAIClient(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.Provider)
	}
}

// Unconfigured is the Generator used when no credentials are available.
type Unconfigured struct{}

func (Unconfigured) Generate(context.Context, string) (string, error) {
	return "", apperrors.NewLLMNotConfiguredError("GEMINI_API_KEY is empty")
}

// classify turns a transport failure into the matching StandardError.
func classify(err error, timeout time.Duration) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return apperrors.NewLLMTimeoutError(timeout)
	}
	return apperrors.NewLLMUnavailableError(err)
}
