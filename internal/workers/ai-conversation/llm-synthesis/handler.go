package llmsynthesis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	apperrors "erp-assistant/internal/common/errors"
	"erp-assistant/internal/common/llm"
	"erp-assistant/internal/common/logger"
	"erp-assistant/internal/common/metrics"
	"erp-assistant/internal/models"
)

const (
	TaskType = "llm-synthesis"
)

// EmptyAnswerMessage replaces a blank model reply.
const EmptyAnswerMessage = "未能從LLM獲取最終回答。"

// FailureMessage is the answer when the summarization call fails.
func FailureMessage(code apperrors.ErrorCode) string {
	return fmt.Sprintf("在生成最終回答時發生錯誤: %s", code)
}

type Handler struct {
	config    *Config
	generator llm.Generator
	logger    logger.Logger
}

func NewHandler(config *Config, generator llm.Generator, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
		generator: generator,
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
}

// Execute makes one model call that answers the question from the dispatch
// result, error entries included. Failures come back as the answer text.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	prompt, err := BuildPrompt(input.Question, input.Result.ToolResults())
	if err != nil {
		return nil, err
	}

	if h.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.config.Timeout)
		defer cancel()
	}

	text, err := h.generator.Generate(ctx, prompt)
	if err != nil {
		stdErr := apperrors.As(err)
		metrics.LLMCalls.WithLabelValues(TaskType, "error").Inc()
		h.logger.Error("summarization call failed", map[string]interface{}{
			"errorCode": string(stdErr.Code),
			"error":     err,
		})
		return &Output{Answer: FailureMessage(stdErr.Code), FailureCode: stdErr.Code}, nil
	}

	if strings.TrimSpace(text) == "" {
		metrics.LLMCalls.WithLabelValues(TaskType, "empty").Inc()
		h.logger.Warn("summarization returned no text", nil)
		return &Output{Answer: EmptyAnswerMessage}, nil
	}

	metrics.LLMCalls.WithLabelValues(TaskType, "ok").Inc()
	h.logger.Info("answer synthesized", map[string]interface{}{
		"entryCount":   len(input.Result.Entries),
		"answerLength": len([]rune(text)),
	})
	return &Output{Answer: text}, nil
}

// BuildPrompt embeds the tool results as indented JSON.
func BuildPrompt(question string, results []models.ToolResultEntry) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return "", fmt.Errorf("encode tool results: %w", err)
	}

	return "你是一個智能助理，請根據以下用戶問題和所提供的數據，用繁體中文生成一個清晰、簡潔的回答。\n" +
		"用戶問題: " + question + "\n" +
		"查詢到的數據: " + strings.TrimRight(buf.String(), "\n") + "\n\n" +
		"請整合這些資訊並直接提供最終答案，不要提到數據來源或數據本身，只需提供回答。", nil
}
