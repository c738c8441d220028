package parseuserintent

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	apperrors "erp-assistant/internal/common/errors"
	"erp-assistant/internal/common/llm"
	"erp-assistant/internal/common/logger"
	"erp-assistant/internal/common/metrics"
	"erp-assistant/internal/common/validation"
	"erp-assistant/internal/models"
)

const (
	TaskType = "parse-user-intent"
)

// Fixed texts for the fallback intents.
const (
	CollaboratorFallbackMessage = "抱歉，目前無法連接到智能助理服務，請稍後再試。"
	MalformedReplyMessage       = "抱歉，我無法理解您的請求，請換個方式描述。"
	MissingAPIKeyMessage        = "錯誤：未設定 Gemini API 金鑰，請檢查 .env 檔案。"
	MissingRouteMessage         = "抱歉，我無法識別要開啟哪個應用程式。請提供更明確的名稱。"
	InitialTextFallback         = "未能從LLM獲取文字回應。"
)

type Handler struct {
	config    *Config
	generator llm.Generator
	validator *validation.Validator
	logger    logger.Logger
}

func NewHandler(config *Config, generator llm.Generator, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
		generator: generator,
		validator: validation.MustNewValidator(map[string]string{intentSchemaName: intentSchema}),
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
}

// Execute classifies the question. Model and parse failures become an
// Unknown intent; the only error is a blank question.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil || strings.TrimSpace(input.Question) == "" {
		return nil, apperrors.NewInvalidRequestError("question is required")
	}

	var systems []models.SystemInfo
	if input.Registry != nil {
		systems = input.Registry.Systems()
	}
	prompt := BuildPrompt(systems, input.Question)

	if h.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.config.Timeout)
		defer cancel()
	}

	text, err := h.generator.Generate(ctx, prompt)
	if err != nil {
		stdErr := apperrors.As(err)
		metrics.LLMCalls.WithLabelValues(TaskType, "error").Inc()
		h.logger.Error("intent classification call failed", map[string]interface{}{
			"errorCode": string(stdErr.Code),
			"error":     err,
		})
		message := CollaboratorFallbackMessage
		if stdErr.Code == apperrors.ErrCodeLLMNotConfigured {
			message = MissingAPIKeyMessage
		}
		return &Output{Intent: models.UnknownIntent(message), FailureCode: stdErr.Code}, nil
	}

	intent, err := h.parseReply(text)
	if err != nil {
		metrics.LLMCalls.WithLabelValues(TaskType, "malformed").Inc()
		h.logger.Warn("model reply does not match the intent contract", map[string]interface{}{
			"error": err,
			"reply": text,
		})
		return &Output{Intent: models.UnknownIntent(MalformedReplyMessage), FailureCode: apperrors.ErrCodeMalformedModelOutput}, nil
	}

	metrics.LLMCalls.WithLabelValues(TaskType, "ok").Inc()
	h.logger.Info("intent classified", map[string]interface{}{
		"requestType":   string(intent.Type),
		"toolCallCount": len(intent.ToolCalls),
	})
	return &Output{Intent: intent}, nil
}

// parseReply strips a code fence, validates the reply against the intent
// schema and converts it into an Intent.
func (h *Handler) parseReply(text string) (models.Intent, error) {
	raw := []byte(stripCodeFence(text))

	result, err := h.validator.ValidateJSON(intentSchemaName, raw)
	if err != nil {
		return models.Intent{}, apperrors.NewMalformedModelOutputError(err.Error())
	}
	if !result.Valid {
		return models.Intent{}, apperrors.NewMalformedModelOutputError(result.Summary())
	}

	var r reply
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.UseNumber()
	if err := dec.Decode(&r); err != nil {
		return models.Intent{}, apperrors.NewMalformedModelOutputError(err.Error())
	}

	acknowledgment := InitialTextFallback
	if r.LLMTextResponse != nil && strings.TrimSpace(*r.LLMTextResponse) != "" {
		acknowledgment = *r.LLMTextResponse
	}

	switch models.RequestType(r.RequestType) {
	case models.RequestTypeOpenApplication:
		if r.FrontendRouteName == nil || strings.TrimSpace(*r.FrontendRouteName) == "" {
			return models.UnknownIntent(MissingRouteMessage), nil
		}
		return models.OpenApplication(strings.TrimSpace(*r.FrontendRouteName), acknowledgment), nil
	case models.RequestTypeAskSystemQuestion:
		calls := make([]models.ToolCall, 0, len(r.ToolCalls))
		for _, c := range r.ToolCalls {
			calls = append(calls, toToolCall(c))
		}
		return models.AskDataQuestion(calls, acknowledgment), nil
	default:
		return models.UnknownIntent(acknowledgment), nil
	}
}

func toToolCall(c replyCall) models.ToolCall {
	call := models.ToolCall{
		FunctionName: c.FunctionName,
		Parameters:   make(map[string]string, len(c.Parameters)),
	}
	if c.SystemName != nil {
		call.SystemLabel = *c.SystemName
	}
	for column, value := range c.Parameters {
		switch v := value.(type) {
		case string:
			call.Parameters[column] = v
		case json.Number:
			call.Parameters[column] = v.String()
		case bool:
			call.Parameters[column] = strconv.FormatBool(v)
		}
	}
	return call
}

func stripCodeFence(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.HasPrefix(strings.TrimSpace(s[:nl]), "{") {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSpace(s)
	return strings.TrimSpace(strings.TrimSuffix(s, "```"))
}
