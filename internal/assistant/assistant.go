// Package assistant answers one natural-language question end to end:
// classify, then open an application or dispatch the tool calls, guard the
// result size and summarize.
package assistant

import (
	"context"
	"strings"
	"time"

	"erp-assistant/internal/audit"
	apperrors "erp-assistant/internal/common/errors"
	"erp-assistant/internal/common/logger"
	"erp-assistant/internal/common/metrics"
	"erp-assistant/internal/common/observability"
	"erp-assistant/internal/models"
	checkcontextbudget "erp-assistant/internal/workers/ai-conversation/check-context-budget"
	llmsynthesis "erp-assistant/internal/workers/ai-conversation/llm-synthesis"
	parseuserintent "erp-assistant/internal/workers/ai-conversation/parse-user-intent"
	queryinternaldata "erp-assistant/internal/workers/ai-conversation/query-internal-data"
	"erp-assistant/pkg/registry"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// PromptRequiredMessage is returned for a blank question.
const PromptRequiredMessage = "User prompt is required."

type Deps struct {
	Registry      *registry.Registry
	Classifier    *parseuserintent.Handler
	Dispatcher    *queryinternaldata.Handler
	Guard         *checkcontextbudget.Guard
	Summarizer    *llmsynthesis.Handler
	Recorder      audit.Recorder
	Observability *observability.Observability
}

type Assistant struct {
	registry   *registry.Registry
	classifier *parseuserintent.Handler
	dispatcher *queryinternaldata.Handler
	guard      *checkcontextbudget.Guard
	summarizer *llmsynthesis.Handler
	recorder   audit.Recorder
	obs        *observability.Observability
	logger     logger.Logger
}

func New(deps Deps, log logger.Logger) *Assistant {
	a := &Assistant{
		registry:   deps.Registry,
		classifier: deps.Classifier,
		dispatcher: deps.Dispatcher,
		guard:      deps.Guard,
		summarizer: deps.Summarizer,
		recorder:   deps.Recorder,
		obs:        deps.Observability,
		logger:     log,
	}
	if a.recorder == nil {
		a.recorder = audit.NopRecorder{}
	}
	if a.obs == nil {
		a.obs = &observability.Observability{}
	}
	return a
}

// Registry is the snapshot questions are answered against.
func (a *Assistant) Registry() *registry.Registry {
	return a.registry
}

// Ask answers userPrompt. Every failure after validation is folded into the
// response; the only error is INVALID_REQUEST for a blank prompt. Once
// started the pipeline runs to completion even if ctx is cancelled.
func (a *Assistant) Ask(ctx context.Context, userPrompt string) (*models.Response, error) {
	if strings.TrimSpace(userPrompt) == "" {
		return nil, apperrors.NewInvalidRequestError(PromptRequiredMessage)
	}

	start := time.Now()
	requestID := uuid.NewString()
	ctx, span := a.obs.StartSpan(context.WithoutCancel(ctx), "assistant.ask",
		attribute.String("request.id", requestID))
	defer span.End()

	log := a.logger.With(map[string]interface{}{"requestId": requestID})
	interaction := audit.Interaction{
		RequestID: requestID,
		Question:  userPrompt,
		Timestamp: start.UTC(),
	}

	resp := a.answer(ctx, userPrompt, &interaction, log)

	elapsed := time.Since(start)
	requestType := string(resp.RequestType)
	metrics.AssistantRequests.WithLabelValues(requestType).Inc()
	metrics.AssistantRequestDuration.WithLabelValues(requestType).Observe(elapsed.Seconds())
	a.obs.RecordAsk(ctx, requestType, elapsed)
	span.SetAttributes(attribute.String("request.type", requestType))

	interaction.RequestType = requestType
	interaction.Answer = resp.LLMTextResponse
	interaction.FrontendRoute = resp.FrontendRouteName
	interaction.DurationMillis = elapsed.Milliseconds()
	if err := a.recorder.Record(ctx, interaction); err != nil {
		log.Warn("failed to record interaction", map[string]interface{}{"error": err})
	}

	log.Info("question answered", map[string]interface{}{
		"requestType": requestType,
		"durationMs":  elapsed.Milliseconds(),
	})
	return resp, nil
}

func (a *Assistant) answer(ctx context.Context, userPrompt string, interaction *audit.Interaction, log logger.Logger) *models.Response {
	classified, err := a.classifier.Execute(ctx, &parseuserintent.Input{Question: userPrompt, Registry: a.registry})
	if err != nil {
		log.Error("classification failed", map[string]interface{}{"error": err})
		interaction.FailureCode = string(apperrors.As(err).Code)
		return &models.Response{RequestType: models.RequestTypeUnknown, LLMTextResponse: parseuserintent.CollaboratorFallbackMessage}
	}
	interaction.FailureCode = string(classified.FailureCode)

	intent := classified.Intent
	switch intent.Type {
	case models.RequestTypeOpenApplication:
		return &models.Response{
			RequestType:       models.RequestTypeOpenApplication,
			LLMTextResponse:   intent.Text,
			FrontendRouteName: intent.RouteName,
		}
	case models.RequestTypeAskSystemQuestion:
		return a.answerDataQuestion(ctx, userPrompt, intent, interaction, log)
	default:
		return &models.Response{RequestType: models.RequestTypeUnknown, LLMTextResponse: intent.Text}
	}
}

func (a *Assistant) answerDataQuestion(ctx context.Context, userPrompt string, intent models.Intent, interaction *audit.Interaction, log logger.Logger) *models.Response {
	for _, call := range intent.ToolCalls {
		interaction.FunctionNames = append(interaction.FunctionNames, call.FunctionName)
	}

	dispatched, err := a.dispatcher.Execute(ctx, &queryinternaldata.Input{
		ToolCalls: intent.ToolCalls,
		Registry:  a.registry,
		Guard:     a.guard,
	})
	if err != nil {
		log.Error("dispatch failed", map[string]interface{}{"error": err})
		interaction.FailureCode = string(apperrors.As(err).Code)
		return &models.Response{RequestType: models.RequestTypeUnknown, LLMTextResponse: parseuserintent.CollaboratorFallbackMessage}
	}
	result := dispatched.Result
	for _, entry := range result.Entries {
		if entry.Failed() {
			interaction.FailedCalls++
			interaction.CallErrorCodes = append(interaction.CallErrorCodes, entry.ErrorCode)
		}
	}

	if decision := a.guard.Check(result); decision.Refine() {
		interaction.Refined = true
		interaction.RefinedSystem = decision.SystemLabel
		return &models.Response{
			RequestType:     models.RequestTypeAskSystemQuestion,
			LLMTextResponse: checkcontextbudget.RefinementMessage(decision),
		}
	}

	if len(result.Entries) == 0 {
		return &models.Response{
			RequestType:     models.RequestTypeAskSystemQuestion,
			LLMTextResponse: intent.Text,
			ToolResult:      []models.ToolResultEntry{},
		}
	}

	summary, err := a.summarizer.Execute(ctx, &llmsynthesis.Input{Question: userPrompt, Result: result})
	var answer string
	if err != nil {
		log.Error("summarization failed", map[string]interface{}{"error": err})
		code := apperrors.As(err).Code
		interaction.FailureCode = string(code)
		answer = llmsynthesis.FailureMessage(code)
	} else {
		answer = summary.Answer
		if summary.FailureCode != "" {
			interaction.FailureCode = string(summary.FailureCode)
		}
	}

	return &models.Response{
		RequestType:     models.RequestTypeAskSystemQuestion,
		LLMTextResponse: answer,
		ToolResult:      result.ToolResults(),
	}
}
