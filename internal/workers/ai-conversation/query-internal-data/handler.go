package queryinternaldata

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"time"

	apperrors "erp-assistant/internal/common/errors"
	"erp-assistant/internal/common/logger"
	"erp-assistant/internal/common/metrics"
	"erp-assistant/internal/common/validation"
	"erp-assistant/internal/models"
	"erp-assistant/pkg/registry"
)

const (
	TaskType = "query-internal-data"
)

// UnresolvedFunctionMessage is the entry error for a function the registry
// does not know.
func UnresolvedFunctionMessage(functionName string) string {
	return fmt.Sprintf("LLM推薦的函數 '%s' 不存在或未被映射。", functionName)
}

// ExecutionFailedMessage is the entry error for a query that failed.
func ExecutionFailedMessage(functionName string, err error) string {
	return fmt.Sprintf("執行函數 '%s' 失敗: %s", functionName, describe(err))
}

type Handler struct {
	config    *Config
	cache     ResultCache
	validator *validation.Validator
	logger    logger.Logger
}

// NewHandler builds a dispatcher. cache may be nil.
func NewHandler(config *Config, cache ResultCache, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
		cache:     cache,
		validator: validation.MustNewValidator(models.RecordSchemas),
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
}

// Execute runs the tool calls in order. A failing call becomes an error
// entry and never stops its siblings; an entry the guard rejects stops
// dispatch and marks the result Halted.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input.Registry == nil {
		return nil, apperrors.NewInvalidRequestError("registry is required")
	}

	result := models.DispatchResult{Entries: make([]models.DispatchEntry, 0, len(input.ToolCalls))}
	for i, call := range input.ToolCalls {
		entry := h.dispatch(ctx, call, input.Registry)
		result.Entries = append(result.Entries, entry)

		if input.Guard != nil && input.Guard.Exceeds(entry) {
			result.Halted = true
			h.logger.Info("dispatch halted by context guard", map[string]interface{}{
				"functionName": call.FunctionName,
				"skipped":      len(input.ToolCalls) - i - 1,
			})
			break
		}
	}

	h.logger.Info("tool calls dispatched", map[string]interface{}{
		"toolCallCount": len(input.ToolCalls),
		"entryCount":    len(result.Entries),
		"halted":        result.Halted,
	})
	return &Output{Result: result}, nil
}

func (h *Handler) dispatch(ctx context.Context, call models.ToolCall, reg Resolver) models.DispatchEntry {
	entry := models.DispatchEntry{
		SystemLabel:  call.Label(),
		FunctionName: call.FunctionName,
	}

	resolved, ok := reg.Resolve(call.FunctionName)
	if ok {
		entry.FilterableColumns = resolved.System.FilterableColumns
	} else if info, found := reg.FindByLabel(entry.SystemLabel); found {
		entry.FilterableColumns = info.FilterableColumns
	}

	if !ok {
		stdErr := apperrors.NewUnresolvedFunctionError(call.FunctionName)
		metrics.ToolCallsTotal.WithLabelValues(call.FunctionName, "unresolved").Inc()
		h.logger.Warn("tool call names an unregistered function", map[string]interface{}{
			"functionName": call.FunctionName,
			"systemName":   entry.SystemLabel,
			"errorCode":    stdErr.Code,
		})
		entry.Error = UnresolvedFunctionMessage(call.FunctionName)
		entry.ErrorCode = string(stdErr.Code)
		return entry
	}

	records, err := h.run(ctx, resolved, call.Parameters)
	if err != nil {
		metrics.ToolCallsTotal.WithLabelValues(call.FunctionName, "error").Inc()
		h.logger.Error("tool call failed", map[string]interface{}{
			"functionName": call.FunctionName,
			"systemName":   entry.SystemLabel,
			"error":        err,
		})
		entry.Error = ExecutionFailedMessage(call.FunctionName, err)
		entry.ErrorCode = string(apperrors.As(err).Code)
		return entry
	}

	metrics.ToolCallsTotal.WithLabelValues(call.FunctionName, "ok").Inc()
	entry.Records = records
	return entry
}

// run serves a tool call from the cache when possible, otherwise queries
// the store and caches the validated records.
func (h *Handler) run(ctx context.Context, entry registry.Entry, params map[string]string) ([]models.Record, error) {
	key := CacheKey(entry.FunctionName, params)

	if h.cache != nil {
		var cached []models.Record
		hit, err := h.cache.Get(ctx, key, &cached)
		switch {
		case err != nil:
			metrics.CacheLookups.WithLabelValues("error").Inc()
			h.logger.Warn("dispatch cache read failed", map[string]interface{}{"key": key, "error": err})
		case hit:
			metrics.CacheLookups.WithLabelValues("hit").Inc()
			if cached == nil {
				cached = []models.Record{}
			}
			return cached, nil
		default:
			metrics.CacheLookups.WithLabelValues("miss").Inc()
		}
	}

	start := time.Now()
	records, err := h.query(ctx, entry, params)
	metrics.ToolCallDuration.WithLabelValues(entry.FunctionName).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	if h.cache != nil {
		if err := h.cache.Set(ctx, key, records); err != nil {
			h.logger.Warn("dispatch cache write failed", map[string]interface{}{"key": key, "error": err})
		}
	}
	return records, nil
}

func (h *Handler) query(ctx context.Context, entry registry.Entry, params map[string]string) (records []models.Record, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = apperrors.NewQueryExecutionFailedError(entry.FunctionName, fmt.Errorf("panic: %v", r))
		}
	}()

	if h.config.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.config.QueryTimeout)
		defer cancel()
	}

	entities, err := entry.Operation.Run(ctx, params)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, apperrors.NewQueryTimeoutError(entry.FunctionName)
		}
		return nil, apperrors.NewQueryExecutionFailedError(entry.FunctionName, err)
	}

	records = make([]models.Record, 0, len(entities))
	for _, e := range entities {
		record := e.ToRecord()
		result, err := h.validator.Validate(e.SchemaName(), record)
		if err != nil {
			return nil, apperrors.NewRecordValidationFailedError(e.SchemaName(), err.Error())
		}
		if !result.Valid {
			return nil, apperrors.NewRecordValidationFailedError(e.SchemaName(), result.Summary())
		}
		records = append(records, record)
	}
	return records, nil
}

// Invalidate drops every cached result of functionName.
func (h *Handler) Invalidate(ctx context.Context, functionName string) error {
	if h.cache == nil {
		return nil
	}
	n, err := h.cache.InvalidatePrefix(ctx, functionName+":")
	if err != nil {
		return err
	}
	h.logger.Debug("dispatch cache invalidated", map[string]interface{}{
		"functionName": functionName,
		"keys":         n,
	})
	return nil
}

// CacheKey is "<function>:<digest of the sorted filters>".
func CacheKey(functionName string, params map[string]string) string {
	values := url.Values{}
	for column, value := range params {
		values.Set(column, value)
	}
	sum := sha256.Sum256([]byte(values.Encode()))
	return functionName + ":" + hex.EncodeToString(sum[:8])
}

func describe(err error) string {
	var stdErr *apperrors.StandardError
	if !errors.As(err, &stdErr) {
		return err.Error()
	}
	if stdErr.Details != "" {
		return stdErr.Message + " (" + stdErr.Details + ")"
	}
	return stdErr.Message
}
