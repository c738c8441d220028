package queryinternaldata

import (
	"context"

	"erp-assistant/internal/models"
	"erp-assistant/pkg/registry"
)

// Resolver is the registry view the dispatcher needs.
type Resolver interface {
	Resolve(functionName string) (registry.Entry, bool)
	FindByLabel(systemLabel string) (models.SystemInfo, bool)
}

// BudgetGuard stops dispatch early once an entry is too large to summarize.
type BudgetGuard interface {
	Exceeds(entry models.DispatchEntry) bool
}

// ResultCache stores validated records per function and filter set.
type ResultCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
	InvalidatePrefix(ctx context.Context, keyPrefix string) (int, error)
}

type Input struct {
	ToolCalls []models.ToolCall
	Registry  Resolver
	// Guard is optional. Without it every tool call is dispatched.
	Guard BudgetGuard
}

type Output struct {
	Result models.DispatchResult
}
