// Package queries is the closed table of query operations the assistant may
// dispatch to. Every operation lists one entity collection, optionally
// filtered by substring matches on its columns.
package queries

import (
	"context"

	"erp-assistant/internal/common/logger"
	"erp-assistant/internal/models"
	"erp-assistant/internal/store"
)

// Lister is the part of the record store the operations read from.
type Lister interface {
	ListEmployees(ctx context.Context, filters store.Filters, page store.Page) ([]models.Employee, error)
	ListOrders(ctx context.Context, filters store.Filters, page store.Page) ([]models.Order, error)
	ListSystemInfo(ctx context.Context, filters store.Filters, page store.Page) ([]models.SystemInfo, error)
}

// Operation is one known query. Columns are the names filters may address;
// anything else is dropped before the query runs.
type Operation struct {
	Name    models.FunctionName
	Schema  string
	Columns []string

	list func(ctx context.Context, filters store.Filters) ([]models.Entity, error)
	log  logger.Logger
}

// Run executes the operation with raw column -> value filters.
func (o Operation) Run(ctx context.Context, raw map[string]string) ([]models.Entity, error) {
	filters, ignored := store.NewFilters(o.Columns, raw)
	if len(ignored) > 0 && o.log != nil {
		o.log.Debug("ignoring unknown filter columns", map[string]interface{}{
			"functionName": string(o.Name),
			"columns":      ignored,
		})
	}
	return o.list(ctx, filters)
}

// Catalog maps function names to operations.
type Catalog map[string]Operation

func (c Catalog) Lookup(name string) (Operation, bool) {
	op, ok := c[name]
	return op, ok
}

// NewCatalog returns the operations for every entity collection. limit caps
// the rows each call returns; zero means store.DefaultLimit.
func NewCatalog(lister Lister, limit int, log logger.Logger) Catalog {
	page := store.Page{Limit: limit}
	ops := []Operation{
		{
			Name:    models.FunctionListEmployees,
			Schema:  models.SchemaEmployee,
			Columns: models.EmployeeColumns,
			list: func(ctx context.Context, filters store.Filters) ([]models.Entity, error) {
				return asEntities(lister.ListEmployees(ctx, filters, page))
			},
		},
		{
			Name:    models.FunctionListOrders,
			Schema:  models.SchemaOrder,
			Columns: models.OrderColumns,
			list: func(ctx context.Context, filters store.Filters) ([]models.Entity, error) {
				return asEntities(lister.ListOrders(ctx, filters, page))
			},
		},
		{
			Name:    models.FunctionListSystemInfo,
			Schema:  models.SchemaSystemInfo,
			Columns: models.SystemInfoColumns,
			list: func(ctx context.Context, filters store.Filters) ([]models.Entity, error) {
				return asEntities(lister.ListSystemInfo(ctx, filters, page))
			},
		},
	}

	catalog := make(Catalog, len(ops))
	for _, op := range ops {
		op.log = log
		catalog[string(op.Name)] = op
	}
	return catalog
}

func asEntities[T models.Entity](items []T, err error) ([]models.Entity, error) {
	if err != nil {
		return nil, err
	}
	out := make([]models.Entity, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out, nil
}
