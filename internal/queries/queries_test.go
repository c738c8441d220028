package queries

import (
	"context"
	"errors"
	"testing"

	"erp-assistant/internal/common/logger"
	"erp-assistant/internal/models"
	"erp-assistant/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLister struct {
	filters store.Filters
	page    store.Page
	err     error
}

func (f *fakeLister) ListEmployees(_ context.Context, filters store.Filters, page store.Page) ([]models.Employee, error) {
	f.filters, f.page = filters, page
	if f.err != nil {
		return nil, f.err
	}
	return []models.Employee{{ID: 1, EmployeeID: "E001", Name: "陳小明"}}, nil
}

func (f *fakeLister) ListOrders(_ context.Context, filters store.Filters, page store.Page) ([]models.Order, error) {
	f.filters, f.page = filters, page
	return []models.Order{{ID: 1, OrderID: "O-1", OrderDate: "2024-01-05"}}, f.err
}

func (f *fakeLister) ListSystemInfo(_ context.Context, filters store.Filters, page store.Page) ([]models.SystemInfo, error) {
	f.filters, f.page = filters, page
	return []models.SystemInfo{}, f.err
}

func TestNewCatalog_KnownOperations(t *testing.T) {
	catalog := NewCatalog(&fakeLister{}, 50, logger.NewTestLogger(t))

	assert.Len(t, catalog, 3)
	for _, name := range []models.FunctionName{models.FunctionListEmployees, models.FunctionListOrders, models.FunctionListSystemInfo} {
		op, ok := catalog.Lookup(string(name))
		require.True(t, ok, name)
		assert.Equal(t, name, op.Name)
		assert.NotEmpty(t, op.Columns)
	}

	_, ok := catalog.Lookup("get_foobar")
	assert.False(t, ok)
}

func TestOperation_RunDropsUnknownColumns(t *testing.T) {
	lister := &fakeLister{}
	catalog := NewCatalog(lister, 50, logger.NewTestLogger(t))
	op, _ := catalog.Lookup("list-employees")

	got, err := op.Run(context.Background(), map[string]string{"address": "台北市", "salary": "100", "name": "陳"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, models.SchemaEmployee, got[0].SchemaName())

	assert.Equal(t, store.Filters{{Column: "address", Value: "台北市"}, {Column: "name", Value: "陳"}}, lister.filters)
	assert.Equal(t, 50, lister.page.Limit)
}

func TestOperation_RunWithoutFilters(t *testing.T) {
	lister := &fakeLister{}
	op, _ := NewCatalog(lister, 0, logger.NewNoOpLogger()).Lookup("list-orders")

	got, err := op.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Empty(t, lister.filters)
}

func TestOperation_RunPropagatesStoreError(t *testing.T) {
	lister := &fakeLister{err: errors.New("database is locked")}
	op, _ := NewCatalog(lister, 10, logger.NewNoOpLogger()).Lookup("list-employees")

	got, err := op.Run(context.Background(), map[string]string{})
	assert.Nil(t, got)
	assert.EqualError(t, err, "database is locked")
}
