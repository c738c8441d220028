package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	apperrors "erp-assistant/internal/common/errors"
	"erp-assistant/internal/models"
	"erp-assistant/internal/store"

	"github.com/go-chi/chi/v5"
)

// resource is the CRUD surface of one entity collection. Writes invalidate
// the cached dispatch results of function.
type resource[T models.Entity] struct {
	key      string
	columns  []string
	function models.FunctionName

	list   func(ctx context.Context, filters store.Filters, page store.Page) ([]T, error)
	get    func(ctx context.Context, key string) (*T, error)
	create func(ctx context.Context, item T) (*T, error)
	delete func(ctx context.Context, key string) error
	decode func(r *http.Request) (T, error)
}

func employeeResource(st RecordStore) resource[models.Employee] {
	return resource[models.Employee]{
		key:      "employee_id",
		columns:  models.EmployeeColumns,
		function: models.FunctionListEmployees,
		list:     st.ListEmployees,
		get:      st.GetEmployee,
		create:   st.CreateEmployee,
		delete:   st.DeleteEmployee,
		decode:   decodeInto[models.Employee],
	}
}

func orderResource(st RecordStore) resource[models.Order] {
	return resource[models.Order]{
		key:      "order_id",
		columns:  models.OrderColumns,
		function: models.FunctionListOrders,
		list:     st.ListOrders,
		get:      st.GetOrder,
		create:   st.CreateOrder,
		delete:   st.DeleteOrder,
		decode:   decodeInto[models.Order],
	}
}

func systemInfoResource(st RecordStore) resource[models.SystemInfo] {
	return resource[models.SystemInfo]{
		key:      "system_name",
		columns:  models.SystemInfoColumns,
		function: models.FunctionListSystemInfo,
		list:     st.ListSystemInfo,
		get:      st.GetSystemInfo,
		create:   st.CreateSystemInfo,
		delete:   st.DeleteSystemInfo,
		decode:   decodeSystemInfo,
	}
}

func (res resource[T]) routes(s *Server) func(chi.Router) {
	return func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) { res.handleList(s, w, r) })
		r.Post("/", func(w http.ResponseWriter, r *http.Request) { res.handleCreate(s, w, r) })
		r.Get("/{"+res.key+"}", func(w http.ResponseWriter, r *http.Request) { res.handleGet(s, w, r) })
		r.Delete("/{"+res.key+"}", func(w http.ResponseWriter, r *http.Request) { res.handleDelete(s, w, r) })
	}
}

// handleList accepts skip and limit plus column=value substring filters.
func (res resource[T]) handleList(s *Server, w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, err := parsePage(query.Get("skip"), query.Get("limit"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	raw := make(map[string]string)
	for name, values := range query {
		if name == "skip" || name == "limit" || len(values) == 0 {
			continue
		}
		raw[name] = values[0]
	}
	filters, _ := store.NewFilters(res.columns, raw)

	items, err := res.list(r.Context(), filters, page)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	records := make([]models.Record, len(items))
	for i, item := range items {
		records[i] = item.ToRecord()
	}
	writeJSON(w, http.StatusOK, records)
}

func (res resource[T]) handleGet(s *Server, w http.ResponseWriter, r *http.Request) {
	item, err := res.get(r.Context(), chi.URLParam(r, res.key))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, (*item).ToRecord())
}

func (res resource[T]) handleCreate(s *Server, w http.ResponseWriter, r *http.Request) {
	item, err := res.decode(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	created, err := res.create(r.Context(), item)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.invalidate(r.Context(), res.function)
	writeJSON(w, http.StatusCreated, (*created).ToRecord())
}

func (res resource[T]) handleDelete(s *Server, w http.ResponseWriter, r *http.Request) {
	if err := res.delete(r.Context(), chi.URLParam(r, res.key)); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.invalidate(r.Context(), res.function)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) invalidate(ctx context.Context, function models.FunctionName) {
	if s.deps.Cache == nil {
		return
	}
	if err := s.deps.Cache.Invalidate(ctx, string(function)); err != nil {
		s.logger.Warn("failed to invalidate cached results", map[string]interface{}{
			"functionName": string(function),
			"error":        err,
		})
	}
}

func parsePage(skip, limit string) (store.Page, error) {
	page := store.Page{Limit: store.DefaultLimit}
	if skip != "" {
		n, err := strconv.Atoi(skip)
		if err != nil || n < 0 {
			return page, apperrors.NewInvalidFieldValueError("skip", "must be a non-negative integer")
		}
		page.Offset = n
	}
	if limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n <= 0 {
			return page, apperrors.NewInvalidFieldValueError("limit", "must be a positive integer")
		}
		page.Limit = n
	}
	return page, nil
}

func decodeInto[T any](r *http.Request) (T, error) {
	var item T
	err := decodeBody(r, &item)
	return item, err
}

type systemInfoRequest struct {
	SystemName            string          `json:"system_name"`
	DataQueryFunctionName string          `json:"data_query_function_name"`
	FilterableColumns     json.RawMessage `json:"filterable_columns"`
	FrontendRouteName     *string         `json:"frontend_route_name"`
}

// decodeSystemInfo accepts filterable_columns either in stored form (a JSON
// array inside a string) or as a plain array.
func decodeSystemInfo(r *http.Request) (models.SystemInfo, error) {
	var req systemInfoRequest
	if err := decodeBody(r, &req); err != nil {
		return models.SystemInfo{}, err
	}

	info := models.SystemInfo{
		SystemName:            req.SystemName,
		DataQueryFunctionName: req.DataQueryFunctionName,
		FrontendRouteName:     req.FrontendRouteName,
	}

	raw := strings.TrimSpace(string(req.FilterableColumns))
	switch {
	case raw == "" || raw == "null":
	case strings.HasPrefix(raw, "["):
		var columns []string
		if err := json.Unmarshal(req.FilterableColumns, &columns); err != nil {
			return info, apperrors.NewInvalidFieldValueError("filterable_columns", "expected an array of column names")
		}
		info.FilterableColumns = models.ParseFilterableColumns(models.EncodeFilterableColumns(columns))
	default:
		var stored string
		if err := json.Unmarshal(req.FilterableColumns, &stored); err != nil {
			return info, apperrors.NewInvalidFieldValueError("filterable_columns", "expected a string or an array")
		}
		info.FilterableColumns = models.ParseFilterableColumns(&stored)
	}
	return info, nil
}
