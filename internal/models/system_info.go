package models

import (
	"encoding/json"
	"strings"
)

// SystemInfo describes one ERP subsystem: its display label, the query
// operation that reads it and the frontend route that opens it.
type SystemInfo struct {
	ID                    int64    `json:"id"`
	SystemName            string   `json:"system_name"`
	DataQueryFunctionName string   `json:"data_query_function_name"`
	FilterableColumns     []string `json:"filterable_columns"`
	FrontendRouteName     *string  `json:"frontend_route_name"`
}

var SystemInfoColumns = []string{"id", "system_name", "data_query_function_name", "filterable_columns", "frontend_route_name"}

func (s SystemInfo) SchemaName() string { return SchemaSystemInfo }

// ToRecord exposes filterable_columns in its stored form, a JSON array string.
func (s SystemInfo) ToRecord() Record {
	return Record{
		"id":                       s.ID,
		"system_name":              s.SystemName,
		"data_query_function_name": s.DataQueryFunctionName,
		"filterable_columns":       nullable(EncodeFilterableColumns(s.FilterableColumns)),
		"frontend_route_name":      nullable(s.FrontendRouteName),
	}
}

// Route returns the frontend route name or "" when the system has none.
func (s SystemInfo) Route() string {
	if s.FrontendRouteName == nil {
		return ""
	}
	return *s.FrontendRouteName
}

// EncodeFilterableColumns stores columns as a JSON array string; nil when empty.
func EncodeFilterableColumns(columns []string) *string {
	if len(columns) == 0 {
		return nil
	}
	raw, _ := json.Marshal(columns)
	return Ptr(string(raw))
}

// ParseFilterableColumns reads the stored form. Values that are not a JSON
// array are read as a comma separated list.
func ParseFilterableColumns(raw *string) []string {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil
	}

	var columns []string
	if err := json.Unmarshal([]byte(*raw), &columns); err != nil {
		columns = strings.Split(*raw, ",")
	}

	out := make([]string, 0, len(columns))
	for _, c := range columns {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
