package registry

import (
	"erp-assistant/internal/models"
	"erp-assistant/internal/queries"
)

// Entry binds a resolved function name to its query operation and the
// SystemInfo that declared it.
type Entry struct {
	FunctionName string
	Operation    queries.Operation
	System       models.SystemInfo
}

// Snapshot is the JSON description of a registry, served to administrators.
type Snapshot struct {
	Functions  []FunctionDescription `json:"functions"`
	Unresolved []UnresolvedSystem    `json:"unresolved"`
}

type FunctionDescription struct {
	FunctionName      string   `json:"function_name"`
	SystemName        string   `json:"system_name"`
	FilterableColumns []string `json:"filterable_columns"`
	FrontendRoute     string   `json:"frontend_route_name,omitempty"`
}

type UnresolvedSystem struct {
	SystemName   string `json:"system_name"`
	FunctionName string `json:"data_query_function_name"`
	Reason       string `json:"reason"`
}
