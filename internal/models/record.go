package models

import (
	"bytes"
	"encoding/json"
)

// Record is the external, JSON-ready representation of one row.
type Record map[string]interface{}

// Entity is a typed row that knows its external shape.
type Entity interface {
	ToRecord() Record
	SchemaName() string
}

const (
	SchemaEmployee   = "employee"
	SchemaOrder      = "order"
	SchemaSystemInfo = "system_info"
)

// RecordSchemas are the JSON schemas every record is validated against
// before it reaches the language model.
var RecordSchemas = map[string]string{
	SchemaEmployee: `{
		"type": "object",
		"properties": {
			"id": {"type": "integer"},
			"employee_id": {"type": "string", "minLength": 1},
			"name": {"type": "string", "minLength": 1},
			"phone": {"type": ["string", "null"]},
			"address": {"type": ["string", "null"]},
			"email": {"type": ["string", "null"]},
			"gender": {"type": ["string", "null"]},
			"age": {"type": ["integer", "null"]}
		},
		"required": ["id", "employee_id", "name", "phone", "address", "email", "gender", "age"],
		"additionalProperties": false
	}`,
	SchemaOrder: `{
		"type": "object",
		"properties": {
			"id": {"type": "integer"},
			"order_id": {"type": "string", "minLength": 1},
			"order_date": {"type": "string", "minLength": 1},
			"order_amount": {"type": ["integer", "null"]}
		},
		"required": ["id", "order_id", "order_date", "order_amount"],
		"additionalProperties": false
	}`,
	SchemaSystemInfo: `{
		"type": "object",
		"properties": {
			"id": {"type": "integer"},
			"system_name": {"type": "string", "minLength": 1},
			"data_query_function_name": {"type": "string", "minLength": 1},
			"filterable_columns": {"type": ["string", "null"]},
			"frontend_route_name": {"type": ["string", "null"]}
		},
		"required": ["id", "system_name", "data_query_function_name", "filterable_columns", "frontend_route_name"],
		"additionalProperties": false
	}`,
}

// CompactJSON encodes v without HTML escaping so that the encoded size
// matches what a reader (or a model) actually sees.
func CompactJSON(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// SpacedJSON encodes v like CompactJSON but with ", " between items and
// ": " after keys, the layout the context budget is measured against.
func SpacedJSON(v interface{}) ([]byte, error) {
	compact, err := CompactJSON(v)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(compact)+len(compact)/4)
	inString, escaped := false, false
	for _, c := range compact {
		out = append(out, c)
		switch {
		case inString && escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case !inString && (c == ',' || c == ':'):
			out = append(out, ' ')
		}
	}
	return out, nil
}

// Ptr returns a pointer to v, for optional entity fields.
func Ptr[T any](v T) *T {
	return &v
}

func nullable[T any](v *T) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
