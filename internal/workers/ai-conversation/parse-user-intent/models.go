package parseuserintent

import (
	apperrors "erp-assistant/internal/common/errors"
	"erp-assistant/internal/models"
)

// SystemCatalogue is the registry view the prompt is built from.
type SystemCatalogue interface {
	Systems() []models.SystemInfo
}

type Input struct {
	Question string
	Registry SystemCatalogue
}

// Output always carries an intent. FailureCode is set when the intent is a
// fallback produced because the model call or its reply failed.
type Output struct {
	Intent      models.Intent
	FailureCode apperrors.ErrorCode
}

// reply is the JSON contract the model answers with.
type reply struct {
	RequestType       string      `json:"request_type"`
	LLMTextResponse   *string     `json:"llm_text_response"`
	FrontendRouteName *string     `json:"frontend_route_name"`
	ToolCalls         []replyCall `json:"tool_calls"`
}

type replyCall struct {
	SystemName   *string                `json:"system_name"`
	FunctionName string                 `json:"function_name"`
	Parameters   map[string]interface{} `json:"parameters"`
}

const intentSchemaName = "intent"

const intentSchema = `{
	"type": "object",
	"properties": {
		"request_type": {"type": "string", "enum": ["OPEN_APPLICATION", "ASK_SYSTEM_QUESTION", "UNKNOWN"]},
		"llm_text_response": {"type": ["string", "null"]},
		"frontend_route_name": {"type": ["string", "null"]},
		"tool_calls": {
			"type": ["array", "null"],
			"items": {
				"type": "object",
				"properties": {
					"system_name": {"type": ["string", "null"]},
					"function_name": {"type": "string", "minLength": 1},
					"parameters": {
						"type": ["object", "null"],
						"additionalProperties": {"type": ["string", "number", "boolean", "null"]}
					}
				},
				"required": ["function_name"]
			}
		}
	},
	"required": ["request_type"]
}`
