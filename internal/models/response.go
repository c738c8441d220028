package models

import "encoding/json"

// ToolResultEntry carries either data or error, never both.
type ToolResultEntry struct {
	SystemName   string
	FunctionName string
	Data         []Record
	Error        string
}

func (e ToolResultEntry) MarshalJSON() ([]byte, error) {
	if e.Error != "" {
		return CompactJSON(struct {
			SystemName   string `json:"system_name"`
			FunctionName string `json:"function_name"`
			Error        string `json:"error"`
		}{e.SystemName, e.FunctionName, e.Error})
	}

	data := e.Data
	if data == nil {
		data = []Record{}
	}
	return CompactJSON(struct {
		SystemName   string   `json:"system_name"`
		FunctionName string   `json:"function_name"`
		Data         []Record `json:"data"`
	}{e.SystemName, e.FunctionName, data})
}

func (e *ToolResultEntry) UnmarshalJSON(raw []byte) error {
	var wire struct {
		SystemName   string   `json:"system_name"`
		FunctionName string   `json:"function_name"`
		Data         []Record `json:"data"`
		Error        string   `json:"error"`
	}
	if err := json.Unmarshal(raw, &wire); err != nil {
		return err
	}
	*e = ToolResultEntry{
		SystemName:   wire.SystemName,
		FunctionName: wire.FunctionName,
		Data:         wire.Data,
		Error:        wire.Error,
	}
	return nil
}

// Response is the answer to one question.
//
// frontend_route_name is present only for OPEN_APPLICATION. tool_result is
// present only for ASK_SYSTEM_QUESTION, where it is null after a refinement
// request and a (possibly empty) list otherwise.
type Response struct {
	RequestType       RequestType       `json:"request_type"`
	LLMTextResponse   string            `json:"llm_text_response"`
	FrontendRouteName string            `json:"frontend_route_name,omitempty"`
	ToolResult        []ToolResultEntry `json:"tool_result"`
}

func (r Response) MarshalJSON() ([]byte, error) {
	out := map[string]interface{}{
		"request_type":      r.RequestType,
		"llm_text_response": r.LLMTextResponse,
	}
	switch r.RequestType {
	case RequestTypeOpenApplication:
		out["frontend_route_name"] = r.FrontendRouteName
	case RequestTypeAskSystemQuestion:
		if r.ToolResult == nil {
			out["tool_result"] = nil
		} else {
			out["tool_result"] = r.ToolResult
		}
	}
	return json.Marshal(out)
}
