package models

// RequestType is the externally visible classification of a question.
type RequestType string

const (
	RequestTypeOpenApplication   RequestType = "OPEN_APPLICATION"
	RequestTypeAskSystemQuestion RequestType = "ASK_SYSTEM_QUESTION"
	RequestTypeUnknown           RequestType = "UNKNOWN"
)

// ToolCall is one query the model asked for. Parameters map column names to
// substring filter values.
type ToolCall struct {
	SystemLabel  string            `json:"system_name"`
	FunctionName string            `json:"function_name"`
	Parameters   map[string]string `json:"parameters"`
}

// Label returns the system label, falling back to DefaultSystemLabel.
func (c ToolCall) Label() string {
	if c.SystemLabel == "" {
		return DefaultSystemLabel
	}
	return c.SystemLabel
}

// Intent is the tagged result of classifying a question. Exactly one variant
// is populated according to Type:
//
//	OPEN_APPLICATION     RouteName (non-empty), Text is the acknowledgment
//	ASK_SYSTEM_QUESTION  ToolCalls (possibly empty), Text is the acknowledgment
//	UNKNOWN              Text is the message shown to the user
type Intent struct {
	Type      RequestType
	Text      string
	RouteName string
	ToolCalls []ToolCall
}

func OpenApplication(route, acknowledgment string) Intent {
	return Intent{Type: RequestTypeOpenApplication, RouteName: route, Text: acknowledgment}
}

func AskDataQuestion(calls []ToolCall, acknowledgment string) Intent {
	if calls == nil {
		calls = []ToolCall{}
	}
	return Intent{Type: RequestTypeAskSystemQuestion, ToolCalls: calls, Text: acknowledgment}
}

func UnknownIntent(message string) Intent {
	return Intent{Type: RequestTypeUnknown, Text: message}
}
