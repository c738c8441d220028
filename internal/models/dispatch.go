package models

// DispatchEntry is the outcome of one tool call: records on success, an
// error message and its code otherwise. FilterableColumns carries the system
// metadata the context guard needs for a refinement request.
type DispatchEntry struct {
	SystemLabel       string
	FunctionName      string
	Records           []Record
	Error             string
	ErrorCode         string
	FilterableColumns []string
}

func (e DispatchEntry) Failed() bool {
	return e.Error != ""
}

// DispatchResult keeps entries in tool call order. Halted is set when
// dispatch stopped early because an entry exceeded the context budget.
type DispatchResult struct {
	Entries []DispatchEntry
	Halted  bool
}

// ToolResults converts entries to their response form.
func (r DispatchResult) ToolResults() []ToolResultEntry {
	out := make([]ToolResultEntry, 0, len(r.Entries))
	for _, e := range r.Entries {
		out = append(out, ToolResultEntry{
			SystemName:   e.SystemLabel,
			FunctionName: e.FunctionName,
			Data:         e.Records,
			Error:        e.Error,
		})
	}
	return out
}
