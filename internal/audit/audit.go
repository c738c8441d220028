// Package audit keeps a trail of answered questions.
package audit

import (
	"context"
	"time"
)

// Interaction is one answered question.
type Interaction struct {
	RequestID      string    `json:"request_id"`
	Question       string    `json:"question"`
	RequestType    string    `json:"request_type"`
	Answer         string    `json:"answer"`
	FrontendRoute  string    `json:"frontend_route_name,omitempty"`
	FunctionNames  []string  `json:"function_names,omitempty"`
	FailedCalls    int       `json:"failed_calls"`
	CallErrorCodes []string  `json:"call_error_codes,omitempty"`
	Refined        bool      `json:"refined"`
	RefinedSystem  string    `json:"refined_system,omitempty"`
	FailureCode    string    `json:"failure_code,omitempty"`
	DurationMillis int64     `json:"duration_ms"`
	Timestamp      time.Time `json:"@timestamp"`
}

type Recorder interface {
	Record(ctx context.Context, interaction Interaction) error
}

// NopRecorder drops every interaction.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, Interaction) error { return nil }
