package checkcontextbudget

import "erp-assistant/internal/models"

type Outcome string

const (
	OutcomeProceed Outcome = "PROCEED"
	OutcomeRefine  Outcome = "REFINE"
)

// Decision is the guard's verdict on a dispatch result. For OutcomeRefine,
// SystemLabel and FilterableColumns describe the first oversized entry.
type Decision struct {
	Outcome           Outcome
	SystemLabel       string
	FunctionName      string
	FilterableColumns []string
	Size              int
}

func (d Decision) Refine() bool {
	return d.Outcome == OutcomeRefine
}

type Input struct {
	Result models.DispatchResult
}

type Output struct {
	Decision Decision
	// Message is the refinement text shown instead of a summary; empty on proceed.
	Message string
}
