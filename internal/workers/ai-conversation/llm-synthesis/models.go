package llmsynthesis

import (
	apperrors "erp-assistant/internal/common/errors"
	"erp-assistant/internal/models"
)

type Input struct {
	Question string
	Result   models.DispatchResult
}

// Output carries the final answer. FailureCode is set when Answer is the
// fixed failure text instead of a model reply.
type Output struct {
	Answer      string
	FailureCode apperrors.ErrorCode
}
