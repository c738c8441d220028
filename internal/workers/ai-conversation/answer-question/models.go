package answerquestion

import (
	"context"

	"erp-assistant/internal/models"
)

// Asker answers one question end to end.
type Asker interface {
	Ask(ctx context.Context, userPrompt string) (*models.Response, error)
}

type Input struct {
	UserPrompt string `json:"userPrompt"`
}

type Output struct {
	Response *models.Response `json:"response"`
}
