package answerquestion

import (
	"context"
	"encoding/json"
	"testing"

	apperrors "erp-assistant/internal/common/errors"
	"erp-assistant/internal/common/logger"
	"erp-assistant/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAsker struct {
	prompt string
	resp   *models.Response
	err    error
}

func (s *stubAsker) Ask(_ context.Context, userPrompt string) (*models.Response, error) {
	s.prompt = userPrompt
	return s.resp, s.err
}

func TestExecute_WrapsResponse(t *testing.T) {
	asker := &stubAsker{resp: &models.Response{
		RequestType:       models.RequestTypeOpenApplication,
		LLMTextResponse:   "好的",
		FrontendRouteName: "employees",
	}}
	h := NewHandler(LoadConfig(), asker, logger.NewTestLogger(t))

	out, err := h.Execute(context.Background(), &Input{UserPrompt: "打開員工管理頁面"})
	require.NoError(t, err)
	assert.Equal(t, "打開員工管理頁面", asker.prompt)

	raw, err := json.Marshal(out)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"response": {"request_type": "OPEN_APPLICATION", "llm_text_response": "好的", "frontend_route_name": "employees"}}`,
		string(raw))
}

func TestExecute_PropagatesInvalidRequest(t *testing.T) {
	asker := &stubAsker{err: apperrors.NewInvalidRequestError("User prompt is required.")}
	h := NewHandler(LoadConfig(), asker, logger.NewTestLogger(t))

	_, err := h.Execute(context.Background(), &Input{})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidRequest))

	bpmn := apperrors.ConvertToBPMNError(apperrors.As(err))
	assert.Equal(t, 0, bpmn.Retries)
}

func TestDecodeInput(t *testing.T) {
	input, err := DecodeInput(`{"userPrompt": "有哪些員工？", "processVar": 1}`)
	require.NoError(t, err)
	assert.Equal(t, "有哪些員工？", input.UserPrompt)

	_, err = DecodeInput(`not json`)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidRequest))
}
