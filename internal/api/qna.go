package api

import (
	"net/http"
	"strconv"

	"erp-assistant/internal/assistant"
	apperrors "erp-assistant/internal/common/errors"
)

type qnaRequest struct {
	UserPrompt string `json:"user_prompt"`
}

func (s *Server) handleQnA(w http.ResponseWriter, r *http.Request) {
	var req qnaRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, apperrors.NewInvalidRequestError(assistant.PromptRequiredMessage))
		return
	}

	resp, err := s.deps.Assistant.Ask(r.Context(), req.UserPrompt)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRegistry(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Registry.Snapshot())
}

const defaultInteractionCount = 20

func (s *Server) handleInteractions(w http.ResponseWriter, r *http.Request) {
	if s.deps.Interactions == nil {
		writeJSON(w, http.StatusNotFound, errorBody{Detail: "Interaction audit is disabled"})
		return
	}

	size := defaultInteractionCount
	if raw := r.URL.Query().Get("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.writeError(w, r, apperrors.NewInvalidFieldValueError("size", "must be a positive integer"))
			return
		}
		size = n
	}

	interactions, err := s.deps.Interactions.Recent(r.Context(), size)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, interactions)
}
