package api

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "erp-assistant/internal/common/errors"
)

type errorBody struct {
	Detail string `json:"detail"`
	Field  string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(body)
}

// writeError answers with the status of err's code. Internal errors are
// logged and hidden from the client.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	stdErr := apperrors.As(err)
	status := apperrors.HTTPStatus(stdErr.Code)

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", map[string]interface{}{
			"method":    r.Method,
			"path":      r.URL.Path,
			"errorCode": string(stdErr.Code),
			"error":     err,
		})
	}

	body := errorBody{Detail: stdErr.Message, Field: stdErr.Field}
	if stdErr.Code == apperrors.ErrCodeInternal {
		body.Detail = "Internal server error"
	}
	writeJSON(w, status, body)
}

// decodeBody reads a JSON request body into dst, naming the offending field
// when a value has the wrong type.
func decodeBody(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return apperrors.NewInvalidFieldValueError(typeErr.Field, "expected "+typeErr.Type.String())
		}
		return apperrors.NewInvalidRequestError("Invalid request body")
	}
	return nil
}
