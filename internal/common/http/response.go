// internal/common/http/response.go
package http

import (
	"encoding/json"
	"net/http"

	apperrors "scholarship-tracker/internal/common/errors"
)

// ErrorBody is the JSON error envelope every API route answers with.
type ErrorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
	Kind  string `json:"kind,omitempty"`
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// WriteError maps err to its status and envelope.
func WriteError(w http.ResponseWriter, err error) {
	stdErr := apperrors.Normalize(err)
	msg := stdErr.Message
	if stdErr.Details != "" && stdErr.Kind == apperrors.KindValidationFailed {
		msg = msg + ": " + stdErr.Details
	}
	WriteJSON(w, apperrors.HTTPStatus(stdErr), ErrorBody{
		Error: msg,
		Code:  string(stdErr.Code),
		Kind:  string(stdErr.Kind),
	})
}

// WriteErrorStatus writes the envelope with an explicit status. The generation
// routes use it to keep their plain {error} 500 contract.
func WriteErrorStatus(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, ErrorBody{Error: message})
}

// DecodeJSON decodes the request body into dst, rejecting unknown shapes as validation errors.
func DecodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return apperrors.NewValidationError(apperrors.ErrCodeValidationFailed, "Request body required", "")
	}
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return apperrors.NewValidationError(apperrors.ErrCodeValidationFailed, "Malformed JSON body", err.Error())
	}
	return nil
}
