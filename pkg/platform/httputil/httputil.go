// Package httputil centralizes JSON response and error translation for the
// HTTP surface. Handlers pass domain errors through WriteError so the
// code-to-status mapping lives in exactly one place.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "gesher/pkg/domain-errors"
)

type errorBody struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error into an HTTP response. Internal
// errors omit the description so infrastructure details never reach clients;
// provider errors carry the wrapped diagnostic so support can read the raw
// failure; every other code carries its message for display.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.Load(err)
	body := errorBody{Error: string(code)}
	switch code {
	case dErrors.CodeInternal:
	case dErrors.CodeProvider:
		body.ErrorDescription = providerDetail(err)
	default:
		body.ErrorDescription = dErrors.Message(err)
	}
	WriteJSON(w, statusFor(code), body)
}

func providerDetail(err error) string {
	var de *dErrors.Error
	if errors.As(err, &de) && de.Unwrap() != nil {
		return de.Message + ": " + de.Unwrap().Error()
	}
	return dErrors.Message(err)
}

func statusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeInvalidInput:
		return http.StatusBadRequest
	case dErrors.CodeInvalidCredentials, dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeAlreadyRegistered:
		return http.StatusConflict
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeProvider:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Decode parses a JSON request body into T. On failure it writes an
// invalid-input response and reports ok=false so handlers can return early.
func Decode[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return req, false
	}
	return req, true
}
