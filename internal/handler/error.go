package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dukerupert/nahl/internal/domain"
)

// ErrorCodeToHTTPStatus maps a domain error code to an HTTP status.
func ErrorCodeToHTTPStatus(code string) int {
	switch code {
	case domain.EINVALID:
		return http.StatusBadRequest
	case domain.ENOTFOUND:
		return http.StatusNotFound
	case domain.EUNAVAILABLE:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// WantsJSON reports whether the client asked for a JSON response.
func WantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ErrorResponse writes err as JSON or plain text depending on the Accept
// header. Internal errors never expose their details.
func ErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	code := domain.ErrorCode(err)
	status := ErrorCodeToHTTPStatus(code)
	message := domain.ErrorMessage(err)

	if WantsJSON(r) {
		var body errorBody
		body.Error.Code = code
		body.Error.Message = message
		_ = WriteJSON(w, status, body)
		return
	}

	http.Error(w, message, status)
}
