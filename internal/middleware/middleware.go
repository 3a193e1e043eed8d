// Package middleware holds the storefront's HTTP middleware.
package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dukerupert/nahl/internal/domain"
)

type contextKey string

// These helpers mirror handler.ErrorResponse but live here to avoid an
// import cycle (handler imports middleware for GetLogger).

// respondWithError logs err and writes it as JSON or plain text.
func respondWithError(w http.ResponseWriter, r *http.Request, status int, err error) {
	code := domain.ErrorCode(err)
	message := domain.ErrorMessage(err)

	attrs := []any{
		"error", err.Error(),
		"code", code,
		"status", status,
	}
	logger := GetLogger(r.Context())
	if status >= 500 {
		logger.Error("middleware error", attrs...)
	} else {
		logger.Info("middleware error", attrs...)
	}

	if acceptsJSON(r) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{
				"code":    code,
				"message": message,
			},
		})
		return
	}

	http.Error(w, message, status)
}

func respondTooManyRequests(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Retry-After", "1")
	respondWithError(w, r, http.StatusTooManyRequests,
		domain.Errorf(domain.EINVALID, "", "Too many requests. Please slow down."))
}

func respondTooLarge(w http.ResponseWriter, r *http.Request) {
	respondWithError(w, r, http.StatusRequestEntityTooLarge,
		domain.Errorf(domain.EINVALID, "", "Request body too large"))
}

// acceptsJSON checks if the client prefers JSON responses.
func acceptsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.Contains(r.Header.Get("Content-Type"), "application/json")
}
