package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dukerupert/nahl/internal/domain"
)

func TestErrorCodeToHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{domain.EINVALID, http.StatusBadRequest},
		{domain.ENOTFOUND, http.StatusNotFound},
		{domain.EUNAVAILABLE, http.StatusServiceUnavailable},
		{domain.EINTERNAL, http.StatusInternalServerError},
		{"unknown_code", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := ErrorCodeToHTTPStatus(tt.code); got != tt.expected {
				t.Errorf("ErrorCodeToHTTPStatus(%q) = %d, want %d", tt.code, got, tt.expected)
			}
		})
	}
}

func TestErrorResponse_JSON(t *testing.T) {
	tests := []struct {
		name            string
		err             error
		expectedStatus  int
		expectedCode    string
		expectedMessage string
	}{
		{
			name:            "not found error",
			err:             domain.ErrProductNotFound,
			expectedStatus:  http.StatusNotFound,
			expectedCode:    domain.ENOTFOUND,
			expectedMessage: domain.ErrProductNotFound.Message,
		},
		{
			name:            "validation error",
			err:             domain.Invalid("detail.action", "unknown action"),
			expectedStatus:  http.StatusBadRequest,
			expectedCode:    domain.EINVALID,
			expectedMessage: "unknown action",
		},
		{
			name:            "data unavailable",
			err:             domain.WrapError(errors.New("dial tcp"), domain.EUNAVAILABLE, "catalog.load", domain.ErrDataUnavailable.Message),
			expectedStatus:  http.StatusServiceUnavailable,
			expectedCode:    domain.EUNAVAILABLE,
			expectedMessage: domain.ErrDataUnavailable.Message,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.Header.Set("Accept", "application/json")
			rec := httptest.NewRecorder()

			ErrorResponse(rec, req, tt.err)

			if rec.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.expectedStatus)
			}

			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q, want %q", ct, "application/json")
			}

			var response struct {
				Error struct {
					Code    string `json:"code"`
					Message string `json:"message"`
				} `json:"error"`
			}

			if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}

			if response.Error.Code != tt.expectedCode {
				t.Errorf("error.code = %q, want %q", response.Error.Code, tt.expectedCode)
			}
			if response.Error.Message != tt.expectedMessage {
				t.Errorf("error.message = %q, want %q", response.Error.Message, tt.expectedMessage)
			}
		})
	}
}

func TestErrorResponse_PlainText(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()

	ErrorResponse(rec, req, domain.ErrProductNotFound)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	if body := rec.Body.String(); body != domain.ErrProductNotFound.Message+"\n" {
		t.Errorf("body = %q", body)
	}
}

func TestErrorResponse_InternalHidesDetails(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()

	err := domain.Internal(errors.New("password authentication failed"), "cart.add", "failed to connect to database at 192.168.1.100:5432")
	ErrorResponse(rec, req, err)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}

	var response struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}

	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	expected := "An internal error occurred. Please try again later."
	if response.Error.Message != expected {
		t.Errorf("message = %q, want %q", response.Error.Message, expected)
	}
}

func TestWantsJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if WantsJSON(req) {
		t.Error("no Accept header should not want JSON")
	}

	req.Header.Set("Accept", "application/json, text/plain")
	if !WantsJSON(req) {
		t.Error("expected JSON to be wanted")
	}
}
