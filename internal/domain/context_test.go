package domain

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestSessionContext(t *testing.T) {
	t.Run("SessionFromContext returns empty when no session", func(t *testing.T) {
		if got := SessionFromContext(context.Background()); got != "" {
			t.Errorf("expected empty session, got %q", got)
		}
	})

	t.Run("SessionFromContext returns session when set", func(t *testing.T) {
		expected := uuid.NewString()
		ctx := NewContextWithSession(context.Background(), expected)

		if got := SessionFromContext(ctx); got != expected {
			t.Errorf("expected %q, got %q", expected, got)
		}
	})
}

func TestRequestIDContext(t *testing.T) {
	t.Run("RequestIDFromContext returns empty when not set", func(t *testing.T) {
		if got := RequestIDFromContext(context.Background()); got != "" {
			t.Errorf("expected empty request id, got %q", got)
		}
	})

	t.Run("RequestIDFromContext returns value when set", func(t *testing.T) {
		ctx := NewContextWithRequestID(context.Background(), "req-123")
		if got := RequestIDFromContext(ctx); got != "req-123" {
			t.Errorf("expected %q, got %q", "req-123", got)
		}
	})

	t.Run("session and request id do not collide", func(t *testing.T) {
		ctx := NewContextWithSession(context.Background(), "s-1")
		ctx = NewContextWithRequestID(ctx, "r-1")

		if SessionFromContext(ctx) != "s-1" || RequestIDFromContext(ctx) != "r-1" {
			t.Errorf("context values overwrote each other")
		}
	})
}
