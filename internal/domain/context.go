// Package domain provides core storefront types and context helpers for Nahl.
package domain

import "context"

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey int

const (
	// sessionContextKey stores the visitor session id.
	sessionContextKey contextKey = iota

	// requestIDContextKey stores the request ID for tracing.
	requestIDContextKey
)

// NewContextWithSession returns a new context carrying the visitor session id.
func NewContextWithSession(ctx context.Context, session string) context.Context {
	return context.WithValue(ctx, sessionContextKey, session)
}

// SessionFromContext retrieves the visitor session id.
// Returns empty string if no session is present.
func SessionFromContext(ctx context.Context) string {
	session, _ := ctx.Value(sessionContextKey).(string)
	return session
}

// NewContextWithRequestID returns a new context with the request ID attached.
func NewContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDContextKey, requestID)
}

// RequestIDFromContext retrieves the request ID from context.
// Returns empty string if no request ID is present.
func RequestIDFromContext(ctx context.Context) string {
	requestID, _ := ctx.Value(requestIDContextKey).(string)
	return requestID
}
