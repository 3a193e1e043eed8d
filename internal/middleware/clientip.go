package middleware

import (
	"net"
	"net/http"
	"strings"
)

// GetClientIP extracts the client IP from the request. It checks
// X-Forwarded-For and X-Real-IP first for proxied requests.
//
// These headers can be spoofed; run behind a proxy that sets them.
func GetClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
