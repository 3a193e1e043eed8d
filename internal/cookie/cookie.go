// Package cookie provides helpers for the visitor session cookie that keys
// each shopper's cart.
package cookie

import (
	"net/http"
	"time"
)

// DefaultName is the visitor session cookie name.
const DefaultName = "nahl_session"

// DefaultMaxAge keeps a visitor's cart for 30 days of inactivity.
const DefaultMaxAge = 30 * 24 * time.Hour

// Config holds cookie configuration.
type Config struct {
	Name   string
	Secure bool
	MaxAge time.Duration
}

// NewConfig creates a cookie configuration. An empty name uses DefaultName.
func NewConfig(name string, secure bool) *Config {
	if name == "" {
		name = DefaultName
	}
	return &Config{Name: name, Secure: secure, MaxAge: DefaultMaxAge}
}

// Set writes the session cookie. It is HttpOnly, path-wide and SameSite=Lax so
// top-level navigations from other sites keep the cart.
func (c *Config) Set(w http.ResponseWriter, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(c.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Get returns the session cookie value, or "" when absent.
func (c *Config) Get(r *http.Request) string {
	return Get(r, c.Name)
}

// Get retrieves a cookie value from the request.
// Returns empty string if cookie not found.
func Get(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}
