package router

import (
	"io/fs"
	"net/http"
	"slices"
	"strconv"
	"strings"
)

// Router wraps http.ServeMux with middleware chaining
type Router struct {
	mux   *http.ServeMux
	chain []Middleware
}

// Middleware is a function that wraps an http.Handler
type Middleware func(http.Handler) http.Handler

// New creates a new Router with optional global middleware
func New(middleware ...Middleware) *Router {
	return &Router{
		mux:   http.NewServeMux(),
		chain: middleware,
	}
}

// ServeHTTP implements http.Handler
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Get registers a GET route. HEAD requests match it too.
func (r *Router) Get(pattern string, handler http.HandlerFunc, middleware ...Middleware) {
	r.Handle(http.MethodGet, pattern, handler, middleware...)
}

// Post registers a POST route
func (r *Router) Post(pattern string, handler http.HandlerFunc, middleware ...Middleware) {
	r.Handle(http.MethodPost, pattern, handler, middleware...)
}

// Handle registers a route with explicit method
func (r *Router) Handle(method, pattern string, handler http.Handler, middleware ...Middleware) {
	r.mux.Handle(method+" "+pattern, r.wrap(handler, middleware))
}

// wrap applies middleware to a handler in reverse order
func (r *Router) wrap(handler http.Handler, middleware []Middleware) http.Handler {
	combined := append(slices.Clone(r.chain), middleware...)
	slices.Reverse(combined)

	result := handler
	for _, m := range combined {
		result = m(result)
	}

	return result
}

// Group creates a sub-router with additional middleware
func (r *Router) Group(middleware ...Middleware) *Router {
	return &Router{
		mux:   r.mux,
		chain: append(slices.Clone(r.chain), middleware...),
	}
}

// Static serves files from fsys under the given route prefix. Responses may
// be cached by browsers for maxAge seconds.
func (r *Router) Static(prefix string, fsys fs.FS, maxAge int) {
	cleanPrefix := strings.TrimSuffix(prefix, "/")
	fileServer := http.StripPrefix(cleanPrefix, http.FileServerFS(fsys))

	cacheControl := "no-cache"
	if maxAge > 0 {
		cacheControl = "public, max-age=" + strconv.Itoa(maxAge)
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		// Directory listings are never served.
		if strings.HasSuffix(req.URL.Path, "/") {
			http.NotFound(w, req)
			return
		}
		w.Header().Set("Cache-Control", cacheControl)
		fileServer.ServeHTTP(w, req)
	})

	r.mux.Handle("GET "+cleanPrefix+"/{file...}", r.wrap(handler, nil))
}

// NotFound registers the handler used for every unmatched path.
func (r *Router) NotFound(handler http.HandlerFunc, middleware ...Middleware) {
	r.mux.Handle("/", r.wrap(handler, middleware))
}
