package storefront

import (
	"net/http"

	"github.com/dukerupert/nahl/internal/domain"
	"github.com/dukerupert/nahl/internal/handler"
)

// ErrorPageData contains data for the error template
type ErrorPageData struct {
	Layout
	Error *PageError
}

// NotFound renders the error page for paths no route matches.
func NotFound(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := domain.Errorf(domain.ENOTFOUND, "storefront.route", "This page could not be found.")
		if handler.WantsJSON(r) {
			handler.ErrorResponse(w, r, err)
			return
		}

		ctx := r.Context()
		data := ErrorPageData{
			Layout: d.layout(ctx, "Not found | "+StoreName, ""),
			Error:  &PageError{Status: http.StatusNotFound, Message: domain.ErrorMessage(err)},
		}
		d.Renderer.RenderStatus(w, http.StatusNotFound, "error", data)
	}
}
