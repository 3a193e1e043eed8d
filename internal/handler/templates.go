package handler

import (
	"html/template"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// AssetURL resolves a stored asset key to a public URL.
type AssetURL func(key string) string

// TemplateFuncs returns a FuncMap with custom template functions
func TemplateFuncs(asset AssetURL) template.FuncMap {
	return template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
		"sub": func(a, b int) int {
			return a - b
		},
		"year": func() int {
			return time.Now().Year()
		},
		"price":      FormatPrice,
		"asset":      assetFunc(asset),
		"productURL": ProductURL,
		"pageURL":    PageURL,
	}
}

// FormatPrice renders an amount followed by its currency, dropping
// insignificant trailing zeros.
func FormatPrice(amount decimal.Decimal, currency string) string {
	return amount.String() + " " + currency
}

// ProductURL links to a product's detail page.
func ProductURL(id string) string {
	return "/product?id=" + url.QueryEscape(id)
}

// PageURL links to page n of a listing path.
func PageURL(base string, n int) string {
	if n <= 1 {
		return base
	}
	return base + "?page=" + strconv.Itoa(n)
}

func assetFunc(asset AssetURL) func(string) string {
	return func(ref string) string {
		switch {
		case ref == "":
			return ""
		case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"), strings.HasPrefix(ref, "/"):
			return ref
		case asset == nil:
			return "/" + ref
		default:
			return asset(ref)
		}
	}
}
