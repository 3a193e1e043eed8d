// Package catalog turns the raw product document into normalized products and
// builds the filtered, sorted and paginated listings shown on the storefront.
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/dukerupert/nahl/internal/domain"
)

// number is a lenient numeric field. Present means the key held a non-null
// value; Valid means that value could be read as a number. Strict is set only
// for genuine JSON numbers (numeric strings are accepted but not strict).
type number struct {
	Present bool
	Valid   bool
	Strict  bool
	Value   decimal.Decimal
}

func (n *number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	n.Present = true

	switch {
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		s = strings.TrimSpace(s)
		if s == "" {
			n.Valid, n.Value = true, decimal.Zero
			return nil
		}
		if d, err := decimal.NewFromString(s); err == nil {
			n.Valid, n.Value = true, d
		}
	case len(b) > 0 && (b[0] == '-' || (b[0] >= '0' && b[0] <= '9')):
		if d, err := decimal.NewFromString(string(b)); err == nil {
			n.Valid, n.Strict, n.Value = true, true, d
		}
	}
	return nil
}

// flag is true only for a JSON true.
type flag bool

func (f *flag) UnmarshalJSON(b []byte) error {
	*f = flag(bytes.Equal(bytes.TrimSpace(b), []byte("true")))
	return nil
}

// text accepts strings and numbers; anything else reads as empty.
type text string

func (t *text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*t = text(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		*t = text(n.String())
	}
	return nil
}

type rawDiscount struct {
	Type  text   `json:"type"`
	Value number `json:"value"`
}

// discount ignores values that are not objects.
type discount struct {
	set bool
	rawDiscount
}

func (d *discount) UnmarshalJSON(b []byte) error {
	var r rawDiscount
	if err := json.Unmarshal(b, &r); err != nil {
		return nil
	}
	d.set = true
	d.rawDiscount = r
	return nil
}

// images drops entries that are not strings.
type images []string

func (im *images) UnmarshalJSON(b []byte) error {
	var items []text
	if err := json.Unmarshal(b, &items); err != nil {
		return nil
	}
	for _, it := range items {
		if it != "" {
			*im = append(*im, string(it))
		}
	}
	return nil
}

type rawProduct struct {
	ID                text     `json:"id" validate:"required"`
	Title             text     `json:"title"`
	CategoryID        text     `json:"categoryId"`
	Status            text     `json:"status"`
	SortOrder         number   `json:"sortOrder"`
	Price             number   `json:"price"`
	CompareAtPrice    number   `json:"compareAtPrice"`
	StockStatus       text     `json:"stockStatus"`
	StockQuantity     number   `json:"stockQuantity"`
	MinOrderQty       number   `json:"minOrderQty"`
	MaxOrderQty       number   `json:"maxOrderQty"`
	LegacyMaxOrderQty number   `json:"maxOrderQt"`
	NewArrival        flag     `json:"newArrival"`
	Bestseller        flag     `json:"bestseller"`
	PreOrder          flag     `json:"preOrder"`
	LimitedEdition    flag     `json:"limitedEdition"`
	Bundle            flag     `json:"bundle"`
	Featured          flag     `json:"featured"`
	GiftWrapAvailable flag     `json:"giftWrapAvailable"`
	Discount          discount `json:"discount"`
	Images            images   `json:"images"`
	Thumbnail         text     `json:"thumbnail"`
	Rating            number   `json:"rating"`
	ReviewsCount      number   `json:"reviewsCount"`
	Description       text     `json:"description"`
	ExpiryDate        text     `json:"expiryDate"`
}

type rawCatalog struct {
	Currency text              `json:"currency"`
	Products []json.RawMessage `json:"products"`
}

// Decoder reads catalog documents.
type Decoder struct {
	logger   *slog.Logger
	validate *validator.Validate
}

// NewDecoder creates a Decoder that logs skipped records to logger.
func NewDecoder(logger *slog.Logger) *Decoder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Decoder{
		logger:   logger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Decode parses a catalog document and normalizes every product record.
// Records that are not objects or have no id are skipped. A document that is
// not valid JSON, or whose products value is not a list, is an error.
func (d *Decoder) Decode(r io.Reader) (*domain.Catalog, error) {
	var doc rawCatalog
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	cat := &domain.Catalog{
		Currency: strings.TrimSpace(string(doc.Currency)),
		Products: make([]domain.Product, 0, len(doc.Products)),
	}
	if cat.Currency == "" {
		cat.Currency = domain.DefaultCurrency
	}

	for i, msg := range doc.Products {
		var rec rawProduct
		if err := json.Unmarshal(msg, &rec); err != nil {
			d.logger.Warn("skipping malformed product record", "position", i, "error", err)
			continue
		}
		if err := d.validate.Struct(rec); err != nil {
			d.logger.Warn("skipping invalid product record", "position", i, "error", err)
			continue
		}
		cat.Products = append(cat.Products, normalize(rec, i))
	}

	return cat, nil
}

func normalize(rec rawProduct, position int) domain.Product {
	p := domain.Product{
		ID:                string(rec.ID),
		Title:             string(rec.Title),
		CategoryID:        string(rec.CategoryID),
		Status:            domain.ProductStatus(rec.Status),
		SortOrder:         domain.DefaultSortOrder,
		Position:          position,
		StockStatus:       domain.StockStatus(rec.StockStatus),
		NewArrival:        bool(rec.NewArrival),
		Bestseller:        bool(rec.Bestseller),
		PreOrder:          bool(rec.PreOrder),
		LimitedEdition:    bool(rec.LimitedEdition),
		Bundle:            bool(rec.Bundle),
		Featured:          bool(rec.Featured),
		GiftWrapAvailable: bool(rec.GiftWrapAvailable),
		Images:            []string(rec.Images),
		Thumbnail:         string(rec.Thumbnail),
		Description:       string(rec.Description),
		ExpiryDate:        string(rec.ExpiryDate),
	}

	if p.Status == "" {
		p.Status = domain.ProductStatusActive
	}
	if p.StockStatus == "" {
		p.StockStatus = domain.StockStatusInStock
	}
	if rec.SortOrder.Valid {
		p.SortOrder = rec.SortOrder.Value.InexactFloat64()
	}
	if rec.Price.Valid {
		p.Price = rec.Price.Value
	}
	if rec.CompareAtPrice.Valid {
		p.CompareAtPrice = decimal.NewNullDecimal(rec.CompareAtPrice.Value)
	}

	if rec.StockQuantity.Valid {
		p.StockQuantity = domain.LimitOf(floor(rec.StockQuantity.Value))
		p.StockAmount = decimal.NewNullDecimal(rec.StockQuantity.Value)
	}
	if rec.MinOrderQty.Valid {
		p.MinOrderQty = max(0, floor(rec.MinOrderQty.Value))
	}
	maxQty := rec.MaxOrderQty
	if rec.LegacyMaxOrderQty.Present {
		maxQty = rec.LegacyMaxOrderQty
	}
	if maxQty.Valid {
		p.MaxOrderQty = domain.LimitOf(max(0, floor(maxQty.Value)))
	}

	if rec.Discount.set && rec.Discount.Type != "" {
		p.Discount = &domain.Discount{Type: domain.DiscountType(rec.Discount.Type)}
		if rec.Discount.Value.Strict {
			p.Discount.Value = decimal.NewNullDecimal(rec.Discount.Value.Value)
		}
	}

	if rec.Rating.Strict {
		v := rec.Rating.Value.InexactFloat64()
		p.Rating = &v
	}
	if rec.ReviewsCount.Strict {
		v := floor(rec.ReviewsCount.Value)
		p.ReviewsCount = &v
	}

	return p
}

// floor converts d to an int, saturating at the int range.
func floor(d decimal.Decimal) int {
	f := d.Floor()
	if f.GreaterThan(decimal.NewFromInt(math.MaxInt32)) {
		return math.MaxInt32
	}
	if f.LessThan(decimal.NewFromInt(math.MinInt32)) {
		return math.MinInt32
	}
	return int(f.IntPart())
}
