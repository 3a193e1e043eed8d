package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func ptr[T any](v T) *T { return &v }

func TestProduct_IsOut(t *testing.T) {
	tests := []struct {
		name    string
		product Product
		want    bool
	}{
		{"in stock unlimited", Product{StockStatus: StockStatusInStock}, false},
		{"declared out of stock", Product{StockStatus: StockStatusOutOfStock}, true},
		{"zero quantity", Product{StockStatus: StockStatusInStock, StockQuantity: LimitOf(0)}, true},
		{"negative quantity", Product{StockStatus: StockStatusInStock, StockQuantity: LimitOf(-2)}, true},
		{"positive quantity", Product{StockStatus: StockStatusInStock, StockQuantity: LimitOf(3)}, false},
		{"out of stock with quantity", Product{StockStatus: StockStatusOutOfStock, StockQuantity: LimitOf(10)}, true},
		{"fraction of a unit left", Product{StockQuantity: LimitOf(0), StockAmount: decimal.NewNullDecimal(decimal.RequireFromString("0.5"))}, false},
		{"fraction below zero", Product{StockQuantity: LimitOf(-1), StockAmount: decimal.NewNullDecimal(decimal.RequireFromString("-0.5"))}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.product.IsOut())
		})
	}
}

func TestProduct_ShowCompareAt(t *testing.T) {
	price := decimal.NewFromInt(100)

	tests := []struct {
		name      string
		compareAt decimal.NullDecimal
		want      bool
	}{
		{"absent", decimal.NullDecimal{}, false},
		{"lower", decimal.NewNullDecimal(decimal.NewFromInt(90)), false},
		{"equal", decimal.NewNullDecimal(decimal.NewFromInt(100)), false},
		{"greater", decimal.NewNullDecimal(decimal.NewFromInt(120)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Product{Price: price, CompareAtPrice: tt.compareAt}
			assert.Equal(t, tt.want, p.ShowCompareAt())
		})
	}
}

func TestProduct_Images(t *testing.T) {
	const fallback = "imgs/honey.jpeg"

	both := Product{Thumbnail: "thumb.jpg", Images: []string{"a.jpg", "b.jpg"}}
	assert.Equal(t, "thumb.jpg", both.CardImage(fallback))
	assert.Equal(t, "a.jpg", both.PrimaryImage(fallback))
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, both.Gallery(fallback))

	thumbOnly := Product{Thumbnail: "thumb.jpg"}
	assert.Equal(t, "thumb.jpg", thumbOnly.PrimaryImage(fallback))
	assert.Equal(t, []string{"thumb.jpg"}, thumbOnly.Gallery(fallback))

	none := Product{}
	assert.Equal(t, fallback, none.CardImage(fallback))
	assert.Equal(t, fallback, none.PrimaryImage(fallback))
	assert.Equal(t, []string{fallback}, none.Gallery(fallback))
}

func TestProduct_Stars(t *testing.T) {
	assert.Nil(t, Product{}.Stars())
	assert.Equal(t, []bool{true, true, true, true, false}, Product{Rating: ptr(4.4)}.Stars())
	assert.Equal(t, []bool{true, true, true, true, true}, Product{Rating: ptr(4.5)}.Stars())
	assert.Equal(t, []bool{true, true, true, true, true}, Product{Rating: ptr(9.0)}.Stars())
	assert.Equal(t, []bool{false, false, false, false, false}, Product{Rating: ptr(-1.0)}.Stars())
}

func TestProduct_PercentOff(t *testing.T) {
	_, ok := Product{}.PercentOff()
	assert.False(t, ok)

	_, ok = Product{Discount: &Discount{Type: "fixed", Value: decimal.NewNullDecimal(decimal.NewFromInt(5))}}.PercentOff()
	assert.False(t, ok)

	_, ok = Product{Discount: &Discount{Type: DiscountTypePercentage}}.PercentOff()
	assert.False(t, ok, "non-numeric value")

	v, ok := Product{Discount: &Discount{Type: DiscountTypePercentage, Value: decimal.NewNullDecimal(decimal.NewFromInt(20))}}.PercentOff()
	assert.True(t, ok)
	assert.Equal(t, "20", v.String())
}

func TestLimit_Cap(t *testing.T) {
	assert.Equal(t, 50, Unlimited().Cap(50))
	assert.Equal(t, 3, LimitOf(3).Cap(50))
	assert.Equal(t, 2, LimitOf(3).Cap(2))
}

func TestCatalog_Find(t *testing.T) {
	c := &Catalog{Products: []Product{{ID: "a"}, {ID: "b", Title: "B"}}}

	p, ok := c.Find("b")
	assert.True(t, ok)
	assert.Equal(t, "B", p.Title)

	_, ok = c.Find("z")
	assert.False(t, ok)
}
