package domain

import (
	"encoding/json"
	"math"

	"github.com/shopspring/decimal"
)

// Bounds every storage backend can hold: stock and quantity are 32-bit
// integers, money has two decimal places and stays below MaxAmount.
const (
	MoneyScale  = 2
	MaxQuantity = math.MaxInt32
	MinStock    = math.MinInt32
	MaxStock    = math.MaxInt32
)

// MaxAmount is the exclusive upper bound for prices and order totals
var MaxAmount = decimal.New(1, 10)

// ValidAmount reports whether d fits the stored money format.
func ValidAmount(d decimal.Decimal) bool {
	return !d.IsNegative() && d.LessThan(MaxAmount) && d.Equal(d.Round(MoneyScale))
}

// jsonMoney renders money as a plain JSON number
func jsonMoney(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

// Product represents a product in the catalog
type Product struct {
	ID          int64           `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Stock       int             `json:"stock" db:"stock"`
	ImageURL    string          `json:"imageUrl" db:"image_url"`
}

// MarshalJSON writes the price as a number, the shape products.json has
// always used.
func (p Product) MarshalJSON() ([]byte, error) {
	type plain Product
	return json.Marshal(struct {
		plain
		Price json.Number `json:"price"`
	}{plain: plain(p), Price: jsonMoney(p.Price)})
}

// Clone returns a copy that can be mutated without affecting p.
func (p *Product) Clone() *Product {
	c := *p
	return &c
}

// ProductPatch carries the fields of a partial product update. Nil fields are
// left untouched.
type ProductPatch struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Stock       *int
	ImageURL    *string
}

// IsEmpty reports whether the patch changes nothing.
func (p ProductPatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.Price == nil && p.Stock == nil && p.ImageURL == nil
}

// Apply writes the supplied fields onto product.
func (p ProductPatch) Apply(product *Product) {
	if p.Name != nil {
		product.Name = *p.Name
	}
	if p.Description != nil {
		product.Description = *p.Description
	}
	if p.Price != nil {
		product.Price = *p.Price
	}
	if p.Stock != nil {
		product.Stock = *p.Stock
	}
	if p.ImageURL != nil {
		product.ImageURL = *p.ImageURL
	}
}
