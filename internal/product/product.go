package product

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog item owned by the admin who created it.
type Product struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category"`
	ImageURL    string          `json:"imageUrl"`
	OwnerID     int             `json:"createdBy"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Input is the writable part of a product.
type Input struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category"`
	ImageURL    string          `json:"imageUrl"`
}

const (
	SortByID    = "id"
	SortByName  = "name"
	SortByPrice = "price"

	DefaultPageSize = 10
	MaxPageSize     = 100

	// MaxPage keeps (Page-1)*PageSize inside a Postgres integer OFFSET.
	MaxPage = math.MaxInt32 / MaxPageSize
)

// priceCeiling is the first value the NUMERIC(10,2) price column rejects.
var priceCeiling = decimal.New(1, 8)

// Filter narrows the public listing. Zero values mean no constraint.
type Filter struct {
	Category string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	SortBy   string
	Page     int
	PageSize int
}

func (f Filter) offset() int {
	return (f.Page - 1) * f.PageSize
}
