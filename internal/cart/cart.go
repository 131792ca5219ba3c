package cart

import (
	"github.com/shopspring/decimal"

	"github.com/wichananm65/storefront-api/internal/apperror"
)

// Line is one product in a user's cart. ProductName and Price are filled
// when lines are listed and reflect the current catalog.
type Line struct {
	ID          int             `json:"id"`
	UserID      int             `json:"-"`
	ProductID   int             `json:"productId"`
	Quantity    int             `json:"quantity"`
	ProductName string          `json:"productName,omitempty"`
	Price       decimal.Decimal `json:"price"`
}

// MaxQuantity bounds a single line so sums stay within a Postgres integer.
const MaxQuantity = 1_000_000

var (
	ErrLineNotFound      = apperror.NotFound("NotFound", "item not found in cart")
	ErrInvalidQuantity   = apperror.Conflict("InvalidQuantity", "quantity must be between 1 and 1000000")
	ErrInsufficientStock = apperror.Conflict("InsufficientStock", "not enough stock for this product")
	ErrInvalidDelta      = apperror.Conflict("InvalidDelta", "delta must not be zero")
	ErrQuantityTooLow    = apperror.Conflict("QuantityTooLow", "quantity cannot drop below 1, remove the item instead")
)
