package order

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
)

// Order is immutable once written by checkout.
type Order struct {
	ID          int             `json:"orderId"`
	UserID      int             `json:"userId"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Status      Status          `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// Line snapshots the quantity and unit price at the moment of purchase.
type Line struct {
	ProductID       int
	Quantity        int
	PriceAtPurchase decimal.Decimal
}

type DetailItem struct {
	ProductID       int             `json:"productId"`
	ProductName     string          `json:"productName"`
	Quantity        int             `json:"quantity"`
	PriceAtPurchase decimal.Decimal `json:"priceAtPurchase"`
	Subtotal        decimal.Decimal `json:"subtotal"`
}

type Detail struct {
	Order
	Items []DetailItem `json:"items"`
}
