// Package checkout turns a user's cart into a paid order. The order, its
// lines, the stock decrements and the cart clear are applied in one
// transaction.
package checkout

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/wichananm65/storefront-api/internal/apperror"
	"github.com/wichananm65/storefront-api/internal/order"
)

var (
	ErrEmptyCart         = apperror.Conflict("EmptyCart", "cart is empty")
	ErrInsufficientStock = apperror.Conflict("InsufficientStock", "not enough stock to complete checkout")
)

// CartLine is a cart row joined with the current state of its product.
type CartLine struct {
	ProductID int
	Name      string
	Quantity  int
	Price     decimal.Decimal
	Stock     int
}

type Receipt struct {
	OrderID     int             `json:"orderId"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Status      order.Status    `json:"status"`
}

// Tx is the set of writes checkout performs. Implementations run them all in
// a single transaction opened by Store.WithinTx.
type Tx interface {
	// LockCart returns the user's lines ordered by product id, holding row
	// locks on the cart lines and their products until the transaction ends.
	LockCart(ctx context.Context, userID int) ([]CartLine, error)
	InsertOrder(ctx context.Context, userID int, total decimal.Decimal, status order.Status) (int, error)
	InsertOrderLines(ctx context.Context, orderID int, lines []CartLine) error
	// DecrementStock reports false when stock is lower than qty.
	DecrementStock(ctx context.Context, productID, qty int) (bool, error)
	ClearCart(ctx context.Context, userID int) error
}

type Store interface {
	// WithinTx commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(Tx) error) error
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Commit converts the cart of userID into a paid order priced at current
// catalog prices.
func (s *Service) Commit(ctx context.Context, userID int) (Receipt, error) {
	var receipt Receipt
	err := s.store.WithinTx(ctx, func(tx Tx) error {
		lines, err := tx.LockCart(ctx, userID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		total := decimal.Zero
		for _, l := range lines {
			if l.Quantity > l.Stock {
				return shortOf(l.Name, l.Stock)
			}
			total = total.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
		}

		orderID, err := tx.InsertOrder(ctx, userID, total, order.StatusPaid)
		if err != nil {
			return err
		}
		if err := tx.InsertOrderLines(ctx, orderID, lines); err != nil {
			return err
		}
		for _, l := range lines {
			ok, err := tx.DecrementStock(ctx, l.ProductID, l.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return shortOf(l.Name, l.Stock)
			}
		}
		if err := tx.ClearCart(ctx, userID); err != nil {
			return err
		}

		receipt = Receipt{OrderID: orderID, TotalAmount: total, Status: order.StatusPaid}
		return nil
	})
	if err != nil {
		return Receipt{}, err
	}
	return receipt, nil
}

func shortOf(name string, stock int) error {
	return ErrInsufficientStock.WithMessage(fmt.Sprintf("only %d of %q left in stock", stock, name))
}
