package order

import (
	"context"

	"github.com/shopspring/decimal"
)

const unknownProduct = "Unknown"

type Service struct {
	repo Repository
}

func NewService(r Repository) *Service {
	return &Service{repo: r}
}

func (s *Service) ListForUser(ctx context.Context, userID int) ([]Order, error) {
	return s.repo.ListForUser(ctx, userID)
}

// GetDetail returns an order of userID with its lines. Names come from the
// current catalog; prices are the ones captured at purchase.
func (s *Service) GetDetail(ctx context.Context, userID, orderID int) (Detail, error) {
	o, err := s.repo.GetForUser(ctx, userID, orderID)
	if err != nil {
		return Detail{}, err
	}
	lines, err := s.repo.Lines(ctx, o.ID)
	if err != nil {
		return Detail{}, err
	}

	ids := make([]int, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}
	names, err := s.repo.ProductNames(ctx, ids)
	if err != nil {
		return Detail{}, err
	}

	d := Detail{Order: o, Items: make([]DetailItem, 0, len(lines))}
	for _, l := range lines {
		name, ok := names[l.ProductID]
		if !ok {
			name = unknownProduct
		}
		d.Items = append(d.Items, DetailItem{
			ProductID:       l.ProductID,
			ProductName:     name,
			Quantity:        l.Quantity,
			PriceAtPurchase: l.PriceAtPurchase,
			Subtotal:        l.PriceAtPurchase.Mul(decimal.NewFromInt(int64(l.Quantity))),
		})
	}
	return d, nil
}
