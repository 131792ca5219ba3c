package cart

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/wichananm65/storefront-api/internal/product"
)

// Service orchestrates cart operations. Stock bounds are enforced by the
// repository in the same step that writes the new quantity.
type Service struct {
	repo     Repository
	products ProductReader
	log      logrus.FieldLogger
}

func NewService(repo Repository, products ProductReader, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{repo: repo, products: products, log: log}
}

// AddItem merges quantity into the user's line for productID, creating it
// when absent.
func (s *Service) AddItem(ctx context.Context, userID, productID, quantity int) (Line, error) {
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return Line{}, err
	}
	if quantity < 1 || quantity > MaxQuantity {
		s.log.WithFields(logrus.Fields{"user_id": userID, "quantity": quantity}).Warn("non-positive cart quantity")
		return Line{}, ErrInvalidQuantity
	}

	line, err := s.repo.Add(ctx, userID, productID, quantity)
	if err != nil {
		return Line{}, s.explain(ctx, err, userID, productID)
	}
	return withProduct(line, p), nil
}

// SetQuantity replaces the quantity of an existing line.
func (s *Service) SetQuantity(ctx context.Context, userID, productID, quantity int) (Line, error) {
	if quantity < 1 || quantity > MaxQuantity {
		return Line{}, ErrInvalidQuantity
	}
	line, err := s.repo.Set(ctx, userID, productID, quantity)
	if err != nil {
		return Line{}, s.explain(ctx, err, userID, productID)
	}
	return s.decorate(ctx, line)
}

// ChangeQuantity adjusts an existing line by delta. Only increases are
// checked against stock.
func (s *Service) ChangeQuantity(ctx context.Context, userID, productID, delta int) (Line, error) {
	if delta == 0 {
		return Line{}, ErrInvalidDelta
	}
	if delta > MaxQuantity || delta < -MaxQuantity {
		return Line{}, ErrInvalidDelta.WithMessage(fmt.Sprintf("delta must be between -%d and %d", MaxQuantity, MaxQuantity))
	}
	line, err := s.repo.Adjust(ctx, userID, productID, delta)
	if err != nil {
		return Line{}, s.explain(ctx, err, userID, productID)
	}
	return s.decorate(ctx, line)
}

// explain adds the remaining headroom to a stock rejection.
func (s *Service) explain(ctx context.Context, err error, userID, productID int) error {
	if !errors.Is(err, ErrInsufficientStock) {
		return err
	}
	p, perr := s.products.GetByID(ctx, productID)
	if perr != nil {
		return err
	}
	inCart := 0
	if l, lerr := s.repo.Get(ctx, userID, productID); lerr == nil {
		inCart = l.Quantity
	}
	return insufficient(p.Stock - inCart)
}

func (s *Service) decorate(ctx context.Context, l Line) (Line, error) {
	p, err := s.products.GetByID(ctx, l.ProductID)
	if err != nil {
		return Line{}, err
	}
	return withProduct(l, p), nil
}

func (s *Service) Remove(ctx context.Context, userID, productID int) error {
	return s.repo.Delete(ctx, userID, productID)
}

func (s *Service) View(ctx context.Context, userID int) ([]Line, error) {
	return s.repo.List(ctx, userID)
}

func insufficient(available int) error {
	if available < 0 {
		available = 0
	}
	return ErrInsufficientStock.WithMessage(fmt.Sprintf("only %d more item(s) left in stock", available))
}

func withProduct(l Line, p product.Product) Line {
	l.ProductName = p.Name
	l.Price = p.Price
	return l
}
