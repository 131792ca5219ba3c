package category

import (
	"context"

	"github.com/wichananm65/storefront-api/internal/apperror"
)

type Service struct {
	repo Repository
}

func NewService(r Repository) *Service {
	return &Service{repo: r}
}

// List returns up to limit categories ordered by name. Zero means
// DefaultLimit.
func (s *Service) List(ctx context.Context, limit int) ([]Category, error) {
	switch {
	case limit == 0:
		limit = DefaultLimit
	case limit < 0 || limit > MaxLimit:
		return nil, apperror.Validation("limit must be between 1 and 500")
	}
	return s.repo.List(ctx, limit)
}
