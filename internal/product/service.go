package product

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/wichananm65/storefront-api/internal/apperror"
)

const noMatchMessage = "No matching products found. Try describing the product in more detail."

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// SearchResult carries a hint for the client when nothing matched.
type SearchResult struct {
	Products []Product `json:"products"`
	Message  *string   `json:"message"`
}

func (s *Service) GetByID(ctx context.Context, id int) (Product, error) {
	return s.repo.GetByID(ctx, id)
}

// List applies defaults to f and rejects out of range values.
func (s *Service) List(ctx context.Context, f Filter) ([]Product, error) {
	if f.SortBy == "" {
		f.SortBy = SortByID
	}
	if _, ok := sortColumns[f.SortBy]; !ok {
		return nil, apperror.Validation("invalid sortBy field, must be one of: price, name, id")
	}
	if f.Page == 0 {
		f.Page = 1
	}
	if f.PageSize == 0 {
		f.PageSize = DefaultPageSize
	}
	if f.Page < 1 || f.Page > MaxPage {
		return nil, apperror.Validation(fmt.Sprintf("page must be between 1 and %d", MaxPage))
	}
	if f.PageSize < 1 || f.PageSize > MaxPageSize {
		return nil, apperror.Validation("pageSize must be between 1 and 100")
	}
	if (f.MinPrice != nil && f.MinPrice.IsNegative()) || (f.MaxPrice != nil && f.MaxPrice.IsNegative()) {
		return nil, apperror.Validation("price bounds must not be negative")
	}
	return s.repo.List(ctx, f)
}

func (s *Service) Search(ctx context.Context, keyword string) (SearchResult, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" || len(keyword) > 100 {
		return SearchResult{}, apperror.Validation("keyword must be between 1 and 100 characters")
	}

	products, err := s.repo.Search(ctx, keyword)
	if err != nil {
		return SearchResult{}, err
	}
	res := SearchResult{Products: products}
	if len(products) == 0 {
		msg := noMatchMessage
		res.Message = &msg
	}
	return res, nil
}

func (s *Service) ListOwned(ctx context.Context, ownerID int) ([]Product, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

func (s *Service) Create(ctx context.Context, ownerID int, in Input) (Product, error) {
	if err := validate(in); err != nil {
		return Product{}, err
	}
	return s.repo.Create(ctx, fromInput(in, 0, ownerID))
}

// Update replaces every writable field. Products owned by another admin are
// reported as missing.
func (s *Service) Update(ctx context.Context, ownerID, id int, in Input) (Product, error) {
	if err := validate(in); err != nil {
		return Product{}, err
	}
	return s.repo.Update(ctx, fromInput(in, id, ownerID))
}

func (s *Service) Delete(ctx context.Context, ownerID, id int) error {
	return s.repo.Delete(ctx, id, ownerID)
}

func validate(in Input) error {
	if strings.TrimSpace(in.Name) == "" {
		return apperror.Validation("name is required")
	}
	if in.Price.LessThan(decimal.Zero) {
		return apperror.Validation("price must not be negative")
	}
	if in.Price.GreaterThanOrEqual(priceCeiling) {
		return apperror.Validation("price must be below 100000000")
	}
	if !in.Price.Equal(in.Price.Round(2)) {
		return apperror.Validation("price must have at most two decimal places")
	}
	if in.Stock < 0 {
		return apperror.Validation("stock must not be negative")
	}
	return nil
}

func fromInput(in Input, id, ownerID int) Product {
	return Product{
		ID:          id,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		Category:    in.Category,
		ImageURL:    in.ImageURL,
		OwnerID:     ownerID,
	}
}
