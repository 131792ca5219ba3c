package category

import (
	"context"
	"sort"
	"strings"

	"github.com/wichananm65/storefront-api/internal/product"
)

type Repository interface {
	List(ctx context.Context, limit int) ([]Category, error)
}

// ProductLister is the slice of the product repository the in-memory
// implementation reads from.
type ProductLister interface {
	List(ctx context.Context, f product.Filter) ([]product.Product, error)
}

type InMemoryRepository struct {
	products ProductLister
}

func NewInMemoryRepository(products ProductLister) *InMemoryRepository {
	return &InMemoryRepository{products: products}
}

func (r *InMemoryRepository) List(ctx context.Context, limit int) ([]Category, error) {
	counts := make(map[string]int)
	for page := 1; ; page++ {
		batch, err := r.products.List(ctx, product.Filter{Page: page, PageSize: product.MaxPageSize})
		if err != nil {
			return nil, err
		}
		for _, p := range batch {
			if name := strings.TrimSpace(p.Category); name != "" {
				counts[name]++
			}
		}
		if len(batch) < product.MaxPageSize {
			break
		}
	}

	out := make([]Category, 0, len(counts))
	for name, n := range counts {
		out = append(out, Category{Name: name, ProductCount: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
