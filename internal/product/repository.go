package product

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/wichananm65/storefront-api/internal/apperror"
)

var ErrNotFound = apperror.NotFound("ProductNotFound", "product not found")

type Repository interface {
	GetByID(ctx context.Context, id int) (Product, error)
	List(ctx context.Context, f Filter) ([]Product, error)
	Search(ctx context.Context, keyword string) ([]Product, error)
	ListByOwner(ctx context.Context, ownerID int) ([]Product, error)
	Create(ctx context.Context, p Product) (Product, error)
	// Update and Delete only touch rows owned by p.OwnerID / ownerID and
	// report ErrNotFound otherwise.
	Update(ctx context.Context, p Product) (Product, error)
	Delete(ctx context.Context, id, ownerID int) error
}

// InMemoryRepository is a simple in-memory implementation useful for tests and
// local runs.
type InMemoryRepository struct {
	mu      sync.RWMutex
	storage []Product
	nextID  int
}

func NewInMemoryRepository(seed []Product) *InMemoryRepository {
	r := &InMemoryRepository{
		storage: make([]Product, 0, len(seed)),
		nextID:  1,
	}

	maxID := 0
	for _, p := range seed {
		r.storage = append(r.storage, p)
		if p.ID > maxID {
			maxID = p.ID
		}
	}
	r.nextID = maxID + 1
	return r
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id int) (Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.storage {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, ErrNotFound
}

func (r *InMemoryRepository) List(ctx context.Context, f Filter) ([]Product, error) {
	r.mu.RLock()
	matched := make([]Product, 0, len(r.storage))
	for _, p := range r.storage {
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
			continue
		}
		if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
			continue
		}
		matched = append(matched, p)
	}
	r.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		switch f.SortBy {
		case SortByName:
			return a.Name < b.Name
		case SortByPrice:
			return a.Price.LessThan(b.Price)
		default:
			return a.ID < b.ID
		}
	})

	start := f.offset()
	if start >= len(matched) {
		return []Product{}, nil
	}
	end := start + f.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], nil
}

func (r *InMemoryRepository) Search(ctx context.Context, keyword string) ([]Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kw := strings.ToLower(keyword)
	out := []Product{}
	for _, p := range r.storage {
		if strings.Contains(strings.ToLower(p.Name), kw) ||
			strings.Contains(strings.ToLower(p.Description), kw) ||
			strings.Contains(strings.ToLower(p.Category), kw) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *InMemoryRepository) ListByOwner(ctx context.Context, ownerID int) ([]Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []Product{}
	for _, p := range r.storage {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *InMemoryRepository) Create(ctx context.Context, p Product) (Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p.ID = r.nextID
	r.nextID++
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	r.storage = append(r.storage, p)
	return p, nil
}

func (r *InMemoryRepository) Update(ctx context.Context, p Product) (Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, existing := range r.storage {
		if existing.ID == p.ID && existing.OwnerID == p.OwnerID {
			p.CreatedAt = existing.CreatedAt
			p.UpdatedAt = time.Now().UTC()
			r.storage[i] = p
			return p, nil
		}
	}
	return Product{}, ErrNotFound
}

func (r *InMemoryRepository) Delete(ctx context.Context, id, ownerID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, p := range r.storage {
		if p.ID == id && p.OwnerID == ownerID {
			r.storage = append(r.storage[:i], r.storage[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
