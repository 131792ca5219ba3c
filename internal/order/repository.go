package order

import (
	"context"
	"sort"
	"sync"

	"github.com/wichananm65/storefront-api/internal/apperror"
)

var ErrNotFound = apperror.NotFound("NotFound", "order not found")

// Repository is read-only; orders are written by checkout.
type Repository interface {
	ListForUser(ctx context.Context, userID int) ([]Order, error)
	// GetForUser reports ErrNotFound for orders of other users.
	GetForUser(ctx context.Context, userID, orderID int) (Order, error)
	Lines(ctx context.Context, orderID int) ([]Line, error)
	// ProductNames returns names for the ids that still exist.
	ProductNames(ctx context.Context, productIDs []int) (map[int]string, error)
}

type InMemoryRepository struct {
	mu       sync.RWMutex
	orders   []Order
	lines    map[int][]Line
	products map[int]string
}

func NewInMemoryRepository(orders []Order, lines map[int][]Line, products map[int]string) *InMemoryRepository {
	if lines == nil {
		lines = map[int][]Line{}
	}
	if products == nil {
		products = map[int]string{}
	}
	return &InMemoryRepository{orders: orders, lines: lines, products: products}
}

func (r *InMemoryRepository) ListForUser(ctx context.Context, userID int) ([]Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []Order{}
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *InMemoryRepository) GetForUser(ctx context.Context, userID, orderID int) (Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, o := range r.orders {
		if o.ID == orderID && o.UserID == userID {
			return o, nil
		}
	}
	return Order{}, ErrNotFound
}

func (r *InMemoryRepository) Lines(ctx context.Context, orderID int) ([]Line, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Line(nil), r.lines[orderID]...), nil
}

func (r *InMemoryRepository) ProductNames(ctx context.Context, productIDs []int) (map[int]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[int]string, len(productIDs))
	for _, id := range productIDs {
		if name, ok := r.products[id]; ok {
			out[id] = name
		}
	}
	return out, nil
}

// RenameProduct and DropProduct simulate catalog changes after purchase.
func (r *InMemoryRepository) RenameProduct(id int, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[id] = name
}

func (r *InMemoryRepository) DropProduct(id int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.products, id)
}
