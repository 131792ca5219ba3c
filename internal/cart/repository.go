package cart

import (
	"context"
	"sort"
	"sync"

	"github.com/wichananm65/storefront-api/internal/product"
)

// Repository mutations check stock and apply the change in one atomic step,
// so concurrent requests on the same line never overwrite each other.
type Repository interface {
	Get(ctx context.Context, userID, productID int) (Line, error)
	List(ctx context.Context, userID int) ([]Line, error)
	// Add increases the (user, product) line by qty, creating it when
	// absent. ErrInsufficientStock when the result would exceed stock.
	Add(ctx context.Context, userID, productID, qty int) (Line, error)
	// Set replaces the quantity of an existing line.
	Set(ctx context.Context, userID, productID, qty int) (Line, error)
	// Adjust moves an existing line by delta. Only increases are bounded by
	// stock; the result must stay at least 1.
	Adjust(ctx context.Context, userID, productID, delta int) (Line, error)
	Delete(ctx context.Context, userID, productID int) error
}

// ProductReader is the slice of the catalog the cart needs.
type ProductReader interface {
	GetByID(ctx context.Context, id int) (product.Product, error)
}

type key struct {
	userID, productID int
}

// InMemoryRepository keeps lines in a map and reads names and prices from
// products when listing.
type InMemoryRepository struct {
	mu       sync.RWMutex
	lines    map[key]Line
	nextID   int
	products ProductReader
}

func NewInMemoryRepository(products ProductReader) *InMemoryRepository {
	return &InMemoryRepository{lines: map[key]Line{}, nextID: 1, products: products}
}

func (r *InMemoryRepository) Get(ctx context.Context, userID, productID int) (Line, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.lines[key{userID, productID}]
	if !ok {
		return Line{}, ErrLineNotFound
	}
	return l, nil
}

func (r *InMemoryRepository) List(ctx context.Context, userID int) ([]Line, error) {
	r.mu.RLock()
	out := []Line{}
	for k, l := range r.lines {
		if k.userID == userID {
			out = append(out, l)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	for i := range out {
		if p, err := r.products.GetByID(ctx, out[i].ProductID); err == nil {
			out[i].ProductName = p.Name
			out[i].Price = p.Price
		}
	}
	return out, nil
}

func (r *InMemoryRepository) stock(ctx context.Context, productID int) (int, error) {
	p, err := r.products.GetByID(ctx, productID)
	if err != nil {
		return 0, err
	}
	return p.Stock, nil
}

func (r *InMemoryRepository) Add(ctx context.Context, userID, productID, qty int) (Line, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stock, err := r.stock(ctx, productID)
	if err != nil {
		return Line{}, err
	}
	k := key{userID, productID}
	l, ok := r.lines[k]
	if !ok {
		l = Line{ID: r.nextID, UserID: userID, ProductID: productID}
	}
	if l.Quantity+qty > stock {
		return Line{}, ErrInsufficientStock
	}
	if !ok {
		r.nextID++
	}
	l.Quantity += qty
	r.lines[k] = l
	return l, nil
}

func (r *InMemoryRepository) Set(ctx context.Context, userID, productID, qty int) (Line, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := key{userID, productID}
	l, ok := r.lines[k]
	if !ok {
		return Line{}, ErrLineNotFound
	}
	stock, err := r.stock(ctx, productID)
	if err != nil {
		return Line{}, err
	}
	if qty > stock {
		return Line{}, ErrInsufficientStock
	}
	l.Quantity = qty
	r.lines[k] = l
	return l, nil
}

func (r *InMemoryRepository) Adjust(ctx context.Context, userID, productID, delta int) (Line, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := key{userID, productID}
	l, ok := r.lines[k]
	if !ok {
		return Line{}, ErrLineNotFound
	}
	next := l.Quantity + delta
	if next < 1 {
		return Line{}, ErrQuantityTooLow
	}
	if delta > 0 {
		stock, err := r.stock(ctx, productID)
		if err != nil {
			return Line{}, err
		}
		if next > stock {
			return Line{}, ErrInsufficientStock
		}
	}
	l.Quantity = next
	r.lines[k] = l
	return l, nil
}

func (r *InMemoryRepository) Delete(ctx context.Context, userID, productID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := key{userID, productID}
	if _, ok := r.lines[k]; !ok {
		return ErrLineNotFound
	}
	delete(r.lines, k)
	return nil
}
