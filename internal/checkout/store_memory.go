package checkout

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wichananm65/storefront-api/internal/order"
)

type memProduct struct {
	name  string
	price decimal.Decimal
	stock int
}

type memState struct {
	products map[int]memProduct
	carts    map[int]map[int]int
	orders   []order.Order
	lines    map[int][]order.Line
}

func (s memState) clone() memState {
	c := memState{
		products: make(map[int]memProduct, len(s.products)),
		carts:    make(map[int]map[int]int, len(s.carts)),
		orders:   append([]order.Order(nil), s.orders...),
		lines:    make(map[int][]order.Line, len(s.lines)),
	}
	for id, p := range s.products {
		c.products[id] = p
	}
	for uid, cart := range s.carts {
		cc := make(map[int]int, len(cart))
		for pid, q := range cart {
			cc[pid] = q
		}
		c.carts[uid] = cc
	}
	for oid, ls := range s.lines {
		c.lines[oid] = append([]order.Line(nil), ls...)
	}
	return c
}

// InMemoryStore runs transactions one at a time against a snapshot and
// restores it when the transaction fails.
type InMemoryStore struct {
	mu    sync.Mutex
	state memState

	// FailOn makes the named Tx step fail, to exercise rollback.
	FailOn string
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{state: memState{
		products: map[int]memProduct{},
		carts:    map[int]map[int]int{},
		lines:    map[int][]order.Line{},
	}}
}

func (s *InMemoryStore) PutProduct(id int, name string, price decimal.Decimal, stock int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.products[id] = memProduct{name: name, price: price, stock: stock}
}

func (s *InMemoryStore) PutCartLine(userID, productID, qty int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.carts[userID] == nil {
		s.state.carts[userID] = map[int]int{}
	}
	s.state.carts[userID][productID] = qty
}

func (s *InMemoryStore) Stock(productID int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.products[productID].stock
}

func (s *InMemoryStore) CartSize(userID int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.carts[userID])
}

func (s *InMemoryStore) Orders() []order.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]order.Order(nil), s.state.orders...)
}

func (s *InMemoryStore) OrderLines(orderID int) []order.Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]order.Line(nil), s.state.lines[orderID]...)
}

func (s *InMemoryStore) WithinTx(ctx context.Context, fn func(Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.state.clone()
	if err := fn(&memTx{store: s}); err != nil {
		s.state = snapshot
		return err
	}
	return nil
}

type memTx struct {
	store *InMemoryStore
}

type stepError string

func (e stepError) Error() string { return "injected failure in " + string(e) }

func (t *memTx) fail(step string) error {
	if t.store.FailOn == step {
		return stepError(step)
	}
	return nil
}

func (t *memTx) LockCart(ctx context.Context, userID int) ([]CartLine, error) {
	if err := t.fail("LockCart"); err != nil {
		return nil, err
	}
	st := &t.store.state
	var lines []CartLine
	for pid, qty := range st.carts[userID] {
		p, ok := st.products[pid]
		if !ok {
			continue
		}
		lines = append(lines, CartLine{ProductID: pid, Name: p.name, Quantity: qty, Price: p.price, Stock: p.stock})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })
	return lines, nil
}

func (t *memTx) InsertOrder(ctx context.Context, userID int, total decimal.Decimal, status order.Status) (int, error) {
	if err := t.fail("InsertOrder"); err != nil {
		return 0, err
	}
	st := &t.store.state
	id := len(st.orders) + 1
	st.orders = append(st.orders, order.Order{ID: id, UserID: userID, TotalAmount: total, Status: status, CreatedAt: time.Now().UTC()})
	return id, nil
}

func (t *memTx) InsertOrderLines(ctx context.Context, orderID int, lines []CartLine) error {
	if err := t.fail("InsertOrderLines"); err != nil {
		return err
	}
	st := &t.store.state
	for _, l := range lines {
		st.lines[orderID] = append(st.lines[orderID], order.Line{ProductID: l.ProductID, Quantity: l.Quantity, PriceAtPurchase: l.Price})
	}
	return nil
}

func (t *memTx) DecrementStock(ctx context.Context, productID, qty int) (bool, error) {
	if err := t.fail("DecrementStock"); err != nil {
		return false, err
	}
	st := &t.store.state
	p, ok := st.products[productID]
	if !ok || p.stock < qty {
		return false, nil
	}
	p.stock -= qty
	st.products[productID] = p
	return true, nil
}

func (t *memTx) ClearCart(ctx context.Context, userID int) error {
	if err := t.fail("ClearCart"); err != nil {
		return err
	}
	delete(t.store.state.carts, userID)
	return nil
}
