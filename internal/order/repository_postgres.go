package order

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
	"github.com/pkg/errors"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	listOrdersQuery = `
		SELECT id, user_id, total_amount, status, created_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`
	getOrderQuery = `
		SELECT id, user_id, total_amount, status, created_at
		FROM orders
		WHERE id = $1 AND user_id = $2
	`
	orderLinesQuery = `
		SELECT product_id, quantity, price_at_purchase
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`
	productNamesQuery = `
		SELECT id, name
		FROM products
		WHERE id = ANY($1::int[])
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListForUser(ctx context.Context, userID int) ([]Order, error) {
	rows, err := r.db.QueryContext(ctx, listOrdersQuery, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	defer rows.Close()

	out := make([]Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan order")
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate orders")
	}
	return out, nil
}

func (r *PostgresRepository) GetForUser(ctx context.Context, userID, orderID int) (Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, getOrderQuery, orderID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Order{}, ErrNotFound
		}
		return Order{}, errors.Wrap(err, "get order")
	}
	return o, nil
}

func (r *PostgresRepository) Lines(ctx context.Context, orderID int) ([]Line, error) {
	rows, err := r.db.QueryContext(ctx, orderLinesQuery, orderID)
	if err != nil {
		return nil, errors.Wrap(err, "list order lines")
	}
	defer rows.Close()

	out := make([]Line, 0)
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ProductID, &l.Quantity, &l.PriceAtPurchase); err != nil {
			return nil, errors.Wrap(err, "scan order line")
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate order lines")
	}
	return out, nil
}

func (r *PostgresRepository) ProductNames(ctx context.Context, productIDs []int) (map[int]string, error) {
	out := make(map[int]string, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}

	ids := make([]int64, len(productIDs))
	for i, id := range productIDs {
		ids[i] = int64(id)
	}
	rows, err := r.db.QueryContext(ctx, productNamesQuery, pq.Array(ids))
	if err != nil {
		return nil, errors.Wrap(err, "product names")
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id   int
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, errors.Wrap(err, "scan product name")
		}
		out[id] = name
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate product names")
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(scanner rowScanner) (Order, error) {
	var (
		o      Order
		status string
	)
	if err := scanner.Scan(&o.ID, &o.UserID, &o.TotalAmount, &status, &o.CreatedAt); err != nil {
		return Order{}, err
	}
	o.Status = Status(status)
	return o, nil
}
