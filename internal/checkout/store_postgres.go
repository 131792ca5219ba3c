package checkout

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/wichananm65/storefront-api/internal/database"
	"github.com/wichananm65/storefront-api/internal/order"
)

type PostgresStore struct {
	db *sql.DB
}

const (
	// locking both tables makes a second checkout of the same cart wait and
	// then see the lines as deleted
	lockCartQuery = `
		SELECT c.product_id, p.name, c.quantity, p.price, p.stock
		FROM cart c
		JOIN products p ON p.id = c.product_id
		WHERE c.user_id = $1
		ORDER BY p.id
		FOR UPDATE OF c, p
	`
	insertOrderQuery = `
		INSERT INTO orders (user_id, total_amount, status)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	insertOrderLinesQuery = `
		INSERT INTO order_items (order_id, product_id, quantity, price_at_purchase)
		SELECT $1, t.product_id, t.quantity, t.price
		FROM unnest($2::int[], $3::int[], $4::numeric[]) AS t(product_id, quantity, price)
	`
	decrementStockQuery = `
		UPDATE products
		SET stock = stock - $1,
			updated_at = NOW()
		WHERE id = $2 AND stock >= $1
	`
	clearCartQuery = `DELETE FROM cart WHERE user_id = $1`
)

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) WithinTx(ctx context.Context, fn func(Tx) error) error {
	return database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		return fn(&pgTx{tx: tx})
	})
}

type pgTx struct {
	tx *sql.Tx
}

func (t *pgTx) LockCart(ctx context.Context, userID int) ([]CartLine, error) {
	rows, err := t.tx.QueryContext(ctx, lockCartQuery, userID)
	if err != nil {
		return nil, errors.Wrap(err, "lock cart")
	}
	defer rows.Close()

	var lines []CartLine
	for rows.Next() {
		var l CartLine
		if err := rows.Scan(&l.ProductID, &l.Name, &l.Quantity, &l.Price, &l.Stock); err != nil {
			return nil, errors.Wrap(err, "scan cart line")
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate cart")
	}
	return lines, nil
}

func (t *pgTx) InsertOrder(ctx context.Context, userID int, total decimal.Decimal, status order.Status) (int, error) {
	var id int
	if err := t.tx.QueryRowContext(ctx, insertOrderQuery, userID, total, string(status)).Scan(&id); err != nil {
		return 0, errors.Wrap(err, "insert order")
	}
	return id, nil
}

func (t *pgTx) InsertOrderLines(ctx context.Context, orderID int, lines []CartLine) error {
	productIDs := make([]int64, len(lines))
	quantities := make([]int64, len(lines))
	prices := make([]string, len(lines))
	for i, l := range lines {
		productIDs[i] = int64(l.ProductID)
		quantities[i] = int64(l.Quantity)
		prices[i] = l.Price.StringFixed(2)
	}

	_, err := t.tx.ExecContext(ctx, insertOrderLinesQuery, orderID, pq.Array(productIDs), pq.Array(quantities), pq.Array(prices))
	if err != nil {
		return errors.Wrap(err, "insert order lines")
	}
	return nil
}

func (t *pgTx) DecrementStock(ctx context.Context, productID, qty int) (bool, error) {
	res, err := t.tx.ExecContext(ctx, decrementStockQuery, qty, productID)
	if err != nil {
		return false, errors.Wrap(err, "decrement stock")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "decrement stock")
	}
	return affected == 1, nil
}

func (t *pgTx) ClearCart(ctx context.Context, userID int) error {
	if _, err := t.tx.ExecContext(ctx, clearCartQuery, userID); err != nil {
		return errors.Wrap(err, "clear cart")
	}
	return nil
}
