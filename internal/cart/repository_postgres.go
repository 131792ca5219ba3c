package cart

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	getLineQuery = `
		SELECT id, user_id, product_id, quantity
		FROM cart
		WHERE user_id = $1 AND product_id = $2
	`
	listLinesQuery = `
		SELECT c.id, c.user_id, c.product_id, c.quantity, p.name, p.price
		FROM cart c
		JOIN products p ON p.id = c.product_id
		WHERE c.user_id = $1
		ORDER BY c.id
	`
	// the conflict branch re-checks stock against the line as committed by
	// any concurrent add
	addLineQuery = `
		INSERT INTO cart (user_id, product_id, quantity)
		SELECT $1::int, p.id, $3::int
		FROM products p
		WHERE p.id = $2 AND p.stock >= $3::int
		ON CONFLICT (user_id, product_id) DO UPDATE
		SET quantity = cart.quantity + EXCLUDED.quantity
		WHERE cart.quantity + EXCLUDED.quantity <= (SELECT stock FROM products WHERE id = EXCLUDED.product_id)
		RETURNING id, quantity
	`
	setLineQuery = `
		UPDATE cart
		SET quantity = $3::int
		WHERE user_id = $1 AND product_id = $2
			AND $3::int <= (SELECT stock FROM products WHERE id = $2)
		RETURNING id, quantity
	`
	adjustLineQuery = `
		UPDATE cart
		SET quantity = quantity + $3::int
		WHERE user_id = $1 AND product_id = $2
			AND quantity + $3::int >= 1
			AND ($3::int < 0 OR quantity + $3::int <= (SELECT stock FROM products WHERE id = $2))
		RETURNING id, quantity
	`
	deleteLineQuery = `DELETE FROM cart WHERE user_id = $1 AND product_id = $2`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, userID, productID int) (Line, error) {
	var l Line
	err := r.db.QueryRowContext(ctx, getLineQuery, userID, productID).Scan(&l.ID, &l.UserID, &l.ProductID, &l.Quantity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Line{}, ErrLineNotFound
		}
		return Line{}, errors.Wrap(err, "get cart line")
	}
	return l, nil
}

func (r *PostgresRepository) List(ctx context.Context, userID int) ([]Line, error) {
	rows, err := r.db.QueryContext(ctx, listLinesQuery, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list cart")
	}
	defer rows.Close()

	out := make([]Line, 0)
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.UserID, &l.ProductID, &l.Quantity, &l.ProductName, &l.Price); err != nil {
			return nil, errors.Wrap(err, "scan cart line")
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate cart")
	}
	return out, nil
}

func (r *PostgresRepository) Add(ctx context.Context, userID, productID, qty int) (Line, error) {
	l, err := r.write(ctx, addLineQuery, userID, productID, qty)
	if errors.Is(err, sql.ErrNoRows) {
		return Line{}, ErrInsufficientStock
	}
	return l, errors.Wrap(err, "add cart line")
}

func (r *PostgresRepository) Set(ctx context.Context, userID, productID, qty int) (Line, error) {
	l, err := r.write(ctx, setLineQuery, userID, productID, qty)
	if errors.Is(err, sql.ErrNoRows) {
		return Line{}, r.rejection(ctx, userID, productID, 0)
	}
	return l, errors.Wrap(err, "set cart line")
}

func (r *PostgresRepository) Adjust(ctx context.Context, userID, productID, delta int) (Line, error) {
	l, err := r.write(ctx, adjustLineQuery, userID, productID, delta)
	if errors.Is(err, sql.ErrNoRows) {
		return Line{}, r.rejection(ctx, userID, productID, delta)
	}
	return l, errors.Wrap(err, "adjust cart line")
}

func (r *PostgresRepository) write(ctx context.Context, query string, userID, productID, n int) (Line, error) {
	l := Line{UserID: userID, ProductID: productID}
	if err := r.db.QueryRowContext(ctx, query, userID, productID, n).Scan(&l.ID, &l.Quantity); err != nil {
		return Line{}, err
	}
	return l, nil
}

// rejection explains why a guarded update matched no row. delta is zero for
// absolute updates.
func (r *PostgresRepository) rejection(ctx context.Context, userID, productID, delta int) error {
	l, err := r.Get(ctx, userID, productID)
	if err != nil {
		return err
	}
	if delta != 0 && l.Quantity+delta < 1 {
		return ErrQuantityTooLow
	}
	return ErrInsufficientStock
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, productID int) error {
	res, err := r.db.ExecContext(ctx, deleteLineQuery, userID, productID)
	if err != nil {
		return errors.Wrap(err, "delete cart line")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "delete cart line")
	}
	if affected == 0 {
		return ErrLineNotFound
	}
	return nil
}
