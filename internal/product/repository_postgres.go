package product

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const productColumns = `id, name, description, price, stock, category, image_url, created_by, created_at, updated_at`

const (
	getProductByIDQuery = `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = $1
	`
	searchProductsQuery = `
		SELECT ` + productColumns + `
		FROM products
		WHERE name ILIKE $1 OR description ILIKE $1 OR category ILIKE $1
		ORDER BY id
	`
	listByOwnerQuery = `
		SELECT ` + productColumns + `
		FROM products
		WHERE created_by = $1
		ORDER BY id
	`
	insertProductQuery = `
		INSERT INTO products (name, description, price, stock, category, image_url, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	updateProductQuery = `
		UPDATE products
		SET name = $1,
			description = $2,
			price = $3,
			stock = $4,
			category = $5,
			image_url = $6,
			updated_at = NOW()
		WHERE id = $7 AND created_by = $8
		RETURNING created_at, updated_at
	`
	deleteProductQuery = `DELETE FROM products WHERE id = $1 AND created_by = $2`
)

// sort columns are never taken from the request verbatim
var sortColumns = map[string]string{
	SortByID:    "id",
	SortByName:  "name",
	SortByPrice: "price",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int) (Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, getProductByIDQuery, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, errors.Wrap(err, "get product")
	}
	return p, nil
}

func (r *PostgresRepository) List(ctx context.Context, f Filter) ([]Product, error) {
	var (
		where []string
		args  []any
	)
	if f.Category != "" {
		args = append(args, f.Category)
		where = append(where, "category = $"+strconv.Itoa(len(args)))
	}
	if f.MinPrice != nil {
		args = append(args, *f.MinPrice)
		where = append(where, "price >= $"+strconv.Itoa(len(args)))
	}
	if f.MaxPrice != nil {
		args = append(args, *f.MaxPrice)
		where = append(where, "price <= $"+strconv.Itoa(len(args)))
	}

	var b strings.Builder
	b.WriteString("SELECT " + productColumns + " FROM products")
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	col, ok := sortColumns[f.SortBy]
	if !ok {
		col = "id"
	}
	b.WriteString(" ORDER BY " + col + ", id")
	args = append(args, f.PageSize, f.offset())
	b.WriteString(" LIMIT $" + strconv.Itoa(len(args)-1) + " OFFSET $" + strconv.Itoa(len(args)))

	rows, err := r.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	return collect(rows)
}

func (r *PostgresRepository) Search(ctx context.Context, keyword string) ([]Product, error) {
	rows, err := r.db.QueryContext(ctx, searchProductsQuery, "%"+likeEscaper.Replace(keyword)+"%")
	if err != nil {
		return nil, errors.Wrap(err, "search products")
	}
	return collect(rows)
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID int) ([]Product, error) {
	rows, err := r.db.QueryContext(ctx, listByOwnerQuery, ownerID)
	if err != nil {
		return nil, errors.Wrap(err, "list products by owner")
	}
	return collect(rows)
}

func (r *PostgresRepository) Create(ctx context.Context, p Product) (Product, error) {
	err := r.db.QueryRowContext(ctx, insertProductQuery,
		p.Name, p.Description, p.Price, p.Stock, p.Category, p.ImageURL, p.OwnerID,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Product{}, errors.Wrap(err, "insert product")
	}
	return p, nil
}

func (r *PostgresRepository) Update(ctx context.Context, p Product) (Product, error) {
	err := r.db.QueryRowContext(ctx, updateProductQuery,
		p.Name, p.Description, p.Price, p.Stock, p.Category, p.ImageURL, p.ID, p.OwnerID,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, errors.Wrap(err, "update product")
	}
	return p, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id, ownerID int) error {
	res, err := r.db.ExecContext(ctx, deleteProductQuery, id, ownerID)
	if err != nil {
		return errors.Wrap(err, "delete product")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "delete product")
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func collect(rows *sql.Rows) ([]Product, error) {
	defer rows.Close()

	out := make([]Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan product")
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate products")
	}
	return out, nil
}

func scanProduct(scanner rowScanner) (Product, error) {
	var p Product
	err := scanner.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.Category, &p.ImageURL, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}
