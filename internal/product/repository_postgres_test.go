package product

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pkg/errors"
)

var productRowColumns = []string{"id", "name", "description", "price", "stock", "category", "image_url", "created_by", "created_at", "updated_at"}

func TestPostgresList_BuildsFilteredQuery(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	lo := price("5")
	now := time.Now()
	rows := sqlmock.NewRows(productRowColumns).
		AddRow(1, "Leash", "Nylon", "12.50", 5, "dogs", "", 10, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE category = $1 AND price >= $2 ORDER BY price, id LIMIT $3 OFFSET $4")).
		WithArgs("dogs", lo, 10, 10).
		WillReturnRows(rows)

	products, err := repo.List(context.Background(), Filter{Category: "dogs", MinPrice: &lo, SortBy: SortByPrice, Page: 2, PageSize: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(products) != 1 || !products[0].Price.Equal(price("12.5")) {
		t.Fatalf("unexpected products %+v", products)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresSearch_EscapesWildcards(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectQuery("ILIKE").WithArgs(`%50\%%`).WillReturnRows(sqlmock.NewRows(productRowColumns))

	products, err := repo.Search(context.Background(), "50%")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(products) != 0 {
		t.Fatalf("expected no products, got %d", len(products))
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresUpdateAndDelete_NotOwner(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectQuery("UPDATE products").WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}))
	mock.ExpectExec("DELETE FROM products").WithArgs(3, 10).WillReturnResult(sqlmock.NewResult(0, 0))

	if _, err := repo.Update(context.Background(), Product{ID: 3, OwnerID: 10, Name: "x", Price: price("1")}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on update, got %v", err)
	}
	if err := repo.Delete(context.Background(), 3, 10); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on delete, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
