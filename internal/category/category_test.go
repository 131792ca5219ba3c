package category

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wichananm65/storefront-api/internal/apperror"
	"github.com/wichananm65/storefront-api/internal/product"
)

func seededApp() *fiber.App {
	price := decimal.RequireFromString("9.99")
	products := product.NewInMemoryRepository([]product.Product{
		{ID: 1, Name: "Kibble", Price: price, Stock: 0, Category: "food", OwnerID: 1},
		{ID: 2, Name: "Treats", Price: price, Stock: 12, Category: "food", OwnerID: 1},
		{ID: 3, Name: "Leash", Price: price, Category: "accessories", OwnerID: 1},
		{ID: 4, Name: "Mystery box", Price: price, OwnerID: 1},
	})
	app := fiber.New(fiber.Config{ErrorHandler: apperror.FiberErrorHandler})
	NewHandler(NewService(NewInMemoryRepository(products))).RegisterPublicRoutes(app)
	return app
}

func TestGetCategories_CountsOutOfStockProducts(t *testing.T) {
	res, err := seededApp().Test(httptest.NewRequest("GET", "/categories", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, res.StatusCode)

	var got []Category
	require.NoError(t, json.NewDecoder(res.Body).Decode(&got))
	assert.Equal(t, []Category{
		{Name: "accessories", ProductCount: 1},
		{Name: "food", ProductCount: 2},
	}, got)
}

func TestGetCategories_Limit(t *testing.T) {
	app := seededApp()

	res, err := app.Test(httptest.NewRequest("GET", "/categories?limit=1", nil))
	require.NoError(t, err)
	var got []Category
	require.NoError(t, json.NewDecoder(res.Body).Decode(&got))
	assert.Len(t, got, 1)

	for _, q := range []string{"abc", "-1", "501"} {
		res, err := app.Test(httptest.NewRequest("GET", "/categories?limit="+q, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, res.StatusCode, q)
	}
}

func TestPostgresRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT category, COUNT").
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows([]string{"category", "count"}).
			AddRow("accessories", 1).
			AddRow("food", 2))

	got, err := NewPostgresRepository(db).List(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, []Category{{"accessories", 1}, {"food", 2}}, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_ListFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT category, COUNT").WillReturnError(errors.New("boom"))

	_, err = NewPostgresRepository(db).List(context.Background(), 10)
	require.Error(t, err)
}
