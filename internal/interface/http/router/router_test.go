package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/wichananm65/storefront-api/internal/auth"
	"github.com/wichananm65/storefront-api/internal/cart"
	"github.com/wichananm65/storefront-api/internal/category"
	"github.com/wichananm65/storefront-api/internal/checkout"
	"github.com/wichananm65/storefront-api/internal/logging"
	"github.com/wichananm65/storefront-api/internal/mail"
	"github.com/wichananm65/storefront-api/internal/order"
	"github.com/wichananm65/storefront-api/internal/product"
	"github.com/wichananm65/storefront-api/internal/user"
)

type fakeDB struct{ err error }

func (f fakeDB) PingContext(ctx context.Context) error { return f.err }

func newTestApp(t *testing.T, db Pinger) *fiber.App {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("Admin#123"), bcrypt.MinCost)
	require.NoError(t, err)

	log := logging.Discard()
	users := user.NewInMemoryRepository([]user.User{
		{ID: 1, Name: "Admin", Email: "admin@example.com", PasswordHash: string(hash), Role: user.RoleAdmin},
	})
	issuer := auth.NewIssuer("access-secret", "refresh-secret", 15*time.Minute, time.Hour)
	authSvc := auth.NewService(user.NewService(users, nil), issuer, auth.NewInMemoryResetRepository(), mail.NewLogMailer(log), auth.Options{
		ResetTTL:      time.Hour,
		PublicBaseURL: "http://shop.test",
		Logger:        log,
	})

	productRepo := product.NewInMemoryRepository(nil)
	products := product.NewService(productRepo)
	store := checkout.NewInMemoryStore()
	orders := order.NewInMemoryRepository(nil, nil, nil)

	return New(Handlers{
		Auth:       auth.NewHandler(authSvc),
		Products:   product.NewHandler(products),
		Categories: category.NewHandler(category.NewService(category.NewInMemoryRepository(productRepo))),
		Cart:       cart.NewHandler(cart.NewService(cart.NewInMemoryRepository(products), products, log)),
		Checkout:   checkout.NewHandler(checkout.NewService(store)),
		Orders:     order.NewHandler(order.NewService(orders)),
	}, Options{
		Logger:       log,
		CORSOrigins:  "*",
		AccessSecret: issuer.AccessSecret(),
		AuthService:  authSvc,
		DB:           db,
	})
}

func call(t *testing.T, app *fiber.App, method, path, token string, body any) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := app.Test(req, -1)
	require.NoError(t, err)
	out, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, out
}

func signin(t *testing.T, app *fiber.App, email, password string) string {
	t.Helper()
	status, body := call(t, app, "POST", "/auth/signin", "", map[string]string{"email": email, "password": password})
	require.Equal(t, fiber.StatusOK, status, string(body))
	var tokens auth.Tokens
	require.NoError(t, json.Unmarshal(body, &tokens))
	return tokens.AccessToken
}

func TestHealth(t *testing.T) {
	status, _ := call(t, newTestApp(t, fakeDB{}), "GET", "/health", "", nil)
	assert.Equal(t, fiber.StatusOK, status)

	status, _ = call(t, newTestApp(t, fakeDB{err: errors.New("connection refused")}), "GET", "/health", "", nil)
	assert.Equal(t, fiber.StatusServiceUnavailable, status)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app := newTestApp(t, fakeDB{})

	for _, path := range []string{"/auth/me", "/cart", "/orders", "/admin/products"} {
		status, _ := call(t, app, "GET", path, "", nil)
		assert.Equal(t, fiber.StatusUnauthorized, status, path)
	}
	status, _ := call(t, app, "POST", "/checkout", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestPublicRoutesStayOpen(t *testing.T) {
	app := newTestApp(t, fakeDB{})

	status, _ := call(t, app, "GET", "/products", "", nil)
	assert.Equal(t, fiber.StatusOK, status)

	status, _ = call(t, app, "GET", "/categories", "", nil)
	assert.Equal(t, fiber.StatusOK, status)

	status, _ = call(t, app, "GET", "/no-such-route", "", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestRoleGates(t *testing.T) {
	app := newTestApp(t, fakeDB{})

	status, body := call(t, app, "POST", "/auth/signup", "", map[string]string{
		"name": "Jane", "email": "jane@example.com", "password": "Secret#123",
	})
	require.Equal(t, fiber.StatusOK, status, string(body))

	userToken := signin(t, app, "jane@example.com", "Secret#123")
	adminToken := signin(t, app, "admin@example.com", "Admin#123")

	status, _ = call(t, app, "GET", "/admin/products", userToken, nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _ = call(t, app, "GET", "/cart", adminToken, nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _ = call(t, app, "GET", "/auth/me", userToken, nil)
	assert.Equal(t, fiber.StatusOK, status)
	status, _ = call(t, app, "GET", "/auth/me", adminToken, nil)
	assert.Equal(t, fiber.StatusOK, status)
}

func TestAdminCreatesProductThenUserFillsCart(t *testing.T) {
	app := newTestApp(t, fakeDB{})

	_, _ = call(t, app, "POST", "/auth/signup", "", map[string]string{
		"name": "Jane", "email": "jane@example.com", "password": "Secret#123",
	})
	userToken := signin(t, app, "jane@example.com", "Secret#123")
	adminToken := signin(t, app, "admin@example.com", "Admin#123")

	status, body := call(t, app, "POST", "/admin/products", adminToken, map[string]any{
		"name": "Kibble", "price": decimal.RequireFromString("12.50"), "stock": 3, "category": "food",
	})
	require.Equal(t, fiber.StatusCreated, status, string(body))
	var created product.Product
	require.NoError(t, json.Unmarshal(body, &created))

	status, body = call(t, app, "POST", "/cart", userToken, map[string]int{"productId": created.ID, "quantity": 2})
	require.Equal(t, fiber.StatusOK, status, string(body))

	status, body = call(t, app, "GET", "/cart", userToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(body), "Kibble")

	status, _ = call(t, app, "GET", "/orders", userToken, nil)
	assert.Equal(t, fiber.StatusOK, status)
}
