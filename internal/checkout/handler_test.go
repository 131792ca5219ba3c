package checkout

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/storefront-api/internal/auth"
	"github.com/wichananm65/storefront-api/internal/testutil"
	"github.com/wichananm65/storefront-api/internal/user"
)

func TestCheckoutRoute(t *testing.T) {
	store := NewInMemoryStore()
	store.PutProduct(1, "Leash", dec("12.50"), 5)
	store.PutCartLine(7, 1, 2)

	app := testutil.NewApp()
	grp := app.Group("", testutil.RequireUser, auth.RequireRoleMiddleware(user.RoleUser))
	NewHandler(NewService(store)).RegisterProtectedRoutes(grp)

	post := func(userID string) (int, map[string]any) {
		req := httptest.NewRequest("POST", "/checkout", nil)
		if userID != "" {
			req.Header.Set("X-User-ID", userID)
		}
		res, err := app.Test(req)
		if err != nil {
			t.Fatalf("checkout request failed: %v", err)
		}
		out := map[string]any{}
		_ = json.NewDecoder(res.Body).Decode(&out)
		return res.StatusCode, out
	}

	if code, _ := post(""); code != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 without user, got %d", code)
	}

	code, body := post("7")
	if code != fiber.StatusOK || body["status"] != "paid" || body["totalAmount"] != "25" {
		t.Fatalf("unexpected checkout response %d %v", code, body)
	}

	code, body = post("7")
	if code != fiber.StatusBadRequest || body["code"] != "EmptyCart" {
		t.Fatalf("expected 400 EmptyCart, got %d %v", code, body)
	}
}
