package checkout

import (
	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/storefront-api/internal/apperror"
	"github.com/wichananm65/storefront-api/internal/auth"
	"github.com/wichananm65/storefront-api/internal/logging"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterProtectedRoutes expects the router to be gated to the user role.
func (h *Handler) RegisterProtectedRoutes(r fiber.Router) {
	r.Post("/checkout", h.checkout)
}

func (h *Handler) checkout(c *fiber.Ctx) error {
	u, _ := auth.CurrentUser(c)
	receipt, err := h.service.Commit(c.UserContext(), u.ID)
	if err != nil {
		return apperror.Respond(c, err)
	}

	logging.FromCtx(c).WithField("order_id", receipt.OrderID).Info("order placed")
	return c.JSON(receipt)
}
