package order

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/storefront-api/internal/apperror"
	"github.com/wichananm65/storefront-api/internal/auth"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

// RegisterProtectedRoutes expects the router to be gated to the user role.
func (h *Handler) RegisterProtectedRoutes(r fiber.Router) {
	r.Get("/orders", h.listOrders)
	r.Get("/orders/:id", h.getOrder)
}

func (h *Handler) listOrders(c *fiber.Ctx) error {
	u, _ := auth.CurrentUser(c)
	orders, err := h.service.ListForUser(c.UserContext(), u.ID)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(orders)
}

func (h *Handler) getOrder(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id < 1 {
		return apperror.Respond(c, apperror.Validation("invalid order id"))
	}

	u, _ := auth.CurrentUser(c)
	detail, err := h.service.GetDetail(c.UserContext(), u.ID, id)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(detail)
}
