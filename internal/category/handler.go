package category

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/storefront-api/internal/apperror"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterPublicRoutes(r fiber.Router) {
	r.Get("/categories", h.getCategories)
}

func (h *Handler) getCategories(c *fiber.Ctx) error {
	limit := 0
	if l := c.Query("limit"); l != "" {
		v, err := strconv.Atoi(l)
		if err != nil {
			return apperror.Respond(c, apperror.Validation("limit must be a number"))
		}
		limit = v
	}

	items, err := h.service.List(c.UserContext(), limit)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(items)
}
