package cart

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/storefront-api/internal/apperror"
	"github.com/wichananm65/storefront-api/internal/auth"
)

// Handler delegates cart operations to the cart service.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

// RegisterProtectedRoutes expects the router to be gated to the user role.
func (h *Handler) RegisterProtectedRoutes(r fiber.Router) {
	r.Get("/cart", h.viewCart)
	r.Post("/cart", h.addToCart)
	r.Patch("/cart/:productId", h.updateQuantity)
	r.Delete("/cart/:productId", h.removeFromCart)
}

type addRequest struct {
	ProductID int `json:"productId"`
	Quantity  int `json:"quantity"`
}

// exactly one of Quantity and Delta must be set
type patchRequest struct {
	Quantity *int `json:"quantity"`
	Delta    *int `json:"delta"`
}

func (h *Handler) addToCart(c *fiber.Ctx) error {
	payload := new(addRequest)
	if err := c.BodyParser(payload); err != nil {
		return apperror.Respond(c, apperror.Validation("malformed request body"))
	}
	if payload.ProductID <= 0 {
		return apperror.Respond(c, apperror.Validation("invalid productId"))
	}

	u, _ := auth.CurrentUser(c)
	line, err := h.service.AddItem(c.UserContext(), u.ID, payload.ProductID, payload.Quantity)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(line)
}

func (h *Handler) viewCart(c *fiber.Ctx) error {
	u, _ := auth.CurrentUser(c)
	lines, err := h.service.View(c.UserContext(), u.ID)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(lines)
}

func (h *Handler) updateQuantity(c *fiber.Ctx) error {
	productID, err := strconv.Atoi(c.Params("productId"))
	if err != nil || productID < 1 {
		return apperror.Respond(c, apperror.Validation("invalid product id"))
	}

	payload := new(patchRequest)
	if err := c.BodyParser(payload); err != nil {
		return apperror.Respond(c, apperror.Validation("malformed request body"))
	}
	if (payload.Quantity == nil) == (payload.Delta == nil) {
		return apperror.Respond(c, apperror.Validation("provide exactly one of quantity or delta"))
	}

	u, _ := auth.CurrentUser(c)
	var line Line
	if payload.Quantity != nil {
		line, err = h.service.SetQuantity(c.UserContext(), u.ID, productID, *payload.Quantity)
	} else {
		line, err = h.service.ChangeQuantity(c.UserContext(), u.ID, productID, *payload.Delta)
	}
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(fiber.Map{
		"message":     "cart item quantity updated",
		"productId":   productID,
		"newQuantity": line.Quantity,
	})
}

func (h *Handler) removeFromCart(c *fiber.Ctx) error {
	productID, err := strconv.Atoi(c.Params("productId"))
	if err != nil || productID < 1 {
		return apperror.Respond(c, apperror.Validation("invalid product id"))
	}

	u, _ := auth.CurrentUser(c)
	if err := h.service.Remove(c.UserContext(), u.ID, productID); err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(fiber.Map{"message": "item removed from cart"})
}
