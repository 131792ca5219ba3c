package product

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/wichananm65/storefront-api/internal/apperror"
	"github.com/wichananm65/storefront-api/internal/auth"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(r fiber.Router) {
	r.Get("/products", h.getProducts)
	// registered before /products/:id so "search" is not read as an id
	r.Get("/products/search", h.searchProducts)
	r.Get("/products/:id", h.getProduct)
}

// RegisterAdminRoutes expects the router to be gated to the admin role.
func (h *Handler) RegisterAdminRoutes(r fiber.Router) {
	r.Get("/admin/products", h.getOwnProducts)
	r.Post("/admin/products", h.createProduct)
	r.Put("/admin/products/:id", h.updateProduct)
	r.Delete("/admin/products/:id", h.deleteProduct)
}

func (h *Handler) getProducts(c *fiber.Ctx) error {
	f, err := parseFilter(c)
	if err != nil {
		return apperror.Respond(c, err)
	}

	products, err := h.service.List(c.UserContext(), f)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(products)
}

func (h *Handler) searchProducts(c *fiber.Ctx) error {
	res, err := h.service.Search(c.UserContext(), c.Query("keyword"))
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(res)
}

func (h *Handler) getProduct(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id < 1 {
		return apperror.Respond(c, apperror.Validation("invalid product id"))
	}

	p, err := h.service.GetByID(c.UserContext(), id)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(p)
}

func (h *Handler) getOwnProducts(c *fiber.Ctx) error {
	u, _ := auth.CurrentUser(c)
	products, err := h.service.ListOwned(c.UserContext(), u.ID)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(products)
}

func (h *Handler) createProduct(c *fiber.Ctx) error {
	in := new(Input)
	if err := c.BodyParser(in); err != nil {
		return apperror.Respond(c, apperror.Validation("malformed request body"))
	}

	u, _ := auth.CurrentUser(c)
	created, err := h.service.Create(c.UserContext(), u.ID, *in)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) updateProduct(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return apperror.Respond(c, apperror.Validation("invalid product id"))
	}

	in := new(Input)
	if err := c.BodyParser(in); err != nil {
		return apperror.Respond(c, apperror.Validation("malformed request body"))
	}

	u, _ := auth.CurrentUser(c)
	updated, err := h.service.Update(c.UserContext(), u.ID, id, *in)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(updated)
}

func (h *Handler) deleteProduct(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return apperror.Respond(c, apperror.Validation("invalid product id"))
	}

	u, _ := auth.CurrentUser(c)
	if err := h.service.Delete(c.UserContext(), u.ID, id); err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(fiber.Map{"message": "product deleted"})
}

func parseFilter(c *fiber.Ctx) (Filter, error) {
	f := Filter{
		Category: c.Query("category"),
		SortBy:   c.Query("sortBy"),
	}

	var err error
	if f.Page, err = queryInt(c, "page"); err != nil {
		return Filter{}, err
	}
	if f.PageSize, err = queryInt(c, "pageSize"); err != nil {
		return Filter{}, err
	}
	if f.MinPrice, err = queryDecimal(c, "minPrice"); err != nil {
		return Filter{}, err
	}
	if f.MaxPrice, err = queryDecimal(c, "maxPrice"); err != nil {
		return Filter{}, err
	}
	return f, nil
}

func queryInt(c *fiber.Ctx, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, apperror.Validation(key + " must be a positive integer")
	}
	return v, nil
}

func queryDecimal(c *fiber.Ctx, key string) (*decimal.Decimal, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, apperror.Validation(key + " must be a number")
	}
	return &v, nil
}
