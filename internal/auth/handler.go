package auth

import (
	"html/template"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/storefront-api/internal/apperror"
	"github.com/wichananm65/storefront-api/internal/user"
)

type Handler struct {
	service *Service
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token       string `json:"token" form:"token"`
	NewPassword string `json:"newPassword" form:"newPassword"`
}

var resetFormTemplate = template.Must(template.New("reset").Parse(`<!DOCTYPE html>
<html>
<head><title>Reset password</title></head>
<body>
<h2>Reset your password</h2>
<form action="/auth/reset-password" method="post">
<input type="hidden" name="token" value="{{.}}">
<label>New password <input type="password" name="newPassword" required></label>
<button type="submit">Reset password</button>
</form>
</body>
</html>
`))

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(r fiber.Router) {
	r.Post("/auth/signup", h.signup)
	r.Post("/auth/signin", h.signin)
	r.Post("/auth/refresh-token", h.refresh)
	r.Post("/auth/forgot-password", h.forgotPassword)
	r.Get("/auth/reset-password-form", h.resetPasswordForm)
	r.Post("/auth/reset-password", h.resetPassword)
}

// RegisterProtectedRoutes expects Protect and LoadUser to run first.
func (h *Handler) RegisterProtectedRoutes(r fiber.Router) {
	r.Get("/auth/me", h.me)
}

func (h *Handler) signup(c *fiber.Ctx) error {
	payload := new(signupRequest)
	if err := c.BodyParser(payload); err != nil {
		return apperror.Respond(c, apperror.Validation("malformed request body"))
	}

	if _, err := h.service.Register(c.UserContext(), payload.Name, payload.Email, payload.Password, user.Role(strings.ToLower(payload.Role))); err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(fiber.Map{"message": "user registered successfully"})
}

func (h *Handler) signin(c *fiber.Ctx) error {
	payload := new(signinRequest)
	if err := c.BodyParser(payload); err != nil {
		return apperror.Respond(c, apperror.Validation("malformed request body"))
	}
	if payload.Email == "" || payload.Password == "" {
		return apperror.Respond(c, apperror.Validation("email and password are required"))
	}

	tokens, err := h.service.Authenticate(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(tokens)
}

func (h *Handler) refresh(c *fiber.Ctx) error {
	payload := new(refreshRequest)
	if err := c.BodyParser(payload); err != nil {
		return apperror.Respond(c, apperror.Validation("malformed request body"))
	}

	tokens, err := h.service.Renew(c.UserContext(), payload.RefreshToken)
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(tokens)
}

func (h *Handler) forgotPassword(c *fiber.Ctx) error {
	payload := new(forgotPasswordRequest)
	if err := c.BodyParser(payload); err != nil {
		return apperror.Respond(c, apperror.Validation("malformed request body"))
	}

	if err := h.service.RequestReset(c.UserContext(), payload.Email); err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(fiber.Map{"message": "if the email is registered, a reset link has been sent"})
}

func (h *Handler) resetPasswordForm(c *fiber.Ctx) error {
	token := c.Query("token")
	if token == "" {
		return apperror.Respond(c, ErrInvalidResetToken)
	}

	var b strings.Builder
	if err := resetFormTemplate.Execute(&b, token); err != nil {
		return apperror.Respond(c, err)
	}
	c.Type("html", "utf-8")
	return c.SendString(b.String())
}

// resetPassword accepts JSON and the urlencoded post from the reset form.
func (h *Handler) resetPassword(c *fiber.Ctx) error {
	payload := new(resetPasswordRequest)
	if err := c.BodyParser(payload); err != nil {
		return apperror.Respond(c, apperror.Validation("malformed request body"))
	}

	if err := h.service.CompleteReset(c.UserContext(), payload.Token, payload.NewPassword); err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(fiber.Map{"message": "password has been reset"})
}

func (h *Handler) me(c *fiber.Ctx) error {
	u, ok := CurrentUser(c)
	if !ok {
		return apperror.Respond(c, ErrUnauthenticated)
	}
	return c.JSON(u)
}
