package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "bloxmarket/internal/log"
	"bloxmarket/internal/services"
	"bloxmarket/internal/validate"
)

type AuthHandler struct {
	Auth *services.AuthService
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed body"})
	}
	email, ok := validate.Email(req.Email)
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "email"})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid email"})
	}

	sid := ensureSID(c)
	u, err := h.Auth.Login(sid, email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrBadCreds) {
			applog.Security(c, "login.fail", map[string]any{"email": email})
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid email or password"})
		}
		return respondErr(c, "login", err)
	}
	applog.Audit(c, "login.ok", map[string]any{"user_id": u.ID})
	return c.JSON(fiber.Map{
		"id": u.ID, "email": u.Email, "name": u.Name, "role": u.Role, "trustScore": u.TrustScore,
	})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if sid := c.Cookies("sid"); sid != "" {
		if err := h.Auth.Logout(sid); err != nil {
			return respondErr(c, "logout", err)
		}
	}
	applog.Audit(c, "logout.ok", nil)
	return c.JSON(fiber.Map{"ok": true})
}
