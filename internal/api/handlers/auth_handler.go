package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	config "github.com/maheshrc27/linkfeed/configs"
	"github.com/maheshrc27/linkfeed/internal/service"
	"github.com/maheshrc27/linkfeed/internal/transfer"
)

type AuthHandler struct {
	s   service.AuthService
	cfg config.Config
}

func NewAuthHandler(cfg config.Config, service service.AuthService) *AuthHandler {
	return &AuthHandler{s: service, cfg: cfg}
}

func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var su transfer.Signup
	if err := c.BodyParser(&su); err != nil {
		return message(c, fiber.StatusBadRequest, "Invalid request body")
	}

	res, err := h.s.Signup(c.Context(), &su)
	if err != nil {
		return errorResponse(c, err)
	}

	h.setCookie(c, res.Token)
	return c.Status(fiber.StatusCreated).JSON(res)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var l transfer.Login
	if err := c.BodyParser(&l); err != nil {
		return message(c, fiber.StatusBadRequest, "Invalid request body")
	}

	res, err := h.s.Login(c.Context(), &l)
	if err != nil {
		return errorResponse(c, err)
	}

	h.setCookie(c, res.Token)
	return c.JSON(res)
}

func (h *AuthHandler) setCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.CookieName,
		Value:    token,
		HTTPOnly: true,
		Secure:   h.cfg.Env != "local",
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
		Expires:  time.Now().Add(service.TokenDuration),
	})
}
