package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/arzan03/DevCamper/internal/common"
	"github.com/arzan03/DevCamper/internal/middleware"
	"github.com/arzan03/DevCamper/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	auth         *services.AuthService
	cookieTTL    time.Duration
	secureCookie bool
}

func NewAuthHandler(auth *services.AuthService, cookieTTL time.Duration, secureCookie bool) *AuthHandler {
	return &AuthHandler{auth: auth, cookieTTL: cookieTTL, secureCookie: secureCookie}
}

// sendToken writes the token in the body and as an httpOnly cookie.
func (h *AuthHandler) sendToken(c *fiber.Ctx, status int, token string) error {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Expires:  time.Now().Add(h.cookieTTL),
		HTTPOnly: true,
		Secure:   h.secureCookie,
	})
	return c.Status(status).JSON(common.Token(token))
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req services.RegisterRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	token, err := h.auth.RegisterUser(c.UserContext(), req)
	if err != nil {
		return err
	}
	return h.sendToken(c, http.StatusCreated, token)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req services.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	token, err := h.auth.LoginUser(c.UserContext(), req)
	if err != nil {
		return err
	}
	return h.sendToken(c, http.StatusOK, token)
}

// Logout overwrites the token cookie with a short-lived placeholder.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "none",
		Expires:  time.Now().Add(10 * time.Second),
		HTTPOnly: true,
		Secure:   h.secureCookie,
	})
	return c.JSON(common.Data(common.Empty))
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	return c.JSON(common.Data(middleware.CurrentUser(c)))
}

func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := parseBody(c, &req); err != nil {
		return err
	}

	resetURL := func(token string) string {
		return fmt.Sprintf("%s://%s/api/v1/auth/resetpassword/%s", c.Protocol(), c.Hostname(), token)
	}
	if err := h.auth.ForgotPassword(c.UserContext(), req.Email, resetURL); err != nil {
		return err
	}
	return c.JSON(common.Data("Email sent"))
}

func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req services.ResetPasswordRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	token, err := h.auth.ResetPassword(c.UserContext(), c.Params("resettoken"), req)
	if err != nil {
		return err
	}
	return h.sendToken(c, http.StatusOK, token)
}

func (h *AuthHandler) UpdateDetails(c *fiber.Ctx) error {
	var req services.UpdateDetailsRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := h.auth.UpdateDetails(c.UserContext(), middleware.CurrentUser(c), req)
	if err != nil {
		return err
	}
	return c.JSON(common.Data(user))
}

func (h *AuthHandler) UpdatePassword(c *fiber.Ctx) error {
	var req services.UpdatePasswordRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	token, err := h.auth.UpdatePassword(c.UserContext(), middleware.CurrentUser(c), req)
	if err != nil {
		return err
	}
	return h.sendToken(c, http.StatusOK, token)
}
