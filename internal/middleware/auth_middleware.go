package middleware

import (
	"context"
	"strings"

	"github.com/arzan03/DevCamper/internal/common"
	"github.com/arzan03/DevCamper/internal/models"
	"github.com/arzan03/DevCamper/internal/policy"
	"github.com/gofiber/fiber/v2"
)

type contextKey int

const principalKey contextKey = iota

// TokenCookie is the name of the cookie carrying the JWT.
const TokenCookie = "token"

// Authenticator resolves a bearer token to a user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// Protect validates the JWT from the Authorization header, falling back to
// the token cookie, and stores the user for later handlers.
func Protect(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			if cookie := c.Cookies(TokenCookie); cookie != "none" {
				token = cookie
			}
		}
		if token == "" {
			return common.ErrNotAuthorized
		}

		user, err := auth.Authenticate(c.UserContext(), token)
		if err != nil {
			return err
		}
		c.Locals(principalKey, user)
		return c.Next()
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// Authorize admits principals whose role is one of roles. It must run
// after Protect.
func Authorize(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return common.ErrNotAuthorized
		}
		if !policy.HasRole(user.Role, roles...) {
			return common.Forbidden("User role %s is not authorized to access this route", user.Role)
		}
		return c.Next()
	}
}

// CurrentUser returns the principal stored by Protect, or nil.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(principalKey).(*models.User)
	return user
}
