package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/medikart/medikart/internal/auth"
	"github.com/medikart/medikart/internal/user"
)

const (
	// LocalUserID and LocalRoles are the request-scoped keys the auth
	// middleware stores the verified identity under.
	LocalUserID = "user_id"
	LocalRoles  = "roles"
)

// Auth validates the access token from the session cookie (or an
// Authorization: Bearer header) and stashes the caller's identity in locals.
func Auth(tokens *auth.TokenIssuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(auth.AccessCookie)
		if token == "" {
			authz := c.Get(fiber.HeaderAuthorization)
			if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
				token = strings.TrimSpace(authz[len("Bearer "):])
			}
		}
		if token == "" {
			return fiber.NewError(http.StatusUnauthorized, "No token provided. Authorization denied.")
		}

		claims, err := tokens.Verify(token, auth.AccessToken)
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				return fiber.NewError(http.StatusUnauthorized, "Token expired")
			}
			return fiber.NewError(http.StatusUnauthorized, "Token is not valid")
		}

		c.Locals(LocalUserID, claims.Subject)
		c.Locals(LocalRoles, user.RolesFromStrings(claims.Roles))
		return c.Next()
	}
}

// RequireRoles rejects callers whose role set does not intersect the required
// set. Must run after Auth.
func RequireRoles(required ...user.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		held, _ := c.Locals(LocalRoles).([]user.Role)
		if !user.HasAnyRole(held, required...) {
			return fiber.NewError(http.StatusForbidden, "You do not have permission to perform this action")
		}
		return c.Next()
	}
}

// UserID extracts the authenticated caller's id from locals.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalUserID).(string)
	return id
}
