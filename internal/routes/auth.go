package routes

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/medikart/medikart/internal/auth"
	"github.com/medikart/medikart/internal/middleware"
	"github.com/medikart/medikart/internal/user"
)

// RegisterAuthRoutes wires the registration, verification and session endpoints.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler, authed fiber.Handler, cache *redis.Client) {
	loginLimiter := middleware.EmailRateLimit(cache, "login", 5)
	resendLimiter := middleware.EmailRateLimit(cache, "resend-otp", 3)

	r.Post("/register", h.Register)
	r.Post("/verify-otp", h.VerifyOTP)
	r.Post("/resend-otp", resendLimiter, h.ResendOTP)
	r.Post("/login", loginLimiter, h.Login)
	r.Post("/refresh-token", h.Refresh)
	r.Post("/logout", authed, h.Logout)

	// Role-gate smoke endpoint.
	r.Get("/admin-dashboard", authed,
		middleware.RequireRoles(user.RoleAdmin, user.RoleSuperAdmin),
		func(c *fiber.Ctx) error {
			return c.Status(http.StatusOK).JSON(fiber.Map{"message": "Welcome to the admin dashboard!"})
		})
}
