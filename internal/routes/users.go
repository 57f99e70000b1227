package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/medikart/medikart/internal/user"
)

// RegisterUserRoutes wires the admin user-management endpoints.
func RegisterUserRoutes(r fiber.Router, h *user.Handler, authed, adminOnly fiber.Handler) {
	group := r.Group("/users", authed, adminOnly)
	group.Get("/", h.List)
	group.Get("/:id", h.Get)
	group.Put("/:id", h.Update)
	group.Delete("/:id", h.Delete)
}
