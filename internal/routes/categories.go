package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/medikart/medikart/internal/category"
)

// RegisterCategoryRoutes wires category endpoints. Reads are public; writes
// are admin-only.
func RegisterCategoryRoutes(r fiber.Router, h *category.Handler, authed, adminOnly fiber.Handler) {
	group := r.Group("/categories")
	group.Get("/", h.List)
	group.Post("/", authed, adminOnly, h.Create)
	group.Put("/:id", authed, adminOnly, h.Update)
	group.Delete("/:id", authed, adminOnly, h.Delete)
}
