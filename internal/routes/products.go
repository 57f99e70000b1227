package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/medikart/medikart/internal/product"
)

// RegisterProductRoutes wires catalog endpoints. Reads are public; writes are
// admin-only.
func RegisterProductRoutes(r fiber.Router, h *product.Handler, authed, adminOnly fiber.Handler) {
	group := r.Group("/products")
	group.Get("/", h.List)
	group.Get("/:id", h.Get)
	group.Post("/", authed, adminOnly, h.Create)
	group.Put("/:id", authed, adminOnly, h.Update)
	group.Delete("/:id", authed, adminOnly, h.Delete)
}
