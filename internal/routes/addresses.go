package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/medikart/medikart/internal/address"
)

// RegisterAddressRoutes wires shipping address endpoints, all authenticated.
func RegisterAddressRoutes(r fiber.Router, h *address.Handler, authed fiber.Handler) {
	group := r.Group("/addresses", authed)
	group.Get("/", h.List)
	group.Post("/", h.Create)
	group.Put("/:id", h.Update)
	group.Delete("/:id", h.Delete)
}
