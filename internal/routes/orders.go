package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/medikart/medikart/internal/middleware"
	"github.com/medikart/medikart/internal/order"
	"github.com/medikart/medikart/internal/user"
)

// RegisterOrderRoutes wires order endpoints. Creation carries the idempotency
// guard so a retried checkout cannot double-submit.
func RegisterOrderRoutes(r fiber.Router, h *order.Handler, authed, adminOnly fiber.Handler, d Deps) {
	group := r.Group("/orders", authed)

	userOrAdmin := middleware.RequireRoles(user.RoleUser, user.RoleAdmin)
	group.Get("/", userOrAdmin, h.List)
	group.Get("/:id", userOrAdmin, h.Get)

	create := []fiber.Handler{middleware.RequireRoles(user.RoleUser)}
	if d.Cache != nil {
		create = append(create, middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}
	create = append(create, h.Create)
	group.Post("/", create...)

	group.Put("/:id", adminOnly, h.Update)
	group.Delete("/:id", adminOnly, h.Delete)
}
