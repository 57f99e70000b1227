package order

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handler exposes order HTTP endpoints.
type Handler struct {
	repo Repository
}

// NewHandler builds an order HTTP handler.
func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

type orderRequest struct {
	ProductIDs        []string `json:"product_ids"`
	Status            *string  `json:"status"`
	TotalPrice        *float64 `json:"total_price"`
	ShippingAddressID *string  `json:"shipping_address_id"`
}

type orderResponse struct {
	ID                string    `json:"id"`
	ProductIDs        []string  `json:"product_ids"`
	Status            string    `json:"status"`
	OrderDate         time.Time `json:"order_date"`
	TotalPrice        float64   `json:"total_price"`
	ShippingAddressID string    `json:"shipping_address_id,omitempty"`
}

// List returns all orders.
func (h *Handler) List(c *fiber.Ctx) error {
	orders, err := h.repo.List(c.UserContext())
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "could not list orders")
	}
	out := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, orderResponse(o))
	}
	return c.Status(http.StatusOK).JSON(out)
}

// Get returns a single order by id.
func (h *Handler) Get(c *fiber.Ctx) error {
	o, err := h.repo.Get(c.UserContext(), c.Params("id"))
	if errors.Is(err, ErrNotFound) {
		return fiber.NewError(http.StatusNotFound, "Order not found")
	}
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "could not load order")
	}
	return c.Status(http.StatusOK).JSON(orderResponse(o))
}

// Create places a new order.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req orderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if len(req.ProductIDs) == 0 {
		return fiber.NewError(http.StatusBadRequest, "product_ids are required")
	}
	if req.TotalPrice == nil {
		return fiber.NewError(http.StatusBadRequest, "total_price is required")
	}

	o := Order{
		ID:         uuid.New().String(),
		ProductIDs: req.ProductIDs,
		Status:     StatusPending,
		OrderDate:  time.Now().UTC(),
		TotalPrice: *req.TotalPrice,
	}
	if req.Status != nil {
		if !ValidStatus(*req.Status) {
			return fiber.NewError(http.StatusBadRequest, "unknown order status")
		}
		o.Status = *req.Status
	}
	if req.ShippingAddressID != nil {
		if *req.ShippingAddressID != "" {
			if _, err := uuid.Parse(*req.ShippingAddressID); err != nil {
				return fiber.NewError(http.StatusBadRequest, "invalid shipping_address_id")
			}
		}
		o.ShippingAddressID = *req.ShippingAddressID
	}

	if err := h.repo.Create(c.UserContext(), o); err != nil {
		return fiber.NewError(http.StatusInternalServerError, "could not create order")
	}
	return c.Status(http.StatusCreated).JSON(orderResponse(o))
}

// Update applies partial edits to an order.
func (h *Handler) Update(c *fiber.Ctx) error {
	var req orderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	o, err := h.repo.Get(c.UserContext(), c.Params("id"))
	if errors.Is(err, ErrNotFound) {
		return fiber.NewError(http.StatusNotFound, "Order not found")
	}
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "could not load order")
	}

	if req.ProductIDs != nil {
		o.ProductIDs = req.ProductIDs
	}
	if req.Status != nil {
		if !ValidStatus(*req.Status) {
			return fiber.NewError(http.StatusBadRequest, "unknown order status")
		}
		o.Status = *req.Status
	}
	if req.TotalPrice != nil {
		o.TotalPrice = *req.TotalPrice
	}
	if req.ShippingAddressID != nil {
		if *req.ShippingAddressID != "" {
			if _, err := uuid.Parse(*req.ShippingAddressID); err != nil {
				return fiber.NewError(http.StatusBadRequest, "invalid shipping_address_id")
			}
		}
		o.ShippingAddressID = *req.ShippingAddressID
	}

	if err := h.repo.Update(c.UserContext(), o); err != nil {
		return fiber.NewError(http.StatusInternalServerError, "could not update order")
	}
	return c.Status(http.StatusOK).JSON(orderResponse(o))
}

// Delete removes an order.
func (h *Handler) Delete(c *fiber.Ctx) error {
	err := h.repo.Delete(c.UserContext(), c.Params("id"))
	if errors.Is(err, ErrNotFound) {
		return fiber.NewError(http.StatusNotFound, "Order not found")
	}
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "could not delete order")
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"message": "Order deleted successfully"})
}
