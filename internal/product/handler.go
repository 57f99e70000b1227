package product

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handler exposes catalog HTTP endpoints.
type Handler struct {
	repo Repository
}

// NewHandler builds a product HTTP handler.
func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

type productRequest struct {
	Name         *string       `json:"name"`
	Slug         *string       `json:"slug"`
	Photos       []string      `json:"photos"`
	Description  *string       `json:"description"`
	MetaKey      *string       `json:"meta_key"`
	Price        *float64      `json:"price"`
	Discount     *float64      `json:"discount"`
	DefaultPrice *float64      `json:"default_price"`
	StockStatus  *bool         `json:"stock_status"`
	Status       *string       `json:"status"`
	Categories   []CategoryRef `json:"categories"`
	Variants     []Variant     `json:"variants"`
}

type productResponse struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Slug         string        `json:"slug"`
	Photos       []string      `json:"photos"`
	Description  string        `json:"description"`
	MetaKey      string        `json:"meta_key"`
	Price        float64       `json:"price"`
	Discount     float64       `json:"discount"`
	DefaultPrice float64       `json:"default_price"`
	StockStatus  bool          `json:"stock_status"`
	Status       string        `json:"status"`
	Categories   []CategoryRef `json:"categories"`
	Variants     []Variant     `json:"variants"`
}

func toResponse(p Product) productResponse {
	return productResponse(p)
}

// List returns all products.
func (h *Handler) List(c *fiber.Ctx) error {
	products, err := h.repo.List(c.UserContext())
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "could not list products")
	}
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toResponse(p))
	}
	return c.Status(http.StatusOK).JSON(out)
}

// Get returns a single product by id.
func (h *Handler) Get(c *fiber.Ctx) error {
	p, err := h.repo.Get(c.UserContext(), c.Params("id"))
	if errors.Is(err, ErrNotFound) {
		return fiber.NewError(http.StatusNotFound, "Product not found")
	}
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "could not load product")
	}
	return c.Status(http.StatusOK).JSON(toResponse(p))
}

// Create adds a new product to the catalog.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.Name == nil || *req.Name == "" || req.Slug == nil || *req.Slug == "" {
		return fiber.NewError(http.StatusBadRequest, "name and slug are required")
	}

	p := Product{
		ID:          uuid.New().String(),
		Name:        *req.Name,
		Slug:        *req.Slug,
		Photos:      req.Photos,
		StockStatus: true,
		Status:      StatusActive,
		Categories:  req.Categories,
		Variants:    req.Variants,
	}
	applyOptional(&p, req)

	if err := h.repo.Create(c.UserContext(), p); err != nil {
		if errors.Is(err, ErrSlugTaken) {
			return fiber.NewError(http.StatusConflict, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, "could not create product")
	}
	return c.Status(http.StatusCreated).JSON(toResponse(p))
}

// Update applies partial edits to a product.
func (h *Handler) Update(c *fiber.Ctx) error {
	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	p, err := h.repo.Get(c.UserContext(), c.Params("id"))
	if errors.Is(err, ErrNotFound) {
		return fiber.NewError(http.StatusNotFound, "Product not found")
	}
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "could not load product")
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Slug != nil {
		p.Slug = *req.Slug
	}
	if req.Photos != nil {
		p.Photos = req.Photos
	}
	if req.Categories != nil {
		p.Categories = req.Categories
	}
	if req.Variants != nil {
		p.Variants = req.Variants
	}
	applyOptional(&p, req)

	if err := h.repo.Update(c.UserContext(), p); err != nil {
		if errors.Is(err, ErrSlugTaken) {
			return fiber.NewError(http.StatusConflict, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, "could not update product")
	}
	return c.Status(http.StatusOK).JSON(toResponse(p))
}

// Delete removes a product from the catalog.
func (h *Handler) Delete(c *fiber.Ctx) error {
	err := h.repo.Delete(c.UserContext(), c.Params("id"))
	if errors.Is(err, ErrNotFound) {
		return fiber.NewError(http.StatusNotFound, "Product not found")
	}
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "could not delete product")
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"message": "Product deleted successfully"})
}

func applyOptional(p *Product, req productRequest) {
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.MetaKey != nil {
		p.MetaKey = *req.MetaKey
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.Discount != nil {
		p.Discount = *req.Discount
	}
	if req.DefaultPrice != nil {
		p.DefaultPrice = *req.DefaultPrice
	}
	if req.StockStatus != nil {
		p.StockStatus = *req.StockStatus
	}
	if req.Status != nil {
		p.Status = *req.Status
	}
}
