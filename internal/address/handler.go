package address

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handler exposes shipping address HTTP endpoints.
type Handler struct {
	repo Repository
}

// NewHandler builds an address HTTP handler.
func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

type addressRequest struct {
	Division    *string `json:"division"`
	District    *string `json:"district"`
	SubDistrict *string `json:"sub_district"`
	Line        *string `json:"address"`
	Name        *string `json:"name"`
	Phone       *string `json:"phone"`
}

type addressResponse struct {
	ID          string `json:"id"`
	Division    string `json:"division"`
	District    string `json:"district"`
	SubDistrict string `json:"sub_district"`
	Line        string `json:"address"`
	Name        string `json:"name"`
	Phone       string `json:"phone"`
}

// List returns all shipping addresses.
func (h *Handler) List(c *fiber.Ctx) error {
	addresses, err := h.repo.List(c.UserContext())
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "could not list addresses")
	}
	out := make([]addressResponse, 0, len(addresses))
	for _, a := range addresses {
		out = append(out, addressResponse(a))
	}
	return c.Status(http.StatusOK).JSON(out)
}

// Create adds a new shipping address.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req addressRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	for _, field := range []*string{req.Division, req.District, req.SubDistrict, req.Line, req.Name, req.Phone} {
		if field == nil || *field == "" {
			return fiber.NewError(http.StatusBadRequest, "division, district, sub_district, address, name and phone are required")
		}
	}

	a := Address{
		ID:          uuid.New().String(),
		Division:    *req.Division,
		District:    *req.District,
		SubDistrict: *req.SubDistrict,
		Line:        *req.Line,
		Name:        *req.Name,
		Phone:       *req.Phone,
	}

	if err := h.repo.Create(c.UserContext(), a); err != nil {
		return fiber.NewError(http.StatusInternalServerError, "could not create address")
	}
	return c.Status(http.StatusCreated).JSON(addressResponse(a))
}

// Update applies partial edits to an address.
func (h *Handler) Update(c *fiber.Ctx) error {
	var req addressRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	a, err := h.repo.Get(c.UserContext(), c.Params("id"))
	if errors.Is(err, ErrNotFound) {
		return fiber.NewError(http.StatusNotFound, "Address not found")
	}
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "could not load address")
	}

	if req.Division != nil {
		a.Division = *req.Division
	}
	if req.District != nil {
		a.District = *req.District
	}
	if req.SubDistrict != nil {
		a.SubDistrict = *req.SubDistrict
	}
	if req.Line != nil {
		a.Line = *req.Line
	}
	if req.Name != nil {
		a.Name = *req.Name
	}
	if req.Phone != nil {
		a.Phone = *req.Phone
	}

	if err := h.repo.Update(c.UserContext(), a); err != nil {
		return fiber.NewError(http.StatusInternalServerError, "could not update address")
	}
	return c.Status(http.StatusOK).JSON(addressResponse(a))
}

// Delete removes an address.
func (h *Handler) Delete(c *fiber.Ctx) error {
	err := h.repo.Delete(c.UserContext(), c.Params("id"))
	if errors.Is(err, ErrNotFound) {
		return fiber.NewError(http.StatusNotFound, "Address not found")
	}
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "could not delete address")
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"message": "Address deleted successfully"})
}
