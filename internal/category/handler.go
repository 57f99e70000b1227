package category

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handler exposes category HTTP endpoints.
type Handler struct {
	repo Repository
}

// NewHandler builds a category HTTP handler.
func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

type categoryRequest struct {
	Name      *string `json:"name"`
	Slug      *string `json:"slug"`
	Thumbnail *string `json:"thumbnail"`
	ParentID  *string `json:"parent_id"`
}

type categoryResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	Thumbnail string `json:"thumbnail"`
	ParentID  string `json:"parent_id,omitempty"`
}

// List returns all categories.
func (h *Handler) List(c *fiber.Ctx) error {
	cats, err := h.repo.List(c.UserContext())
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "could not list categories")
	}
	out := make([]categoryResponse, 0, len(cats))
	for _, cat := range cats {
		out = append(out, categoryResponse(cat))
	}
	return c.Status(http.StatusOK).JSON(out)
}

// Create adds a new category.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req categoryRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.Name == nil || *req.Name == "" || req.Slug == nil || *req.Slug == "" || req.Thumbnail == nil || *req.Thumbnail == "" {
		return fiber.NewError(http.StatusBadRequest, "name, slug and thumbnail are required")
	}

	cat := Category{
		ID:        uuid.New().String(),
		Name:      *req.Name,
		Slug:      *req.Slug,
		Thumbnail: *req.Thumbnail,
	}
	if req.ParentID != nil {
		cat.ParentID = *req.ParentID
	}

	if err := h.repo.Create(c.UserContext(), cat); err != nil {
		if errors.Is(err, ErrSlugTaken) {
			return fiber.NewError(http.StatusConflict, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, "could not create category")
	}
	return c.Status(http.StatusCreated).JSON(categoryResponse(cat))
}

// Update applies partial edits to a category.
func (h *Handler) Update(c *fiber.Ctx) error {
	var req categoryRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	cat, err := h.repo.Get(c.UserContext(), c.Params("id"))
	if errors.Is(err, ErrNotFound) {
		return fiber.NewError(http.StatusNotFound, "Category not found")
	}
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "could not load category")
	}

	if req.Name != nil {
		cat.Name = *req.Name
	}
	if req.Slug != nil {
		cat.Slug = *req.Slug
	}
	if req.Thumbnail != nil {
		cat.Thumbnail = *req.Thumbnail
	}
	if req.ParentID != nil {
		cat.ParentID = *req.ParentID
	}

	if err := h.repo.Update(c.UserContext(), cat); err != nil {
		if errors.Is(err, ErrSlugTaken) {
			return fiber.NewError(http.StatusConflict, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, "could not update category")
	}
	return c.Status(http.StatusOK).JSON(categoryResponse(cat))
}

// Delete removes a category.
func (h *Handler) Delete(c *fiber.Ctx) error {
	err := h.repo.Delete(c.UserContext(), c.Params("id"))
	if errors.Is(err, ErrNotFound) {
		return fiber.NewError(http.StatusNotFound, "Category not found")
	}
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "could not delete category")
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"message": "Category deleted successfully"})
}
