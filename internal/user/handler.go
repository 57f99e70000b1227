package user

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes the admin user-management endpoints.
type Handler struct {
	repo Repository
}

// NewHandler builds a user HTTP handler.
func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

type userResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Photo      string    `json:"photo"`
	IsVerified bool      `json:"is_verified"`
	Roles      []string  `json:"roles"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func toResponse(u User) userResponse {
	return userResponse{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Photo:      u.Photo,
		IsVerified: u.IsVerified,
		Roles:      RolesToStrings(u.Roles),
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

// List returns all users.
func (h *Handler) List(c *fiber.Ctx) error {
	users, err := h.repo.List(c.UserContext())
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "could not list users")
	}
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toResponse(u))
	}
	return c.Status(http.StatusOK).JSON(out)
}

// Get returns a single user by id.
func (h *Handler) Get(c *fiber.Ctx) error {
	u, err := h.repo.FindByID(c.UserContext(), c.Params("id"))
	if errors.Is(err, ErrNotFound) {
		return fiber.NewError(http.StatusNotFound, "user not found")
	}
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "could not load user")
	}
	return c.Status(http.StatusOK).JSON(toResponse(u))
}

type updateRequest struct {
	Name       *string  `json:"name"`
	Roles      []string `json:"roles"`
	IsVerified *bool    `json:"is_verified"`
}

// Update applies partial edits to a user's profile and capabilities.
func (h *Handler) Update(c *fiber.Ctx) error {
	var req updateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	u, err := h.repo.FindByID(c.UserContext(), c.Params("id"))
	if errors.Is(err, ErrNotFound) {
		return fiber.NewError(http.StatusNotFound, "user not found")
	}
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "could not load user")
	}
	if req.Name != nil {
		u.Name = *req.Name
	}
	if req.IsVerified != nil {
		u.IsVerified = *req.IsVerified
	}
	if len(req.Roles) > 0 {
		u.Roles = RolesFromStrings(req.Roles)
	}
	if err := h.repo.Update(c.UserContext(), u); err != nil {
		return fiber.NewError(http.StatusInternalServerError, "could not update user")
	}
	return c.Status(http.StatusOK).JSON(toResponse(u))
}

// Delete removes a user account.
func (h *Handler) Delete(c *fiber.Ctx) error {
	err := h.repo.Delete(c.UserContext(), c.Params("id"))
	if errors.Is(err, ErrNotFound) {
		return fiber.NewError(http.StatusNotFound, "user not found")
	}
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "could not delete user")
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"message": "user deleted successfully"})
}
