package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/medikart/medikart/internal/upload"
	"github.com/medikart/medikart/internal/user"
)

const (
	// AccessCookie and RefreshCookie carry the session tokens. Both are
	// HTTP-only so script cannot read them.
	AccessCookie  = "access_token"
	RefreshCookie = "refresh_token"
)

// Handler exposes the authentication endpoints.
type Handler struct {
	svc     *Service
	uploads *upload.Store
	secure  bool
}

// NewHandler builds the auth HTTP handler. secure controls the cookie Secure
// flag and should be true in production.
func NewHandler(svc *Service, uploads *upload.Store, secure bool) *Handler {
	return &Handler{svc: svc, uploads: uploads, secure: secure}
}

// Register handles multipart registration with a required profile photo.
func (h *Handler) Register(c *fiber.Ctx) error {
	in := RegisterInput{
		Name:     c.FormValue("name"),
		Email:    c.FormValue("email"),
		Password: c.FormValue("password"),
	}
	// Check the text fields before touching the filesystem so a rejected
	// request stores nothing.
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "name, email and password are required")
	}

	fh, err := c.FormFile("photo")
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "photo is required")
	}
	path, err := h.uploads.SaveImage(fh)
	if err != nil {
		if errors.Is(err, upload.ErrFileTooLarge) || errors.Is(err, upload.ErrUnsupportedType) {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, "could not store photo")
	}
	in.PhotoPath = path

	if err := h.svc.Register(c.UserContext(), in); err != nil {
		// The photo was already saved; drop it so the failed registration
		// leaves nothing behind.
		_ = h.uploads.Remove(path)
		return h.mapError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully. Please verify your email with the OTP sent to your email.",
	})
}

type verifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// VerifyOTP confirms the emailed code and activates the account.
func (h *Handler) VerifyOTP(c *fiber.Ctx) error {
	var req verifyOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.VerifyOTP(c.UserContext(), req.Email, req.OTP); err != nil {
		return h.mapError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"message": "Email verified successfully"})
}

type resendOTPRequest struct {
	Email string `json:"email"`
}

// ResendOTP issues and dispatches a fresh verification code.
func (h *Handler) ResendOTP(c *fiber.Ctx) error {
	var req resendOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.ResendOTP(c.UserContext(), req.Email); err != nil {
		return h.mapError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"message": "A new OTP has been sent to your email."})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login validates credentials and establishes the cookie session. The access
// token is also returned in the body; the refresh token travels only in its
// cookie.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	u, pair, err := h.svc.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return h.mapError(err)
	}

	h.setCookie(c, AccessCookie, pair.AccessToken, pair.AccessExpiry)
	h.setCookie(c, RefreshCookie, pair.RefreshToken, pair.RefreshExpiry)

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message":      "Login successful",
		"access_token": pair.AccessToken,
		"user_id":      u.ID,
		"roles":        user.RolesToStrings(u.Roles),
	})
}

// Refresh exchanges the refresh cookie for a new access token.
func (h *Handler) Refresh(c *fiber.Ctx) error {
	token := c.Cookies(RefreshCookie)
	access, expiry, err := h.svc.Refresh(c.UserContext(), token)
	if err != nil {
		return h.mapError(err)
	}
	h.setCookie(c, AccessCookie, access, expiry)
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message":      "Access token refreshed",
		"access_token": access,
	})
}

// Logout ends the session and expires both cookies regardless of whether the
// refresh token matched a stored session.
func (h *Handler) Logout(c *fiber.Ctx) error {
	if err := h.svc.Logout(c.UserContext(), c.Cookies(RefreshCookie)); err != nil {
		return fiber.NewError(http.StatusInternalServerError, "could not end session")
	}
	h.clearCookie(c, AccessCookie)
	h.clearCookie(c, RefreshCookie)
	return c.Status(http.StatusOK).JSON(fiber.Map{"message": "Logout successful"})
}

func (h *Handler) setCookie(c *fiber.Ctx, name, value string, expires time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    value,
		Expires:  expires,
		HTTPOnly: true,
		Secure:   h.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
}

func (h *Handler) clearCookie(c *fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   h.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
}

// mapError translates service sentinels into structured HTTP failures.
// Internal detail stays in server logs; clients get the taxonomy message.
func (h *Handler) mapError(err error) error {
	switch {
	case errors.Is(err, ErrValidation):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	case errors.Is(err, user.ErrEmailTaken):
		return fiber.NewError(http.StatusConflict, "User already exists")
	case errors.Is(err, user.ErrNotFound):
		return fiber.NewError(http.StatusNotFound, "User not found")
	case errors.Is(err, ErrInvalidOTP):
		return fiber.NewError(http.StatusBadRequest, "Invalid or expired OTP")
	case errors.Is(err, ErrAlreadyVerified):
		return fiber.NewError(http.StatusConflict, "User is already verified")
	case errors.Is(err, ErrInvalidCredentials):
		return fiber.NewError(http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, ErrNotVerified):
		return fiber.NewError(http.StatusForbidden, "Please verify your email before logging in")
	case errors.Is(err, ErrMissingToken):
		return fiber.NewError(http.StatusUnauthorized, "Refresh token not found")
	case errors.Is(err, ErrUnauthorized):
		return fiber.NewError(http.StatusUnauthorized, "Invalid refresh token")
	case errors.Is(err, ErrTokenExpired):
		return fiber.NewError(http.StatusUnauthorized, "Token expired")
	case errors.Is(err, ErrTokenInvalid):
		return fiber.NewError(http.StatusUnauthorized, "Invalid token")
	case errors.Is(err, ErrMailDelivery):
		return fiber.NewError(http.StatusBadGateway, "Failed to send OTP email")
	default:
		return fiber.NewError(http.StatusInternalServerError, "Server error")
	}
}
