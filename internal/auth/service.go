package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/medikart/medikart/internal/mail"
	"github.com/medikart/medikart/internal/user"
)

var (
	// ErrValidation indicates malformed or missing input.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidCredentials covers both unknown email and wrong password so
	// responses cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNotVerified rejects login before the email OTP has been confirmed.
	ErrNotVerified = errors.New("email not verified")
	// ErrInvalidOTP covers mismatched, expired and already-consumed codes.
	ErrInvalidOTP = errors.New("invalid or expired OTP")
	// ErrAlreadyVerified rejects OTP resend for verified accounts.
	ErrAlreadyVerified = errors.New("user already verified")
	// ErrMissingToken indicates no refresh token was presented.
	ErrMissingToken = errors.New("refresh token not found")
	// ErrUnauthorized indicates the presented refresh token matches no session.
	ErrUnauthorized = errors.New("invalid refresh token")
	// ErrMailDelivery indicates the OTP email could not be dispatched. The
	// user record is kept so the caller can retry via resend.
	ErrMailDelivery = errors.New("failed to send OTP email")
)

// Options tunes the session lifecycle.
type Options struct {
	// OTPTTL is the validity window for codes issued at registration,
	// ResendTTL for codes issued by resend.
	OTPTTL      time.Duration
	ResendTTL   time.Duration
	MailTimeout time.Duration
}

// Service drives the register/verify/login/refresh/logout lifecycle.
type Service struct {
	users  user.Repository
	sender mail.Sender
	tokens *TokenIssuer
	opts   Options
	logger *slog.Logger
}

// NewService wires the session controller. The mail sender is injected once
// at construction and shared across operations.
func NewService(users user.Repository, sender mail.Sender, tokens *TokenIssuer, opts Options, logger *slog.Logger) *Service {
	if opts.MailTimeout <= 0 {
		opts.MailTimeout = 10 * time.Second
	}
	return &Service{users: users, sender: sender, tokens: tokens, opts: opts, logger: logger}
}

// Tokens exposes the issuer for middleware wiring.
func (s *Service) Tokens() *TokenIssuer { return s.tokens }

// RegisterInput carries the registration form fields. PhotoPath references an
// already-stored upload.
type RegisterInput struct {
	Name      string
	Email     string
	Password  string
	PhotoPath string
}

// Register creates an unverified account and dispatches its OTP. A dispatch
// failure is reported as ErrMailDelivery without rolling back the record, so
// the account stays in a resend-ready state.
func (s *Service) Register(ctx context.Context, in RegisterInput) error {
	in.Email = normalizeEmail(in.Email)
	switch {
	case in.Name == "":
		return fmt.Errorf("%w: name is required", ErrValidation)
	case in.Email == "":
		return fmt.Errorf("%w: email is required", ErrValidation)
	case in.Password == "":
		return fmt.Errorf("%w: password is required", ErrValidation)
	case in.PhotoPath == "":
		return fmt.Errorf("%w: photo is required", ErrValidation)
	}

	if _, err := s.users.FindByEmail(ctx, in.Email); err == nil {
		return user.ErrEmailTaken
	} else if !errors.Is(err, user.ErrNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	code, err := GenerateOTP()
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	u := user.User{
		ID:           uuid.New().String(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		Photo:        in.PhotoPath,
		IsVerified:   false,
		Roles:        user.DefaultRoles(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	u.SetOTP(code, s.opts.OTPTTL, now)

	// Concurrent registrations for the same email race here; the store's
	// uniqueness constraint rejects the loser.
	if err := s.users.Create(ctx, u); err != nil {
		return err
	}

	return s.dispatchOTP(ctx, u.Email, code, s.opts.OTPTTL, "Your OTP Code")
}

// VerifyOTP confirms the pending code and marks the account verified. Codes
// are single-use: a repeat attempt after success fails because the stored
// code was cleared.
func (s *Service) VerifyOTP(ctx context.Context, email, code string) error {
	u, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return err
	}
	if !OTPValid(u.OTP, u.OTPExpiresAt, code, time.Now().UTC()) {
		return ErrInvalidOTP
	}
	u.IsVerified = true
	u.ClearOTP()
	return s.users.Update(ctx, u)
}

// ResendOTP issues a fresh code with the resend validity window and dispatches
// it, following the same non-rollback policy as Register.
func (s *Service) ResendOTP(ctx context.Context, email string) error {
	u, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return err
	}
	if u.IsVerified {
		return ErrAlreadyVerified
	}

	code, err := GenerateOTP()
	if err != nil {
		return err
	}
	u.SetOTP(code, s.opts.ResendTTL, time.Now().UTC())
	if err := s.users.Update(ctx, u); err != nil {
		return err
	}

	return s.dispatchOTP(ctx, u.Email, code, s.opts.ResendTTL, "Your New OTP Code")
}

// TokenPair bundles the credentials issued by a successful login.
type TokenPair struct {
	AccessToken   string
	AccessExpiry  time.Time
	RefreshToken  string
	RefreshExpiry time.Time
}

// Login validates credentials, requires a verified email and issues a token
// pair. The refresh token is persisted on the user row, replacing any prior
// session.
func (s *Service) Login(ctx context.Context, email, password string) (user.User, TokenPair, error) {
	u, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, TokenPair{}, ErrInvalidCredentials
		}
		return user.User{}, TokenPair{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return user.User{}, TokenPair{}, ErrInvalidCredentials
	}
	if !u.IsVerified {
		return user.User{}, TokenPair{}, ErrNotVerified
	}

	access, accessExp, err := s.tokens.IssueAccess(u.ID, u.Roles)
	if err != nil {
		return user.User{}, TokenPair{}, err
	}
	refresh, refreshExp, err := s.tokens.IssueRefresh(u.ID, u.Roles)
	if err != nil {
		return user.User{}, TokenPair{}, err
	}

	u.RefreshToken = refresh
	if err := s.users.Update(ctx, u); err != nil {
		return user.User{}, TokenPair{}, err
	}

	return u, TokenPair{
		AccessToken:   access,
		AccessExpiry:  accessExp,
		RefreshToken:  refresh,
		RefreshExpiry: refreshExp,
	}, nil
}

// Refresh issues a new access token for the session holding refreshToken.
// The stored-token lookup runs before signature verification so a rotated or
// cleared token reports ErrUnauthorized while an expired-but-current one
// reports ErrTokenExpired.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, time.Time, error) {
	if refreshToken == "" {
		return "", time.Time{}, ErrMissingToken
	}
	u, err := s.users.FindByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return "", time.Time{}, ErrUnauthorized
		}
		return "", time.Time{}, err
	}
	if _, err := s.tokens.Verify(refreshToken, RefreshToken); err != nil {
		return "", time.Time{}, err
	}
	return s.tokens.IssueAccess(u.ID, u.Roles)
}

// Logout clears the persisted session token. A token matching no session is
// not an error; the handler clears transport cookies regardless.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.users.ClearRefreshToken(ctx, refreshToken)
}

func (s *Service) dispatchOTP(ctx context.Context, email, code string, ttl time.Duration, subject string) error {
	body := fmt.Sprintf("Your OTP code is %s. It is valid for %s.", code, ttl)

	sendCtx, cancel := context.WithTimeout(ctx, s.opts.MailTimeout)
	defer cancel()
	if err := s.sender.Send(sendCtx, email, subject, body); err != nil {
		if s.logger != nil {
			s.logger.Error("otp dispatch failed", "email", email, "error", err)
		}
		return fmt.Errorf("%w: %w", ErrMailDelivery, err)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
