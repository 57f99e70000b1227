package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/medikart/medikart/internal/logging"
	"github.com/medikart/medikart/internal/user"
)

type sentMail struct {
	to      string
	subject string
	body    string
}

// recordSender captures dispatched mail, optionally failing every send.
type recordSender struct {
	mu   sync.Mutex
	sent []sentMail
	fail error
}

func (r *recordSender) Send(_ context.Context, to, subject, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	r.sent = append(r.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

func (r *recordSender) last(t *testing.T) sentMail {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.sent) == 0 {
		t.Fatal("no mail sent")
	}
	return r.sent[len(r.sent)-1]
}

func newTestService(opts Options) (*Service, user.Repository, *recordSender) {
	if opts.OTPTTL == 0 {
		opts.OTPTTL = time.Minute
	}
	if opts.ResendTTL == 0 {
		opts.ResendTTL = 10 * time.Minute
	}
	repo := user.NewMemoryRepository()
	sender := &recordSender{}
	tokens := NewTokenIssuer("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
	return NewService(repo, sender, tokens, opts, logging.Discard()), repo, sender
}

func registerInput() RegisterInput {
	return RegisterInput{
		Name:      "Alice",
		Email:     "alice@example.com",
		Password:  "s3cret-pass",
		PhotoPath: "/uploads/alice.png",
	}
}

func mustRegister(t *testing.T, svc *Service) user.User {
	t.Helper()
	if err := svc.Register(context.Background(), registerInput()); err != nil {
		t.Fatalf("register: %v", err)
	}
	u, err := svc.users.FindByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("lookup after register: %v", err)
	}
	return u
}

func mustVerify(t *testing.T, svc *Service) user.User {
	t.Helper()
	u := mustRegister(t, svc)
	if err := svc.VerifyOTP(context.Background(), u.Email, u.OTP); err != nil {
		t.Fatalf("verify: %v", err)
	}
	u, err := svc.users.FindByEmail(context.Background(), u.Email)
	if err != nil {
		t.Fatalf("lookup after verify: %v", err)
	}
	return u
}

func TestRegisterCreatesUnverifiedUserWithOTP(t *testing.T) {
	svc, _, sender := newTestService(Options{})

	u := mustRegister(t, svc)

	if u.IsVerified {
		t.Fatal("new user must start unverified")
	}
	if u.PasswordHash == "" || u.PasswordHash == "s3cret-pass" {
		t.Fatalf("password stored without hashing: %q", u.PasswordHash)
	}
	if len(u.OTP) != otpDigits {
		t.Fatalf("expected %d digit OTP, got %q", otpDigits, u.OTP)
	}
	until := time.Until(u.OTPExpiresAt)
	if until < 30*time.Second || until > 2*time.Minute {
		t.Fatalf("unexpected OTP expiry window: %v", until)
	}
	if len(u.Roles) != 1 || u.Roles[0] != user.RoleUser {
		t.Fatalf("unexpected default roles %v", u.Roles)
	}

	m := sender.last(t)
	if m.to != "alice@example.com" || m.subject != "Your OTP Code" {
		t.Fatalf("unexpected mail %+v", m)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _ := newTestService(Options{})

	cases := []struct {
		name   string
		mutate func(*RegisterInput)
	}{
		{"missing name", func(in *RegisterInput) { in.Name = "" }},
		{"missing email", func(in *RegisterInput) { in.Email = "  " }},
		{"missing password", func(in *RegisterInput) { in.Password = "" }},
		{"missing photo", func(in *RegisterInput) { in.PhotoPath = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := registerInput()
			tc.mutate(&in)
			if err := svc.Register(context.Background(), in); !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService(Options{})
	mustRegister(t, svc)

	in := registerInput()
	in.Email = "ALICE@example.com " // normalization must not open a loophole
	if err := svc.Register(context.Background(), in); !errors.Is(err, user.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestRegisterMailFailureKeepsUser(t *testing.T) {
	svc, repo, sender := newTestService(Options{})
	sender.fail = errors.New("smtp down")

	err := svc.Register(context.Background(), registerInput())
	if !errors.Is(err, ErrMailDelivery) {
		t.Fatalf("expected ErrMailDelivery, got %v", err)
	}

	// The record survives so a resend can recover the flow.
	u, err := repo.FindByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("user was rolled back: %v", err)
	}
	if u.OTP == "" {
		t.Fatal("pending OTP missing")
	}

	sender.fail = nil
	if err := svc.ResendOTP(context.Background(), u.Email); err != nil {
		t.Fatalf("resend after mail recovery: %v", err)
	}
}

func TestVerifyOTP(t *testing.T) {
	svc, repo, _ := newTestService(Options{})
	u := mustRegister(t, svc)

	if err := svc.VerifyOTP(context.Background(), u.Email, "000000"); !errors.Is(err, ErrInvalidOTP) {
		t.Fatalf("wrong code: expected ErrInvalidOTP, got %v", err)
	}
	if err := svc.VerifyOTP(context.Background(), u.Email, u.OTP); err != nil {
		t.Fatalf("verify: %v", err)
	}

	got, err := repo.FindByEmail(context.Background(), u.Email)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if !got.IsVerified {
		t.Fatal("user not marked verified")
	}
	if got.OTP != "" || !got.OTPExpiresAt.IsZero() {
		t.Fatalf("OTP not cleared: %q %v", got.OTP, got.OTPExpiresAt)
	}

	// Codes are single-use.
	if err := svc.VerifyOTP(context.Background(), u.Email, u.OTP); !errors.Is(err, ErrInvalidOTP) {
		t.Fatalf("reuse: expected ErrInvalidOTP, got %v", err)
	}
}

func TestVerifyOTPExpired(t *testing.T) {
	svc, _, _ := newTestService(Options{OTPTTL: -time.Second})
	u := mustRegister(t, svc)

	if err := svc.VerifyOTP(context.Background(), u.Email, u.OTP); !errors.Is(err, ErrInvalidOTP) {
		t.Fatalf("expected ErrInvalidOTP, got %v", err)
	}
}

func TestVerifyOTPUnknownEmail(t *testing.T) {
	svc, _, _ := newTestService(Options{})
	if err := svc.VerifyOTP(context.Background(), "nobody@example.com", "123456"); !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestResendOTP(t *testing.T) {
	svc, repo, sender := newTestService(Options{})
	u := mustRegister(t, svc)
	first := u.OTP

	if err := svc.ResendOTP(context.Background(), u.Email); err != nil {
		t.Fatalf("resend: %v", err)
	}

	got, err := repo.FindByEmail(context.Background(), u.Email)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got.OTP == "" || len(got.OTP) != otpDigits {
		t.Fatalf("no fresh code stored: %q", got.OTP)
	}
	// Resend codes carry the longer window.
	if time.Until(got.OTPExpiresAt) < 5*time.Minute {
		t.Fatalf("resend expiry too short: %v", time.Until(got.OTPExpiresAt))
	}
	if m := sender.last(t); m.subject != "Your New OTP Code" {
		t.Fatalf("unexpected subject %q", m.subject)
	}

	// The first code is superseded (unless the draw happened to repeat it).
	if first != got.OTP {
		if err := svc.VerifyOTP(context.Background(), u.Email, first); !errors.Is(err, ErrInvalidOTP) {
			t.Fatalf("superseded code: expected ErrInvalidOTP, got %v", err)
		}
	}
	if err := svc.VerifyOTP(context.Background(), u.Email, got.OTP); err != nil {
		t.Fatalf("verify with resent code: %v", err)
	}
}

func TestResendOTPAlreadyVerified(t *testing.T) {
	svc, _, _ := newTestService(Options{})
	u := mustVerify(t, svc)

	if err := svc.ResendOTP(context.Background(), u.Email); !errors.Is(err, ErrAlreadyVerified) {
		t.Fatalf("expected ErrAlreadyVerified, got %v", err)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	svc, _, _ := newTestService(Options{})
	mustVerify(t, svc)

	// Unknown email and wrong password are indistinguishable.
	_, _, err := svc.Login(context.Background(), "nobody@example.com", "s3cret-pass")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email: expected ErrInvalidCredentials, got %v", err)
	}
	_, _, err = svc.Login(context.Background(), "alice@example.com", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginUnverified(t *testing.T) {
	svc, _, _ := newTestService(Options{})
	mustRegister(t, svc)

	if _, _, err := svc.Login(context.Background(), "alice@example.com", "s3cret-pass"); !errors.Is(err, ErrNotVerified) {
		t.Fatalf("expected ErrNotVerified, got %v", err)
	}
}

func TestLoginIssuesTokenPair(t *testing.T) {
	svc, repo, _ := newTestService(Options{})
	mustVerify(t, svc)

	u, pair, err := svc.Login(context.Background(), "Alice@Example.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("empty token pair")
	}
	if !pair.RefreshExpiry.After(pair.AccessExpiry) {
		t.Fatalf("refresh should outlive access: %v vs %v", pair.RefreshExpiry, pair.AccessExpiry)
	}

	claims, err := svc.Tokens().Verify(pair.AccessToken, AccessToken)
	if err != nil {
		t.Fatalf("access token does not verify: %v", err)
	}
	if claims.Subject != u.ID {
		t.Fatalf("subject %q, want %q", claims.Subject, u.ID)
	}
	if _, err := svc.Tokens().Verify(pair.RefreshToken, RefreshToken); err != nil {
		t.Fatalf("refresh token does not verify: %v", err)
	}

	stored, err := repo.FindByEmail(context.Background(), u.Email)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if stored.RefreshToken != pair.RefreshToken {
		t.Fatal("refresh token not persisted on the user")
	}
}

func TestLoginReplacesPriorSession(t *testing.T) {
	svc, _, _ := newTestService(Options{})
	mustVerify(t, svc)

	_, first, err := svc.Login(context.Background(), "alice@example.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("first login: %v", err)
	}
	time.Sleep(1100 * time.Millisecond) // distinct iat so the tokens differ
	_, second, err := svc.Login(context.Background(), "alice@example.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("second login: %v", err)
	}
	if first.RefreshToken == second.RefreshToken {
		t.Skip("token pair collided on issue time")
	}

	if _, _, err := svc.Refresh(context.Background(), first.RefreshToken); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("rotated-away token: expected ErrUnauthorized, got %v", err)
	}
	if _, _, err := svc.Refresh(context.Background(), second.RefreshToken); err != nil {
		t.Fatalf("current token: %v", err)
	}
}

func TestRefresh(t *testing.T) {
	svc, _, _ := newTestService(Options{})
	u := mustVerify(t, svc)

	_, pair, err := svc.Login(context.Background(), u.Email, "s3cret-pass")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	access, exp, err := svc.Refresh(context.Background(), pair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if exp.Before(time.Now()) {
		t.Fatalf("stale expiry %v", exp)
	}
	claims, err := svc.Tokens().Verify(access, AccessToken)
	if err != nil {
		t.Fatalf("refreshed access token does not verify: %v", err)
	}
	if claims.Subject != u.ID {
		t.Fatalf("subject %q, want %q", claims.Subject, u.ID)
	}
}

func TestRefreshMissingToken(t *testing.T) {
	svc, _, _ := newTestService(Options{})
	if _, _, err := svc.Refresh(context.Background(), ""); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
}

func TestRefreshUnknownToken(t *testing.T) {
	svc, _, _ := newTestService(Options{})
	mustVerify(t, svc)

	token, _, err := svc.Tokens().IssueRefresh("some-id", user.DefaultRoles())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	// Well-signed but never persisted: no session to refresh.
	if _, _, err := svc.Refresh(context.Background(), token); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestRefreshExpiredButCurrentToken(t *testing.T) {
	repo := user.NewMemoryRepository()
	tokens := NewTokenIssuer("access-secret", "refresh-secret", time.Hour, -time.Minute)
	svc := NewService(repo, &recordSender{}, tokens, Options{OTPTTL: time.Minute, ResendTTL: time.Minute}, logging.Discard())

	u := mustVerify(t, svc)
	_, pair, err := svc.Login(context.Background(), u.Email, "s3cret-pass")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	// The token is still the stored session token, so expiry is reported
	// rather than the unauthorized fallback.
	if _, _, err := svc.Refresh(context.Background(), pair.RefreshToken); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestLogout(t *testing.T) {
	svc, repo, _ := newTestService(Options{})
	u := mustVerify(t, svc)

	_, pair, err := svc.Login(context.Background(), u.Email, "s3cret-pass")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := svc.Logout(context.Background(), pair.RefreshToken); err != nil {
		t.Fatalf("logout: %v", err)
	}

	stored, err := repo.FindByEmail(context.Background(), u.Email)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if stored.RefreshToken != "" {
		t.Fatal("session token not cleared")
	}
	if _, _, err := svc.Refresh(context.Background(), pair.RefreshToken); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("refresh after logout: expected ErrUnauthorized, got %v", err)
	}

	// Idempotent: repeating and logging out nothing are both fine.
	if err := svc.Logout(context.Background(), pair.RefreshToken); err != nil {
		t.Fatalf("second logout: %v", err)
	}
	if err := svc.Logout(context.Background(), ""); err != nil {
		t.Fatalf("empty logout: %v", err)
	}
}
