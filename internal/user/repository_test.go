package user

import (
	"context"
	"errors"
	"testing"
	"time"
)

func seedUser(t *testing.T, repo Repository, email, token string) User {
	t.Helper()
	u := User{
		ID:           "id-" + email,
		Name:         "Test",
		Email:        email,
		PasswordHash: "hash",
		Roles:        DefaultRoles(),
		RefreshToken: token,
		CreatedAt:    time.Now().UTC(),
	}
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("seed %s: %v", email, err)
	}
	return u
}

func TestMemoryRepositoryCreateDuplicate(t *testing.T) {
	repo := NewMemoryRepository()
	seedUser(t, repo, "alice@example.com", "")

	err := repo.Create(context.Background(), User{ID: "other", Email: "alice@example.com"})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestMemoryRepositoryLookups(t *testing.T) {
	repo := NewMemoryRepository()
	u := seedUser(t, repo, "alice@example.com", "tok-1")

	byEmail, err := repo.FindByEmail(context.Background(), u.Email)
	if err != nil || byEmail.ID != u.ID {
		t.Fatalf("by email: %v %+v", err, byEmail)
	}
	byID, err := repo.FindByID(context.Background(), u.ID)
	if err != nil || byID.Email != u.Email {
		t.Fatalf("by id: %v %+v", err, byID)
	}
	byToken, err := repo.FindByRefreshToken(context.Background(), "tok-1")
	if err != nil || byToken.ID != u.ID {
		t.Fatalf("by token: %v %+v", err, byToken)
	}

	if _, err := repo.FindByEmail(context.Background(), "nobody@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	// Users without a session all have an empty token; it must never match.
	seedUser(t, repo, "bob@example.com", "")
	if _, err := repo.FindByRefreshToken(context.Background(), ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("empty token must not match a session, got %v", err)
	}
}

func TestMemoryRepositoryClearRefreshToken(t *testing.T) {
	repo := NewMemoryRepository()
	u := seedUser(t, repo, "alice@example.com", "tok-1")

	if err := repo.ClearRefreshToken(context.Background(), "tok-1"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	got, err := repo.FindByEmail(context.Background(), u.Email)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got.RefreshToken != "" {
		t.Fatal("token not cleared")
	}

	// Clearing a token that matches nothing is not an error.
	if err := repo.ClearRefreshToken(context.Background(), "tok-1"); err != nil {
		t.Fatalf("second clear: %v", err)
	}
	if err := repo.ClearRefreshToken(context.Background(), ""); err != nil {
		t.Fatalf("empty clear: %v", err)
	}
}

func TestMemoryRepositoryUpdate(t *testing.T) {
	repo := NewMemoryRepository()
	u := seedUser(t, repo, "alice@example.com", "")

	u.IsVerified = true
	u.RefreshToken = "tok-2"
	if err := repo.Update(context.Background(), u); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := repo.FindByEmail(context.Background(), u.Email)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if !got.IsVerified || got.RefreshToken != "tok-2" {
		t.Fatalf("update not persisted: %+v", got)
	}

	if err := repo.Update(context.Background(), User{ID: "ghost", Email: "ghost@example.com"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryRepositoryListAndDelete(t *testing.T) {
	repo := NewMemoryRepository()
	a := seedUser(t, repo, "alice@example.com", "")
	seedUser(t, repo, "bob@example.com", "")

	users, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}

	if err := repo.Delete(context.Background(), a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.FindByID(context.Background(), a.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := repo.Delete(context.Background(), a.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound deleting twice, got %v", err)
	}
}

func TestRoleHelpers(t *testing.T) {
	if !HasAnyRole([]Role{RoleUser, RoleAdmin}, RoleAdmin) {
		t.Fatal("admin should match")
	}
	if HasAnyRole([]Role{RoleUser}, RoleAdmin, RoleSuperAdmin) {
		t.Fatal("plain user should not match admin roles")
	}
	if HasAnyRole(nil, RoleUser) {
		t.Fatal("empty role set should never match")
	}

	roles := RolesFromStrings([]string{"user", "admin"})
	if len(roles) != 2 || roles[1] != RoleAdmin {
		t.Fatalf("unexpected roles %v", roles)
	}
	raw := RolesToStrings(roles)
	if len(raw) != 2 || raw[0] != "user" {
		t.Fatalf("unexpected strings %v", raw)
	}
}
