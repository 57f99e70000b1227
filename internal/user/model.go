package user

import "time"

// Role labels a capability level granted to a user.
type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// DefaultRoles is assigned to every newly registered user.
func DefaultRoles() []Role {
	return []Role{RoleUser}
}

// HasAnyRole reports whether held and required intersect.
func HasAnyRole(held []Role, required ...Role) bool {
	for _, h := range held {
		for _, r := range required {
			if h == r {
				return true
			}
		}
	}
	return false
}

// RolesFromStrings converts raw role labels as stored or transported.
func RolesFromStrings(raw []string) []Role {
	roles := make([]Role, 0, len(raw))
	for _, r := range raw {
		roles = append(roles, Role(r))
	}
	return roles
}

// RolesToStrings converts roles for storage and token claims.
func RolesToStrings(roles []Role) []string {
	raw := make([]string, 0, len(roles))
	for _, r := range roles {
		raw = append(raw, string(r))
	}
	return raw
}

// User represents a registered shopper or administrator.
//
// OTP and OTPExpiresAt are set together while a verification cycle is pending
// and cleared together once it completes. RefreshToken holds the single
// active session token; empty means logged out.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Photo        string
	IsVerified   bool
	OTP          string
	OTPExpiresAt time.Time
	Roles        []Role
	RefreshToken string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ClearOTP unsets the pending code and its expiry as a pair.
func (u *User) ClearOTP() {
	u.OTP = ""
	u.OTPExpiresAt = time.Time{}
}

// SetOTP records a pending code expiring after ttl from now.
func (u *User) SetOTP(code string, ttl time.Duration, now time.Time) {
	u.OTP = code
	u.OTPExpiresAt = now.Add(ttl)
}
