package model

import "time"

// Application roles.  GATEKEEPER staff record entries and exits at the
// gate, ADMIN staff additionally manage the registry (students, faculty,
// vehicles, spots) and MASTER accounts also manage other accounts.
const (
	RoleGatekeeper = "GATEKEEPER"
	RoleAdmin      = "ADMIN"
	RoleMaster     = "MASTER"
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r string) bool {
	return r == RoleGatekeeper || r == RoleAdmin || r == RoleMaster
}

// User represents an operator account as stored in the `users` table.
// The json tags are omitted because these structs are used internally by
// the repository layer; handlers define separate response types.
//
// Fields:
//  ID           – primary key identifier.
//  Name         – display name of the operator.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  Role         – GATEKEEPER | ADMIN | MASTER.
//  IsActive     – whether the account may log in.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Name         string    // users.name
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Role         string    // users.role
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to a user; only the SHA-256 hash of the token is
// stored.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (null if active)
	CreatedAt time.Time  // refresh_tokens.created_at
}
