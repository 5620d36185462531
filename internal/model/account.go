package model

import "time"

// Account roles.  The original system modelled operators, admins and
// other user-like roles as a class hierarchy; here a single record
// with a role tag covers all login accounts.
const (
	RoleOperator = "OPERATOR" // front-desk operator, creates and extends sessions
	RoleAdmin    = "ADMIN"    // manager, additionally administers promotions
)

// Account represents a staff login as stored in the `accounts` table.
// Accounts authenticate with email and password and receive JWTs; the
// role claim decides which endpoints they may call.  Payments are
// attributed to the acting account, never to an ambient global.
//
// Fields:
//  ID           – primary key identifier.
//  Email        – unique email address used to log in.
//  PasswordHash – bcrypt hashed password.
//  Role         – RoleOperator or RoleAdmin.
//  IsActive     – whether the account may log in.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type Account struct {
	ID           uint64    // accounts.id
	Email        string    // accounts.email
	PasswordHash string    // accounts.password_hash
	Role         string    // accounts.role
	IsActive     bool      // accounts.is_active
	CreatedAt    time.Time // accounts.created_at
	UpdatedAt    time.Time // accounts.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to an account and contains metadata for
// expiry and revocation.  The plain token is not stored; only its
// SHA-256 hash.
//
// Fields:
//  ID        – primary key identifier.
//  AccountID – owner of the token.
//  TokenHash – SHA-256 hex digest of the token value.
//  ExpiresAt – expiration timestamp of the token.
//  RevokedAt – when the token was revoked (null if still active).
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	AccountID uint64     // refresh_tokens.account_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
