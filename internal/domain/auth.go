package domain

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessClaims mirrors the claims the backend puts into access tokens.
// The client only introspects them (unverified) to learn expiry; token
// verification is the server's job.
type AccessClaims struct {
	UserID   string `json:"user_id"`
	TenantID string `json:"tenant_id"`
	jwt.RegisteredClaims
}

// Credentials is the login payload (POST /auth/login).
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the account-creation payload (POST /auth/register).
type Registration struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

// TokenGrant is the envelope both login and register return.
type TokenGrant struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"` // Always "Bearer"
	ExpiresIn    int64  `json:"expires_in"`
	User         *User  `json:"user"`
}

type User struct {
	ID       string `json:"id"`
	TenantID string `json:"tenant_id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	FullName string `json:"full_name"`

	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`

	Settings   map[string]any `json:"settings"`
	IsActive   bool           `json:"is_active"`
	IsVerified bool           `json:"is_verified"`
	LastLogin  *time.Time     `json:"last_login"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// Tenant is the multi-tenant isolation scope. Every resource belongs to
// exactly one tenant and must never be visible across tenants.
type Tenant struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Slug      string         `json:"slug"`
	Domain    string         `json:"domain"`
	Settings  map[string]any `json:"settings"`
	IsActive  bool           `json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}
