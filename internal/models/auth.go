package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the issued tokens and user info.
type LoginResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresIn    int64     `json:"expires_in"`
	User         UserInfo  `json:"user"`
	IssuedAt     time.Time `json:"issued_at"`
}

// RefreshTokenRequest exchanges a refresh token for a new access token.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenResponse returns the refreshed tokens.
type RefreshTokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresIn    int64     `json:"expires_in"`
	IssuedAt     time.Time `json:"issued_at"`
}

// ChangePasswordRequest payload for updating a password.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

// UserInfo describes the authenticated user in responses.
type UserInfo struct {
	ID        string   `json:"id"`
	Username  string   `json:"username"`
	Name      string   `json:"name"`
	Role      UserRole `json:"role"`
	ProgramID *string  `json:"program_id,omitempty"`
	CollegeID *string  `json:"college_id,omitempty"`
}

// JWTClaims represents the JWT payload for access tokens. Program and college
// ids travel in the token so row-level visibility can be resolved without a
// user lookup per request.
type JWTClaims struct {
	UserID    string   `json:"user_id"`
	Role      UserRole `json:"role"`
	Username  string   `json:"username"`
	ProgramID string   `json:"program_id,omitempty"`
	CollegeID string   `json:"college_id,omitempty"`
	jwt.RegisteredClaims
}

// Scope is the row-level visibility context derived from JWT claims. The
// attainment core never sees it; only list queries are scoped.
type Scope struct {
	Role      UserRole
	UserID    string
	ProgramID string
	CollegeID string
}

// ScopeFromClaims builds a Scope from token claims.
func ScopeFromClaims(claims *JWTClaims) Scope {
	if claims == nil {
		return Scope{}
	}
	return Scope{
		Role:      claims.Role,
		UserID:    claims.UserID,
		ProgramID: claims.ProgramID,
		CollegeID: claims.CollegeID,
	}
}
