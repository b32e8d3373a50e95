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

// LoginResponse returns the issued session token and user info.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	User        UserInfo  `json:"user"`
	IssuedAt    time.Time `json:"issued_at"`
}

// RegisterRequest is the self-registration payload. Username and password
// bounds mirror the registration policy; the password's uppercase and digit
// requirements are checked by the custom validator.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=20"`
	Email    string `json:"email" validate:"required,emailshape"`
	Password string `json:"password" validate:"required,regpassword"`
}

// ChangePasswordRequest payload for rotating a password. The minimum here
// is deliberately the weaker length-6 bar, distinct from registration.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

// UpdateRoleRequest payload for the admin role-change operation.
type UpdateRoleRequest struct {
	Role Role `json:"role" validate:"required,oneof=user manager admin"`
}

// UpdateStatusRequest payload for the admin activation toggle.
type UpdateStatusRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

// UserInfo describes the authenticated user in responses.
type UserInfo struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}

// JWTClaims is the JWT payload for session tokens.
type JWTClaims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
	jwt.RegisteredClaims
}

// AuthContext carries the authenticated principal through every operation
// that needs it. It is always passed explicitly, never held in package
// state.
type AuthContext struct {
	UserID   int64
	Username string
	Role     Role
}

// AuthContextFromClaims lowers verified token claims into an AuthContext.
func AuthContextFromClaims(claims *JWTClaims) AuthContext {
	return AuthContext{
		UserID:   claims.UserID,
		Username: claims.Username,
		Role:     claims.Role,
	}
}
