// AngelaMos | 2026
// dto.go

package auth

import (
	"time"

	"github.com/carterperez-dev/nexus/internal/user"
)

type RegisterRequest struct {
	Email            string `json:"email"             validate:"required,email,max=255"`
	Password         string `json:"password"          validate:"required,min=8,max=128"`
	FirstName        string `json:"first_name"        validate:"required,min=1,max=50"`
	LastName         string `json:"last_name"         validate:"required,min=1,max=50"`
	OrganizationName string `json:"organization_name" validate:"required,min=1,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,max=128"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token"    validate:"required"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type TokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int       `json:"expires_in"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type AuthResponse struct {
	User         user.UserResponse         `json:"user"`
	Organization *user.OrganizationSummary `json:"organization"`
	Tokens       TokenResponse             `json:"tokens"`
}

type SessionInfo struct {
	ID        string    `json:"id"`
	UserAgent string    `json:"user_agent"`
	IPAddress string    `json:"ip_address"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type SessionsResponse struct {
	Sessions []SessionInfo `json:"sessions"`
}

// ClientInfo is recorded with each refresh token and login activity.
type ClientInfo struct {
	UserAgent string
	IPAddress string
}
