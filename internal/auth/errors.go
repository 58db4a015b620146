// AngelaMos | 2026
// errors.go

package auth

import (
	"net/http"

	"github.com/carterperez-dev/nexus/internal/core"
)

var (
	ErrEmailExists = core.NewAppError(
		core.ErrDuplicateKey,
		"User with this email already exists",
		http.StatusBadRequest,
		"DUPLICATE_EMAIL",
	)

	ErrInvalidCredentials = core.NewAppError(
		core.ErrUnauthorized,
		"Invalid email or password",
		http.StatusUnauthorized,
		"INVALID_CREDENTIALS",
	)

	ErrInvalidRefreshToken = core.NewAppError(
		core.ErrTokenInvalid,
		"Invalid or expired refresh token",
		http.StatusUnauthorized,
		"INVALID_REFRESH_TOKEN",
	)

	ErrInvalidResetToken = core.NewAppError(
		core.ErrTokenInvalid,
		"Invalid or expired reset token",
		http.StatusBadRequest,
		"INVALID_RESET_TOKEN",
	)

	ErrInvalidVerificationToken = core.NewAppError(
		core.ErrTokenInvalid,
		"Invalid verification token",
		http.StatusBadRequest,
		"INVALID_VERIFICATION_TOKEN",
	)

	ErrResetEmailFailed = core.ExternalServiceError("Failed to send reset email. Please try again.")

	ErrSessionNotFound = core.NotFoundError("session")
)

const forgotPasswordMessage = "If an account with that email exists, we sent a password reset link"
