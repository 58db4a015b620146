// AngelaMos | 2026
// errors.go

package user

import (
	"net/http"

	"github.com/carterperez-dev/nexus/internal/core"
)

var (
	ErrUserNotFound = core.NotFoundError("user")

	ErrCurrentPasswordIncorrect = core.NewAppError(
		core.ErrInvalidInput,
		"Current password is incorrect",
		http.StatusBadRequest,
		"INCORRECT_PASSWORD",
	)

	ErrPasswordIncorrect = core.NewAppError(
		core.ErrInvalidInput,
		"Password is incorrect",
		http.StatusBadRequest,
		"INCORRECT_PASSWORD",
	)

	ErrCannotDeleteOwner = core.NewAppError(
		core.ErrForbidden,
		"Organization owners cannot delete their account. Please transfer ownership first or delete the organization.",
		http.StatusBadRequest,
		"CANNOT_DELETE_OWNER",
	)
)
