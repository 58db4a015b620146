// AngelaMos | 2026
// errors.go

package organization

import (
	"net/http"

	"github.com/carterperez-dev/nexus/internal/core"
)

func badRequest(message, code string) *core.AppError {
	return core.NewAppError(core.ErrInvalidInput, message, http.StatusBadRequest, code)
}

var (
	ErrOrganizationNotFound = core.NotFoundError("organization")
	ErrMemberNotFound       = core.NotFoundError("member")
	ErrInviteNotFound       = core.NotFoundError("invite")

	ErrAlreadyMember = badRequest(
		"User is already a member of this organization", "ALREADY_MEMBER")
	ErrInviteExists = badRequest(
		"An invitation has already been sent to this email", "INVITE_EXISTS")
	ErrInvalidOrExpiredInvite = badRequest(
		"Invalid or expired invitation", "INVALID_INVITE")
	ErrAlreadyInOrganization = badRequest(
		"You are already a member of an organization", "ALREADY_IN_ORGANIZATION")
	ErrCannotRemoveOwner = badRequest(
		"Cannot remove the organization owner", "CANNOT_MODIFY_OWNER")
	ErrCannotChangeOwnerRole = badRequest(
		"Cannot change the owner's role", "CANNOT_MODIFY_OWNER")
	ErrCannotRemoveSelf = badRequest(
		`Cannot remove yourself. Please use "Leave Organization" instead.`, "CANNOT_REMOVE_SELF")
	ErrInvalidRole = badRequest(
		"Invalid role. Must be admin or member", "INVALID_ROLE")
	ErrNewAccountDetails = badRequest(
		"first_name, last_name and password are required to create your account", "VALIDATION_ERROR")

	ErrInviteEmailFailed = core.ExternalServiceError("Failed to send invitation email")
)
