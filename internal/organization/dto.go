// AngelaMos | 2026
// dto.go

package organization

import (
	"time"

	"github.com/carterperez-dev/nexus/internal/user"
)

type Settings struct {
	Timezone   string `json:"timezone"`
	DateFormat string `json:"date_format"`
	Currency   string `json:"currency"`
}

type SettingsUpdate struct {
	Timezone   *string `json:"timezone,omitempty"    validate:"omitempty,min=1,max=64"`
	DateFormat *string `json:"date_format,omitempty" validate:"omitempty,oneof=MM/DD/YYYY DD/MM/YYYY YYYY-MM-DD"`
	Currency   *string `json:"currency,omitempty"    validate:"omitempty,len=3,uppercase"`
}

type UpdateOrganizationRequest struct {
	Name     *string         `json:"name,omitempty"     validate:"omitempty,min=1,max=100"`
	Logo     *string         `json:"logo,omitempty"     validate:"omitempty,url,max=2048"`
	Settings *SettingsUpdate `json:"settings,omitempty"`
}

type InviteRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
	Role  string `json:"role"  validate:"omitempty,oneof=admin member"`
}

// AcceptInviteRequest carries names and password only for invitees who do
// not have an account yet.
type AcceptInviteRequest struct {
	Token     string `json:"token"      validate:"required"`
	FirstName string `json:"first_name" validate:"omitempty,max=50"`
	LastName  string `json:"last_name"  validate:"omitempty,max=50"`
	Password  string `json:"password"   validate:"omitempty,min=8,max=128"`
}

type ChangeRoleRequest struct {
	Role string `json:"role"`
}

type OwnerSummary struct {
	ID        string  `json:"id"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Email     string  `json:"email"`
	Avatar    *string `json:"avatar"`
}

type OrganizationResponse struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Slug        string        `json:"slug"`
	Logo        *string       `json:"logo"`
	Plan        string        `json:"plan"`
	Settings    Settings      `json:"settings"`
	Owner       *OwnerSummary `json:"owner"`
	MemberCount int           `json:"member_count"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

type MemberResponse struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	Avatar        *string   `json:"avatar"`
	Role          string    `json:"role"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
}

type InviterSummary struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type InviteResponse struct {
	ID        string          `json:"id"`
	Email     string          `json:"email"`
	Role      string          `json:"role"`
	ExpiresAt time.Time       `json:"expires_at"`
	InvitedBy *InviterSummary `json:"invited_by,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

type RoleChangeResponse struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

func toOrganizationResponse(o *Organization) *OrganizationResponse {
	return &OrganizationResponse{
		ID:   o.ID,
		Name: o.Name,
		Slug: o.Slug,
		Logo: o.Logo,
		Plan: o.Plan,
		Settings: Settings{
			Timezone:   o.Timezone,
			DateFormat: o.DateFormat,
			Currency:   o.Currency,
		},
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

func toMemberResponse(u *user.User) MemberResponse {
	return MemberResponse{
		ID:            u.ID,
		Email:         u.Email,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Avatar:        u.Avatar,
		Role:          u.Role,
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
	}
}

func toInviteResponse(i *TeamInvite) InviteResponse {
	return InviteResponse{
		ID:        i.ID,
		Email:     i.Email,
		Role:      i.Role,
		ExpiresAt: i.ExpiresAt,
		CreatedAt: i.CreatedAt,
	}
}
