// AngelaMos | 2026
// dto.go

package user

import (
	"time"
)

type NotificationPreferences struct {
	Email        bool `json:"email"`
	Push         bool `json:"push"`
	WeeklyDigest bool `json:"weekly_digest"`
}

type NotificationPreferencesUpdate struct {
	Email        *bool `json:"email,omitempty"`
	Push         *bool `json:"push,omitempty"`
	WeeklyDigest *bool `json:"weekly_digest,omitempty"`
}

type UpdateMeRequest struct {
	FirstName     *string                        `json:"first_name,omitempty"    validate:"omitempty,min=1,max=50"`
	LastName      *string                        `json:"last_name,omitempty"     validate:"omitempty,min=1,max=50"`
	Avatar        *string                        `json:"avatar,omitempty"        validate:"omitempty,url,max=2048"`
	Notifications *NotificationPreferencesUpdate `json:"notifications,omitempty"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,min=8,max=128"`
}

type DeleteMeRequest struct {
	Password string `json:"password" validate:"required"`
}

type UserResponse struct {
	ID             string                  `json:"id"`
	Email          string                  `json:"email"`
	FirstName      string                  `json:"first_name"`
	LastName       string                  `json:"last_name"`
	Avatar         *string                 `json:"avatar"`
	Role           string                  `json:"role"`
	OrganizationID *string                 `json:"organization_id"`
	EmailVerified  bool                    `json:"email_verified"`
	Notifications  NotificationPreferences `json:"notifications"`
	CreatedAt      time.Time               `json:"created_at"`
	UpdatedAt      time.Time               `json:"updated_at"`
}

// OrganizationSummary is the slice of an organization shown next to a user.
type OrganizationSummary struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Slug string  `json:"slug"`
	Logo *string `json:"logo"`
	Plan string  `json:"plan"`
}

type MeResponse struct {
	User         UserResponse         `json:"user"`
	Organization *OrganizationSummary `json:"organization"`
}

func ToUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:             u.ID,
		Email:          u.Email,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Avatar:         u.Avatar,
		Role:           u.Role,
		OrganizationID: u.OrganizationID,
		EmailVerified:  u.EmailVerified,
		Notifications: NotificationPreferences{
			Email:        u.NotifyEmail,
			Push:         u.NotifyPush,
			WeeklyDigest: u.NotifyWeeklyDigest,
		},
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func ToUserResponseList(users []User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, ToUserResponse(&u))
	}
	return responses
}
