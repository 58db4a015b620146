// AngelaMos | 2026
// entity.go

package user

import (
	"strings"
	"time"
)

const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
)

type User struct {
	ID                    string     `db:"id"`
	Email                 string     `db:"email"`
	PasswordHash          string     `db:"password_hash"`
	FirstName             string     `db:"first_name"`
	LastName              string     `db:"last_name"`
	Avatar                *string    `db:"avatar"`
	Role                  string     `db:"role"`
	OrganizationID        *string    `db:"organization_id"`
	EmailVerified         bool       `db:"email_verified"`
	VerificationTokenHash *string    `db:"verification_token_hash"`
	ResetTokenHash        *string    `db:"reset_token_hash"`
	ResetTokenExpiresAt   *time.Time `db:"reset_token_expires_at"`
	NotifyEmail           bool       `db:"notify_email"`
	NotifyPush            bool       `db:"notify_push"`
	NotifyWeeklyDigest    bool       `db:"notify_weekly_digest"`
	TokenVersion          int        `db:"token_version"`
	CreatedAt             time.Time  `db:"created_at"`
	UpdatedAt             time.Time  `db:"updated_at"`
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Initials are the upper-cased first letters of first and last name.
func (u *User) Initials() string {
	var b strings.Builder
	for _, part := range []string{u.FirstName, u.LastName} {
		if r := []rune(strings.TrimSpace(part)); len(r) > 0 {
			b.WriteString(strings.ToUpper(string(r[0])))
		}
	}
	return b.String()
}

func (u *User) IsOwner() bool {
	return u.Role == RoleOwner
}

func (u *User) HasOrganization() bool {
	return u.OrganizationID != nil && *u.OrganizationID != ""
}

// OrgID is the organization ID or "" when the user has none.
func (u *User) OrgID() string {
	if u.OrganizationID == nil {
		return ""
	}
	return *u.OrganizationID
}
