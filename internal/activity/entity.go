// AngelaMos | 2026
// entity.go

package activity

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Action string

const (
	ActionUserRegistered      Action = "user.registered"
	ActionUserLogin           Action = "user.login"
	ActionUserLogout          Action = "user.logout"
	ActionUserProfileUpdated  Action = "user.profile_updated"
	ActionUserPasswordChanged Action = "user.password_changed"
	ActionOrgSettingsUpdated  Action = "org.settings_updated"
	ActionOrgLogoUpdated      Action = "org.logo_updated"
	ActionTeamMemberInvited   Action = "team.member_invited"
	ActionTeamMemberJoined    Action = "team.member_joined"
	ActionTeamMemberRemoved   Action = "team.member_removed"
	ActionTeamRoleChanged     Action = "team.role_changed"
	ActionPlanUpgraded        Action = "billing.plan_upgraded"
	ActionPlanDowngraded      Action = "billing.plan_downgraded"
	ActionPaymentSucceeded    Action = "billing.payment_success"
	ActionPaymentFailed       Action = "billing.payment_failed"
)

var knownActions = map[Action]struct{}{
	ActionUserRegistered:      {},
	ActionUserLogin:           {},
	ActionUserLogout:          {},
	ActionUserProfileUpdated:  {},
	ActionUserPasswordChanged: {},
	ActionOrgSettingsUpdated:  {},
	ActionOrgLogoUpdated:      {},
	ActionTeamMemberInvited:   {},
	ActionTeamMemberJoined:    {},
	ActionTeamMemberRemoved:   {},
	ActionTeamRoleChanged:     {},
	ActionPlanUpgraded:        {},
	ActionPlanDowngraded:      {},
	ActionPaymentSucceeded:    {},
	ActionPaymentFailed:       {},
}

func (a Action) Valid() bool {
	_, ok := knownActions[a]
	return ok
}

// Activity is an immutable audit event. Organization and user IDs are the
// relational UUIDs stored as strings.
type Activity struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	OrganizationID string             `bson:"organizationId"`
	UserID         string             `bson:"userId"`
	Action         Action             `bson:"action"`
	Details        map[string]any     `bson:"details"`
	Metadata       *Metadata          `bson:"metadata,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt"`
}

type Metadata struct {
	IP        string `bson:"ip,omitempty"`
	UserAgent string `bson:"userAgent,omitempty"`
}

// ActionText renders the sentence shown after the actor's name in the feed.
func (a *Activity) ActionText() string {
	switch a.Action {
	case ActionUserRegistered:
		return "joined the organization"
	case ActionUserLogin:
		return "logged in"
	case ActionUserLogout:
		return "logged out"
	case ActionUserProfileUpdated:
		return "updated their profile"
	case ActionUserPasswordChanged:
		return "changed their password"
	case ActionOrgSettingsUpdated:
		return "updated organization settings"
	case ActionOrgLogoUpdated:
		return "updated the organization logo"
	case ActionTeamMemberInvited:
		return fmt.Sprintf("invited %s to the team", a.detail("email"))
	case ActionTeamMemberJoined:
		return "joined the team"
	case ActionTeamMemberRemoved:
		return fmt.Sprintf("removed %s from the team", a.detail("memberName"))
	case ActionTeamRoleChanged:
		return fmt.Sprintf("changed %s's role to %s", a.detail("memberName"), a.detail("newRole"))
	case ActionPlanUpgraded:
		return fmt.Sprintf("upgraded to %s plan", a.detail("plan"))
	case ActionPlanDowngraded:
		return fmt.Sprintf("downgraded to %s plan", a.detail("plan"))
	case ActionPaymentSucceeded:
		return "payment processed successfully"
	case ActionPaymentFailed:
		return "payment failed"
	default:
		return string(a.Action)
	}
}

func (a *Activity) detail(key string) string {
	if v, ok := a.Details[key]; ok && v != nil {
		return fmt.Sprint(v)
	}
	return "unknown"
}
