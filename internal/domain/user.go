package domain

type User struct {
	ID                string `db:"id" json:"id"`
	Username          string `db:"username" json:"username"`
	MinecraftUsername string `db:"minecraft_username" json:"minecraft_username"`
	Email             string `db:"email" json:"email"`
	Hash              string `db:"password_hash" json:"-"`
	Role              string `db:"role" json:"role"`
	AvatarURL         string `db:"avatar_url" json:"avatar_url,omitempty"`
	Bio               string `db:"bio" json:"bio,omitempty"`
	DateJoined        string `db:"date_joined" json:"date_joined"`

	// Grovs mirror fields, kept on the user record so a single profile
	// fetch can pre-populate the rewards view.
	GrovsBalance       int64  `db:"grovs_balance" json:"grovs_balance"`
	TotalGrovsEarned   int64  `db:"total_grovs_earned" json:"total_grovs_earned"`
	TotalGrovsSpent    int64  `db:"total_grovs_spent" json:"total_grovs_spent"`
	CurrentLoginStreak int    `db:"current_login_streak" json:"current_login_streak"`
	LongestLoginStreak int    `db:"longest_login_streak" json:"longest_login_streak"`
	LastDailyClaim     string `db:"last_daily_claim" json:"last_daily_reward_claim,omitempty"`
}

// Staff roles, in ascending order of privilege. PLAYER is everyone else.
const (
	RolePlayer    = "PLAYER"
	RoleHelper    = "HELPER"
	RoleBuilder   = "BUILDER"
	RoleModerator = "MODERATOR"
	RoleAdmin     = "ADMIN"
	RoleDeveloper = "DEVELOPER"
)

var staffRoles = map[string]bool{
	RoleHelper:    true,
	RoleBuilder:   true,
	RoleModerator: true,
	RoleAdmin:     true,
	RoleDeveloper: true,
}

func (u *User) IsStaff() bool { return u != nil && staffRoles[u.Role] }

func ValidRole(r string) bool { return r == RolePlayer || staffRoles[r] }
