package domain

// Grov transaction types. Positive amounts earn, negative spend; the
// admin_* types carry admin context fields.
const (
	TxDailyLogin       = "daily_login"
	TxStreakBonus      = "login_streak_bonus"
	TxEventCompletion  = "event_completion"
	TxPurchaseCashback = "purchase_cashback"
	TxStorePurchase    = "store_purchase"
	TxAdminAdjustment  = "admin_adjustment"
	TxAdminGrant       = "admin_grant"
	TxAdminDeduct      = "admin_deduct"
)

const (
	TxPending   = "pending"
	TxCompleted = "completed"
	TxFailed    = "failed"
	TxCancelled = "cancelled"
)

// GrovTransaction is an immutable ledger entry. BalanceAfter always equals
// the previous balance plus Amount.
type GrovTransaction struct {
	ID           string `db:"id" json:"id"`
	UserID       string `db:"user_id" json:"user_id"`
	Type         string `db:"type" json:"type"`
	Amount       int64  `db:"amount" json:"amount"`
	BalanceAfter int64  `db:"balance_after" json:"balance_after"`
	Status       string `db:"status" json:"status"`
	Description  string `db:"description" json:"description"`

	ReferenceID   string `db:"reference_id" json:"reference_id,omitempty"`
	ReferenceType string `db:"reference_type" json:"reference_type,omitempty"` // event|product|purchase|manual

	AdminUserID string `db:"admin_user_id" json:"admin_user_id,omitempty"`
	AdminReason string `db:"admin_reason" json:"admin_reason,omitempty"`

	CreatedAt string `db:"created_at" json:"created_at"`
}

var earnTypes = map[string]bool{
	TxDailyLogin:       true,
	TxStreakBonus:      true,
	TxEventCompletion:  true,
	TxPurchaseCashback: true,
	TxAdminGrant:       true,
}

func IsEarnType(t string) bool { return earnTypes[t] }

// LoginStreak tracks consecutive daily logins. CurrentStreak resets to 1
// (never 0) on a gap of more than one day; MilestonesReached only grows.
type LoginStreak struct {
	UserID            string `db:"user_id" json:"user_id"`
	CurrentStreak     int    `db:"current_streak" json:"current_streak"`
	LongestStreak     int    `db:"longest_streak" json:"longest_streak"`
	LastLoginDate     string `db:"last_login_date" json:"last_login_date"` // YYYY-MM-DD
	LastRewardClaim   string `db:"last_reward_claim" json:"last_reward_claim"`
	TotalDailyLogins  int    `db:"total_daily_logins" json:"total_daily_logins"`
	MilestonesReached string `db:"milestones_reached" json:"-"` // comma-separated day counts
}

type StreakMilestone struct {
	Days       int    `json:"days"`
	BonusGrovs int64  `json:"bonus_grovs"`
	Title      string `json:"title"`
}

// Daily login reward tuning. The bonus grows half a grov per streak day and
// caps at MaxStreakBonus.
const (
	DailyBaseReward  = 10
	StreakMultiplier = 0.5
	MaxStreakBonus   = 50
)

// StreakMilestones is the fixed, ordered milestone table.
var StreakMilestones = []StreakMilestone{
	{Days: 7, BonusGrovs: 50, Title: "¡Racha de 7 días!"},
	{Days: 14, BonusGrovs: 100, Title: "¡Racha de 14 días!"},
	{Days: 30, BonusGrovs: 300, Title: "¡Racha de 30 días!"},
	{Days: 60, BonusGrovs: 750, Title: "¡Racha de 60 días!"},
	{Days: 90, BonusGrovs: 1500, Title: "¡Racha de 90 días!"},
}

type DailyReward struct {
	GrovsAmount   int64            `json:"grovs_amount"`
	StreakBonus   int64            `json:"streak_bonus"`
	TotalGrovs    int64            `json:"total_grovs"`
	CurrentStreak int              `json:"current_streak"`
	NextMilestone *StreakMilestone `json:"next_milestone,omitempty"`
}

// CalculateDailyReward computes the reward for a given streak: the base
// amount plus a capped streak bonus, and the first milestone past the
// streak (nil when none remains beyond 90 days).
func CalculateDailyReward(streak int) DailyReward {
	bonus := float64(streak) * StreakMultiplier
	if bonus > MaxStreakBonus {
		bonus = MaxStreakBonus
	}
	r := DailyReward{
		GrovsAmount:   DailyBaseReward,
		StreakBonus:   int64(bonus),
		TotalGrovs:    DailyBaseReward + int64(bonus),
		CurrentStreak: streak,
	}
	for i := range StreakMilestones {
		if StreakMilestones[i].Days > streak {
			m := StreakMilestones[i]
			r.NextMilestone = &m
			break
		}
	}
	return r
}

// MilestoneFor returns the milestone whose day count equals streak, if any.
func MilestoneFor(streak int) *StreakMilestone {
	for i := range StreakMilestones {
		if StreakMilestones[i].Days == streak {
			m := StreakMilestones[i]
			return &m
		}
	}
	return nil
}
