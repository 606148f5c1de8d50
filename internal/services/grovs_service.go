package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"grivyzom/internal/calendar"
	"grivyzom/internal/domain"
	"grivyzom/internal/repos"

	"github.com/asaskevich/EventBus"
	applog "grivyzom/internal/log"
)

var (
	ErrAlreadyClaimed    = errors.New("daily reward already claimed today")
	ErrAlreadyCompleted  = errors.New("event already completed")
	ErrEventNotRewarding = errors.New("event grants no grovs")
	ErrNotPayableInGrovs = errors.New("some cart products cannot be bought with grovs")
)

// GrovsService owns the reward-point ledger: balances, the daily login
// streak, event rewards and grovs purchases.
type GrovsService struct {
	Repo   *repos.GrovsRepo
	Users  *repos.UserRepo
	Events *repos.EventRepo

	// Now is the clock; tests pin it.
	Now func() time.Time
}

func NewGrovsService(repo *repos.GrovsRepo, users *repos.UserRepo, events *repos.EventRepo) *GrovsService {
	return &GrovsService{Repo: repo, Users: users, Events: events, Now: time.Now}
}

// SubscribeAuth wires the one-directional auth->grovs flow: login snapshots
// arrive over the bus and the streak record copies what it needs. The
// handlers must never call back into the auth service; doing so would
// re-trigger the same publication and loop.
func (s *GrovsService) SubscribeAuth(bus EventBus.Bus) error {
	if err := bus.Subscribe(TopicLogin, s.onLogin); err != nil {
		return err
	}
	return bus.Subscribe(TopicLogout, s.onLogout)
}

func (s *GrovsService) onLogin(u *domain.User) {
	streak, err := s.Repo.Streak(u.ID)
	if err != nil {
		applog.Job("grovs.login.sync.fail", err, map[string]any{"user_id": u.ID})
		return
	}
	today := s.Now().Format("2006-01-02")
	if streak.LastLoginDate == today {
		return
	}
	streak.UserID = u.ID
	streak.LastLoginDate = today
	streak.TotalDailyLogins++
	if err := s.Repo.SaveStreak(&streak); err != nil {
		applog.Job("grovs.login.sync.fail", err, map[string]any{"user_id": u.ID})
	}
}

func (s *GrovsService) onLogout(userID string) {
	// Server-side state is authoritative; nothing to reset here. The client
	// clears its mirror on logout.
	applog.Job("grovs.logout", nil, map[string]any{"user_id": userID})
}

// ---- balance ----

type BalanceView struct {
	Balance              int64                   `json:"balance"`
	TotalEarned          int64                   `json:"total_earned"`
	TotalSpent           int64                   `json:"total_spent"`
	CurrentStreak        int                     `json:"current_streak"`
	LongestStreak        int                     `json:"longest_streak"`
	LastDailyClaim       string                  `json:"last_daily_claim,omitempty"`
	DailyRewardAvailable bool                    `json:"daily_reward_available"`
	NextMilestone        *domain.StreakMilestone `json:"next_streak_milestone,omitempty"`
}

func (s *GrovsService) Balance(userID string) (BalanceView, error) {
	u, err := s.Users.ByID(userID)
	if err != nil {
		return BalanceView{}, err
	}
	streak, err := s.Repo.Streak(userID)
	if err != nil {
		return BalanceView{}, err
	}
	reward := domain.CalculateDailyReward(streak.CurrentStreak)
	return BalanceView{
		Balance:              u.GrovsBalance,
		TotalEarned:          u.TotalGrovsEarned,
		TotalSpent:           u.TotalGrovsSpent,
		CurrentStreak:        streak.CurrentStreak,
		LongestStreak:        streak.LongestStreak,
		LastDailyClaim:       streak.LastRewardClaim,
		DailyRewardAvailable: s.rewardAvailable(streak.LastRewardClaim),
		NextMilestone:        reward.NextMilestone,
	}, nil
}

func (s *GrovsService) CanAfford(userID string, grovs int64) bool {
	u, err := s.Users.ByID(userID)
	return err == nil && u.GrovsBalance >= grovs
}

// rewardAvailable compares calendar days only: a claim late yesterday makes
// the reward available right after midnight, not 24h later.
func (s *GrovsService) rewardAvailable(lastClaim string) bool {
	if lastClaim == "" {
		return true
	}
	t, err := time.Parse(time.RFC3339, lastClaim)
	if err != nil {
		return true
	}
	return calendar.DaysBetween(t, s.Now()) >= 1
}

// ---- daily reward ----

type DailyRewardResult struct {
	Reward           domain.DailyReward      `json:"reward"`
	MilestoneReached *domain.StreakMilestone `json:"milestone_reached,omitempty"`
	NewBalance       int64                   `json:"new_balance"`
	TransactionID    string                  `json:"transaction_id"`
	CanClaimTomorrow string                  `json:"can_claim_tomorrow"`
}

// ClaimDailyReward advances the streak and pays out base + capped streak
// bonus; crossing a milestone day additionally pays the milestone bonus as
// its own ledger entry, exactly once per milestone.
func (s *GrovsService) ClaimDailyReward(userID string) (*DailyRewardResult, error) {
	streak, err := s.Repo.Streak(userID)
	if err != nil {
		return nil, err
	}
	if !s.rewardAvailable(streak.LastRewardClaim) {
		return nil, ErrAlreadyClaimed
	}

	now := s.Now()
	newStreak := 1
	if streak.LastRewardClaim != "" {
		if last, err := time.Parse(time.RFC3339, streak.LastRewardClaim); err == nil {
			if calendar.DaysBetween(last, now) == 1 {
				newStreak = streak.CurrentStreak + 1
			}
			// A gap greater than one day resets to 1, never 0.
		}
	}

	reward := domain.CalculateDailyReward(newStreak)
	entry, err := s.Repo.Apply(userID, domain.TxDailyLogin, reward.TotalGrovs,
		fmt.Sprintf("Login diario (Día %d)", newStreak), "", "", "", "")
	if err != nil {
		return nil, err
	}
	newBalance := entry.BalanceAfter

	var reached *domain.StreakMilestone
	if m := domain.MilestoneFor(newStreak); m != nil && !milestoneRecorded(streak.MilestonesReached, m.Days) {
		bonus, err := s.Repo.Apply(userID, domain.TxStreakBonus, m.BonusGrovs, m.Title, "", "", "", "")
		if err != nil {
			return nil, err
		}
		newBalance = bonus.BalanceAfter
		reached = m
		streak.MilestonesReached = appendMilestone(streak.MilestonesReached, m.Days)
	}

	streak.UserID = userID
	streak.CurrentStreak = newStreak
	if newStreak > streak.LongestStreak {
		streak.LongestStreak = newStreak
	}
	streak.LastLoginDate = now.Format("2006-01-02")
	streak.LastRewardClaim = now.Format(time.RFC3339)
	if err := s.Repo.SaveStreak(&streak); err != nil {
		return nil, err
	}
	if err := s.Repo.SyncUserStreak(&streak); err != nil {
		return nil, err
	}

	return &DailyRewardResult{
		Reward:           reward,
		MilestoneReached: reached,
		NewBalance:       newBalance,
		TransactionID:    entry.ID,
		CanClaimTomorrow: now.AddDate(0, 0, 1).Format("2006-01-02"),
	}, nil
}

func milestoneRecorded(recorded string, days int) bool {
	for _, p := range strings.Split(recorded, ",") {
		if p == strconv.Itoa(days) {
			return true
		}
	}
	return false
}

func appendMilestone(recorded string, days int) string {
	if recorded == "" {
		return strconv.Itoa(days)
	}
	return recorded + "," + strconv.Itoa(days)
}

// ---- event rewards ----

type EventRewardResult struct {
	GrovsEarned   int64  `json:"grovs_earned"`
	NewBalance    int64  `json:"new_balance"`
	TransactionID string `json:"transaction_id"`
	EventTitle    string `json:"event_title"`
}

func (s *GrovsService) CompleteEvent(userID, eventID string) (*EventRewardResult, error) {
	ev, err := s.Events.Get(eventID)
	if err != nil {
		return nil, err
	}
	if ev.GrovsReward <= 0 {
		return nil, ErrEventNotRewarding
	}
	if done, err := s.Repo.HasCompletedEvent(userID, eventID); err != nil {
		return nil, err
	} else if done {
		return nil, ErrAlreadyCompleted
	}

	entry, err := s.Repo.Apply(userID, domain.TxEventCompletion, ev.GrovsReward,
		"Evento completado: "+ev.Title, eventID, "event", "", "")
	if err != nil {
		return nil, err
	}
	if err := s.Repo.RecordEventCompletion(userID, eventID, ev.GrovsReward); err != nil {
		return nil, err
	}
	return &EventRewardResult{
		GrovsEarned:   ev.GrovsReward,
		NewBalance:    entry.BalanceAfter,
		TransactionID: entry.ID,
		EventTitle:    ev.Title,
	}, nil
}

// ---- cashback ----

// AwardCashback credits the grovs earned back from a money purchase.
func (s *GrovsService) AwardCashback(userID string, grovs int64, orderID string) error {
	if grovs <= 0 || userID == "" {
		return nil
	}
	_, err := s.Repo.Apply(userID, domain.TxPurchaseCashback, grovs,
		"Cashback de compra", orderID, "purchase", "", "")
	return err
}

// ---- transactions ----

type TransactionsPage struct {
	Transactions []domain.GrovTransaction `json:"transactions"`
	Total        int                      `json:"total"`
	Page         int                      `json:"page"`
	PerPage      int                      `json:"per_page"`
	TotalPages   int                      `json:"total_pages"`
}

// Transactions returns one page, newest first. Each fetch replaces the
// caller's view; pages are never meant to be appended.
func (s *GrovsService) Transactions(userID string, page, perPage int) (TransactionsPage, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	rows, total, err := s.Repo.Transactions(userID, perPage, (page-1)*perPage)
	if err != nil {
		return TransactionsPage{}, err
	}
	return TransactionsPage{
		Transactions: rows,
		Total:        total,
		Page:         page,
		PerPage:      perPage,
		TotalPages:   (total + perPage - 1) / perPage,
	}, nil
}

// ---- admin ----

// Adjust applies a manual admin movement. txType must be one of the
// admin_* transaction types.
func (s *GrovsService) Adjust(userID string, amount int64, txType, adminID, reason string) (*domain.GrovTransaction, error) {
	switch txType {
	case domain.TxAdminAdjustment, domain.TxAdminGrant, domain.TxAdminDeduct:
	default:
		return nil, fmt.Errorf("not an admin transaction type: %s", txType)
	}
	return s.Repo.Apply(userID, txType, amount, "Ajuste manual", "", "manual", adminID, reason)
}
