package repos

import (
	"database/sql"
	"errors"

	"grivyzom/internal/domain"

	"github.com/jmoiron/sqlx"
	"github.com/google/uuid"
)

var ErrInsufficientGrovs = errors.New("insufficient grovs balance")

type GrovsRepo struct{ db *sqlx.DB }

func NewGrovsRepo(db *sqlx.DB) *GrovsRepo { return &GrovsRepo{db: db} }

// Apply records one ledger entry atomically: it reads the current balance,
// writes the transaction with balance_after = balance + amount, and updates
// the user's mirror fields. A debit that would go negative fails with
// ErrInsufficientGrovs and writes nothing.
func (r *GrovsRepo) Apply(userID, txType string, amount int64, desc, refID, refType, adminID, adminReason string) (*domain.GrovTransaction, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var balance int64
	if err := tx.Get(&balance, `SELECT grovs_balance FROM users WHERE id = ?`, userID); err != nil {
		return nil, err
	}
	after := balance + amount
	if after < 0 {
		return nil, ErrInsufficientGrovs
	}

	entry := &domain.GrovTransaction{
		ID:            uuid.NewString(),
		UserID:        userID,
		Type:          txType,
		Amount:        amount,
		BalanceAfter:  after,
		Status:        domain.TxCompleted,
		Description:   desc,
		ReferenceID:   refID,
		ReferenceType: refType,
		AdminUserID:   adminID,
		AdminReason:   adminReason,
	}
	if _, err := tx.Exec(`
		INSERT INTO grov_transactions(id, user_id, type, amount, balance_after, status,
		  description, reference_id, reference_type, admin_user_id, admin_reason)
		VALUES(?,?,?,?,?,?,?,?,?,?,?)
	`, entry.ID, entry.UserID, entry.Type, entry.Amount, entry.BalanceAfter, entry.Status,
		entry.Description, entry.ReferenceID, entry.ReferenceType, entry.AdminUserID, entry.AdminReason); err != nil {
		return nil, err
	}

	set := `grovs_balance = ?`
	args := []any{after}
	if amount > 0 {
		set += `, total_grovs_earned = total_grovs_earned + ?`
		args = append(args, amount)
	} else if amount < 0 {
		set += `, total_grovs_spent = total_grovs_spent + ?`
		args = append(args, -amount)
	}
	args = append(args, userID)
	if _, err := tx.Exec(`UPDATE users SET `+set+` WHERE id = ?`, args...); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return entry, nil
}

const txCols = `
  id, user_id, type, amount, balance_after, status, description,
  reference_id, reference_type, admin_user_id, admin_reason,
  COALESCE(created_at,'') AS created_at`

func (r *GrovsRepo) Transactions(userID string, limit, offset int) ([]domain.GrovTransaction, int, error) {
	out := []domain.GrovTransaction{}
	if err := r.db.Select(&out, `
	  SELECT `+txCols+` FROM grov_transactions
	  WHERE user_id = ?
	  ORDER BY created_at DESC, rowid DESC
	  LIMIT ? OFFSET ?
	`, userID, limit, offset); err != nil {
		return nil, 0, err
	}
	var total int
	if err := r.db.Get(&total, `SELECT COUNT(*) FROM grov_transactions WHERE user_id = ?`, userID); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *GrovsRepo) Recent(userID string, limit int) ([]domain.GrovTransaction, error) {
	out := []domain.GrovTransaction{}
	err := r.db.Select(&out, `
	  SELECT `+txCols+` FROM grov_transactions
	  WHERE user_id = ? ORDER BY created_at DESC, rowid DESC LIMIT ?
	`, userID, limit)
	return out, err
}

// ---- streaks ----

func (r *GrovsRepo) Streak(userID string) (domain.LoginStreak, error) {
	var s domain.LoginStreak
	err := r.db.Get(&s, `
	  SELECT user_id, current_streak, longest_streak, last_login_date,
	         last_reward_claim, total_daily_logins, milestones_reached
	  FROM login_streaks WHERE user_id = ?
	`, userID)
	if err == sql.ErrNoRows {
		return domain.LoginStreak{UserID: userID}, nil
	}
	return s, err
}

func (r *GrovsRepo) SaveStreak(s *domain.LoginStreak) error {
	_, err := r.db.Exec(`
		INSERT INTO login_streaks(user_id, current_streak, longest_streak, last_login_date,
		  last_reward_claim, total_daily_logins, milestones_reached)
		VALUES(?,?,?,?,?,?,?)
		ON CONFLICT(user_id) DO UPDATE SET
		  current_streak = excluded.current_streak,
		  longest_streak = excluded.longest_streak,
		  last_login_date = excluded.last_login_date,
		  last_reward_claim = excluded.last_reward_claim,
		  total_daily_logins = excluded.total_daily_logins,
		  milestones_reached = excluded.milestones_reached
	`, s.UserID, s.CurrentStreak, s.LongestStreak, s.LastLoginDate,
		s.LastRewardClaim, s.TotalDailyLogins, s.MilestonesReached)
	return err
}

// SyncUserStreak mirrors streak counters onto the user record so a profile
// fetch alone can populate the rewards view.
func (r *GrovsRepo) SyncUserStreak(s *domain.LoginStreak) error {
	_, err := r.db.Exec(`
		UPDATE users SET current_login_streak = ?, longest_login_streak = ?, last_daily_claim = ?
		WHERE id = ?
	`, s.CurrentStreak, s.LongestStreak, s.LastRewardClaim, s.UserID)
	return err
}

// ---- event participation ----

func (r *GrovsRepo) HasCompletedEvent(userID, eventID string) (bool, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM event_participations WHERE user_id = ? AND event_id = ?`, userID, eventID)
	return n > 0, err
}

func (r *GrovsRepo) RecordEventCompletion(userID, eventID string, reward int64) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`
		INSERT INTO event_participations(id, user_id, event_id, status, grovs_reward)
		VALUES(?,?,?,?,?)
	`, uuid.NewString(), userID, eventID, "completed", reward); err != nil {
		return err
	}
	if _, err := tx.Exec(`
		UPDATE events SET current_participants = current_participants + 1 WHERE id = ?
	`, eventID); err != nil {
		return err
	}
	return tx.Commit()
}

// ---- admin stats ----

type GrovsStats struct {
	Circulation    int64 `db:"circulation" json:"total_grovs_in_circulation"`
	TotalEarned    int64 `db:"total_earned" json:"total_grovs_earned_all_time"`
	TotalSpent     int64 `db:"total_spent" json:"total_grovs_spent_all_time"`
	UsersWithGrovs int   `db:"users_with" json:"active_users_with_grovs"`
}

type TopUser struct {
	UserID   string `db:"id" json:"user_id"`
	Username string `db:"username" json:"username"`
	Amount   int64  `db:"amount" json:"amount"`
}

func (r *GrovsRepo) Stats() (GrovsStats, error) {
	var s GrovsStats
	err := r.db.Get(&s, `
	  SELECT COALESCE(SUM(grovs_balance),0) AS circulation,
	         COALESCE(SUM(total_grovs_earned),0) AS total_earned,
	         COALESCE(SUM(total_grovs_spent),0) AS total_spent,
	         COALESCE(SUM(grovs_balance > 0),0) AS users_with
	  FROM users
	`)
	return s, err
}

func (r *GrovsRepo) TopEarners(limit int) ([]TopUser, error) {
	out := []TopUser{}
	err := r.db.Select(&out, `
	  SELECT id, username, total_grovs_earned AS amount FROM users
	  ORDER BY total_grovs_earned DESC LIMIT ?
	`, limit)
	return out, err
}

func (r *GrovsRepo) TopSpenders(limit int) ([]TopUser, error) {
	out := []TopUser{}
	err := r.db.Select(&out, `
	  SELECT id, username, total_grovs_spent AS amount FROM users
	  ORDER BY total_grovs_spent DESC LIMIT ?
	`, limit)
	return out, err
}
