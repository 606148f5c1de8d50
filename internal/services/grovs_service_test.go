package services_test

import (
	"testing"
	"time"

	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"grivyzom/internal/domain"
	"grivyzom/internal/repos"
	"grivyzom/internal/services"
)

func newGrovsFixture(t *testing.T) (*services.GrovsService, *repos.UserRepo, string) {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	userRepo := repos.NewUserRepo(db)
	svc := services.NewGrovsService(repos.NewGrovsRepo(db), userRepo, repos.NewEventRepo(db))
	u, err := userRepo.ByUsername("Steve")
	if err != nil {
		t.Fatal(err)
	}
	return svc, userRepo, u.ID
}

func pinClock(svc *services.GrovsService, iso string) {
	t, _ := time.Parse(time.RFC3339, iso)
	svc.Now = func() time.Time { return t }
}

func TestClaimDailyRewardFirstTime(t *testing.T) {
	svc, _, uid := newGrovsFixture(t)
	pinClock(svc, "2026-08-01T15:00:00Z")

	res, err := svc.ClaimDailyReward(uid)
	if err != nil {
		t.Fatal(err)
	}
	if res.Reward.CurrentStreak != 1 {
		t.Fatalf("streak = %d, want 1", res.Reward.CurrentStreak)
	}
	if res.Reward.TotalGrovs != 10 {
		t.Fatalf("reward = %d, want 10", res.Reward.TotalGrovs)
	}
	if res.NewBalance != 10 {
		t.Fatalf("balance = %d, want 10", res.NewBalance)
	}
	if res.CanClaimTomorrow != "2026-08-02" {
		t.Fatalf("next claim = %s", res.CanClaimTomorrow)
	}
}

func TestClaimDailyRewardTwiceSameDayFails(t *testing.T) {
	svc, _, uid := newGrovsFixture(t)
	pinClock(svc, "2026-08-01T08:00:00Z")
	if _, err := svc.ClaimDailyReward(uid); err != nil {
		t.Fatal(err)
	}

	// Later the same day, still blocked.
	pinClock(svc, "2026-08-01T23:59:00Z")
	if _, err := svc.ClaimDailyReward(uid); err != services.ErrAlreadyClaimed {
		t.Fatalf("err = %v, want ErrAlreadyClaimed", err)
	}

	// Right after midnight it opens again; day comparison ignores hours.
	pinClock(svc, "2026-08-02T00:01:00Z")
	res, err := svc.ClaimDailyReward(uid)
	if err != nil {
		t.Fatal(err)
	}
	if res.Reward.CurrentStreak != 2 {
		t.Fatalf("streak = %d, want 2", res.Reward.CurrentStreak)
	}
}

func TestClaimGapResetsStreakToOne(t *testing.T) {
	svc, _, uid := newGrovsFixture(t)
	pinClock(svc, "2026-08-01T12:00:00Z")
	if _, err := svc.ClaimDailyReward(uid); err != nil {
		t.Fatal(err)
	}
	pinClock(svc, "2026-08-02T12:00:00Z")
	if _, err := svc.ClaimDailyReward(uid); err != nil {
		t.Fatal(err)
	}

	// Two missed days.
	pinClock(svc, "2026-08-05T12:00:00Z")
	res, err := svc.ClaimDailyReward(uid)
	if err != nil {
		t.Fatal(err)
	}
	if res.Reward.CurrentStreak != 1 {
		t.Fatalf("streak = %d, want 1 after a gap", res.Reward.CurrentStreak)
	}

	// The longest streak survives the reset.
	view, err := svc.Balance(uid)
	if err != nil {
		t.Fatal(err)
	}
	if view.LongestStreak != 2 {
		t.Fatalf("longest = %d, want 2", view.LongestStreak)
	}
	if view.CurrentStreak != 1 {
		t.Fatalf("current = %d, want 1", view.CurrentStreak)
	}
}

func TestMilestonePaysOnceAsSeparateTransaction(t *testing.T) {
	svc, _, uid := newGrovsFixture(t)

	// Claim seven consecutive days.
	for d := 1; d <= 7; d++ {
		pinClock(svc, time.Date(2026, 8, d, 12, 0, 0, 0, time.UTC).Format(time.RFC3339))
		res, err := svc.ClaimDailyReward(uid)
		if err != nil {
			t.Fatalf("day %d: %v", d, err)
		}
		if d < 7 && res.MilestoneReached != nil {
			t.Fatalf("day %d: unexpected milestone", d)
		}
		if d == 7 {
			if res.MilestoneReached == nil || res.MilestoneReached.Days != 7 {
				t.Fatalf("day 7 should reach the 7-day milestone, got %+v", res.MilestoneReached)
			}
		}
	}

	page, err := svc.Transactions(uid, 1, 20)
	if err != nil {
		t.Fatal(err)
	}
	var daily, bonus int
	for _, tx := range page.Transactions {
		switch tx.Type {
		case domain.TxDailyLogin:
			daily++
		case domain.TxStreakBonus:
			bonus++
		}
	}
	if daily != 7 {
		t.Fatalf("daily_login rows = %d, want 7", daily)
	}
	if bonus != 1 {
		t.Fatalf("login_streak_bonus rows = %d, want 1", bonus)
	}

	// Every row's balance_after reflects the running balance.
	for i := 0; i < len(page.Transactions)-1; i++ {
		newer, older := page.Transactions[i], page.Transactions[i+1]
		if newer.BalanceAfter != older.BalanceAfter+newer.Amount {
			t.Fatalf("ledger breaks at %s: %d != %d + %d", newer.ID, newer.BalanceAfter, older.BalanceAfter, newer.Amount)
		}
	}
}

func TestCompleteEventPaysOnce(t *testing.T) {
	svc, _, uid := newGrovsFixture(t)

	res, err := svc.CompleteEvent(uid, "evt-pvp-night")
	if err != nil {
		t.Fatal(err)
	}
	if res.GrovsEarned != 150 {
		t.Fatalf("earned = %d, want 150", res.GrovsEarned)
	}
	if res.NewBalance != 150 {
		t.Fatalf("balance = %d, want 150", res.NewBalance)
	}

	if _, err := svc.CompleteEvent(uid, "evt-pvp-night"); err != services.ErrAlreadyCompleted {
		t.Fatalf("err = %v, want ErrAlreadyCompleted", err)
	}
}

func TestTransactionsPagination(t *testing.T) {
	svc, _, uid := newGrovsFixture(t)

	for d := 1; d <= 5; d++ {
		pinClock(svc, time.Date(2026, 8, d, 12, 0, 0, 0, time.UTC).Format(time.RFC3339))
		if _, err := svc.ClaimDailyReward(uid); err != nil {
			t.Fatal(err)
		}
	}

	page, err := svc.Transactions(uid, 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 5 || page.TotalPages != 3 || len(page.Transactions) != 2 {
		t.Fatalf("bad page: total=%d pages=%d len=%d", page.Total, page.TotalPages, len(page.Transactions))
	}

	last, err := svc.Transactions(uid, 3, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(last.Transactions) != 1 {
		t.Fatalf("last page len = %d, want 1", len(last.Transactions))
	}
}

func TestCanAfford(t *testing.T) {
	svc, _, uid := newGrovsFixture(t)
	pinClock(svc, "2026-08-01T12:00:00Z")
	if _, err := svc.ClaimDailyReward(uid); err != nil {
		t.Fatal(err)
	}
	if !svc.CanAfford(uid, 10) {
		t.Fatal("should afford 10")
	}
	if svc.CanAfford(uid, 11) {
		t.Fatal("should not afford 11")
	}
}
