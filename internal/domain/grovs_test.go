package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grivyzom/internal/domain"
)

func TestCalculateDailyReward(t *testing.T) {
	cases := []struct {
		streak     int
		wantBonus  int64
		wantTotal  int64
		wantNextAt int
	}{
		{streak: 0, wantBonus: 0, wantTotal: 10, wantNextAt: 7},
		{streak: 1, wantBonus: 0, wantTotal: 10, wantNextAt: 7},
		{streak: 6, wantBonus: 3, wantTotal: 13, wantNextAt: 7},
		{streak: 7, wantBonus: 3, wantTotal: 13, wantNextAt: 14},
		{streak: 100, wantBonus: 50, wantTotal: 60, wantNextAt: 0},
		{streak: 200, wantBonus: 50, wantTotal: 60, wantNextAt: 0},
	}
	for _, tc := range cases {
		r := domain.CalculateDailyReward(tc.streak)
		assert.Equal(t, int64(10), r.GrovsAmount, "streak %d", tc.streak)
		assert.Equal(t, tc.wantBonus, r.StreakBonus, "streak %d", tc.streak)
		assert.Equal(t, tc.wantTotal, r.TotalGrovs, "streak %d", tc.streak)
		if tc.wantNextAt == 0 {
			assert.Nil(t, r.NextMilestone, "streak %d", tc.streak)
		} else {
			require.NotNil(t, r.NextMilestone, "streak %d", tc.streak)
			assert.Equal(t, tc.wantNextAt, r.NextMilestone.Days, "streak %d", tc.streak)
		}
	}
}

func TestMilestoneFor(t *testing.T) {
	assert.Nil(t, domain.MilestoneFor(6))
	require.NotNil(t, domain.MilestoneFor(7))
	assert.Equal(t, int64(50), domain.MilestoneFor(7).BonusGrovs)
	require.NotNil(t, domain.MilestoneFor(90))
	assert.Equal(t, int64(1500), domain.MilestoneFor(90).BonusGrovs)
	assert.Nil(t, domain.MilestoneFor(91))
}

func TestEffectivePriceAndGrovsAcceptance(t *testing.T) {
	p := domain.Product{Price: 20, DiscountPrice: 15, PaymentMethods: "money"}
	assert.Equal(t, 15.0, p.EffectivePrice())
	assert.False(t, p.AcceptsGrovs())

	p = domain.Product{Price: 20, PaymentMethods: "both"}
	assert.Equal(t, 20.0, p.EffectivePrice())
	assert.True(t, p.AcceptsGrovs())

	p = domain.Product{PaymentMethods: "grovs"}
	assert.True(t, p.AcceptsGrovs())
}
