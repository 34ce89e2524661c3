package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProfitFromOdds(t *testing.T) {
	tests := []struct {
		name     string
		stake    int64
		odds     int64
		expected int64
	}{
		{"even money", 100, 200, 100},
		{"3.00x pays double the stake", 100, 300, 200},
		{"short odds", 100, 160, 60},
		{"short odds with truncation", 33, 160, 19}, // 33 * 3/5
		{"minimum odds", 1000, 105, 50},
		{"maximum odds", 10, 2000, 190},
		{"odds at stake", 1, 105, 0},
		{"zero stake", 0, 300, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ProfitFromOdds(tt.stake, tt.odds))
		})
	}
}

func TestWager_PotentialPayout(t *testing.T) {
	wager := &Wager{Amount: 100, LockedOdds: 300}
	assert.Equal(t, int64(300), wager.PotentialPayout())

	wager = &Wager{Amount: 50, LockedOdds: 160}
	assert.Equal(t, int64(80), wager.PotentialPayout())
}

func TestWager_Settle(t *testing.T) {
	now := time.Now()

	t.Run("win pays stake plus profit", func(t *testing.T) {
		wager := &Wager{Amount: 100, LockedOdds: 300}
		wager.SettleWin(now)

		assert.True(t, wager.Resolved)
		assert.Equal(t, int64(300), wager.Payout)
		assert.Equal(t, now, *wager.ResolvedAt)
	})

	t.Run("loss pays nothing", func(t *testing.T) {
		wager := &Wager{Amount: 100, LockedOdds: 300}
		wager.SettleLoss(now)

		assert.True(t, wager.Resolved)
		assert.Equal(t, int64(0), wager.Payout)
		assert.Equal(t, now, *wager.ResolvedAt)
	})
}
