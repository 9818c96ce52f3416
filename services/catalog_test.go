package services

import (
	"math/rand"
	"testing"
)

func TestSpinTierWeightsSumTo100(t *testing.T) {
	sum := 0
	for _, tier := range spinTiers {
		if tier.Weight <= 0 {
			t.Fatalf("tier %q has non-positive weight %d", tier.Name, tier.Weight)
		}
		sum += tier.Weight
	}
	if sum != 100 {
		t.Fatalf("weights sum to %d, want 100", sum)
	}
}

func TestPickTierBoundaries(t *testing.T) {
	tests := []struct {
		draw int
		want string
	}{
		{1, "Pocket Change"},
		{40, "Pocket Change"},
		{41, "Lucky Find"},
		{70, "Lucky Find"},
		{71, "Windfall"},
		{85, "Windfall"},
		{86, "Double Down"},
		{95, "Double Down"},
		{96, "Jackpot"},
		{98, "Jackpot"},
		{99, "Golden Spin"},
		{100, "Golden Spin"},
		// Out-of-range draws fall back to the first tier.
		{101, "Pocket Change"},
		{500, "Pocket Change"},
	}
	for _, tt := range tests {
		if got := pickTier(tt.draw); got.Name != tt.want {
			t.Errorf("pickTier(%d) = %q, want %q", tt.draw, got.Name, tt.want)
		}
	}
}

func TestPickTierDistribution(t *testing.T) {
	const draws = 100000
	rnd := rand.New(rand.NewSource(42))

	counts := map[string]int{}
	for i := 0; i < draws; i++ {
		counts[pickTier(rnd.Intn(100)+1).Name]++
	}

	for _, tier := range spinTiers {
		got := float64(counts[tier.Name]) / draws * 100
		want := float64(tier.Weight)
		if diff := got - want; diff < -1 || diff > 1 {
			t.Errorf("tier %q frequency %.2f%%, want %.0f%% ±1", tier.Name, got, want)
		}
	}
}

func TestLevelForCoins(t *testing.T) {
	tests := []struct {
		coins int64
		level int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{299, 2},
		{300, 3},
		{999, 4},
		{1000, 5},
		{4999, 9},
		{5000, 10},
		{999999, 10},
	}
	for _, tt := range tests {
		if got := levelForCoins(tt.coins); got.Level != tt.level {
			t.Errorf("levelForCoins(%d) = %d, want %d", tt.coins, got.Level, tt.level)
		}
	}
}

func TestCoinsForStreakBadge(t *testing.T) {
	tests := []struct {
		threshold int
		coins     int64
	}{
		{7, 50},
		{30, 200},
		{100, 1000},
		{14, 10}, // unknown thresholds fall back to the default
	}
	for _, tt := range tests {
		if got := coinsForStreakBadge(tt.threshold); got != tt.coins {
			t.Errorf("coinsForStreakBadge(%d) = %d, want %d", tt.threshold, got, tt.coins)
		}
	}
}

func TestGoalCompletionCoins(t *testing.T) {
	tests := []struct {
		name          string
		target        int64
		daysRemaining int
		want          int64
	}{
		{"early finish gets the bonus multiplier", 2000, 30, 103},
		{"one day left still counts as early", 2000, 1, 103},
		{"due today pays the flat rate", 2000, 0, 102},
		{"small target rounds down to the base", 500, 0, 100},
		{"small target with bonus still rounds down", 500, 10, 100},
		{"large target", 10000, 5, 115},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := goalCompletionCoins(tt.target, tt.daysRemaining); got != tt.want {
				t.Errorf("goalCompletionCoins(%d, %d) = %d, want %d", tt.target, tt.daysRemaining, got, tt.want)
			}
		})
	}
}

func TestAdvanceStreak(t *testing.T) {
	tests := []struct {
		name        string
		current     int
		lastLogged  string
		wantCount   int
		wantChanged bool
	}{
		{"same day is a no-op", 5, "2026-03-10", 5, false},
		{"yesterday increments", 5, "2026-03-09", 6, true},
		{"two day gap resets", 5, "2026-03-08", 1, true},
		{"long gap resets", 12, "2025-11-01", 1, true},
		{"future date resets", 3, "2026-03-11", 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			count, changed := advanceStreak(tt.current, tt.lastLogged, "2026-03-10", "2026-03-09")
			if count != tt.wantCount || changed != tt.wantChanged {
				t.Errorf("advanceStreak(%d, %q) = (%d, %v), want (%d, %v)",
					tt.current, tt.lastLogged, count, changed, tt.wantCount, tt.wantChanged)
			}
		})
	}
}
