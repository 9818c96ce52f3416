package services

import (
	"fmt"

	"github.com/thriftly/thriftly/models"
)

// SpinTier is one segment of the daily wheel. Weights are integer percentages
// and must sum to 100; tiers are walked in declared order.
type SpinTier struct {
	Kind        models.RewardKind
	Name        string
	Description string
	Coins       int64
	BadgeName   string
	Weight      int
}

var spinTiers = []SpinTier{
	{Kind: models.RewardKindCurrency, Name: "Pocket Change", Description: "A few coins for showing up", Coins: 10, Weight: 40},
	{Kind: models.RewardKindCurrency, Name: "Lucky Find", Description: "Spare coins under the couch", Coins: 25, Weight: 30},
	{Kind: models.RewardKindCurrency, Name: "Windfall", Description: "A tidy little windfall", Coins: 50, Weight: 15},
	{Kind: models.RewardKindBonus, Name: "Double Down", Description: "Bonus stash for the ledger", Coins: 100, Weight: 10},
	{Kind: models.RewardKindCurrency, Name: "Jackpot", Description: "The wheel smiles upon you", Coins: 250, Weight: 3},
	{Kind: models.RewardKindBadge, Name: "Golden Spin", Description: "The rarest spin of all", Coins: 500, BadgeName: "golden_spin", Weight: 2},
}

// pickTier maps a uniform draw in [1,100] onto a tier by walking the
// cumulative weights. Falls back to the first tier so a draw can never
// leave the user empty-handed.
func pickTier(draw int) SpinTier {
	sum := 0
	for _, tier := range spinTiers {
		sum += tier.Weight
		if draw <= sum {
			return tier
		}
	}
	return spinTiers[0]
}

// Streak badge thresholds in ascending order with their coin values.
var streakBadgeThresholds = []int{7, 30, 100}

const defaultStreakBadgeCoins = 10

var streakBadgeCoins = map[int]int64{
	7:   50,
	30:  200,
	100: 1000,
}

// streakBadgeID names the badge for a threshold, e.g. "streak_7".
func streakBadgeID(threshold int) string {
	return fmt.Sprintf("streak_%d", threshold)
}

// coinsForStreakBadge returns the coin value for a threshold badge.
func coinsForStreakBadge(threshold int) int64 {
	if coins, ok := streakBadgeCoins[threshold]; ok {
		return coins
	}
	return defaultStreakBadgeCoins
}

// Goal milestone percentages in ascending order; the reward equals the
// percentage value in coins.
var goalMilestones = []int{25, 50, 75}

// Goal completion reward constants.
const (
	goalCompletionBaseCoins  = 100
	goalEarlyBonusMultiplier = 1.5
)

// levelStep is one row of the fixed level threshold table.
type levelStep struct {
	Level int
	Coins int64
	Title string
}

// Ascending level table: the level is the highest step whose threshold does
// not exceed the user's cumulative claimed coins. Level 1 always qualifies.
var levelTable = []levelStep{
	{Level: 1, Coins: 0, Title: "Penny Pincher"},
	{Level: 2, Coins: 100, Title: "Budget Novice"},
	{Level: 3, Coins: 300, Title: "Coupon Clipper"},
	{Level: 4, Coins: 600, Title: "Steady Saver"},
	{Level: 5, Coins: 1000, Title: "Smart Spender"},
	{Level: 6, Coins: 1500, Title: "Budget Boss"},
	{Level: 7, Coins: 2200, Title: "Money Master"},
	{Level: 8, Coins: 3000, Title: "Wealth Builder"},
	{Level: 9, Coins: 4000, Title: "Finance Guru"},
	{Level: 10, Coins: 5000, Title: "Thrift Legend"},
}

const levelUpCoinsPerLevel = 50

// levelForCoins walks the table and returns the highest qualifying step.
func levelForCoins(coins int64) levelStep {
	best := levelTable[0]
	for _, step := range levelTable {
		if step.Coins <= coins {
			best = step
		}
	}
	return best
}

// stepForLevel returns the table row for a level, clamped into table range.
func stepForLevel(level int) levelStep {
	if level < 1 {
		level = 1
	}
	if level > len(levelTable) {
		level = len(levelTable)
	}
	return levelTable[level-1]
}

// maxLevel is the top of the fixed table.
func maxLevel() int { return levelTable[len(levelTable)-1].Level }
