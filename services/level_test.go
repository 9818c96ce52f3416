package services

import (
	"context"
	"testing"
	"time"

	"github.com/thriftly/thriftly/models"
	"gorm.io/gorm"
)

func newLevelFixture(t *testing.T) (*LevelService, *models.User, *gorm.DB) {
	t.Helper()
	db := openTestDB(t)
	clock := newFakeClock(time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC))
	ledger := NewLedger(db)
	levels := NewLevelService(db, clock, ledger)
	user := createTestUser(t, db, "climber")
	return levels, user, db
}

func seedClaimedCoins(t *testing.T, db *gorm.DB, userID uint, coins int64) {
	t.Helper()
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	reward := claimedReward(userID, models.RewardKindCurrency, "seed", "test grant", coins, "", now)
	if err := db.Create(&reward).Error; err != nil {
		t.Fatalf("seed reward: %v", err)
	}
}

func TestRecalculateFreshUserIsLevelOne(t *testing.T) {
	levels, user, _ := newLevelFixture(t)

	state, err := levels.Recalculate(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("recalculate: %v", err)
	}
	if state.Level != 1 || state.LeveledUp {
		t.Fatalf("state = %+v, want level 1 without a level-up", state)
	}
	if state.TotalCoins != 0 {
		t.Fatalf("total coins = %d, want 0", state.TotalCoins)
	}
}

func TestRecalculateLevelUpPaysOnce(t *testing.T) {
	levels, user, db := newLevelFixture(t)
	ctx := context.Background()

	seedClaimedCoins(t, db, user.ID, 100)

	state, err := levels.Recalculate(ctx, user.ID)
	if err != nil {
		t.Fatalf("recalculate: %v", err)
	}
	if state.Level != 2 || !state.LeveledUp {
		t.Fatalf("state = %+v, want level 2 with a level-up", state)
	}

	var reward models.Reward
	if err := db.Where("user_id = ? AND name = ?", user.ID, "Level 2 reached").First(&reward).Error; err != nil {
		t.Fatalf("level-up reward missing: %v", err)
	}
	if reward.Coins != 100 {
		t.Fatalf("level-up coins = %d, want 100 (level 2 x 50)", reward.Coins)
	}

	// Recalculating again changes nothing: the achievement log already has
	// level 2 and the extra 100 coins stay below the level 3 threshold.
	state, err = levels.Recalculate(ctx, user.ID)
	if err != nil {
		t.Fatalf("second recalculate: %v", err)
	}
	if state.Level != 2 || state.LeveledUp {
		t.Fatalf("second state = %+v, want steady level 2", state)
	}

	var count int64
	if err := db.Model(&models.Reward{}).Where("user_id = ? AND name = ?", user.ID, "Level 2 reached").Count(&count).Error; err != nil {
		t.Fatalf("count rewards: %v", err)
	}
	if count != 1 {
		t.Fatalf("level-up rewards = %d, want 1", count)
	}
}

func TestRecalculateNeverLowersLevel(t *testing.T) {
	levels, user, db := newLevelFixture(t)
	ctx := context.Background()

	seedClaimedCoins(t, db, user.ID, 1000)
	if _, err := levels.Recalculate(ctx, user.ID); err != nil {
		t.Fatalf("recalculate: %v", err)
	}

	// Remove the seed so the ledger drops back to just the level-up grant.
	if err := db.Where("user_id = ? AND name = ?", user.ID, "seed").Delete(&models.Reward{}).Error; err != nil {
		t.Fatalf("delete seed: %v", err)
	}

	state, err := levels.Recalculate(ctx, user.ID)
	if err != nil {
		t.Fatalf("recalculate after removal: %v", err)
	}
	if state.Level != 5 {
		t.Fatalf("level = %d, want 5 (levels never decrease)", state.Level)
	}
}

func TestRecalculateIgnoresUnclaimedRewards(t *testing.T) {
	levels, user, db := newLevelFixture(t)

	unclaimed := models.Reward{
		UserID: user.ID,
		Kind:   models.RewardKindCurrency,
		Name:   "pending",
		Coins:  5000,
	}
	if err := db.Create(&unclaimed).Error; err != nil {
		t.Fatalf("create unclaimed: %v", err)
	}

	state, err := levels.Recalculate(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("recalculate: %v", err)
	}
	if state.Level != 1 || state.TotalCoins != 0 {
		t.Fatalf("state = %+v, want level 1 with 0 claimed coins", state)
	}
}

func TestGetProgress(t *testing.T) {
	levels, user, db := newLevelFixture(t)
	ctx := context.Background()

	seedClaimedCoins(t, db, user.ID, 150)

	progress, err := levels.GetProgress(ctx, user.ID)
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if progress.Level != 2 || progress.NextLevel != 3 {
		t.Fatalf("progress = %+v, want level 2 heading to 3", progress)
	}
	if progress.CoinsNeeded != 150 {
		t.Fatalf("coins needed = %d, want 150", progress.CoinsNeeded)
	}
	if progress.Percent != 25 {
		t.Fatalf("percent = %v, want 25", progress.Percent)
	}
}

func TestGetProgressAtMaxLevel(t *testing.T) {
	levels, user, db := newLevelFixture(t)

	seedClaimedCoins(t, db, user.ID, 9000)

	progress, err := levels.GetProgress(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if progress.Level != 10 || progress.NextLevel != 10 {
		t.Fatalf("progress = %+v, want max level 10", progress)
	}
	if progress.CoinsNeeded != 0 || progress.Percent != 0 {
		t.Fatalf("progress = %+v, want zero distance at max level", progress)
	}
}
