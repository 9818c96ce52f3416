package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/thriftly/thriftly/models"
	"gorm.io/gorm"
)

func newStreakFixture(t *testing.T) (*StreakService, *fakeClock, *models.User, *gorm.DB) {
	t.Helper()
	db := openTestDB(t)
	clock := newFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	ledger := NewLedger(db)
	levels := NewLevelService(db, clock, ledger)
	streaks := NewStreakService(db, clock, levels)
	user := createTestUser(t, db, "logger")
	return streaks, clock, user, db
}

func TestUpdateStreakLifecycle(t *testing.T) {
	streaks, clock, user, _ := newStreakFixture(t)
	ctx := context.Background()

	state, err := streaks.UpdateStreak(ctx, user.ID, "expense_logging")
	if err != nil {
		t.Fatalf("first log: %v", err)
	}
	if state.CurrentCount != 1 {
		t.Fatalf("first log count = %d, want 1", state.CurrentCount)
	}

	// Same day again: idempotent.
	state, err = streaks.UpdateStreak(ctx, user.ID, "expense_logging")
	if err != nil {
		t.Fatalf("same-day log: %v", err)
	}
	if state.CurrentCount != 1 {
		t.Fatalf("same-day count = %d, want 1", state.CurrentCount)
	}

	// Next day: increments.
	clock.AdvanceDays(1)
	state, err = streaks.UpdateStreak(ctx, user.ID, "expense_logging")
	if err != nil {
		t.Fatalf("next-day log: %v", err)
	}
	if state.CurrentCount != 2 {
		t.Fatalf("next-day count = %d, want 2", state.CurrentCount)
	}

	// Skip two days: resets to 1, longest stays.
	clock.AdvanceDays(3)
	state, err = streaks.UpdateStreak(ctx, user.ID, "expense_logging")
	if err != nil {
		t.Fatalf("post-gap log: %v", err)
	}
	if state.CurrentCount != 1 {
		t.Fatalf("post-gap count = %d, want 1", state.CurrentCount)
	}
	if state.LongestCount != 2 {
		t.Fatalf("longest = %d, want 2", state.LongestCount)
	}
}

func TestUpdateStreakInvalidActivity(t *testing.T) {
	streaks, _, user, _ := newStreakFixture(t)

	if _, err := streaks.UpdateStreak(context.Background(), user.ID, "   "); !errors.Is(err, ErrInvalidActivity) {
		t.Fatalf("err = %v, want ErrInvalidActivity", err)
	}
}

func TestUpdateStreakSevenDayBadgeOnce(t *testing.T) {
	streaks, clock, user, db := newStreakFixture(t)
	ctx := context.Background()

	var state *StreakState
	var err error
	for day := 0; day < 7; day++ {
		if day > 0 {
			clock.AdvanceDays(1)
		}
		state, err = streaks.UpdateStreak(ctx, user.ID, "budget_review")
		if err != nil {
			t.Fatalf("day %d: %v", day+1, err)
		}
	}

	if state.CurrentCount != 7 {
		t.Fatalf("count = %d, want 7", state.CurrentCount)
	}
	if len(state.Badges) != 1 || state.Badges[0] != "streak_7" {
		t.Fatalf("badges = %v, want [streak_7]", state.Badges)
	}

	var reward models.Reward
	if err := db.Where("user_id = ? AND badge_name = ?", user.ID, "streak_7").First(&reward).Error; err != nil {
		t.Fatalf("badge reward missing: %v", err)
	}
	if reward.Coins != 50 {
		t.Fatalf("badge coins = %d, want 50", reward.Coins)
	}
	if !reward.Claimed() {
		t.Fatal("badge reward not claimed")
	}

	// Re-logging the same day grants nothing new.
	if _, err := streaks.UpdateStreak(ctx, user.ID, "budget_review"); err != nil {
		t.Fatalf("re-log: %v", err)
	}
	var count int64
	if err := db.Model(&models.StreakBadge{}).Where("user_id = ?", user.ID).Count(&count).Error; err != nil {
		t.Fatalf("count badges: %v", err)
	}
	if count != 1 {
		t.Fatalf("badge rows = %d, want 1", count)
	}
}

func TestUpdateStreakIndependentActivities(t *testing.T) {
	streaks, clock, user, _ := newStreakFixture(t)
	ctx := context.Background()

	if _, err := streaks.UpdateStreak(ctx, user.ID, "expense_logging"); err != nil {
		t.Fatalf("expense log: %v", err)
	}
	clock.AdvanceDays(1)
	if _, err := streaks.UpdateStreak(ctx, user.ID, "expense_logging"); err != nil {
		t.Fatalf("expense log: %v", err)
	}
	if _, err := streaks.UpdateStreak(ctx, user.ID, "budget_review"); err != nil {
		t.Fatalf("budget log: %v", err)
	}

	states, err := streaks.GetStreaks(ctx, user.ID)
	if err != nil {
		t.Fatalf("get streaks: %v", err)
	}
	if len(states) != 2 {
		t.Fatalf("streak count = %d, want 2", len(states))
	}
	byActivity := map[string]StreakState{}
	for _, st := range states {
		byActivity[st.Activity] = st
	}
	if byActivity["expense_logging"].CurrentCount != 2 {
		t.Fatalf("expense streak = %d, want 2", byActivity["expense_logging"].CurrentCount)
	}
	if byActivity["budget_review"].CurrentCount != 1 {
		t.Fatalf("budget streak = %d, want 1", byActivity["budget_review"].CurrentCount)
	}
}

func TestUpdateStreakVersionAdvances(t *testing.T) {
	streaks, clock, user, db := newStreakFixture(t)
	ctx := context.Background()

	if _, err := streaks.UpdateStreak(ctx, user.ID, "expense_logging"); err != nil {
		t.Fatalf("seed streak: %v", err)
	}
	clock.AdvanceDays(1)
	if _, err := streaks.UpdateStreak(ctx, user.ID, "expense_logging"); err != nil {
		t.Fatalf("second log: %v", err)
	}

	// Every counter write bumps the version so stale writers lose the
	// optimistic check.
	var record models.Streak
	if err := db.Where("user_id = ?", user.ID).First(&record).Error; err != nil {
		t.Fatalf("load streak: %v", err)
	}
	if record.Version != 1 {
		t.Fatalf("version = %d, want 1 after one counter update", record.Version)
	}

	stale := db.Model(&models.Streak{}).
		Where("id = ? AND version = ?", record.ID, record.Version-1).
		Update("current_count", 99)
	if stale.Error != nil {
		t.Fatalf("stale update: %v", stale.Error)
	}
	if stale.RowsAffected != 0 {
		t.Fatal("stale-version write was accepted")
	}
}
