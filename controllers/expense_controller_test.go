package controllers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/thriftly/thriftly/models"
	"github.com/thriftly/thriftly/services"
)

func TestCreateExpenseAdvancesStreak(t *testing.T) {
	db := openTestDB(t)
	clock := fixedClock{time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)}
	ledger := services.NewLedger(db)
	levels := services.NewLevelService(db, clock, ledger)
	streaks := services.NewStreakService(db, clock, levels)
	user := createTestUser(t, db, "spender")
	ctrl := NewExpenseController(db, streaks)

	c, w := authedRequest(user.ID, http.MethodPost, "/api/v1/expenses", `{"category":"food","amount":1200,"note":"lunch"}`)
	ctrl.Create(c)
	requireStatus(t, w, http.StatusOK)

	var count int64
	if err := db.Model(&models.Expense{}).Where("user_id = ?", user.ID).Count(&count).Error; err != nil {
		t.Fatalf("count expenses: %v", err)
	}
	if count != 1 {
		t.Fatalf("expense rows = %d, want 1", count)
	}

	var streak models.Streak
	if err := db.Where("user_id = ? AND activity = ?", user.ID, "expense_logging").First(&streak).Error; err != nil {
		t.Fatalf("streak row missing: %v", err)
	}
	if streak.CurrentCount != 1 {
		t.Fatalf("streak count = %d, want 1", streak.CurrentCount)
	}
}

func TestCreateExpenseHonorsRequestContext(t *testing.T) {
	db := openTestDB(t)
	clock := fixedClock{time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)}
	ledger := services.NewLedger(db)
	levels := services.NewLevelService(db, clock, ledger)
	streaks := services.NewStreakService(db, clock, levels)
	user := createTestUser(t, db, "hasty")
	ctrl := NewExpenseController(db, streaks)

	c, w := authedRequest(user.ID, http.MethodPost, "/api/v1/expenses", `{"category":"food","amount":500}`)
	reqCtx, cancel := context.WithCancel(context.Background())
	cancel()
	c.Request = c.Request.WithContext(reqCtx)

	ctrl.Create(c)
	requireStatus(t, w, http.StatusInternalServerError)

	var count int64
	if err := db.Model(&models.Expense{}).Where("user_id = ?", user.ID).Count(&count).Error; err != nil {
		t.Fatalf("count expenses: %v", err)
	}
	if count != 0 {
		t.Fatalf("expense rows = %d, want 0 after canceled request", count)
	}
}
