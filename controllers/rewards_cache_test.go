package controllers

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/thriftly/thriftly/services"
)

const staleStatsPayload = `{"code":0,"message":"success","data":{"total_count":0,"total_coins":0,"by_kind":[]}}`

func TestSpinDropsStaleStatsCache(t *testing.T) {
	db := openTestDB(t)
	clock := fixedClock{time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)}
	ledger := services.NewLedger(db)
	levels := services.NewLevelService(db, clock, ledger)
	spins := services.NewSpinServiceWithSource(db, clock, levels, rand.New(rand.NewSource(3)))
	user := createTestUser(t, db, "cached-spinner")

	key := rewardStatsCacheKey(user.ID)
	if err := testRedis.Set(key, staleStatsPayload); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	c, w := authedRequest(user.ID, http.MethodPost, "/api/v1/spin", "")
	NewSpinController(spins, ledger).Spin(c)
	requireStatus(t, w, http.StatusOK)

	if testRedis.Exists(key) {
		t.Fatal("stale stats cache survived the spin grant")
	}

	// The next stats read recomputes from the ledger and re-primes the cache.
	c, w = authedRequest(user.ID, http.MethodGet, "/api/v1/rewards/stats", "")
	NewRewardsController(ledger).Stats(c)
	requireStatus(t, w, http.StatusOK)
	if !testRedis.Exists(key) {
		t.Fatal("stats read did not repopulate the cache")
	}
}

func TestGoalProgressDropsStaleStatsCache(t *testing.T) {
	db := openTestDB(t)
	clock := fixedClock{time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)}
	ledger := services.NewLedger(db)
	levels := services.NewLevelService(db, clock, ledger)
	goals := services.NewGoalService(db, clock, levels)
	user := createTestUser(t, db, "cached-saver")

	goal, err := goals.CreateGoal(context.Background(), user.ID, "cache check", 1000, clock.Now().AddDate(0, 1, 0))
	if err != nil {
		t.Fatalf("create goal: %v", err)
	}

	key := rewardStatsCacheKey(user.ID)
	if err := testRedis.Set(key, staleStatsPayload); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	// 25% deposit grants a milestone reward and must drop the cache.
	c, w := authedRequest(user.ID, http.MethodPost, "/api/v1/goals/progress", `{"amount":250}`)
	c.Params = gin.Params{{Key: "id", Value: fmt.Sprint(goal.ID)}}
	NewGoalController(goals).AddProgress(c)
	requireStatus(t, w, http.StatusOK)

	if testRedis.Exists(key) {
		t.Fatal("stale stats cache survived the milestone grant")
	}
}
