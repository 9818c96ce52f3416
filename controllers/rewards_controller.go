package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/thriftly/thriftly/services"
	"github.com/thriftly/thriftly/utils"
)

// RewardsController exposes read views over the reward ledger.
type RewardsController struct {
	ledger *services.Ledger
}

// NewRewardsController wires the controller with the ledger.
func NewRewardsController(ledger *services.Ledger) *RewardsController {
	return &RewardsController{ledger: ledger}
}

// rewardStatsCacheKey names the cached stats projection for one user. Every
// grant path invalidates through this same key so reader and writers cannot
// drift apart.
func rewardStatsCacheKey(userID uint) string {
	return fmt.Sprintf("cache:rewards:stats:%d", userID)
}

// Unclaimed lists rewards granted but not yet claimed.
func (r *RewardsController) Unclaimed(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	rewards, err := r.ledger.Unclaimed(ctx.Request.Context(), userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to load unclaimed rewards")
		return
	}

	utils.Success(ctx, gin.H{"items": rewards})
}

// Recent lists the most recently claimed rewards.
func (r *RewardsController) Recent(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	limit := 20
	if v := strings.TrimSpace(ctx.Query("limit")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	rewards, err := r.ledger.RecentClaimed(ctx.Request.Context(), userID, limit)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50051, "failed to load recent rewards")
		return
	}

	utils.Success(ctx, gin.H{"items": rewards})
}

// Stats aggregates claimed rewards by kind. Results are cached briefly since
// the totals only move when a new reward is granted.
func (r *RewardsController) Stats(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	cacheKey := rewardStatsCacheKey(userID)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	stats, err := r.ledger.Stats(ctx.Request.Context(), userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50052, "failed to load reward stats")
		return
	}

	// cache wrapper for consistency
	wrapper := struct {
		Code    int         `json:"code"`
		Message string      `json:"message"`
		Data    interface{} `json:"data"`
	}{Code: 0, Message: "success", Data: stats}
	utils.CacheSetJSON(cacheKey, wrapper, 5*time.Minute)
	utils.Success(ctx, stats)
}
