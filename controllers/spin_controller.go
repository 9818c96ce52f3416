package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/thriftly/thriftly/services"
	"github.com/thriftly/thriftly/utils"
)

// SpinController exposes the daily reward wheel.
type SpinController struct {
	spins  *services.SpinService
	ledger *services.Ledger
}

// NewSpinController wires the controller with the spin service and ledger.
func NewSpinController(spins *services.SpinService, ledger *services.Ledger) *SpinController {
	return &SpinController{spins: spins, ledger: ledger}
}

// Spin performs the user's once-per-day draw.
func (s *SpinController) Spin(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	result, err := s.spins.PerformDailySpin(ctx.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrAlreadySpunToday) {
			utils.Error(ctx, http.StatusConflict, 40910, "daily spin already used today")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to perform spin")
		return
	}

	// The spin granted coins, so the cached stats projection is stale.
	utils.InvalidateByPrefix(rewardStatsCacheKey(userID))
	utils.Success(ctx, result)
}

// History lists the user's past spins, newest first.
func (s *SpinController) History(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	limit := 30
	if v := strings.TrimSpace(ctx.Query("limit")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	spins, err := s.ledger.SpinHistory(ctx.Request.Context(), userID, limit)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to load spin history")
		return
	}

	utils.Success(ctx, gin.H{"items": spins})
}
