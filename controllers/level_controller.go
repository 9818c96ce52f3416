package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thriftly/thriftly/services"
	"github.com/thriftly/thriftly/utils"
)

// LevelController exposes the level ladder derived from claimed rewards.
type LevelController struct {
	levels *services.LevelService
}

// NewLevelController wires the controller with the level service.
func NewLevelController(levels *services.LevelService) *LevelController {
	return &LevelController{levels: levels}
}

// Recalculate recomputes the user's level from the reward ledger. Safe to
// call any number of times.
func (l *LevelController) Recalculate(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	state, err := l.levels.Recalculate(ctx.Request.Context(), userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to recalculate level")
		return
	}

	// A level-up pays a coin bonus; drop the cached stats projection.
	utils.InvalidateByPrefix(rewardStatsCacheKey(userID))
	utils.Success(ctx, state)
}

// Progress reports the user's level and distance to the next threshold.
func (l *LevelController) Progress(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	progress, err := l.levels.GetProgress(ctx.Request.Context(), userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to load level progress")
		return
	}

	utils.Success(ctx, progress)
}
