package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thriftly/thriftly/services"
	"github.com/thriftly/thriftly/utils"
)

// StreakController exposes consecutive-day activity tracking.
type StreakController struct {
	streaks *services.StreakService
}

// NewStreakController wires the controller with the streak service.
func NewStreakController(streaks *services.StreakService) *StreakController {
	return &StreakController{streaks: streaks}
}

// Log records today's activity for the named streak kind.
func (s *StreakController) Log(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	state, err := s.streaks.UpdateStreak(ctx.Request.Context(), userID, ctx.Param("activity"))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidActivity):
			utils.Error(ctx, http.StatusBadRequest, 40020, "invalid activity kind")
		case errors.Is(err, services.ErrConcurrentUpdate):
			utils.Error(ctx, http.StatusConflict, 40920, "streak was updated concurrently, retry")
		default:
			utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to update streak")
		}
		return
	}

	// A badge may have been granted; drop the cached stats projection.
	utils.InvalidateByPrefix(rewardStatsCacheKey(userID))
	utils.Success(ctx, state)
}

// List returns all of the user's streaks with their badges.
func (s *StreakController) List(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	states, err := s.streaks.GetStreaks(ctx.Request.Context(), userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to load streaks")
		return
	}

	utils.Success(ctx, gin.H{"items": states})
}
