package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/thriftly/thriftly/services"
	"github.com/thriftly/thriftly/utils"
)

// GoalController exposes savings goals and their progress updates.
type GoalController struct {
	goals *services.GoalService
}

// NewGoalController wires the controller with the goal service.
func NewGoalController(goals *services.GoalService) *GoalController {
	return &GoalController{goals: goals}
}

// Create registers a new savings goal.
func (g *GoalController) Create(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	type request struct {
		Name         string `json:"name" binding:"required,max=128"`
		TargetAmount int64  `json:"target_amount" binding:"required"`
		TargetDate   string `json:"target_date" binding:"required"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "invalid request payload")
		return
	}

	targetDate, err := time.Parse("2006-01-02", strings.TrimSpace(req.TargetDate))
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40031, "target_date must be YYYY-MM-DD")
		return
	}

	goal, err := g.goals.CreateGoal(ctx.Request.Context(), userID, strings.TrimSpace(req.Name), req.TargetAmount, targetDate)
	if err != nil {
		if errors.Is(err, services.ErrInvalidAmount) {
			utils.Error(ctx, http.StatusBadRequest, 40032, "target amount must be positive")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to create goal")
		return
	}

	utils.Success(ctx, goal)
}

// List returns the user's goals.
func (g *GoalController) List(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	goals, err := g.goals.ListGoals(ctx.Request.Context(), userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to load goals")
		return
	}

	utils.Success(ctx, gin.H{"items": goals})
}

// AddProgress applies a saved amount to one goal and reports the new state.
func (g *GoalController) AddProgress(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	goalID, err := strconv.ParseUint(strings.TrimSpace(ctx.Param("id")), 10, 64)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40033, "invalid goal id")
		return
	}

	type request struct {
		Amount int64 `json:"amount" binding:"required"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40034, "invalid request payload")
		return
	}

	state, err := g.goals.UpdateGoalProgress(ctx.Request.Context(), userID, uint(goalID), req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidAmount):
			utils.Error(ctx, http.StatusBadRequest, 40032, "amount must be positive")
		case errors.Is(err, services.ErrGoalNotFound):
			utils.Error(ctx, http.StatusNotFound, 40430, "goal not found")
		case errors.Is(err, services.ErrConcurrentUpdate):
			utils.Error(ctx, http.StatusConflict, 40930, "goal was updated concurrently, retry")
		default:
			utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to update goal progress")
		}
		return
	}

	// Milestone or completion rewards may have landed; drop the cached stats.
	utils.InvalidateByPrefix(rewardStatsCacheKey(userID))
	utils.Success(ctx, state)
}
