package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/thriftly/thriftly/models"
	"github.com/thriftly/thriftly/services"
	"github.com/thriftly/thriftly/utils"
)

// ExpenseController records spending entries. Logging an expense is the
// activity that feeds the "expense_logging" streak.
type ExpenseController struct {
	db      *gorm.DB
	streaks *services.StreakService
}

// NewExpenseController wires the controller with the store and streak service.
func NewExpenseController(db *gorm.DB, streaks *services.StreakService) *ExpenseController {
	return &ExpenseController{db: db, streaks: streaks}
}

// Create stores an expense and advances the logging streak.
func (e *ExpenseController) Create(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	type request struct {
		Category string `json:"category" binding:"required,max=64"`
		Amount   int64  `json:"amount" binding:"required,gt=0"`
		Note     string `json:"note" binding:"max=255"`
		SpentAt  string `json:"spent_at"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40060, "invalid request payload")
		return
	}

	spentAt := time.Now()
	if v := strings.TrimSpace(req.SpentAt); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40061, "spent_at must be YYYY-MM-DD")
			return
		}
		spentAt = parsed
	}

	expense := models.Expense{
		UserID:   userID,
		Category: strings.TrimSpace(req.Category),
		Amount:   req.Amount,
		Note:     strings.TrimSpace(req.Note),
		SpentAt:  spentAt,
	}
	if err := e.db.WithContext(ctx.Request.Context()).Create(&expense).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to save expense")
		return
	}

	streak, err := e.streaks.UpdateStreak(ctx.Request.Context(), userID, "expense_logging")
	if err != nil {
		// The expense itself saved; the streak catches up on the next log.
		utils.Success(ctx, gin.H{"expense": expense})
		return
	}

	// The streak update may have granted a badge; drop the cached stats.
	utils.InvalidateByPrefix(rewardStatsCacheKey(userID))
	utils.Success(ctx, gin.H{"expense": expense, "streak": streak})
}

// List returns the user's expenses, newest first.
func (e *ExpenseController) List(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	limit := 50
	if v := strings.TrimSpace(ctx.Query("limit")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	var expenses []models.Expense
	if err := e.db.WithContext(ctx.Request.Context()).Where("user_id = ?", userID).Order("created_at DESC").Limit(limit).Find(&expenses).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50061, "failed to load expenses")
		return
	}

	utils.Success(ctx, gin.H{"items": expenses})
}
