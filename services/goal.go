package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/thriftly/thriftly/models"
)

// GoalService accumulates savings progress toward monetary goals and detects
// completion and the 25/50/75 percent milestones.
type GoalService struct {
	db     *gorm.DB
	clock  Clock
	levels *LevelService
}

// NewGoalService wires the tracker over the shared store.
func NewGoalService(db *gorm.DB, clock Clock, levels *LevelService) *GoalService {
	return &GoalService{db: db, clock: clock, levels: levels}
}

// GoalState is the post-update view returned to the caller.
type GoalState struct {
	GoalID        uint    `json:"goal_id"`
	Name          string  `json:"name"`
	TargetAmount  int64   `json:"target_amount"`
	SavedAmount   int64   `json:"saved_amount"`
	Status        string  `json:"status"`
	Progress      float64 `json:"progress"`
	DaysRemaining int     `json:"days_remaining"`
	Milestones    []int   `json:"milestones"`
}

// CreateGoal registers a new savings goal for the user.
func (s *GoalService) CreateGoal(ctx context.Context, userID uint, name string, target int64, targetDate time.Time) (*models.Goal, error) {
	if target <= 0 {
		return nil, ErrInvalidAmount
	}

	goal := models.Goal{
		UserID:       userID,
		Name:         name,
		TargetAmount: target,
		StartDate:    DateOnly(s.clock.Now().In(s.userLocation(ctx, userID))),
		TargetDate:   DateOnly(targetDate),
		Status:       models.GoalStatusActive,
	}
	if err := s.db.WithContext(ctx).Create(&goal).Error; err != nil {
		return nil, err
	}
	return &goal, nil
}

// ListGoals returns the user's goals, active first, newest first within status.
func (s *GoalService) ListGoals(ctx context.Context, userID uint) ([]models.Goal, error) {
	var goals []models.Goal
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("status ASC, created_at DESC").
		Find(&goals).Error
	return goals, err
}

// goalProgressPercent computes min(100, saved/target*100).
func goalProgressPercent(saved, target int64) float64 {
	if target <= 0 {
		return 0
	}
	pct := float64(saved) / float64(target) * 100
	if pct > 100 {
		pct = 100
	}
	return pct
}

// goalCompletionCoins computes the completion reward. The early bonus applies
// whenever any positive time remains before the target date, no matter how
// little; coins = base + int(target/1000 * multiplier).
func goalCompletionCoins(target int64, daysRemaining int) int64 {
	multiplier := 1.0
	if daysRemaining > 0 {
		multiplier = goalEarlyBonusMultiplier
	}
	return goalCompletionBaseCoins + int64(float64(target)/1000.0*multiplier)
}

// UpdateGoalProgress adds a positive amount to the goal's saved total and
// applies completion and milestone grants in the same transaction as the
// aggregate update. Retrying after ErrConcurrentUpdate is safe: every grant
// is re-gated by the persisted milestone set and the one-way status check.
func (s *GoalService) UpdateGoalProgress(ctx context.Context, userID, goalID uint, amount int64) (*GoalState, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	var goal models.Goal
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", goalID, userID).
		First(&goal).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGoalNotFound
		}
		return nil, err
	}

	// Day boundaries follow the user's timezone, as spins and streaks do;
	// the early-completion bonus must not flip at the server's midnight.
	today := s.clock.Now().In(s.userLocation(ctx, userID))
	daysRemaining := DaysBetween(today, goal.TargetDate)
	if daysRemaining < 0 {
		daysRemaining = 0
	}

	newSaved := goal.SavedAmount + amount
	newStatus := goal.Status
	var completedAt *time.Time
	completing := false
	if newSaved >= goal.TargetAmount && goal.Status == models.GoalStatusActive {
		newStatus = models.GoalStatusCompleted
		now := s.clock.Now()
		completedAt = &now
		completing = true
	}

	progress := goalProgressPercent(newSaved, goal.TargetAmount)

	reached, err := s.awardedMilestones(ctx, goal.ID)
	if err != nil {
		return nil, err
	}
	reachedSet := map[int]bool{}
	for _, p := range reached {
		reachedSet[p] = true
	}

	grants := 0
	now := s.clock.Now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"saved_amount": newSaved,
			"status":       newStatus,
			"version":      goal.Version + 1,
		}
		if completedAt != nil {
			updates["completed_at"] = completedAt
		}
		res := tx.Model(&models.Goal{}).
			Where("id = ? AND version = ?", goal.ID, goal.Version).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrConcurrentUpdate
		}

		if completing {
			reward := claimedReward(userID,
				models.RewardKindBonus,
				"Goal completed",
				fmt.Sprintf("Saved %d for %q", goal.TargetAmount, goal.Name),
				goalCompletionCoins(goal.TargetAmount, daysRemaining),
				"",
				now,
			)
			if err := tx.Create(&reward).Error; err != nil {
				return err
			}
			grants++
		}

		for _, percent := range goalMilestones {
			if progress < float64(percent) || reachedSet[percent] {
				continue
			}
			milestone := models.GoalMilestone{GoalID: goal.ID, UserID: userID, Percent: percent}
			if err := tx.Create(&milestone).Error; err != nil {
				if isDuplicateKey(err) {
					return ErrConcurrentUpdate
				}
				return err
			}
			reward := claimedReward(userID,
				models.RewardKindCurrency,
				fmt.Sprintf("Goal %d%% milestone", percent),
				fmt.Sprintf("%q is %d%% funded", goal.Name, percent),
				int64(percent),
				"",
				now,
			)
			if err := tx.Create(&reward).Error; err != nil {
				return err
			}
			reachedSet[percent] = true
			reached = append(reached, percent)
			grants++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if grants > 0 {
		if _, err := s.levels.Recalculate(ctx, userID); err != nil {
			logWarn("level recalculation after goal grant failed", "user_id", userID, "error", err)
		}
	}

	return &GoalState{
		GoalID:        goal.ID,
		Name:          goal.Name,
		TargetAmount:  goal.TargetAmount,
		SavedAmount:   newSaved,
		Status:        newStatus,
		Progress:      progress,
		DaysRemaining: daysRemaining,
		Milestones:    reached,
	}, nil
}

func (s *GoalService) userLocation(ctx context.Context, userID uint) *time.Location {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return time.UTC
	}
	return LocationFor(&user)
}

func (s *GoalService) awardedMilestones(ctx context.Context, goalID uint) ([]int, error) {
	var rows []models.GoalMilestone
	err := s.db.WithContext(ctx).
		Where("goal_id = ?", goalID).
		Order("percent").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	percents := make([]int, 0, len(rows))
	for _, row := range rows {
		percents = append(percents, row.Percent)
	}
	return percents, nil
}
