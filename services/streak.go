package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/thriftly/thriftly/models"
)

// StreakService maintains per-user, per-activity consecutive-day counters and
// awards threshold badges exactly once.
type StreakService struct {
	db     *gorm.DB
	clock  Clock
	levels *LevelService
}

// NewStreakService wires the tracker over the shared store.
func NewStreakService(db *gorm.DB, clock Clock, levels *LevelService) *StreakService {
	return &StreakService{db: db, clock: clock, levels: levels}
}

// StreakState is the post-update view returned to the caller.
type StreakState struct {
	Activity     string   `json:"activity"`
	CurrentCount int      `json:"current_count"`
	LongestCount int      `json:"longest_count"`
	LastLogged   string   `json:"last_logged"`
	Badges       []string `json:"badges"`
}

// advanceStreak applies the day-boundary state machine and reports whether
// the record changed. Pure; tested without a database.
//
//	lastLogged == today     -> no-op (idempotent same-day calls)
//	lastLogged == yesterday -> increment
//	anything else           -> reset to 1
func advanceStreak(current int, lastLogged, today, yesterday string) (int, bool) {
	switch lastLogged {
	case today:
		return current, false
	case yesterday:
		return current + 1, true
	default:
		return 1, true
	}
}

// UpdateStreak logs today's activity and advances the counter. Badge grants
// ride in the same transaction as the counter update; the badge set's unique
// index keeps concurrent updates from double-awarding.
func (s *StreakService) UpdateStreak(ctx context.Context, userID uint, activity string) (*StreakState, error) {
	activity = strings.ToLower(strings.TrimSpace(activity))
	if activity == "" {
		return nil, ErrInvalidActivity
	}

	loc := s.userLocation(ctx, userID)
	nowLocal := s.clock.Now().In(loc)
	today := DateKey(nowLocal)
	yesterday := DateKey(nowLocal.AddDate(0, 0, -1))

	record, err := s.loadOrCreate(ctx, userID, activity, today)
	if err != nil {
		return nil, err
	}

	newCount, changed := advanceStreak(record.CurrentCount, record.LastLogged, today, yesterday)
	if !changed {
		badges, err := s.awardedBadges(ctx, userID, activity)
		if err != nil {
			return nil, err
		}
		return s.state(record, badges), nil
	}

	longest := record.LongestCount
	if newCount > longest {
		longest = newCount
	}

	awarded, err := s.awardedBadges(ctx, userID, activity)
	if err != nil {
		return nil, err
	}
	awardedSet := map[string]bool{}
	for _, b := range awarded {
		awardedSet[b] = true
	}

	granted := []string{}
	now := s.clock.Now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Streak{}).
			Where("id = ? AND version = ?", record.ID, record.Version).
			Updates(map[string]interface{}{
				"current_count": newCount,
				"longest_count": longest,
				"last_logged":   today,
				"version":       record.Version + 1,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrConcurrentUpdate
		}

		// Thresholds ascend, so a long-running streak can pick up multiple
		// badges in one update after a backfill.
		for _, threshold := range streakBadgeThresholds {
			if newCount < threshold {
				break
			}
			badge := streakBadgeID(threshold)
			if awardedSet[badge] {
				continue
			}
			if err := tx.Create(&models.StreakBadge{UserID: userID, Activity: activity, Badge: badge}).Error; err != nil {
				if isDuplicateKey(err) {
					return ErrConcurrentUpdate
				}
				return err
			}
			reward := claimedReward(userID,
				models.RewardKindBadge,
				fmt.Sprintf("%d-day streak", threshold),
				fmt.Sprintf("Logged %s for %d days in a row", activity, threshold),
				coinsForStreakBadge(threshold),
				badge,
				now,
			)
			if err := tx.Create(&reward).Error; err != nil {
				return err
			}
			granted = append(granted, badge)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(granted) > 0 {
		if _, err := s.levels.Recalculate(ctx, userID); err != nil {
			logWarn("level recalculation after streak badge failed", "user_id", userID, "error", err)
		}
	}

	record.CurrentCount = newCount
	record.LongestCount = longest
	record.LastLogged = today
	return s.state(record, append(awarded, granted...)), nil
}

// GetStreaks lists all of the user's streaks with their badge sets.
func (s *StreakService) GetStreaks(ctx context.Context, userID uint) ([]StreakState, error) {
	var records []models.Streak
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("activity").Find(&records).Error; err != nil {
		return nil, err
	}

	states := make([]StreakState, 0, len(records))
	for i := range records {
		badges, err := s.awardedBadges(ctx, userID, records[i].Activity)
		if err != nil {
			return nil, err
		}
		states = append(states, *s.state(&records[i], badges))
	}
	return states, nil
}

func (s *StreakService) state(record *models.Streak, badges []string) *StreakState {
	if badges == nil {
		badges = []string{}
	}
	return &StreakState{
		Activity:     record.Activity,
		CurrentCount: record.CurrentCount,
		LongestCount: record.LongestCount,
		LastLogged:   record.LastLogged,
		Badges:       badges,
	}
}

// loadOrCreate fetches the streak row, lazily starting a new streak at
// count=1 on the first ever log for this activity.
func (s *StreakService) loadOrCreate(ctx context.Context, userID uint, activity, today string) (*models.Streak, error) {
	var record models.Streak
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND activity = ?", userID, activity).
		First(&record).Error
	if err == nil {
		return &record, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	record = models.Streak{
		UserID:       userID,
		Activity:     activity,
		CurrentCount: 1,
		LongestCount: 1,
		LastLogged:   today,
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		if !isDuplicateKey(err) {
			return nil, err
		}
		// Lost the creation race; read the winner's row.
		if err := s.db.WithContext(ctx).Where("user_id = ? AND activity = ?", userID, activity).First(&record).Error; err != nil {
			return nil, err
		}
	}
	return &record, nil
}

func (s *StreakService) awardedBadges(ctx context.Context, userID uint, activity string) ([]string, error) {
	var rows []models.StreakBadge
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND activity = ?", userID, activity).
		Order("created_at").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	badges := make([]string, 0, len(rows))
	for _, row := range rows {
		badges = append(badges, row.Badge)
	}
	return badges, nil
}

func (s *StreakService) userLocation(ctx context.Context, userID uint) *time.Location {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return time.UTC
	}
	return LocationFor(&user)
}
