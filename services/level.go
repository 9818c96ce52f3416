package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/thriftly/thriftly/models"
)

// LevelService recomputes a user's level from the claimed reward ledger.
// Recalculate is a pure function of the ledger and safe to call repeatedly:
// the achievement log's unique index guarantees each level-up pays out once.
type LevelService struct {
	db     *gorm.DB
	clock  Clock
	ledger *Ledger
}

// NewLevelService wires the calculator over the shared store.
func NewLevelService(db *gorm.DB, clock Clock, ledger *Ledger) *LevelService {
	return &LevelService{db: db, clock: clock, ledger: ledger}
}

// LevelState is the persisted outcome of a recalculation.
type LevelState struct {
	Level       int    `json:"level"`
	Title       string `json:"title"`
	TotalCoins  int64  `json:"total_coins"`
	TotalBadges int    `json:"total_badges"`
	LeveledUp   bool   `json:"leveled_up"`
}

// Recalculate derives the level from cumulative claimed coins and persists
// level, coin total, badge total, and title unconditionally; the stored level
// itself never decreases from a recomputation.
func (s *LevelService) Recalculate(ctx context.Context, userID uint) (*LevelState, error) {
	coins, err := s.ledger.SumClaimedCoins(ctx, userID)
	if err != nil {
		return nil, err
	}
	badges, err := s.ledger.CountClaimedBadges(ctx, userID)
	if err != nil {
		return nil, err
	}

	record, err := s.loadOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	step := levelForCoins(coins)
	newLevel := step.Level
	if newLevel < record.CurrentLevel {
		newLevel = record.CurrentLevel
	}
	title := stepForLevel(newLevel).Title
	leveledUp := newLevel > record.CurrentLevel

	now := s.clock.Now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if leveledUp {
			achievement := models.Achievement{UserID: userID, Level: newLevel, Title: title}
			if err := tx.Create(&achievement).Error; err != nil {
				if !isDuplicateKey(err) {
					return err
				}
				// Another recalculation already logged this level; skip the grant.
				leveledUp = false
			} else {
				reward := claimedReward(userID,
					models.RewardKindBonus,
					fmt.Sprintf("Level %d reached", newLevel),
					fmt.Sprintf("Promoted to %s", title),
					int64(newLevel)*levelUpCoinsPerLevel,
					"",
					now,
				)
				if err := tx.Create(&reward).Error; err != nil {
					return err
				}
			}
		}

		res := tx.Model(&models.Level{}).
			Where("id = ? AND version = ?", record.ID, record.Version).
			Updates(map[string]interface{}{
				"current_level": newLevel,
				"total_coins":   coins,
				"total_badges":  badges,
				"title":         title,
				"version":       record.Version + 1,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrConcurrentUpdate
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &LevelState{
		Level:       newLevel,
		Title:       title,
		TotalCoins:  coins,
		TotalBadges: int(badges),
		LeveledUp:   leveledUp,
	}, nil
}

// LevelProgress describes the distance to the next level.
type LevelProgress struct {
	Level       int     `json:"level"`
	Title       string  `json:"title"`
	NextLevel   int     `json:"next_level"`
	Coins       int64   `json:"coins"`
	CoinsNeeded int64   `json:"coins_needed"`
	Percent     float64 `json:"percent"`
}

// GetProgress reports the user's current level and progress toward the next
// threshold. Percent is clamped to [0,100] and is 0 at max level.
func (s *LevelService) GetProgress(ctx context.Context, userID uint) (*LevelProgress, error) {
	coins, err := s.ledger.SumClaimedCoins(ctx, userID)
	if err != nil {
		return nil, err
	}

	record, err := s.loadOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	level := record.CurrentLevel
	if computed := levelForCoins(coins).Level; computed > level {
		level = computed
	}

	progress := &LevelProgress{
		Level: level,
		Title: stepForLevel(level).Title,
		Coins: coins,
	}

	if level >= maxLevel() {
		progress.NextLevel = level
		return progress, nil
	}

	current := stepForLevel(level)
	next := stepForLevel(level + 1)
	progress.NextLevel = next.Level
	if coins < next.Coins {
		progress.CoinsNeeded = next.Coins - coins
	}
	if span := next.Coins - current.Coins; span > 0 {
		pct := float64(coins-current.Coins) / float64(span) * 100
		if pct < 0 {
			pct = 0
		}
		if pct > 100 {
			pct = 100
		}
		progress.Percent = pct
	}
	return progress, nil
}

// loadOrCreate fetches the user's level row, lazily creating the level-1
// default on first touch.
func (s *LevelService) loadOrCreate(ctx context.Context, userID uint) (*models.Level, error) {
	var record models.Level
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&record).Error
	if err == nil {
		return &record, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	record = models.Level{
		UserID:       userID,
		CurrentLevel: 1,
		Title:        stepForLevel(1).Title,
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		if !isDuplicateKey(err) {
			return nil, err
		}
		// Lost the creation race; read the winner's row.
		if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&record).Error; err != nil {
			return nil, err
		}
	}
	return &record, nil
}
