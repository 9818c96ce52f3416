package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/thriftly/thriftly/models"
)

// Ledger is the read side of the reward store: every coin total and reward
// projection the engine exposes is derived from claimed Reward rows here, so
// business rules never embed their own aggregate SQL.
type Ledger struct {
	db *gorm.DB
}

// NewLedger creates a ledger reader over the shared gorm handle.
func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// SumClaimedCoins returns the user's cumulative claimed coin total.
func (l *Ledger) SumClaimedCoins(ctx context.Context, userID uint) (int64, error) {
	var total int64
	err := l.db.WithContext(ctx).Model(&models.Reward{}).
		Where("user_id = ? AND claimed_at IS NOT NULL", userID).
		Select("COALESCE(SUM(coins),0)").
		Scan(&total).Error
	return total, err
}

// CountClaimedBadges counts claimed rewards that carry a badge name.
func (l *Ledger) CountClaimedBadges(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := l.db.WithContext(ctx).Model(&models.Reward{}).
		Where("user_id = ? AND claimed_at IS NOT NULL AND badge_name <> ''", userID).
		Count(&count).Error
	return count, err
}

// Unclaimed lists rewards whose coins do not yet count toward the ledger.
func (l *Ledger) Unclaimed(ctx context.Context, userID uint) ([]models.Reward, error) {
	var rewards []models.Reward
	err := l.db.WithContext(ctx).
		Where("user_id = ? AND claimed_at IS NULL", userID).
		Order("created_at DESC").
		Find(&rewards).Error
	return rewards, err
}

// RecentClaimed lists the latest claimed rewards, newest first.
func (l *Ledger) RecentClaimed(ctx context.Context, userID uint, limit int) ([]models.Reward, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var rewards []models.Reward
	err := l.db.WithContext(ctx).
		Where("user_id = ? AND claimed_at IS NOT NULL", userID).
		Order("claimed_at DESC").
		Limit(limit).
		Find(&rewards).Error
	return rewards, err
}

// SpinHistory lists past daily spins, newest first.
func (l *Ledger) SpinHistory(ctx context.Context, userID uint, limit int) ([]models.Spin, error) {
	if limit <= 0 || limit > 100 {
		limit = 30
	}
	var spins []models.Spin
	err := l.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("spin_date DESC").
		Limit(limit).
		Find(&spins).Error
	return spins, err
}

// KindStats aggregates the claimed ledger for one reward kind.
type KindStats struct {
	Kind  models.RewardKind `json:"kind"`
	Count int64             `json:"count"`
	Coins int64             `json:"coins"`
}

// RewardStats is the aggregate projection served by the stats endpoint.
type RewardStats struct {
	TotalCount int64       `json:"total_count"`
	TotalCoins int64       `json:"total_coins"`
	ByKind     []KindStats `json:"by_kind"`
}

// Stats returns per-kind counts and coin sums over the claimed ledger.
func (l *Ledger) Stats(ctx context.Context, userID uint) (*RewardStats, error) {
	var rows []KindStats
	err := l.db.WithContext(ctx).Model(&models.Reward{}).
		Where("user_id = ? AND claimed_at IS NOT NULL", userID).
		Select("kind, COUNT(*) AS count, COALESCE(SUM(coins),0) AS coins").
		Group("kind").
		Order("kind").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	stats := &RewardStats{ByKind: rows}
	for _, row := range rows {
		stats.TotalCount += row.Count
		stats.TotalCoins += row.Coins
	}
	return stats, nil
}

// claimedReward builds a Reward row that is claimed at creation time. Grants
// issued by the engine are always immediately claimed.
func claimedReward(userID uint, kind models.RewardKind, name, description string, coins int64, badgeName string, now time.Time) models.Reward {
	claimed := now
	return models.Reward{
		UserID:      userID,
		Kind:        kind,
		Name:        name,
		Description: description,
		Coins:       coins,
		BadgeName:   badgeName,
		ClaimedAt:   &claimed,
	}
}
