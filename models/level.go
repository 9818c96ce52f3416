package models

import "time"

// Level aggregates a user's claimed ledger into a discrete tier. The stored
// level never decreases from recomputation; coins/badges/title may drift and
// are persisted unconditionally on every recalculation.
type Level struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	CurrentLevel int       `gorm:"not null;default:1" json:"current_level"`
	TotalCoins   int64     `gorm:"not null;default:0" json:"total_coins"`
	TotalBadges  int       `gorm:"not null;default:0" json:"total_badges"`
	Title        string    `gorm:"size:64" json:"title"`
	Version      int       `gorm:"not null;default:0" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Achievement is one entry in the ordered level-up log. The unique
// (user_id, level) index guarantees a level-up is logged and rewarded once.
type Achievement struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index:idx_achievement_user_level,unique;not null" json:"user_id"`
	Level     int       `gorm:"index:idx_achievement_user_level,unique;not null" json:"level"`
	Title     string    `gorm:"size:64;not null" json:"title"`
	CreatedAt time.Time `json:"created_at"`
}
