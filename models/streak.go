package models

import "time"

// Streak tracks consecutive-day activity per (user, activity kind).
// Version backs the optimistic concurrency check on read-modify-write updates.
type Streak struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	UserID       uint   `gorm:"index:idx_streak_user_activity,unique;not null" json:"user_id"`
	Activity     string `gorm:"index:idx_streak_user_activity,unique;size:64;not null" json:"activity"`
	CurrentCount int    `gorm:"not null;default:0" json:"current_count"`
	LongestCount int    `gorm:"not null;default:0" json:"longest_count"`
	// LastLogged holds the calendar day as YYYY-MM-DD in the user's timezone.
	LastLogged string    `gorm:"size:10;not null" json:"last_logged"`
	Version    int       `gorm:"not null;default:0" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// StreakBadge marks a streak badge as already awarded. Rows are append-only;
// the unique index makes re-awarding impossible even under concurrent updates.
type StreakBadge struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index:idx_streak_badge,unique;not null" json:"user_id"`
	Activity  string    `gorm:"index:idx_streak_badge,unique;size:64;not null" json:"activity"`
	Badge     string    `gorm:"index:idx_streak_badge,unique;size:64;not null" json:"badge"`
	CreatedAt time.Time `json:"created_at"`
}
