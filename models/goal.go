package models

import "time"

const (
	GoalStatusActive    = "active"
	GoalStatusCompleted = "completed"
)

// Goal is a monetary savings target. Status only ever moves active -> completed.
type Goal struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	UserID       uint       `gorm:"index;not null" json:"user_id"`
	Name         string     `gorm:"size:128;not null" json:"name"`
	TargetAmount int64      `gorm:"not null" json:"target_amount"`
	SavedAmount  int64      `gorm:"not null;default:0" json:"saved_amount"`
	StartDate    time.Time  `gorm:"type:date;not null" json:"start_date"`
	TargetDate   time.Time  `gorm:"type:date;not null" json:"target_date"`
	Status       string     `gorm:"size:16;not null;default:'active'" json:"status"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	Version      int        `gorm:"not null;default:0" json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// GoalMilestone marks a progress threshold (25/50/75) as already rewarded.
// Append-only; the unique index enforces grant-once under concurrency.
type GoalMilestone struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	GoalID    uint      `gorm:"index:idx_goal_milestone,unique;not null" json:"goal_id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Percent   int       `gorm:"index:idx_goal_milestone,unique;not null" json:"percent"`
	CreatedAt time.Time `json:"created_at"`
}
