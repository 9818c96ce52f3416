package models

import "time"

// Spin records one daily wheel draw. The unique (user_id, spin_date) index is
// what enforces the one-spin-per-day invariant at the storage layer.
type Spin struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"index:idx_spin_user_date,unique;not null" json:"user_id"`
	// SpinDate holds the calendar day as YYYY-MM-DD in the user's timezone;
	// string equality sidesteps DATE column timezone mismatches across drivers.
	SpinDate string `gorm:"index:idx_spin_user_date,unique;size:10;not null" json:"spin_date"`
	// Denormalized payload of the tier that was drawn
	Kind        RewardKind `gorm:"size:16;not null" json:"kind"`
	Name        string     `gorm:"size:128;not null" json:"name"`
	Description string     `gorm:"size:255" json:"description"`
	Coins       int64      `gorm:"not null;default:0" json:"coins"`
	BadgeName   string     `gorm:"size:64" json:"badge_name,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
