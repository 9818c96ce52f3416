package models

import "time"

// Expense is the minimal logged-spending record. Creating one is the trigger
// that advances the expense_logging streak; the full budgeting CRUD lives in
// the surrounding tracker, not here.
type Expense struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Category  string    `gorm:"size:64" json:"category"`
	Amount    int64     `gorm:"not null" json:"amount"`
	Note      string    `gorm:"size:255" json:"note"`
	SpentAt   time.Time `gorm:"type:date;not null" json:"spent_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
