package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RewardKind is the tagged variant of a ledger entry. Every call site that
// branches on kind must handle all three values.
type RewardKind string

const (
	RewardKindCurrency RewardKind = "currency"
	RewardKindBadge    RewardKind = "badge"
	RewardKindBonus    RewardKind = "bonus"
)

// Valid reports whether the kind is one of the known variants.
func (k RewardKind) Valid() bool {
	switch k {
	case RewardKindCurrency, RewardKindBadge, RewardKindBonus:
		return true
	}
	return false
}

// Reward is one entry in the reward ledger. Entries are immutable once
// claimed; ClaimedAt is set exactly once and the row is never mutated after.
type Reward struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	RefID       string     `gorm:"size:36;uniqueIndex" json:"ref_id"`
	UserID      uint       `gorm:"index;not null" json:"user_id"`
	Kind        RewardKind `gorm:"size:16;not null" json:"kind"`
	Name        string     `gorm:"size:128;not null" json:"name"`
	Description string     `gorm:"size:255" json:"description"`
	Coins       int64      `gorm:"not null;default:0" json:"coins"`
	BadgeName   string     `gorm:"size:64" json:"badge_name,omitempty"`
	Metadata    string     `gorm:"type:text" json:"metadata,omitempty"` // JSON blob, optional
	ClaimedAt   *time.Time `gorm:"index" json:"claimed_at"`             // nil = unclaimed
	CreatedAt   time.Time  `json:"created_at"`
}

// Claimed reports whether the reward's coins already count toward the ledger.
func (r *Reward) Claimed() bool {
	return r.ClaimedAt != nil
}

// BeforeCreate assigns the external reference id.
func (r *Reward) BeforeCreate(tx *gorm.DB) error {
	if r.RefID == "" {
		r.RefID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	return nil
}
