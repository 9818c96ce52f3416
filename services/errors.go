package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Engine error taxonomy. Callers branch with errors.Is and map these onto
// HTTP conditions; anything else is a transient storage failure.
var (
	// ErrAlreadySpunToday rejects a second spin on the same calendar day.
	ErrAlreadySpunToday = errors.New("daily spin already used today")
	// ErrGoalNotFound covers both a missing goal and one owned by another user.
	ErrGoalNotFound = errors.New("goal not found")
	// ErrInvalidAmount rejects non-positive progress amounts.
	ErrInvalidAmount = errors.New("amount must be positive")
	// ErrInvalidActivity rejects an empty or blank activity kind.
	ErrInvalidActivity = errors.New("activity kind must not be empty")
	// ErrConcurrentUpdate signals a failed optimistic check; the caller should
	// retry the whole operation, which re-evaluates every precondition.
	ErrConcurrentUpdate = errors.New("concurrent update conflict")
)

// isDuplicateKey detects unique-index violations across the MySQL and SQLite
// drivers without enabling gorm's error translation globally.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || strings.Contains(msg, "UNIQUE constraint failed")
}
