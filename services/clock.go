package services

import (
	"time"

	"github.com/thriftly/thriftly/models"
)

// Clock abstracts "now" so day boundaries can be simulated in tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the wall clock used in production wiring.
func SystemClock() Clock { return systemClock{} }

// DateOnly truncates t to midnight in its own location.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DateKey renders t's calendar day as YYYY-MM-DD.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// DaysBetween returns the number of whole calendar days from a to b,
// ignoring the time-of-day component. Negative when b precedes a. Both dates
// are rebuilt at UTC midnight first so DST transitions and mixed locations
// cannot shave a day off the difference.
func DaysBetween(a, b time.Time) int {
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

// LocationFor resolves the user's configured timezone, falling back to UTC
// when the name is empty or unknown.
func LocationFor(user *models.User) *time.Location {
	if user == nil || user.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(user.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
