package services

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/thriftly/thriftly/models"
)

// SpinService performs the weighted daily reward draw. The random source is
// injected so distribution tests can run against a fixed seed; production
// wiring seeds from the clock.
type SpinService struct {
	db     *gorm.DB
	clock  Clock
	levels *LevelService

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewSpinService creates a drawer with a clock-seeded random source.
func NewSpinService(db *gorm.DB, clock Clock, levels *LevelService) *SpinService {
	return &SpinService{
		db:     db,
		clock:  clock,
		levels: levels,
		rnd:    rand.New(rand.NewSource(clock.Now().UnixNano())),
	}
}

// NewSpinServiceWithSource creates a drawer over a caller-owned random source.
func NewSpinServiceWithSource(db *gorm.DB, clock Clock, levels *LevelService, rnd *rand.Rand) *SpinService {
	return &SpinService{db: db, clock: clock, levels: levels, rnd: rnd}
}

// SpinResult is the reward payload returned to the caller after a draw.
type SpinResult struct {
	Success     bool              `json:"success"`
	Kind        models.RewardKind `json:"kind"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Coins       int64             `json:"coins"`
	BadgeName   string            `json:"badge_name,omitempty"`
	SpinDate    string            `json:"spin_date"`
}

// PerformDailySpin draws one reward for the user's current calendar day.
// The SpinRecord and its claimed Reward are written in one transaction; a
// duplicate spin on the same day fails with ErrAlreadySpunToday and leaves
// no state behind.
func (s *SpinService) PerformDailySpin(ctx context.Context, userID uint) (*SpinResult, error) {
	today := DateKey(s.clock.Now().In(s.userLocation(ctx, userID)))

	var existing models.Spin
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND spin_date = ?", userID, today).
		First(&existing).Error
	if err == nil {
		return nil, ErrAlreadySpunToday
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	tier := pickTier(s.draw())
	now := s.clock.Now()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		spin := models.Spin{
			UserID:      userID,
			SpinDate:    today,
			Kind:        tier.Kind,
			Name:        tier.Name,
			Description: tier.Description,
			Coins:       tier.Coins,
			BadgeName:   tier.BadgeName,
		}
		if err := tx.Create(&spin).Error; err != nil {
			if isDuplicateKey(err) {
				// Raced with another spin for the same day; the unique index wins.
				return ErrAlreadySpunToday
			}
			return err
		}

		reward := claimedReward(userID, tier.Kind, tier.Name, tier.Description, tier.Coins, tier.BadgeName, now)
		return tx.Create(&reward).Error
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.levels.Recalculate(ctx, userID); err != nil {
		// The spin itself committed; level catches up on the next recalculation.
		logWarn("level recalculation after spin failed", "user_id", userID, "error", err)
	}

	return &SpinResult{
		Success:     true,
		Kind:        tier.Kind,
		Name:        tier.Name,
		Description: tier.Description,
		Coins:       tier.Coins,
		BadgeName:   tier.BadgeName,
		SpinDate:    today,
	}, nil
}

// draw returns a uniform integer in [1,100].
func (s *SpinService) draw() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.Intn(100) + 1
}

// userLocation loads the user's configured timezone for day boundaries.
func (s *SpinService) userLocation(ctx context.Context, userID uint) *time.Location {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return time.UTC
	}
	return LocationFor(&user)
}
