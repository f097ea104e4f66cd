package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/Talha3818/gaming-site-sub000/models"

	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ExpirationSweeper expires pending challenges whose join window has
// passed and refunds the held stakes. It is advisory: correctness comes
// from the now > expires_at guard re-checked under the row lock, not
// from sweep promptness, so a sweep racing a concurrent accept or
// cancel simply loses and moves on.
type ExpirationSweeper struct {
	DB         *gorm.DB
	Challenges *ChallengeService
	Interval   time.Duration

	scheduler gocron.Scheduler
}

func NewExpirationSweeper(db *gorm.DB, challenges *ChallengeService, interval time.Duration) *ExpirationSweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &ExpirationSweeper{DB: db, Challenges: challenges, Interval: interval}
}

// Start schedules the periodic sweep.
func (s *ExpirationSweeper) Start() error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	s.scheduler = sched
	sched.Start()

	_, err = sched.NewJob(
		gocron.DurationJob(s.Interval),
		gocron.NewTask(func() {
			n, err := s.SweepOnce(context.Background())
			if err != nil {
				log.Printf("[SWEEPER] sweep error: %v", err)
				return
			}
			if n > 0 {
				log.Printf("[SWEEPER] expired %d challenge(s)", n)
			}
		}),
	)
	return err
}

// Stop shuts the scheduler down.
func (s *ExpirationSweeper) Stop() {
	if s.scheduler != nil {
		_ = s.scheduler.Shutdown()
	}
}

// SweepOnce runs a single pass. Each expired challenge is handled in its
// own transaction: re-lock, re-check status and expiry, refund, cancel.
// Challenges past pending are never touched.
func (s *ExpirationSweeper) SweepOnce(ctx context.Context) (int, error) {
	var ids []string
	err := s.DB.WithContext(ctx).Model(&models.Challenge{}).
		Where("status = ? AND expires_at < ?", models.ChallengeStatusPending, time.Now()).
		Pluck("id", &ids).Error
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, id := range ids {
		err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var ch models.Challenge
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&ch, "id = ?", id).Error; err != nil {
				return err
			}
			// Re-check under the lock: an accept or cancel may have won
			// the race since the scan.
			if ch.Status != models.ChallengeStatusPending || !ch.IsExpired(time.Now()) {
				return ErrInvalidState
			}
			return s.Challenges.cancelLocked(tx, &ch, "expired without acceptance")
		})
		if err != nil {
			if !errors.Is(err, ErrInvalidState) {
				log.Printf("[SWEEPER] challenge %s: %v", id, err)
			}
			continue
		}
		expired++
	}
	return expired, nil
}
