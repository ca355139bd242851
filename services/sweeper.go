package services

import (
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/famboard/famboard/models"
)

// Sweeper flips pending assignments whose due date has passed to overdue.
// It runs hourly and is idempotent: a second run with no newly-overdue rows
// touches nothing.
type Sweeper struct {
	db  *gorm.DB
	log *zap.SugaredLogger
	now func() time.Time
}

// SweeperOption customises the Sweeper.
type SweeperOption func(*Sweeper)

// WithSweeperNow overrides the clock, primarily for testing.
func WithSweeperNow(now func() time.Time) SweeperOption {
	return func(s *Sweeper) {
		if now != nil {
			s.now = now
		}
	}
}

// NewSweeper constructs a Sweeper. A nil logger falls back to a no-op.
func NewSweeper(db *gorm.DB, log *zap.SugaredLogger, opts ...SweeperOption) *Sweeper {
	s := &Sweeper{
		db:  db,
		log: log,
		now: time.Now,
	}
	if s.log == nil {
		s.log = zap.NewNop().Sugar()
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run marks assignments overdue when their due date is strictly before the
// current date. Assignments due today stay pending until tomorrow.
func (s *Sweeper) Run() (int64, error) {
	today := midnight(s.now())
	res := s.db.Model(&models.Assignment{}).
		Where("status = ? AND is_active = ? AND due_date < ?",
			models.AssignmentStatusPending, true, today).
		Updates(map[string]interface{}{
			"status":     models.AssignmentStatusOverdue,
			"updated_at": s.now(),
		})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected > 0 {
		s.log.Infow("overdue sweep finished", "marked", res.RowsAffected)
	}
	return res.RowsAffected, nil
}
