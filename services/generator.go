package services

import (
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/famboard/famboard/models"
)

// Generator produces one assignment per active auto-assign task per period.
// It runs on a fixed schedule (daily at a fixed hour, weekly on Monday) and
// is best-effort: a failed run is logged and retried naturally on the next
// tick, never within the same period.
type Generator struct {
	db  *gorm.DB
	log *zap.SugaredLogger
	now func() time.Time
}

// GeneratorOption customises the Generator.
type GeneratorOption func(*Generator)

// WithGeneratorNow overrides the clock, primarily for testing.
func WithGeneratorNow(now func() time.Time) GeneratorOption {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

// NewGenerator constructs a Generator. A nil logger falls back to a no-op.
func NewGenerator(db *gorm.DB, log *zap.SugaredLogger, opts ...GeneratorOption) *Generator {
	g := &Generator{
		db:  db,
		log: log,
		now: time.Now,
	}
	if g.log == nil {
		g.log = zap.NewNop().Sugar()
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// RunDaily creates today's assignments for daily tasks. The period is the
// calendar day of the due date.
func (g *Generator) RunDaily() (int, error) {
	today := midnight(g.now())
	return g.run(models.FrequencyDaily, today, today, today.AddDate(0, 0, 1))
}

// RunWeekly creates assignments for weekly tasks, due the upcoming Monday.
// The duplicate window starts at the current week's Monday and extends through
// the due date's week, so a mid-week catch-up run neither duplicates an
// assignment the scheduled Monday tick already created nor re-creates its own
// on a later retry.
func (g *Generator) RunWeekly() (int, error) {
	due := upcomingMonday(g.now())
	weekStart := recentMonday(g.now())
	return g.run(models.FrequencyWeekly, due, weekStart, due.AddDate(0, 0, 7))
}

func (g *Generator) run(frequency string, dueDate, periodStart, periodEnd time.Time) (int, error) {
	var tasks []models.Task
	if err := g.db.
		Where("is_active = ? AND auto_assign = ? AND frequency = ?", true, true, frequency).
		Find(&tasks).Error; err != nil {
		return 0, err
	}

	batch := make([]models.Assignment, 0, len(tasks))
	for i := range tasks {
		task := &tasks[i]

		var existing int64
		err := g.db.Model(&models.Assignment{}).
			Where("task_id = ? AND is_active = ? AND due_date >= ? AND due_date < ?",
				task.ID, true, periodStart, periodEnd).
			Count(&existing).Error
		if err != nil {
			g.log.Errorw("assignment period check failed", "task_id", task.ID, "error", err)
			continue
		}
		if existing > 0 {
			continue
		}

		assigneeID, ok, err := g.resolveAssignee(task)
		if err != nil {
			g.log.Errorw("assignee resolution failed", "task_id", task.ID, "error", err)
			continue
		}
		if !ok {
			g.log.Infow("no eligible assignee, skipping task", "task_id", task.ID, "frequency", frequency)
			continue
		}

		batch = append(batch, models.Assignment{
			TaskID:     task.ID,
			AssigneeID: assigneeID,
			AssignedBy: task.CreatedBy,
			DueDate:    dueDate,
			Status:     models.AssignmentStatusPending,
			IsActive:   true,
		})
	}

	if len(batch) > 0 {
		if err := g.db.Create(&batch).Error; err != nil {
			return 0, err
		}
	}

	g.log.Infow("assignment generation finished",
		"frequency", frequency,
		"due_date", dueDate.Format("2006-01-02"),
		"created", len(batch),
	)
	return len(batch), nil
}

// resolveAssignee applies the rotation policy for cyclic tasks and the
// repeat-last-assignee policy for the rest. A non-cyclic task that has never
// been assigned falls back to its required initial assignee.
func (g *Generator) resolveAssignee(task *models.Task) (uint, bool, error) {
	if task.IsCyclic {
		return NextAssignee(g.db, task)
	}

	var last models.Assignment
	err := g.db.Where("task_id = ? AND is_active = ?", task.ID, true).
		Order("id DESC").
		First(&last).Error
	if err == nil {
		return last.AssigneeID, true, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, err
	}

	if task.DefaultAssigneeID != nil && *task.DefaultAssigneeID != 0 {
		return *task.DefaultAssigneeID, true, nil
	}
	return 0, false, nil
}

// midnight truncates t to the start of its calendar day in local time.
func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// upcomingMonday returns the next Monday at midnight, today included.
func upcomingMonday(t time.Time) time.Time {
	d := midnight(t)
	offset := (int(time.Monday) - int(d.Weekday()) + 7) % 7
	return d.AddDate(0, 0, offset)
}

// recentMonday returns the Monday at midnight of the week containing t,
// today included.
func recentMonday(t time.Time) time.Time {
	d := midnight(t)
	offset := (int(d.Weekday()) - int(time.Monday) + 7) % 7
	return d.AddDate(0, 0, -offset)
}
