package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/famboard/famboard/models"
	"github.com/famboard/famboard/utils"
)

// commentEditWindow is how long a completion comment stays editable.
const commentEditWindow = 24 * time.Hour

// CompletionInput carries the optional proof and comment supplied by the
// completer.
type CompletionInput struct {
	Comment  string
	PhotoURL string
}

// Completions implements the completion half of the transaction protocol:
// assignment -> completed plus a ledger credit, all-or-nothing.
type Completions struct {
	db  *gorm.DB
	now func() time.Time
}

// CompletionsOption customises the Completions service.
type CompletionsOption func(*Completions)

// WithCompletionsNow overrides the clock, primarily for testing.
func WithCompletionsNow(now func() time.Time) CompletionsOption {
	return func(c *Completions) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCompletions constructs the completion service.
func NewCompletions(db *gorm.DB, opts ...CompletionsOption) *Completions {
	c := &Completions{db: db, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CompleteAssignment finishes an assignment and credits the completer.
// The status check and flip run under one transaction with the row locked,
// so two concurrent completions of the same assignment cannot both succeed.
func (c *Completions) CompleteAssignment(actorID, assignmentID uint, in CompletionInput) (*models.Completion, error) {
	var out *models.Completion
	err := c.db.Transaction(func(tx *gorm.DB) error {
		var assignment models.Assignment
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&assignment, assignmentID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		var task models.Task
		if err := tx.First(&task, assignment.TaskID).Error; err != nil {
			return err
		}

		// The actor must be the assignee or an active member of the task's
		// household.
		if actorID != assignment.AssigneeID {
			if _, err := ActiveMembership(tx, actorID, task.HouseholdID); err != nil {
				return err
			}
		}

		if !assignment.IsActive || assignment.Status == models.AssignmentStatusCancelled {
			return ErrAssignmentInactive
		}
		if assignment.Status == models.AssignmentStatusCompleted {
			return ErrAlreadyCompleted
		}
		if task.RequiresProof && strings.TrimSpace(in.PhotoURL) == "" {
			return ErrProofRequired
		}

		// Conditional flip: RowsAffected 0 means another transaction completed
		// the assignment between our read and this write.
		res := tx.Model(&models.Assignment{}).
			Where("id = ? AND status <> ?", assignment.ID, models.AssignmentStatusCompleted).
			Updates(map[string]interface{}{
				"status":     models.AssignmentStatusCompleted,
				"updated_at": c.now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyCompleted
		}

		completion := models.Completion{
			TaskID:       task.ID,
			AssignmentID: &assignment.ID,
			HouseholdID:  task.HouseholdID,
			UserID:       actorID,
			PointsEarned: task.DifficultyMinutes,
			Comment:      utils.Sanitize(in.Comment),
			PhotoURL:     strings.TrimSpace(in.PhotoURL),
			CompletedAt:  c.now(),
		}
		if err := tx.Create(&completion).Error; err != nil {
			return err
		}
		out = &completion
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CompleteTask records a direct completion without an assignment. The actor
// must be an active member of the task's household.
func (c *Completions) CompleteTask(actorID, taskID uint, in CompletionInput) (*models.Completion, error) {
	var out *models.Completion
	err := c.db.Transaction(func(tx *gorm.DB) error {
		var task models.Task
		err := tx.First(&task, taskID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if !task.IsActive {
			return ErrTaskInactive
		}

		if _, err := ActiveMembership(tx, actorID, task.HouseholdID); err != nil {
			return err
		}

		if task.RequiresProof && strings.TrimSpace(in.PhotoURL) == "" {
			return ErrProofRequired
		}

		completion := models.Completion{
			TaskID:       task.ID,
			HouseholdID:  task.HouseholdID,
			UserID:       actorID,
			PointsEarned: task.DifficultyMinutes,
			Comment:      utils.Sanitize(in.Comment),
			PhotoURL:     strings.TrimSpace(in.PhotoURL),
			CompletedAt:  c.now(),
		}
		if err := tx.Create(&completion).Error; err != nil {
			return err
		}
		out = &completion
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateComment edits a completion comment. Only the completer may edit, only
// the comment, and only within the grace window after completion.
func (c *Completions) UpdateComment(actorID, completionID uint, comment string) (*models.Completion, error) {
	var completion models.Completion
	err := c.db.First(&completion, completionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if completion.UserID != actorID {
		return nil, ErrPermissionDenied
	}
	if c.now().Sub(completion.CompletedAt) > commentEditWindow {
		return nil, ErrEditWindowClosed
	}

	completion.Comment = utils.Sanitize(comment)
	if err := c.db.Model(&completion).
		Updates(map[string]interface{}{"comment": completion.Comment, "updated_at": c.now()}).Error; err != nil {
		return nil, err
	}
	return &completion, nil
}
