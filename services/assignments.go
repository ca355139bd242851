package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/famboard/famboard/models"
)

// Assignments covers manual assignment creation and cancellation; the
// scheduled paths live in Generator and Sweeper.
type Assignments struct {
	db  *gorm.DB
	now func() time.Time
}

// NewAssignments constructs the manual assignment service.
func NewAssignments(db *gorm.DB) *Assignments {
	return &Assignments{db: db, now: time.Now}
}

// Create assigns a task to a member. The actor needs the assign-tasks
// capability, the assignee an active membership, and the (task, assignee)
// pair must not already have an active pending assignment.
func (s *Assignments) Create(actorID, taskID, assigneeID uint, dueDate time.Time) (*models.Assignment, error) {
	var out *models.Assignment
	err := s.db.Transaction(func(tx *gorm.DB) error {
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

		membership, err := ActiveMembership(tx, actorID, task.HouseholdID)
		if err != nil {
			return err
		}
		if !Can(membership, PermAssignTasks) {
			return ErrPermissionDenied
		}
		if _, err := ActiveMembership(tx, assigneeID, task.HouseholdID); err != nil {
			return err
		}

		var pending int64
		err = tx.Model(&models.Assignment{}).
			Where("task_id = ? AND assignee_id = ? AND status = ? AND is_active = ?",
				task.ID, assigneeID, models.AssignmentStatusPending, true).
			Count(&pending).Error
		if err != nil {
			return err
		}
		if pending > 0 {
			return ErrDuplicatePending
		}

		assignment := models.Assignment{
			TaskID:     task.ID,
			AssigneeID: assigneeID,
			AssignedBy: actorID,
			DueDate:    midnight(dueDate),
			Status:     models.AssignmentStatusPending,
			IsActive:   true,
		}
		if err := tx.Create(&assignment).Error; err != nil {
			return err
		}
		out = &assignment
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Cancel soft-deletes an assignment. Allowed for the assignee themselves or
// anyone with the assign-tasks capability in the household.
func (s *Assignments) Cancel(actorID, assignmentID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var assignment models.Assignment
		err := tx.First(&assignment, assignmentID).Error
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

		if actorID != assignment.AssigneeID {
			membership, err := ActiveMembership(tx, actorID, task.HouseholdID)
			if err != nil {
				return err
			}
			if !Can(membership, PermAssignTasks) {
				return ErrPermissionDenied
			}
		}

		if assignment.Status == models.AssignmentStatusCompleted {
			return ErrAlreadyCompleted
		}

		res := tx.Model(&models.Assignment{}).
			Where("id = ? AND status <> ?", assignment.ID, models.AssignmentStatusCompleted).
			Updates(map[string]interface{}{
				"status":     models.AssignmentStatusCancelled,
				"is_active":  false,
				"updated_at": s.now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyCompleted
		}
		return nil
	})
}
