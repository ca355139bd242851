package models

import "time"

// Assignment statuses.
const (
	AssignmentStatusPending    = "pending"
	AssignmentStatusInProgress = "in_progress"
	AssignmentStatusOverdue    = "overdue"
	AssignmentStatusCompleted  = "completed"
	AssignmentStatusCancelled  = "cancelled"
)

// Assignment is one instance of a task allocated to one user with a due date.
// At most one active pending assignment may exist per (task, assignee); the
// application checks before creating manual assignments, and the generator
// enforces one assignment per task per period via the due-date window.
type Assignment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	TaskID     uint      `gorm:"index;not null" json:"task_id"`
	AssigneeID uint      `gorm:"index;not null" json:"assignee_id"`
	AssignedBy uint      `gorm:"not null" json:"assigned_by"`
	DueDate    time.Time `gorm:"index;not null" json:"due_date"`
	Status     string    `gorm:"size:16;index;not null;default:'pending'" json:"status"`
	IsActive   bool      `gorm:"default:true" json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Task       *Task     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"task,omitempty"`
}

func (Assignment) TableName() string {
	return "task_assignments"
}
