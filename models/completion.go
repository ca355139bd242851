package models

import "time"

// Completion records that a task (optionally via an assignment) was finished.
// PointsEarned is copied from the task difficulty at completion time and never
// recomputed. Rows are immutable apart from a 24h comment-only edit window.
type Completion struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	TaskID       uint      `gorm:"index;not null" json:"task_id"`
	AssignmentID *uint     `gorm:"index" json:"assignment_id"`
	HouseholdID  uint      `gorm:"index;not null" json:"household_id"`
	UserID       uint      `gorm:"index;not null" json:"user_id"`
	PointsEarned int       `gorm:"not null;default:0" json:"points_earned"`
	Comment      string    `gorm:"type:text" json:"comment"`
	PhotoURL     string    `gorm:"size:1024" json:"photo_url"`
	CompletedAt  time.Time `gorm:"index;not null" json:"completed_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Task         *Task     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"task,omitempty"`
	User         *User     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user,omitempty"`
}

func (Completion) TableName() string {
	return "task_completions"
}
