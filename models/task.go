package models

import (
	"strconv"
	"strings"
	"time"
)

// Task frequencies. Only daily and weekly tasks are picked up by the
// scheduled assignment generator; the rest are assigned manually.
const (
	FrequencyOnce    = "once"
	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
	FrequencyYearly  = "yearly"
)

// ValidFrequency reports whether s is a recognised task frequency.
func ValidFrequency(s string) bool {
	switch s {
	case FrequencyOnce, FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return true
	}
	return false
}

// TaskCategory groups tasks inside a household.
type TaskCategory struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	HouseholdID uint      `gorm:"index;not null" json:"household_id"`
	Name        string    `gorm:"size:64;not null" json:"name"`
	Color       string    `gorm:"size:16" json:"color"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Task is a chore belonging to a household. DifficultyMinutes doubles as the
// points value credited on completion. When AutoAssign is set the generator
// creates one assignment per period; cyclic tasks rotate the assignee,
// non-cyclic tasks repeat the last assignee and fall back to
// DefaultAssigneeID for their first ever assignment.
type Task struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	HouseholdID       uint       `gorm:"index;not null" json:"household_id"`
	CategoryID        *uint      `gorm:"index" json:"category_id"`
	Title             string     `gorm:"size:255;not null" json:"title"`
	Description       string     `gorm:"type:text" json:"description"`
	DifficultyMinutes int        `gorm:"not null;default:0" json:"difficulty_minutes"`
	Frequency         string     `gorm:"size:16;not null;default:'once'" json:"frequency"`
	IsCyclic          bool       `gorm:"default:false" json:"is_cyclic"`
	AutoAssign        bool       `gorm:"default:false" json:"auto_assign"`
	CycleUsers        string     `gorm:"size:512" json:"cycle_users"` // comma separated user ids, ordered
	RequiresProof     bool       `gorm:"default:false" json:"requires_proof"`
	DefaultAssigneeID *uint      `json:"default_assignee_id"`
	CreatedBy         uint       `gorm:"index;not null" json:"created_by"`
	IsActive          bool       `gorm:"default:true" json:"is_active"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	Category          *TaskCategory `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"category,omitempty"`
}

// CycleUserIDs parses the ordered eligible-rotation list. Malformed entries
// are dropped rather than failing the whole task.
func (t *Task) CycleUserIDs() []uint {
	if strings.TrimSpace(t.CycleUsers) == "" {
		return nil
	}
	parts := strings.Split(t.CycleUsers, ",")
	ids := make([]uint, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.ParseUint(strings.TrimSpace(p), 10, 32)
		if err != nil || n == 0 {
			continue
		}
		ids = append(ids, uint(n))
	}
	return ids
}

// SetCycleUserIDs serialises the rotation list back to storage form.
func (t *Task) SetCycleUserIDs(ids []uint) {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatUint(uint64(id), 10))
	}
	t.CycleUsers = strings.Join(parts, ",")
}
