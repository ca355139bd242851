package models

import "time"

// Household is a family/group unit owning tasks, rewards, and memberships.
// Deactivating a household cascades to its dependents at the application level.
type Household struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"size:128;not null" json:"name"`
	InviteCode string    `gorm:"size:36;uniqueIndex;not null" json:"invite_code"`
	OwnerID    uint      `gorm:"index;not null" json:"owner_id"`
	IsActive   bool      `gorm:"default:true" json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Membership roles, in decreasing order of privilege.
const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Membership ties a user to a household with a role and permission flags.
// At most one active membership may exist per (household, user) pair; the
// application checks for an existing active row before creating a new one.
type Membership struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	HouseholdID      uint      `gorm:"index:idx_membership_household_user;not null" json:"household_id"`
	UserID           uint      `gorm:"index:idx_membership_household_user;index;not null" json:"user_id"`
	Role             string    `gorm:"size:16;not null;default:'member'" json:"role"`
	CanCreateTasks   bool      `gorm:"default:false" json:"can_create_tasks"`
	CanAssignTasks   bool      `gorm:"default:false" json:"can_assign_tasks"`
	CanCreateRewards bool      `gorm:"default:false" json:"can_create_rewards"`
	IsActive         bool      `gorm:"default:true" json:"is_active"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
	User             User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
}

// Membership tables carry the household_members name used across the API.
func (Membership) TableName() string {
	return "household_members"
}
