package models

import "time"

// Reward is redeemable for points inside a household. Quantity never goes
// negative: the claim path decrements it with a conditional update.
type Reward struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	HouseholdID uint      `gorm:"index;not null" json:"household_id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	PointsCost  int       `gorm:"not null" json:"points_cost"`
	Quantity    int       `gorm:"not null;default:0" json:"quantity"`
	CreatedBy   uint      `gorm:"not null" json:"created_by"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Claim statuses. A claim moves pending -> fulfilled or pending -> rejected
// exactly once; fulfilled claims are immutable.
const (
	ClaimStatusPending   = "pending"
	ClaimStatusFulfilled = "fulfilled"
	ClaimStatusRejected  = "rejected"
)

// RewardClaim reserves PointsSpent against the claimant's balance while
// pending; rejecting the claim releases the reservation.
type RewardClaim struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	RewardID    uint       `gorm:"index;not null" json:"reward_id"`
	HouseholdID uint       `gorm:"index;not null" json:"household_id"`
	UserID      uint       `gorm:"index;not null" json:"user_id"`
	PointsSpent int        `gorm:"not null" json:"points_spent"`
	Status      string     `gorm:"size:16;index;not null;default:'pending'" json:"status"`
	FulfilledBy *uint      `json:"fulfilled_by"`
	FulfilledAt *time.Time `json:"fulfilled_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Reward      *Reward    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"reward,omitempty"`
	User        *User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user,omitempty"`
}
