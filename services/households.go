package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/famboard/famboard/models"
	"github.com/famboard/famboard/utils"
)

// Households manages household lifecycle, including the application-level
// deactivation cascade over memberships, tasks, rewards, and open
// assignments.
type Households struct {
	db  *gorm.DB
	now func() time.Time
}

// NewHouseholds constructs the household service.
func NewHouseholds(db *gorm.DB) *Households {
	return &Households{db: db, now: time.Now}
}

// Create opens a new household owned by the actor, who receives an owner
// membership with every permission flag set.
func (h *Households) Create(ownerID uint, name string) (*models.Household, error) {
	var out *models.Household
	err := h.db.Transaction(func(tx *gorm.DB) error {
		household := models.Household{
			Name:       name,
			InviteCode: utils.NewInviteCode(),
			OwnerID:    ownerID,
			IsActive:   true,
		}
		if err := tx.Create(&household).Error; err != nil {
			return err
		}

		membership := models.Membership{
			HouseholdID:      household.ID,
			UserID:           ownerID,
			Role:             models.RoleOwner,
			CanCreateTasks:   true,
			CanAssignTasks:   true,
			CanCreateRewards: true,
			IsActive:         true,
		}
		if err := tx.Create(&membership).Error; err != nil {
			return err
		}
		out = &household
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Join adds the user to the household matching the invite code with a plain
// member role. The one-active-membership invariant is checked inside the
// transaction before the insert.
func (h *Households) Join(userID uint, inviteCode string) (*models.Membership, error) {
	var out *models.Membership
	err := h.db.Transaction(func(tx *gorm.DB) error {
		var household models.Household
		err := tx.Where("invite_code = ?", inviteCode).First(&household).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if !household.IsActive {
			return ErrHouseholdInactive
		}

		var existing int64
		err = tx.Model(&models.Membership{}).
			Where("household_id = ? AND user_id = ? AND is_active = ?", household.ID, userID, true).
			Count(&existing).Error
		if err != nil {
			return err
		}
		if existing > 0 {
			return ErrAlreadyMember
		}

		membership := models.Membership{
			HouseholdID: household.ID,
			UserID:      userID,
			Role:        models.RoleMember,
			IsActive:    true,
		}
		if err := tx.Create(&membership).Error; err != nil {
			return err
		}
		out = &membership
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Leave deactivates the caller's membership. The owner cannot leave; they
// must deactivate the household instead.
func (h *Households) Leave(userID, householdID uint) error {
	membership, err := ActiveMembership(h.db, userID, householdID)
	if err != nil {
		return err
	}
	if membership.Role == models.RoleOwner {
		return ErrOwnerCannotLeave
	}
	return h.db.Model(&models.Membership{}).
		Where("id = ?", membership.ID).
		Updates(map[string]interface{}{"is_active": false, "updated_at": h.now()}).Error
}

// Deactivate soft-deletes a household and cascades to every dependent
// collection: memberships, categories, tasks, rewards, and any still-open
// assignments, which are cancelled. Owner only.
func (h *Households) Deactivate(actorID, householdID uint) error {
	membership, err := ActiveMembership(h.db, actorID, householdID)
	if err != nil {
		return err
	}
	if !Can(membership, PermDeactivateHousehold) {
		return ErrPermissionDenied
	}

	return h.db.Transaction(func(tx *gorm.DB) error {
		now := h.now()
		res := tx.Model(&models.Household{}).
			Where("id = ? AND is_active = ?", householdID, true).
			Updates(map[string]interface{}{"is_active": false, "updated_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrHouseholdInactive
		}

		if err := tx.Model(&models.Membership{}).
			Where("household_id = ? AND is_active = ?", householdID, true).
			Updates(map[string]interface{}{"is_active": false, "updated_at": now}).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.TaskCategory{}).
			Where("household_id = ? AND is_active = ?", householdID, true).
			Updates(map[string]interface{}{"is_active": false, "updated_at": now}).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Task{}).
			Where("household_id = ? AND is_active = ?", householdID, true).
			Updates(map[string]interface{}{"is_active": false, "updated_at": now}).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Reward{}).
			Where("household_id = ? AND is_active = ?", householdID, true).
			Updates(map[string]interface{}{"is_active": false, "updated_at": now}).Error; err != nil {
			return err
		}

		// Cancel assignments that are still open for any task of the household.
		sub := tx.Model(&models.Task{}).Select("id").Where("household_id = ?", householdID)
		return tx.Model(&models.Assignment{}).
			Where("task_id IN (?) AND status IN ?", sub, []string{
				models.AssignmentStatusPending,
				models.AssignmentStatusInProgress,
				models.AssignmentStatusOverdue,
			}).
			Updates(map[string]interface{}{
				"status":     models.AssignmentStatusCancelled,
				"is_active":  false,
				"updated_at": now,
			}).Error
	})
}
