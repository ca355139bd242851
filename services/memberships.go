package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/famboard/famboard/models"
)

// ActiveMembership loads the caller's active membership in a household.
// Returns ErrNotMember when none exists.
func ActiveMembership(db *gorm.DB, userID, householdID uint) (*models.Membership, error) {
	var m models.Membership
	err := db.Where("user_id = ? AND household_id = ? AND is_active = ?", userID, householdID, true).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotMember
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ActiveMemberIDs returns the user ids of all active members of a household,
// ordered ascending so rotation tie-breaks are deterministic.
func ActiveMemberIDs(db *gorm.DB, householdID uint) ([]uint, error) {
	var ids []uint
	err := db.Model(&models.Membership{}).
		Where("household_id = ? AND is_active = ?", householdID, true).
		Order("user_id ASC").
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
