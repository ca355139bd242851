package services

import (
	"gorm.io/gorm"

	"github.com/famboard/famboard/models"
)

// AvailablePoints computes a user's point balance within a household: points
// earned across completions minus points reserved or spent by reward claims.
// Pending claims count against the balance so concurrent claims cannot
// double-spend; rejecting a claim releases the reservation.
//
// The result is the raw signed sum. Callers that display balances should
// floor at zero; the claim path compares against the raw value.
//
// db may be a transaction handle, in which case the aggregation runs under
// that transaction's isolation.
func AvailablePoints(db *gorm.DB, userID, householdID uint) (int, error) {
	var earned int64
	err := db.Model(&models.Completion{}).
		Where("user_id = ? AND household_id = ?", userID, householdID).
		Select("COALESCE(SUM(points_earned), 0)").
		Scan(&earned).Error
	if err != nil {
		return 0, err
	}

	var spent int64
	err = db.Model(&models.RewardClaim{}).
		Where("user_id = ? AND household_id = ? AND status IN ?",
			userID, householdID,
			[]string{models.ClaimStatusPending, models.ClaimStatusFulfilled}).
		Select("COALESCE(SUM(points_spent), 0)").
		Scan(&spent).Error
	if err != nil {
		return 0, err
	}

	return int(earned - spent), nil
}
