package services

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/famboard/famboard/models"
)

// Claims implements the reward-claim half of the transaction protocol:
// ledger debit plus inventory decrement, all-or-nothing.
type Claims struct {
	db  *gorm.DB
	now func() time.Time
}

// ClaimsOption customises the Claims service.
type ClaimsOption func(*Claims)

// WithClaimsNow overrides the clock, primarily for testing.
func WithClaimsNow(now func() time.Time) ClaimsOption {
	return func(c *Claims) {
		if now != nil {
			c.now = now
		}
	}
}

// NewClaims constructs the claim service.
func NewClaims(db *gorm.DB, opts ...ClaimsOption) *Claims {
	c := &Claims{db: db, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Claim reserves a reward for the actor: balance check, pending claim row,
// and a compare-and-decrement on the reward quantity, all inside one
// transaction. The conditional decrement closes the oversell race: when two
// claims contend for the last unit, exactly one sees RowsAffected == 1.
func (s *Claims) Claim(actorID, rewardID uint) (*models.RewardClaim, error) {
	var out *models.RewardClaim
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var reward models.Reward
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&reward, rewardID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if !reward.IsActive {
			return ErrRewardInactive
		}

		if _, err := ActiveMembership(tx, actorID, reward.HouseholdID); err != nil {
			return err
		}

		if reward.Quantity <= 0 {
			return ErrRewardOutOfStock
		}

		balance, err := AvailablePoints(tx, actorID, reward.HouseholdID)
		if err != nil {
			return err
		}
		if balance < reward.PointsCost {
			return ErrInsufficientPoints
		}

		claim := models.RewardClaim{
			RewardID:    reward.ID,
			HouseholdID: reward.HouseholdID,
			UserID:      actorID,
			PointsSpent: reward.PointsCost,
			Status:      models.ClaimStatusPending,
		}
		if err := tx.Create(&claim).Error; err != nil {
			return err
		}

		res := tx.Model(&models.Reward{}).
			Where("id = ? AND quantity > 0", reward.ID).
			Update("quantity", gorm.Expr("quantity - ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrRewardOutOfStock
		}

		out = &claim
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Fulfill transitions a pending claim to fulfilled. Admin/owner only. The
// transition is a single conditional update guarded by the pending status,
// so it happens exactly once.
func (s *Claims) Fulfill(actorID, claimID uint) (*models.RewardClaim, error) {
	claim, err := s.loadClaimForDecision(actorID, claimID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	res := s.db.Model(&models.RewardClaim{}).
		Where("id = ? AND status = ?", claim.ID, models.ClaimStatusPending).
		Updates(map[string]interface{}{
			"status":       models.ClaimStatusFulfilled,
			"fulfilled_by": actorID,
			"fulfilled_at": now,
			"updated_at":   now,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrClaimNotPending
	}

	claim.Status = models.ClaimStatusFulfilled
	claim.FulfilledBy = &actorID
	claim.FulfilledAt = &now
	return claim, nil
}

// Reject transitions a pending claim to rejected, releasing the point
// reservation and returning the reserved unit to stock.
func (s *Claims) Reject(actorID, claimID uint) (*models.RewardClaim, error) {
	claim, err := s.loadClaimForDecision(actorID, claimID)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		now := s.now()
		res := tx.Model(&models.RewardClaim{}).
			Where("id = ? AND status = ?", claim.ID, models.ClaimStatusPending).
			Updates(map[string]interface{}{
				"status":       models.ClaimStatusRejected,
				"fulfilled_by": actorID,
				"updated_at":   now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrClaimNotPending
		}

		// Return the reserved unit to stock.
		return tx.Model(&models.Reward{}).
			Where("id = ?", claim.RewardID).
			Update("quantity", gorm.Expr("quantity + ?", 1)).Error
	})
	if err != nil {
		return nil, err
	}

	claim.Status = models.ClaimStatusRejected
	claim.FulfilledBy = &actorID
	return claim, nil
}

// loadClaimForDecision loads a claim and verifies the actor may decide it.
func (s *Claims) loadClaimForDecision(actorID, claimID uint) (*models.RewardClaim, error) {
	var claim models.RewardClaim
	err := s.db.First(&claim, claimID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	membership, err := ActiveMembership(s.db, actorID, claim.HouseholdID)
	if err != nil {
		return nil, err
	}
	if !Can(membership, PermFulfillClaims) {
		return nil, ErrPermissionDenied
	}
	return &claim, nil
}
