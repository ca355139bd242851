package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/famboard/famboard/models"
	"github.com/famboard/famboard/services"
	"github.com/famboard/famboard/utils"
)

// leaderboardCacheTTL bounds staleness of the cached standings; mutations
// that move points invalidate the household prefix anyway.
const leaderboardCacheTTL = 5 * time.Minute

// householdCachePrefix namespaces every cached artifact of one household so
// a single prefix invalidation clears them all.
func householdCachePrefix(householdID uint) string {
	return fmt.Sprintf("cache:household:%d:", householdID)
}

// RewardController manages the reward catalog, claims, balances, and the
// leaderboard.
type RewardController struct {
	db     *gorm.DB
	claims *services.Claims
}

// NewRewardController creates a RewardController.
func NewRewardController(db *gorm.DB) *RewardController {
	return &RewardController{db: db, claims: services.NewClaims(db)}
}

// CreateReward adds a reward to the household catalog. Requires the
// create-rewards capability.
func (r *RewardController) CreateReward(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		HouseholdID uint   `json:"household_id" binding:"required"`
		Title       string `json:"title" binding:"required,min=1,max=255"`
		Description string `json:"description"`
		PointsCost  int    `json:"points_cost" binding:"required,min=1"`
		Quantity    int    `json:"quantity" binding:"required,min=1"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40060, "invalid request payload")
		return
	}

	membership, err := services.ActiveMembership(r.db, userID, req.HouseholdID)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	if !services.Can(membership, services.PermCreateRewards) {
		handleServiceError(ctx, services.ErrPermissionDenied)
		return
	}

	reward := models.Reward{
		HouseholdID: req.HouseholdID,
		Title:       strings.TrimSpace(req.Title),
		Description: utils.Sanitize(req.Description),
		PointsCost:  req.PointsCost,
		Quantity:    req.Quantity,
		CreatedBy:   userID,
		IsActive:    true,
	}
	if err := r.db.Create(&reward).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to create reward")
		return
	}
	utils.Success(ctx, gin.H{"reward": reward})
}

// ListRewards returns the active rewards of a household.
func (r *RewardController) ListRewards(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	householdID, ok := parseIDParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40033, "invalid household id")
		return
	}
	if _, err := services.ActiveMembership(r.db, userID, householdID); err != nil {
		handleServiceError(ctx, err)
		return
	}

	var rewards []models.Reward
	if err := r.db.Where("household_id = ? AND is_active = ?", householdID, true).
		Order("points_cost ASC, id ASC").
		Find(&rewards).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50061, "failed to list rewards")
		return
	}
	utils.Success(ctx, gin.H{"rewards": rewards})
}

// UpdateReward modifies reward fields. Requires the create-rewards capability.
func (r *RewardController) UpdateReward(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	rewardID, ok := parseIDParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40061, "invalid reward id")
		return
	}

	var reward models.Reward
	if err := r.db.First(&reward, rewardID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40460, "reward not found")
		return
	}

	membership, err := services.ActiveMembership(r.db, userID, reward.HouseholdID)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	if !services.Can(membership, services.PermCreateRewards) {
		handleServiceError(ctx, services.ErrPermissionDenied)
		return
	}

	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		PointsCost  *int    `json:"points_cost"`
		Quantity    *int    `json:"quantity"`
		IsActive    *bool   `json:"is_active"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40062, "invalid request payload")
		return
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		if title := strings.TrimSpace(*req.Title); title != "" {
			updates["title"] = title
		}
	}
	if req.Description != nil {
		updates["description"] = utils.Sanitize(*req.Description)
	}
	if req.PointsCost != nil && *req.PointsCost > 0 {
		updates["points_cost"] = *req.PointsCost
	}
	if req.Quantity != nil && *req.Quantity >= 0 {
		updates["quantity"] = *req.Quantity
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) == 0 {
		utils.Error(ctx, http.StatusBadRequest, 40063, "nothing to update")
		return
	}

	if err := r.db.Model(&reward).Updates(updates).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50062, "failed to update reward")
		return
	}
	utils.Success(ctx, gin.H{"reward": reward})
}

// Claim reserves a reward for the caller, debiting their available balance.
func (r *RewardController) Claim(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	rewardID, ok := parseIDParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40061, "invalid reward id")
		return
	}

	claim, err := r.claims.Claim(userID, rewardID)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	utils.InvalidateByPrefix(householdCachePrefix(claim.HouseholdID))
	utils.Success(ctx, gin.H{"claim": claim})
}

// ListClaims returns the claims of a household, newest first, optionally
// filtered by status or claimant.
func (r *RewardController) ListClaims(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	householdID, ok := parseIDParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40033, "invalid household id")
		return
	}
	if _, err := services.ActiveMembership(r.db, userID, householdID); err != nil {
		handleServiceError(ctx, err)
		return
	}

	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	query := r.db.Model(&models.RewardClaim{}).Where("household_id = ?", householdID)
	if status := strings.TrimSpace(ctx.Query("status")); status != "" {
		query = query.Where("status = ?", status)
	}
	if user := strings.TrimSpace(ctx.Query("user_id")); user != "" {
		query = query.Where("user_id = ?", user)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50063, "failed to count claims")
		return
	}

	var claims []models.RewardClaim
	if err := query.Preload("Reward").Preload("User").
		Order("created_at DESC, id DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&claims).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50064, "failed to list claims")
		return
	}

	utils.Success(ctx, gin.H{
		"items": claims,
		"pagination": gin.H{
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": int((total + int64(pageSize) - 1) / int64(pageSize)),
		},
	})
}

// FulfillClaim marks a pending claim fulfilled. Admin/owner only.
func (r *RewardController) FulfillClaim(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	claimID, ok := parseIDParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40064, "invalid claim id")
		return
	}

	claim, err := r.claims.Fulfill(userID, claimID)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"claim": claim})
}

// RejectClaim rejects a pending claim, releasing the point reservation and
// restoring the reserved unit to stock. Admin/owner only.
func (r *RewardController) RejectClaim(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	claimID, ok := parseIDParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40064, "invalid claim id")
		return
	}

	claim, err := r.claims.Reject(userID, claimID)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	utils.InvalidateByPrefix(householdCachePrefix(claim.HouseholdID))
	utils.Success(ctx, gin.H{"claim": claim})
}

// Balance returns the caller's point balance in a household. The available
// figure is the raw signed spendable balance; the displayed figure never goes
// below zero.
func (r *RewardController) Balance(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	householdID, ok := parseIDParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40033, "invalid household id")
		return
	}
	if _, err := services.ActiveMembership(r.db, userID, householdID); err != nil {
		handleServiceError(ctx, err)
		return
	}

	available, err := services.AvailablePoints(r.db, userID, householdID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50065, "failed to compute balance")
		return
	}

	displayed := available
	if displayed < 0 {
		displayed = 0
	}
	utils.Success(ctx, gin.H{"balance": gin.H{
		"household_id": householdID,
		"user_id":      userID,
		"available":    available,
		"displayed":    displayed,
	}})
}

type leaderboardEntry struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Earned   int    `json:"earned"`
}

// Leaderboard ranks active members by total points earned, cached per
// household for a few minutes.
func (r *RewardController) Leaderboard(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	householdID, ok := parseIDParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40033, "invalid household id")
		return
	}
	if _, err := services.ActiveMembership(r.db, userID, householdID); err != nil {
		handleServiceError(ctx, err)
		return
	}

	cacheKey := householdCachePrefix(householdID) + "leaderboard"
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json; charset=utf-8", b)
		return
	}

	var entries []leaderboardEntry
	err := r.db.Model(&models.Completion{}).
		Select("task_completions.user_id AS user_id, users.username AS username, COALESCE(SUM(task_completions.points_earned), 0) AS earned").
		Joins("JOIN users ON users.id = task_completions.user_id").
		Joins("JOIN household_members ON household_members.user_id = task_completions.user_id AND household_members.household_id = task_completions.household_id").
		Where("task_completions.household_id = ? AND household_members.is_active = ?", householdID, true).
		Group("task_completions.user_id, users.username").
		Order("earned DESC, user_id ASC").
		Scan(&entries).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50066, "failed to build leaderboard")
		return
	}
	if entries == nil {
		entries = []leaderboardEntry{}
	}

	payload := gin.H{"code": 0, "message": "success", "data": gin.H{"leaderboard": entries}}
	utils.CacheSetJSON(cacheKey, payload, leaderboardCacheTTL)
	ctx.JSON(http.StatusOK, payload)
}
