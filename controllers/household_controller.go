package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/famboard/famboard/models"
	"github.com/famboard/famboard/services"
	"github.com/famboard/famboard/utils"
)

// HouseholdController manages household lifecycle and memberships.
type HouseholdController struct {
	db         *gorm.DB
	households *services.Households
}

// NewHouseholdController creates a HouseholdController.
func NewHouseholdController(db *gorm.DB) *HouseholdController {
	return &HouseholdController{db: db, households: services.NewHouseholds(db)}
}

// Create opens a new household owned by the caller.
func (h *HouseholdController) Create(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		Name string `json:"name" binding:"required,min=1,max=128"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	household, err := h.households.Create(userID, strings.TrimSpace(req.Name))
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"household": household})
}

// Join adds the caller to the household matching the invite code.
func (h *HouseholdController) Join(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		InviteCode string `json:"invite_code" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40021, "invalid request payload")
		return
	}

	membership, err := h.households.Join(userID, strings.TrimSpace(req.InviteCode))
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"membership": membership})
}

// ListMine returns the households the caller actively belongs to.
func (h *HouseholdController) ListMine(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var households []models.Household
	err := h.db.
		Joins("JOIN household_members ON household_members.household_id = households.id").
		Where("household_members.user_id = ? AND household_members.is_active = ? AND households.is_active = ?",
			userID, true, true).
		Find(&households).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to list households")
		return
	}
	utils.Success(ctx, gin.H{"households": households})
}

// Members returns the active membership list of a household.
func (h *HouseholdController) Members(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	householdID, ok := parseIDParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40022, "invalid household id")
		return
	}

	if _, err := services.ActiveMembership(h.db, userID, householdID); err != nil {
		handleServiceError(ctx, err)
		return
	}

	var members []models.Membership
	err := h.db.Preload("User").
		Where("household_id = ? AND is_active = ?", householdID, true).
		Order("user_id ASC").
		Find(&members).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to list members")
		return
	}
	utils.Success(ctx, gin.H{"members": members})
}

// UpdateMember adjusts a member's role or permission flags. Requires the
// manage-members capability.
func (h *HouseholdController) UpdateMember(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	householdID, ok := parseIDParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40022, "invalid household id")
		return
	}
	memberID, ok := parseIDParam(ctx, "memberId")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40023, "invalid member id")
		return
	}

	var req struct {
		Role             *string `json:"role"`
		CanCreateTasks   *bool   `json:"can_create_tasks"`
		CanAssignTasks   *bool   `json:"can_assign_tasks"`
		CanCreateRewards *bool   `json:"can_create_rewards"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40024, "invalid request payload")
		return
	}

	actor, err := services.ActiveMembership(h.db, userID, householdID)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	if !services.Can(actor, services.PermManageMembers) {
		handleServiceError(ctx, services.ErrPermissionDenied)
		return
	}

	var member models.Membership
	if err := h.db.Where("id = ? AND household_id = ?", memberID, householdID).
		First(&member).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40420, "membership not found")
		return
	}
	if member.Role == models.RoleOwner {
		utils.Error(ctx, http.StatusConflict, 40920, "owner membership cannot be modified")
		return
	}

	updates := map[string]interface{}{}
	if req.Role != nil {
		role := strings.ToLower(strings.TrimSpace(*req.Role))
		if role != models.RoleAdmin && role != models.RoleMember {
			utils.Error(ctx, http.StatusBadRequest, 40025, "invalid role")
			return
		}
		updates["role"] = role
	}
	if req.CanCreateTasks != nil {
		updates["can_create_tasks"] = *req.CanCreateTasks
	}
	if req.CanAssignTasks != nil {
		updates["can_assign_tasks"] = *req.CanAssignTasks
	}
	if req.CanCreateRewards != nil {
		updates["can_create_rewards"] = *req.CanCreateRewards
	}
	if len(updates) == 0 {
		utils.Error(ctx, http.StatusBadRequest, 40026, "nothing to update")
		return
	}

	if err := h.db.Model(&member).Updates(updates).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to update member")
		return
	}
	utils.Success(ctx, gin.H{"membership": member})
}

// Leave deactivates the caller's own membership.
func (h *HouseholdController) Leave(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	householdID, ok := parseIDParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40022, "invalid household id")
		return
	}

	if err := h.households.Leave(userID, householdID); err != nil {
		handleServiceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"message": "left household"})
}

// Deactivate soft-deletes a household and cascades to its dependents.
func (h *HouseholdController) Deactivate(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	householdID, ok := parseIDParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40022, "invalid household id")
		return
	}

	if err := h.households.Deactivate(userID, householdID); err != nil {
		handleServiceError(ctx, err)
		return
	}

	utils.InvalidateByPrefix(householdCachePrefix(householdID))
	utils.Success(ctx, gin.H{"message": "household deactivated"})
}
