package controllers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/famboard/famboard/models"
	"github.com/famboard/famboard/services"
	"github.com/famboard/famboard/utils"
)

// CompletionController records task completions and serves the completion
// history feed.
type CompletionController struct {
	db          *gorm.DB
	completions *services.Completions
}

// NewCompletionController creates a CompletionController.
func NewCompletionController(db *gorm.DB) *CompletionController {
	return &CompletionController{db: db, completions: services.NewCompletions(db)}
}

type completionRequest struct {
	Comment  string `json:"comment"`
	PhotoURL string `json:"photo_url"`
}

// CompleteAssignment marks an assignment done and credits its points.
func (c *CompletionController) CompleteAssignment(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	assignmentID, ok := parseIDParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40040, "invalid assignment id")
		return
	}

	// The body is optional: comment and proof may be omitted entirely.
	var req completionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.Error(ctx, http.StatusBadRequest, 40050, "invalid request payload")
		return
	}

	completion, err := c.completions.CompleteAssignment(userID, assignmentID, services.CompletionInput{
		Comment:  req.Comment,
		PhotoURL: req.PhotoURL,
	})
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	utils.InvalidateByPrefix(householdCachePrefix(completion.HouseholdID))
	utils.Success(ctx, gin.H{"completion": completion})
}

// CompleteTask records an ad hoc completion for a task with no assignment.
func (c *CompletionController) CompleteTask(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	taskID, ok := parseIDParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40034, "invalid task id")
		return
	}

	var req completionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.Error(ctx, http.StatusBadRequest, 40050, "invalid request payload")
		return
	}

	completion, err := c.completions.CompleteTask(userID, taskID, services.CompletionInput{
		Comment:  req.Comment,
		PhotoURL: req.PhotoURL,
	})
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	utils.InvalidateByPrefix(householdCachePrefix(completion.HouseholdID))
	utils.Success(ctx, gin.H{"completion": completion})
}

// ListCompletions returns the completion history of a household, newest
// first, optionally filtered by user.
func (c *CompletionController) ListCompletions(ctx *gin.Context) {
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
	if _, err := services.ActiveMembership(c.db, userID, householdID); err != nil {
		handleServiceError(ctx, err)
		return
	}

	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	query := c.db.Model(&models.Completion{}).Where("household_id = ?", householdID)
	if user := strings.TrimSpace(ctx.Query("user_id")); user != "" {
		query = query.Where("user_id = ?", user)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to count completions")
		return
	}

	var completions []models.Completion
	if err := query.Preload("Task").Preload("User").
		Order("completed_at DESC, id DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&completions).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50051, "failed to list completions")
		return
	}

	utils.Success(ctx, gin.H{
		"items": completions,
		"pagination": gin.H{
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": int((total + int64(pageSize) - 1) / int64(pageSize)),
		},
	})
}

// UpdateComment edits a completion comment within the grace window.
func (c *CompletionController) UpdateComment(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	completionID, ok := parseIDParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40051, "invalid completion id")
		return
	}

	var req struct {
		Comment string `json:"comment" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40052, "invalid request payload")
		return
	}

	completion, err := c.completions.UpdateComment(userID, completionID, req.Comment)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"completion": completion})
}
