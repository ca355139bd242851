package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/famboard/famboard/models"
	"github.com/famboard/famboard/services"
	"github.com/famboard/famboard/utils"
)

// TaskController manages tasks, task categories, and manual assignments.
type TaskController struct {
	db          *gorm.DB
	assignments *services.Assignments
}

// NewTaskController creates a TaskController.
func NewTaskController(db *gorm.DB) *TaskController {
	return &TaskController{db: db, assignments: services.NewAssignments(db)}
}

type taskRequest struct {
	HouseholdID       uint   `json:"household_id" binding:"required"`
	CategoryID        *uint  `json:"category_id"`
	Title             string `json:"title" binding:"required,min=1,max=255"`
	Description       string `json:"description"`
	DifficultyMinutes int    `json:"difficulty_minutes" binding:"required,min=1"`
	Frequency         string `json:"frequency" binding:"required"`
	IsCyclic          bool   `json:"is_cyclic"`
	AutoAssign        bool   `json:"auto_assign"`
	CycleUsers        []uint `json:"cycle_users"`
	RequiresProof     bool   `json:"requires_proof"`
	DefaultAssigneeID *uint  `json:"default_assignee_id"`
}

// CreateTask creates a task inside a household. Requires the create-tasks
// capability. Non-cyclic auto-assign tasks must name an initial assignee so
// the generator never has to skip their first period.
func (t *TaskController) CreateTask(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req taskRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "invalid request payload")
		return
	}
	if !models.ValidFrequency(req.Frequency) {
		utils.Error(ctx, http.StatusBadRequest, 40031, "invalid frequency")
		return
	}

	membership, err := services.ActiveMembership(t.db, userID, req.HouseholdID)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	if !services.Can(membership, services.PermCreateTasks) {
		handleServiceError(ctx, services.ErrPermissionDenied)
		return
	}

	if req.AutoAssign && !req.IsCyclic && req.DefaultAssigneeID == nil {
		utils.Error(ctx, http.StatusBadRequest, 40032, "non-cyclic auto-assign tasks require a default assignee")
		return
	}
	if req.DefaultAssigneeID != nil {
		if _, err := services.ActiveMembership(t.db, *req.DefaultAssigneeID, req.HouseholdID); err != nil {
			handleServiceError(ctx, err)
			return
		}
	}

	task := models.Task{
		HouseholdID:       req.HouseholdID,
		CategoryID:        req.CategoryID,
		Title:             strings.TrimSpace(req.Title),
		Description:       utils.Sanitize(req.Description),
		DifficultyMinutes: req.DifficultyMinutes,
		Frequency:         req.Frequency,
		IsCyclic:          req.IsCyclic,
		AutoAssign:        req.AutoAssign,
		RequiresProof:     req.RequiresProof,
		DefaultAssigneeID: req.DefaultAssigneeID,
		CreatedBy:         userID,
		IsActive:          true,
	}
	task.SetCycleUserIDs(utils.UniqueUint(req.CycleUsers))

	if err := t.db.Create(&task).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to create task")
		return
	}
	utils.Success(ctx, gin.H{"task": task})
}

// ListTasks returns paginated active tasks of a household.
func (t *TaskController) ListTasks(ctx *gin.Context) {
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
	if _, err := services.ActiveMembership(t.db, userID, householdID); err != nil {
		handleServiceError(ctx, err)
		return
	}

	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	query := t.db.Model(&models.Task{}).
		Where("household_id = ? AND is_active = ?", householdID, true)
	if freq := strings.TrimSpace(ctx.Query("frequency")); freq != "" {
		query = query.Where("frequency = ?", freq)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to count tasks")
		return
	}

	var tasks []models.Task
	if err := query.Preload("Category").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&tasks).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to list tasks")
		return
	}

	utils.Success(ctx, gin.H{
		"items": tasks,
		"pagination": gin.H{
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": int((total + int64(pageSize) - 1) / int64(pageSize)),
		},
	})
}

// GetTask returns a single task.
func (t *TaskController) GetTask(ctx *gin.Context) {
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

	var task models.Task
	if err := t.db.Preload("Category").First(&task, taskID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40430, "task not found")
		return
	}
	if _, err := services.ActiveMembership(t.db, userID, task.HouseholdID); err != nil {
		handleServiceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"task": task})
}

// UpdateTask modifies task fields. Requires the create-tasks capability.
// Difficulty changes never rewrite points already credited: completions copy
// the value at completion time.
func (t *TaskController) UpdateTask(ctx *gin.Context) {
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

	var task models.Task
	if err := t.db.First(&task, taskID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40430, "task not found")
		return
	}

	membership, err := services.ActiveMembership(t.db, userID, task.HouseholdID)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	if !services.Can(membership, services.PermCreateTasks) {
		handleServiceError(ctx, services.ErrPermissionDenied)
		return
	}

	var req struct {
		CategoryID        *uint   `json:"category_id"`
		Title             *string `json:"title"`
		Description       *string `json:"description"`
		DifficultyMinutes *int    `json:"difficulty_minutes"`
		Frequency         *string `json:"frequency"`
		IsCyclic          *bool   `json:"is_cyclic"`
		AutoAssign        *bool   `json:"auto_assign"`
		CycleUsers        []uint  `json:"cycle_users"`
		RequiresProof     *bool   `json:"requires_proof"`
		DefaultAssigneeID *uint   `json:"default_assignee_id"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40035, "invalid request payload")
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
	if req.DifficultyMinutes != nil && *req.DifficultyMinutes > 0 {
		updates["difficulty_minutes"] = *req.DifficultyMinutes
	}
	if req.Frequency != nil {
		if !models.ValidFrequency(*req.Frequency) {
			utils.Error(ctx, http.StatusBadRequest, 40031, "invalid frequency")
			return
		}
		updates["frequency"] = *req.Frequency
	}
	if req.CategoryID != nil {
		updates["category_id"] = *req.CategoryID
	}
	if req.IsCyclic != nil {
		updates["is_cyclic"] = *req.IsCyclic
	}
	if req.AutoAssign != nil {
		updates["auto_assign"] = *req.AutoAssign
	}
	if req.CycleUsers != nil {
		var tmp models.Task
		tmp.SetCycleUserIDs(utils.UniqueUint(req.CycleUsers))
		updates["cycle_users"] = tmp.CycleUsers
	}
	if req.RequiresProof != nil {
		updates["requires_proof"] = *req.RequiresProof
	}
	if req.DefaultAssigneeID != nil {
		updates["default_assignee_id"] = *req.DefaultAssigneeID
	}
	if len(updates) == 0 {
		utils.Error(ctx, http.StatusBadRequest, 40036, "nothing to update")
		return
	}

	if err := t.db.Model(&task).Updates(updates).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50033, "failed to update task")
		return
	}
	utils.Success(ctx, gin.H{"task": task})
}

// DeleteTask soft-deletes a task. Requires the create-tasks capability.
func (t *TaskController) DeleteTask(ctx *gin.Context) {
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

	var task models.Task
	if err := t.db.First(&task, taskID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40430, "task not found")
		return
	}

	membership, err := services.ActiveMembership(t.db, userID, task.HouseholdID)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	if !services.Can(membership, services.PermCreateTasks) {
		handleServiceError(ctx, services.ErrPermissionDenied)
		return
	}

	if err := t.db.Model(&task).Update("is_active", false).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50034, "failed to delete task")
		return
	}
	utils.Success(ctx, gin.H{"message": "task deleted"})
}

// CreateCategory adds a task category to a household.
func (t *TaskController) CreateCategory(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		HouseholdID uint   `json:"household_id" binding:"required"`
		Name        string `json:"name" binding:"required,min=1,max=64"`
		Color       string `json:"color"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40037, "invalid request payload")
		return
	}

	membership, err := services.ActiveMembership(t.db, userID, req.HouseholdID)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	if !services.Can(membership, services.PermCreateTasks) {
		handleServiceError(ctx, services.ErrPermissionDenied)
		return
	}

	category := models.TaskCategory{
		HouseholdID: req.HouseholdID,
		Name:        strings.TrimSpace(req.Name),
		Color:       strings.TrimSpace(req.Color),
		IsActive:    true,
	}
	if err := t.db.Create(&category).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50035, "failed to create category")
		return
	}
	utils.Success(ctx, gin.H{"category": category})
}

// ListCategories returns the active categories of a household.
func (t *TaskController) ListCategories(ctx *gin.Context) {
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
	if _, err := services.ActiveMembership(t.db, userID, householdID); err != nil {
		handleServiceError(ctx, err)
		return
	}

	var categories []models.TaskCategory
	if err := t.db.Where("household_id = ? AND is_active = ?", householdID, true).
		Order("name ASC").Find(&categories).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50036, "failed to list categories")
		return
	}
	utils.Success(ctx, gin.H{"categories": categories})
}

// CreateAssignment manually assigns a task to a member.
func (t *TaskController) CreateAssignment(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		TaskID     uint   `json:"task_id" binding:"required"`
		AssigneeID uint   `json:"assignee_id" binding:"required"`
		DueDate    string `json:"due_date" binding:"required"` // YYYY-MM-DD
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40038, "invalid request payload")
		return
	}

	dueDate, err := time.ParseInLocation("2006-01-02", req.DueDate, time.Local)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40039, "invalid due date, expected YYYY-MM-DD")
		return
	}

	assignment, err := t.assignments.Create(userID, req.TaskID, req.AssigneeID, dueDate)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"assignment": assignment})
}

// ListAssignments returns assignments of a household, optionally filtered by
// assignee or status.
func (t *TaskController) ListAssignments(ctx *gin.Context) {
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
	if _, err := services.ActiveMembership(t.db, userID, householdID); err != nil {
		handleServiceError(ctx, err)
		return
	}

	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	query := t.db.Model(&models.Assignment{}).
		Joins("JOIN tasks ON tasks.id = task_assignments.task_id").
		Where("tasks.household_id = ?", householdID)
	if assignee := strings.TrimSpace(ctx.Query("assignee_id")); assignee != "" {
		query = query.Where("task_assignments.assignee_id = ?", assignee)
	}
	if status := strings.TrimSpace(ctx.Query("status")); status != "" {
		query = query.Where("task_assignments.status = ?", status)
	} else {
		query = query.Where("task_assignments.is_active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50037, "failed to count assignments")
		return
	}

	var assignments []models.Assignment
	if err := query.Preload("Task").
		Order("task_assignments.due_date DESC, task_assignments.id DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&assignments).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50038, "failed to list assignments")
		return
	}

	utils.Success(ctx, gin.H{
		"items": assignments,
		"pagination": gin.H{
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": int((total + int64(pageSize) - 1) / int64(pageSize)),
		},
	})
}

// CancelAssignment soft-deletes an assignment.
func (t *TaskController) CancelAssignment(ctx *gin.Context) {
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

	if err := t.assignments.Cancel(userID, assignmentID); err != nil {
		handleServiceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"message": "assignment cancelled"})
}
