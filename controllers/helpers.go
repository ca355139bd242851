package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/famboard/famboard/middleware"
	"github.com/famboard/famboard/services"
	"github.com/famboard/famboard/utils"
)

func parsePagination(pageStr, sizeStr string) (int, int) {
	page := 1
	pageSize := 10
	if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
		page = p
	}
	if s, err := strconv.Atoi(sizeStr); err == nil && s > 0 && s <= 100 {
		pageSize = s
	}
	return page, pageSize
}

func getUserID(ctx *gin.Context) (uint, bool) {
	value, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		return uint(v), true
	case int64:
		return uint(v), true
	case float64:
		return uint(v), true
	default:
		return 0, false
	}
}

func parseIDParam(ctx *gin.Context, name string) (uint, bool) {
	raw := ctx.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// handleServiceError maps a typed service failure onto the uniform response
// envelope. Raw storage errors surface as a generic internal failure.
func handleServiceError(ctx *gin.Context, err error) {
	switch services.KindOf(err) {
	case services.KindValidation:
		utils.Error(ctx, http.StatusBadRequest, 40010, err.Error())
	case services.KindAuthorization:
		utils.Error(ctx, http.StatusForbidden, 40310, err.Error())
	case services.KindNotFound:
		utils.Error(ctx, http.StatusNotFound, 40410, err.Error())
	case services.KindConflict:
		utils.Error(ctx, http.StatusConflict, 40910, err.Error())
	default:
		utils.Error(ctx, http.StatusInternalServerError, 50010, "internal error")
	}
}
