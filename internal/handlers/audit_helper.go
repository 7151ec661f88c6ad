package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/booking-api/internal/audit"
	"github.com/BruksfildServices01/booking-api/internal/httperr"
	"github.com/BruksfildServices01/booking-api/internal/middleware"
)

func tenantIDFrom(c *gin.Context) uint {
	return c.MustGet(middleware.ContextTenantID).(uint)
}

func userIDFrom(c *gin.Context) uint {
	return c.MustGet(middleware.ContextUserID).(uint)
}

func requestIDFrom(c *gin.Context) string {
	return c.GetString(middleware.ContextRequestID)
}

// auditEvent fills the actor fields from the request context.
func auditEvent(c *gin.Context, action, entity string, entityID uint, meta any) audit.Event {
	userID := userIDFrom(c)
	return audit.Event{
		TenantID:  tenantIDFrom(c),
		UserID:    &userID,
		Action:    action,
		Entity:    entity,
		EntityID:  &entityID,
		RequestID: requestIDFrom(c),
		Metadata:  meta,
	}
}

func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		httperr.BadRequest(c, "invalid_id", "Invalid identifier.")
		return 0, false
	}
	return uint(id), true
}

func optionalUintQuery(c *gin.Context, name string) (*uint, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || v == 0 {
		httperr.BadRequest(c, "invalid_"+name, "Invalid "+name+".")
		return nil, false
	}
	id := uint(v)
	return &id, true
}

func pagination(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return page, limit
}

func invalidRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error_code": "invalid_request",
		"message":    err.Error(),
	})
}

func notFoundOr(err error, code string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return httperr.ErrNotFound(code)
	}
	return err
}
