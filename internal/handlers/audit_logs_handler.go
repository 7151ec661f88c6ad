package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/booking-api/internal/httperr"
	"github.com/BruksfildServices01/booking-api/internal/httpresp"
	"github.com/BruksfildServices01/booking-api/internal/models"
)

// ======================================================
// HANDLER
// ======================================================

type AuditLogsHandler struct {
	db *gorm.DB
}

func NewAuditLogsHandler(db *gorm.DB) *AuditLogsHandler {
	return &AuditLogsHandler{db: db}
}

func (h *AuditLogsHandler) List(c *gin.Context) {
	tenantID := tenantIDFrom(c)
	page, limit := pagination(c)

	// --------------------------------------------------
	// Base query, always tenant scoped
	// --------------------------------------------------

	q := h.db.WithContext(c.Request.Context()).
		Model(&models.AuditLog{}).
		Where("tenant_id = ?", tenantID)

	if action := c.Query("action"); action != "" {
		q = q.Where("action = ?", action)
	}
	if entity := c.Query("entity"); entity != "" {
		q = q.Where("entity = ?", entity)
	}

	entityID, ok := optionalUintQuery(c, "entity_id")
	if !ok {
		return
	}
	if entityID != nil {
		q = q.Where("entity_id = ?", *entityID)
	}

	if raw := c.Query("from"); raw != "" {
		from, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			httperr.Respond(c, httperr.ErrBusiness("invalid_date"))
			return
		}
		q = q.Where("created_at >= ?", from)
	}
	if raw := c.Query("to"); raw != "" {
		to, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			httperr.Respond(c, httperr.ErrBusiness("invalid_date"))
			return
		}
		q = q.Where("created_at < ?", to.AddDate(0, 0, 1))
	}

	// --------------------------------------------------
	// Total + page
	// --------------------------------------------------

	var total int64
	if err := q.Count(&total).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	var logs []models.AuditLog
	if err := q.
		Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&logs).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Page(c, logs, page, limit, total)
}
