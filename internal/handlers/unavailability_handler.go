package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/booking-api/internal/audit"
	"github.com/BruksfildServices01/booking-api/internal/httperr"
	"github.com/BruksfildServices01/booking-api/internal/httpresp"
	"github.com/BruksfildServices01/booking-api/internal/models"
)

// UnavailabilityHandler manages whole-day blackouts.
type UnavailabilityHandler struct {
	db    *gorm.DB
	audit *audit.Dispatcher
}

func NewUnavailabilityHandler(db *gorm.DB, audit *audit.Dispatcher) *UnavailabilityHandler {
	return &UnavailabilityHandler{db: db, audit: audit}
}

type CreateUnavailabilityRequest struct {
	ProviderID *uint  `json:"provider_id"`
	Date       string `json:"date" binding:"required"`
	Reason     string `json:"reason"`
}

func (h *UnavailabilityHandler) List(c *gin.Context) {
	tenantID := tenantIDFrom(c)
	q := h.db.WithContext(c.Request.Context()).Where("tenant_id = ?", tenantID)

	providerID, ok := optionalUintQuery(c, "provider_id")
	if !ok {
		return
	}
	if providerID != nil {
		q = q.Where("provider_id = ? OR provider_id IS NULL", *providerID)
	}

	for param, op := range map[string]string{"from": ">=", "to": "<="} {
		raw := c.Query(param)
		if raw == "" {
			continue
		}
		day, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			httperr.Respond(c, httperr.ErrBusiness("invalid_date"))
			return
		}
		q = q.Where("date "+op+" ?", datatypes.Date(day))
	}

	var rows []models.Unavailability
	if err := q.Order("date ASC").Find(&rows).Error; err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.List(c, rows)
}

func (h *UnavailabilityHandler) Create(c *gin.Context) {
	var req CreateUnavailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	day, err := time.Parse(time.DateOnly, req.Date)
	if err != nil {
		httperr.Respond(c, httperr.ErrBusiness("invalid_date"))
		return
	}

	tenantID := tenantIDFrom(c)
	ctx := c.Request.Context()

	if req.ProviderID != nil {
		var count int64
		if err := h.db.WithContext(ctx).Model(&models.Provider{}).
			Where("id = ? AND tenant_id = ?", *req.ProviderID, tenantID).
			Count(&count).Error; err != nil {
			httperr.Respond(c, err)
			return
		}
		if count == 0 {
			httperr.Respond(c, httperr.ErrNotFound("provider_not_found"))
			return
		}
	}

	row := models.Unavailability{
		TenantID:   tenantID,
		ProviderID: req.ProviderID,
		Date:       datatypes.Date(day),
		Reason:     req.Reason,
	}
	if err := h.db.WithContext(ctx).Create(&row).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	h.audit.Dispatch(auditEvent(c, "unavailability_created", "unavailability", row.ID, gin.H{"date": req.Date}))
	c.JSON(http.StatusCreated, row)
}

func (h *UnavailabilityHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	res := h.db.WithContext(c.Request.Context()).
		Where("id = ? AND tenant_id = ?", id, tenantIDFrom(c)).
		Delete(&models.Unavailability{})
	if res.Error != nil {
		httperr.Respond(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		httperr.Respond(c, httperr.ErrNotFound("unavailability_not_found"))
		return
	}

	h.audit.Dispatch(auditEvent(c, "unavailability_deleted", "unavailability", id, nil))
	c.Status(http.StatusNoContent)
}
