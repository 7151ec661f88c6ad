package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/booking-api/internal/audit"
	"github.com/BruksfildServices01/booking-api/internal/httperr"
	"github.com/BruksfildServices01/booking-api/internal/models"
	"github.com/BruksfildServices01/booking-api/internal/validators"
)

// AvailabilityHandler manages the tenant-wide default windows.
type AvailabilityHandler struct {
	db    *gorm.DB
	audit *audit.Dispatcher
}

func NewAvailabilityHandler(db *gorm.DB, audit *audit.Dispatcher) *AvailabilityHandler {
	return &AvailabilityHandler{db: db, audit: audit}
}

type WindowRequest struct {
	DayOfWeek int    `json:"day_of_week"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
}

type AvailabilityUpdateRequest struct {
	Windows []WindowRequest `json:"windows"`
}

func (h *AvailabilityHandler) GetDefaults(c *gin.Context) {
	rows, err := listWindows(h.db.WithContext(c.Request.Context()), tenantIDFrom(c), nil)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *AvailabilityHandler) PutDefaults(c *gin.Context) {
	var req AvailabilityUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	tenantID := tenantIDFrom(c)
	rows, err := replaceWindows(h.db.WithContext(c.Request.Context()), tenantID, nil, req.Windows)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	h.audit.Dispatch(auditEvent(c, "availability_updated", "tenant", tenantID, gin.H{"windows": len(rows)}))
	c.JSON(http.StatusOK, rows)
}

// providerScope narrows availability rows to one provider, or to the tenant
// defaults when providerID is nil.
func providerScope(q *gorm.DB, providerID *uint) *gorm.DB {
	if providerID == nil {
		return q.Where("provider_id IS NULL")
	}
	return q.Where("provider_id = ?", *providerID)
}

func listWindows(db *gorm.DB, tenantID uint, providerID *uint) ([]models.Availability, error) {
	var rows []models.Availability
	err := providerScope(db.Where("tenant_id = ?", tenantID), providerID).
		Order("day_of_week ASC, start_time ASC").
		Find(&rows).Error
	return rows, err
}

// replaceWindows swaps the whole weekly set in one transaction.
func replaceWindows(db *gorm.DB, tenantID uint, providerID *uint, windows []WindowRequest) ([]models.Availability, error) {
	rows := make([]models.Availability, 0, len(windows))
	for _, w := range windows {
		if w.DayOfWeek < 0 || w.DayOfWeek > 6 {
			return nil, httperr.ErrBusiness("invalid_day_of_week")
		}
		if !validators.IsValidWindow(w.StartTime, w.EndTime) {
			return nil, httperr.ErrBusiness("invalid_time_window")
		}
		rows = append(rows, models.Availability{
			TenantID:   tenantID,
			ProviderID: providerID,
			DayOfWeek:  w.DayOfWeek,
			StartTime:  w.StartTime,
			EndTime:    w.EndTime,
			IsActive:   true,
		})
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := providerScope(tx.Where("tenant_id = ?", tenantID), providerID).
			Delete(&models.Availability{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}
