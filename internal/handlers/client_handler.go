package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/booking-api/internal/audit"
	domain "github.com/BruksfildServices01/booking-api/internal/domain/booking"
	"github.com/BruksfildServices01/booking-api/internal/httperr"
	"github.com/BruksfildServices01/booking-api/internal/httpresp"
	"github.com/BruksfildServices01/booking-api/internal/models"
)

type ClientHandler struct {
	db    *gorm.DB
	audit *audit.Dispatcher
}

func NewClientHandler(db *gorm.DB, audit *audit.Dispatcher) *ClientHandler {
	return &ClientHandler{db: db, audit: audit}
}

type ClientRequest struct {
	FirstName        string `json:"first_name" binding:"required"`
	LastName         string `json:"last_name"`
	Email            string `json:"email" binding:"omitempty,email"`
	Phone            string `json:"phone"`
	Notes            string `json:"notes"`
	MarketingConsent bool   `json:"marketing_consent"`
}

type UpdateClientRequest struct {
	FirstName        *string `json:"first_name"`
	LastName         *string `json:"last_name"`
	Email            *string `json:"email"`
	Phone            *string `json:"phone"`
	Notes            *string `json:"notes"`
	MarketingConsent *bool   `json:"marketing_consent"`
}

type ClientStats struct {
	TotalBookings int64           `json:"total_bookings"`
	TotalSpent    decimal.Decimal `json:"total_spent"`
	LastBookingAt *time.Time      `json:"last_booking_at"`
}

// ======================================================
// LIST CLIENTS
// ======================================================
func (h *ClientHandler) List(c *gin.Context) {
	tenantID := tenantIDFrom(c)
	page, limit := pagination(c)

	q := h.db.WithContext(c.Request.Context()).
		Model(&models.Client{}).
		Where("tenant_id = ? AND is_active = ?", tenantID, true)

	if query := strings.ToLower(strings.TrimSpace(c.Query("query"))); query != "" {
		like := "%" + query + "%"
		q = q.Where(
			"LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR phone LIKE ? OR LOWER(email) LIKE ?",
			like, like, like, like,
		)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	var clients []models.Client
	if err := q.
		Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&clients).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Page(c, clients, page, limit, total)
}

// ======================================================
// GET CLIENT + STATS
// ======================================================
func (h *ClientHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	client, err := h.load(c, id)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	stats, err := h.stats(c, client)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"client": client,
		"stats":  stats,
	})
}

func (h *ClientHandler) load(c *gin.Context, id uint) (*models.Client, error) {
	var client models.Client
	if err := h.db.WithContext(c.Request.Context()).
		Where("id = ? AND tenant_id = ?", id, tenantIDFrom(c)).
		First(&client).Error; err != nil {
		return nil, notFoundOr(err, "client_not_found")
	}
	return &client, nil
}

// stats counts every booking but only sums completed ones.
func (h *ClientHandler) stats(c *gin.Context, client *models.Client) (ClientStats, error) {
	var row struct {
		Total int64
		Spent decimal.Decimal
		Last  *time.Time
	}

	err := h.db.WithContext(c.Request.Context()).
		Model(&models.Booking{}).
		Select(
			"COUNT(*) AS total, "+
				"COALESCE(SUM(total_price) FILTER (WHERE status = ?), 0) AS spent, "+
				"MAX(booking_datetime) AS last",
			string(domain.StatusCompleted),
		).
		Where("tenant_id = ? AND client_id = ?", client.TenantID, client.ID).
		Scan(&row).Error
	if err != nil {
		return ClientStats{}, err
	}

	return ClientStats{
		TotalBookings: row.Total,
		TotalSpent:    row.Spent,
		LastBookingAt: row.Last,
	}, nil
}

// ======================================================
// CREATE / UPDATE / DELETE
// ======================================================
func (h *ClientHandler) Create(c *gin.Context) {
	var req ClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	client := models.Client{
		TenantID:         tenantIDFrom(c),
		FirstName:        strings.TrimSpace(req.FirstName),
		LastName:         strings.TrimSpace(req.LastName),
		Email:            strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:            strings.TrimSpace(req.Phone),
		Notes:            req.Notes,
		MarketingConsent: req.MarketingConsent,
		IsActive:         true,
	}
	if err := h.db.WithContext(c.Request.Context()).Create(&client).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	h.audit.Dispatch(auditEvent(c, "client_created", "client", client.ID, nil))
	c.JSON(http.StatusCreated, client)
}

func (h *ClientHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	client, err := h.load(c, id)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	touched := false
	if req.FirstName != nil {
		client.FirstName, touched = strings.TrimSpace(*req.FirstName), true
	}
	if req.LastName != nil {
		client.LastName, touched = strings.TrimSpace(*req.LastName), true
	}
	if req.Email != nil {
		client.Email, touched = strings.ToLower(strings.TrimSpace(*req.Email)), true
	}
	if req.Phone != nil {
		client.Phone, touched = strings.TrimSpace(*req.Phone), true
	}
	if req.Notes != nil {
		client.Notes, touched = *req.Notes, true
	}
	if req.MarketingConsent != nil {
		client.MarketingConsent, touched = *req.MarketingConsent, true
	}
	if !touched {
		httperr.Respond(c, httperr.ErrBusiness("no_fields_to_update"))
		return
	}
	if client.FirstName == "" {
		httperr.Respond(c, httperr.ErrBusiness("invalid_name"))
		return
	}

	if err := h.db.WithContext(c.Request.Context()).Save(client).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	h.audit.Dispatch(auditEvent(c, "client_updated", "client", client.ID, nil))
	c.JSON(http.StatusOK, client)
}

// Delete deactivates the client so booking history stays intact.
func (h *ClientHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	tenantID := tenantIDFrom(c)
	err := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var client models.Client
		if err := tx.Where("id = ? AND tenant_id = ?", id, tenantID).First(&client).Error; err != nil {
			return notFoundOr(err, "client_not_found")
		}

		var active int64
		if err := tx.Model(&models.Booking{}).
			Where("tenant_id = ? AND client_id = ? AND status IN ?", tenantID, id, domain.ActiveStatuses).
			Count(&active).Error; err != nil {
			return err
		}
		if active > 0 {
			return httperr.ErrConflict("has_active_bookings")
		}

		return tx.Model(&client).Update("is_active", false).Error
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	h.audit.Dispatch(auditEvent(c, "client_deactivated", "client", id, nil))
	c.JSON(http.StatusOK, gin.H{"status": "deactivated"})
}
