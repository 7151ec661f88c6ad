package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/booking-api/internal/httperr"
	"github.com/BruksfildServices01/booking-api/internal/models"
	ucBooking "github.com/BruksfildServices01/booking-api/internal/usecase/booking"
)

////////////////////////////////////////////////////////
// HANDLER
////////////////////////////////////////////////////////

// PublicHandler serves the unauthenticated booking page, addressed by
// tenant slug. It is read-only.
type PublicHandler struct {
	db    *gorm.DB
	slots *ucBooking.ListSlots
}

func NewPublicHandler(db *gorm.DB, slots *ucBooking.ListSlots) *PublicHandler {
	return &PublicHandler{db: db, slots: slots}
}

type publicService struct {
	ID              uint                  `json:"id"`
	Name            string                `json:"name"`
	Description     string                `json:"description"`
	Category        string                `json:"category"`
	DurationMinutes int                   `json:"duration_minutes"`
	Price           string                `json:"price"`
	Currency        string                `json:"currency"`
	Color           string                `json:"color"`
	Addons          []models.ServiceAddon `json:"addons"`
}

func (h *PublicHandler) tenantBySlug(c *gin.Context) (*models.Tenant, bool) {
	var t models.Tenant
	if err := h.db.WithContext(c.Request.Context()).
		Where("slug = ?", c.Param("slug")).
		First(&t).Error; err != nil {
		httperr.Respond(c, notFoundOr(err, "tenant_not_found"))
		return nil, false
	}
	return &t, true
}

////////////////////////////////////////////////////////
// SERVICES
////////////////////////////////////////////////////////

func (h *PublicHandler) ListServices(c *gin.Context) {
	t, ok := h.tenantBySlug(c)
	if !ok {
		return
	}

	var services []models.Service
	if err := h.db.WithContext(c.Request.Context()).
		Preload("Category").
		Preload("Addons", "is_active = ?", true).
		Where("tenant_id = ? AND is_active = ?", t.ID, true).
		Order("display_order ASC, name ASC").
		Find(&services).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	out := make([]publicService, 0, len(services))
	for _, s := range services {
		category := ""
		if s.Category != nil {
			category = s.Category.Name
		}
		out = append(out, publicService{
			ID:              s.ID,
			Name:            s.Name,
			Description:     s.Description,
			Category:        category,
			DurationMinutes: s.DurationMinutes,
			Price:           s.Price.StringFixed(2),
			Currency:        t.Currency,
			Color:           s.Color,
			Addons:          s.Addons,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"business_name": t.BusinessName,
		"timezone":      t.Timezone,
		"services":      out,
	})
}

////////////////////////////////////////////////////////
// SLOTS
////////////////////////////////////////////////////////

func (h *PublicHandler) Slots(c *gin.Context) {
	t, ok := h.tenantBySlug(c)
	if !ok {
		return
	}

	serviceID, ok := optionalUintQuery(c, "service_id")
	if !ok {
		return
	}
	if serviceID == nil {
		httperr.BadRequest(c, "service_required", httperr.Message("service_required"))
		return
	}

	providerID, ok := optionalUintQuery(c, "provider_id")
	if !ok {
		return
	}

	date := c.Query("date")
	if date == "" {
		date = time.Now().In(locationFromTenant(t)).Format(time.DateOnly)
	}

	res, err := h.slots.Execute(c.Request.Context(), ucBooking.ListSlotsInput{
		TenantID:   t.ID,
		ServiceID:  *serviceID,
		ProviderID: providerID,
		Date:       date,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
