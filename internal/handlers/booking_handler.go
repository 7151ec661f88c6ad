package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/booking-api/internal/domain/booking"
	"github.com/BruksfildServices01/booking-api/internal/httperr"
	"github.com/BruksfildServices01/booking-api/internal/models"
	ucBooking "github.com/BruksfildServices01/booking-api/internal/usecase/booking"
)

// BookingUseCases groups the booking flows the handler delegates to.
type BookingUseCases struct {
	Create   *ucBooking.CreateBooking
	Update   *ucBooking.UpdateBooking
	Cancel   *ucBooking.CancelBooking
	Get      *ucBooking.GetBooking
	List     *ucBooking.ListBookings
	Slots    *ucBooking.ListSlots
	Checkout *ucBooking.Checkout
}

type BookingHandler struct {
	db *gorm.DB
	uc BookingUseCases
}

func NewBookingHandler(db *gorm.DB, uc BookingUseCases) *BookingHandler {
	return &BookingHandler{db: db, uc: uc}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateBookingRequest struct {
	ClientID        uint   `json:"client_id" binding:"required"`
	ServiceID       uint   `json:"service_id" binding:"required"`
	ProviderID      uint   `json:"provider_id"`
	BookingDatetime string `json:"booking_datetime" binding:"required"`
	Notes           string `json:"notes"`
	ClientNotes     string `json:"client_notes"`
	AddonIDs        []uint `json:"addon_ids"`
}

type UpdateBookingRequest struct {
	BookingDatetime *string `json:"booking_datetime"`
	ProviderID      *uint   `json:"provider_id"`
	Status          *string `json:"status"`
	Notes           *string `json:"notes"`
	InternalNotes   *string `json:"internal_notes"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason"`
}

func (h *BookingHandler) tenant(c *gin.Context) (*models.Tenant, error) {
	var t models.Tenant
	if err := h.db.WithContext(c.Request.Context()).
		First(&t, tenantIDFrom(c)).Error; err != nil {
		return nil, notFoundOr(err, "tenant_not_found")
	}
	return &t, nil
}

// ======================================================
// LIST / GET
// ======================================================

func (h *BookingHandler) List(c *gin.Context) {
	t, err := h.tenant(c)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	f := domain.ListFilter{TenantID: t.ID}

	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		st, err := domain.ParseStatus(raw)
		if err != nil {
			httperr.Respond(c, err)
			return
		}
		f.Status = string(st)
	}

	var ok bool
	if f.ProviderID, ok = optionalUintQuery(c, "provider_id"); !ok {
		return
	}
	if f.ClientID, ok = optionalUintQuery(c, "client_id"); !ok {
		return
	}

	if raw := c.Query("from"); raw != "" {
		from, err := parseDateInTenant(t, raw)
		if err != nil {
			httperr.Respond(c, err)
			return
		}
		f.From = &from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := parseDateInTenant(t, raw)
		if err != nil {
			httperr.Respond(c, err)
			return
		}
		// inclusive of the whole "to" day
		end := to.AddDate(0, 0, 1)
		f.To = &end
	}

	f.Page, f.Limit = pagination(c)

	page, err := h.uc.List.Execute(c.Request.Context(), f)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *BookingHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	b, err := h.uc.Get.Execute(c.Request.Context(), tenantIDFrom(c), id)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// ======================================================
// CREATE / UPDATE / CANCEL
// ======================================================

func (h *BookingHandler) Create(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	t, err := h.tenant(c)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	start, err := parseDateTimeInTenant(t, req.BookingDatetime)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	b, err := h.uc.Create.Execute(c.Request.Context(), ucBooking.CreateBookingInput{
		TenantID:    t.ID,
		UserID:      userIDFrom(c),
		RequestID:   requestIDFrom(c),
		ClientID:    req.ClientID,
		ServiceID:   req.ServiceID,
		ProviderID:  req.ProviderID,
		Datetime:    start,
		Notes:       req.Notes,
		ClientNotes: req.ClientNotes,
		AddonIDs:    req.AddonIDs,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

func (h *BookingHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	patch := ucBooking.Patch{
		ProviderID:    req.ProviderID,
		Status:        req.Status,
		Notes:         req.Notes,
		InternalNotes: req.InternalNotes,
	}

	if req.BookingDatetime != nil {
		t, err := h.tenant(c)
		if err != nil {
			httperr.Respond(c, err)
			return
		}
		start, err := parseDateTimeInTenant(t, *req.BookingDatetime)
		if err != nil {
			httperr.Respond(c, err)
			return
		}
		patch.BookingDatetime = &start
	}

	b, err := h.uc.Update.Execute(c.Request.Context(), ucBooking.UpdateBookingInput{
		TenantID:  tenantIDFrom(c),
		UserID:    userIDFrom(c),
		RequestID: requestIDFrom(c),
		BookingID: id,
		Patch:     patch,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BookingHandler) Cancel(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req CancelBookingRequest
	// body is optional
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			invalidRequest(c, err)
			return
		}
	}

	b, err := h.uc.Cancel.Execute(c.Request.Context(), ucBooking.CancelBookingInput{
		TenantID:  tenantIDFrom(c),
		UserID:    userIDFrom(c),
		RequestID: requestIDFrom(c),
		BookingID: id,
		Reason:    strings.TrimSpace(req.Reason),
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// ======================================================
// SLOTS / CHECKOUT
// ======================================================

func (h *BookingHandler) Slots(c *gin.Context) {
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
		t, err := h.tenant(c)
		if err != nil {
			httperr.Respond(c, err)
			return
		}
		date = time.Now().In(locationFromTenant(t)).Format(time.DateOnly)
	}

	res, err := h.uc.Slots.Execute(c.Request.Context(), ucBooking.ListSlotsInput{
		TenantID:   tenantIDFrom(c),
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

func (h *BookingHandler) Checkout(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	out, err := h.uc.Checkout.Execute(c.Request.Context(), ucBooking.CheckoutInput{
		TenantID:  tenantIDFrom(c),
		UserID:    userIDFrom(c),
		RequestID: requestIDFrom(c),
		BookingID: id,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
