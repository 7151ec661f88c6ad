package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/booking-api/internal/httperr"
	"github.com/BruksfildServices01/booking-api/internal/models"
	"github.com/BruksfildServices01/booking-api/internal/timezone"
)

type MeHandler struct {
	db *gorm.DB
}

func NewMeHandler(db *gorm.DB) *MeHandler {
	return &MeHandler{db: db}
}

type UpdateTenantRequest struct {
	BusinessName      *string `json:"business_name"`
	Email             *string `json:"email"`
	Phone             *string `json:"phone"`
	Timezone          *string `json:"timezone"`
	Currency          *string `json:"currency"`
	MinAdvanceMinutes *int    `json:"min_advance_minutes"`
}

func (h *MeHandler) GetMe(c *gin.Context) {
	var user models.User
	if err := h.db.WithContext(c.Request.Context()).
		Preload("Tenant").
		Where("id = ? AND tenant_id = ?", userIDFrom(c), tenantIDFrom(c)).
		First(&user).Error; err != nil {
		httperr.Respond(c, notFoundOr(err, "user_not_found"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":   userView(&user),
		"tenant": user.Tenant,
	})
}

func (h *MeHandler) GetTenant(c *gin.Context) {
	var tenant models.Tenant
	if err := h.db.WithContext(c.Request.Context()).First(&tenant, tenantIDFrom(c)).Error; err != nil {
		httperr.Respond(c, notFoundOr(err, "tenant_not_found"))
		return
	}
	c.JSON(http.StatusOK, tenant)
}

func (h *MeHandler) UpdateTenant(c *gin.Context) {
	var req UpdateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	var tenant models.Tenant
	if err := h.db.WithContext(c.Request.Context()).First(&tenant, tenantIDFrom(c)).Error; err != nil {
		httperr.Respond(c, notFoundOr(err, "tenant_not_found"))
		return
	}

	touched := false
	if req.BusinessName != nil {
		tenant.BusinessName = *req.BusinessName
		touched = true
	}
	if req.Email != nil {
		tenant.Email = *req.Email
		touched = true
	}
	if req.Phone != nil {
		tenant.Phone = *req.Phone
		touched = true
	}
	if req.Timezone != nil {
		if !timezone.IsValid(*req.Timezone) {
			httperr.Respond(c, httperr.ErrBusiness("invalid_timezone"))
			return
		}
		tenant.Timezone = *req.Timezone
		touched = true
	}
	if req.Currency != nil {
		if len(*req.Currency) != 3 {
			httperr.BadRequest(c, "invalid_currency", "Currency must be an ISO 4217 code.")
			return
		}
		tenant.Currency = *req.Currency
		touched = true
	}
	if req.MinAdvanceMinutes != nil {
		if *req.MinAdvanceMinutes < 0 {
			httperr.BadRequest(c, "invalid_min_advance", "Minimum advance must be zero or positive (minutes).")
			return
		}
		tenant.MinAdvanceMinutes = *req.MinAdvanceMinutes
		touched = true
	}

	if !touched {
		httperr.Respond(c, httperr.ErrBusiness("no_fields_to_update"))
		return
	}

	if err := h.db.WithContext(c.Request.Context()).Save(&tenant).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, tenant)
}
