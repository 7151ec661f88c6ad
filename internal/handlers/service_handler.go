package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/booking-api/internal/audit"
	domain "github.com/BruksfildServices01/booking-api/internal/domain/booking"
	"github.com/BruksfildServices01/booking-api/internal/httperr"
	"github.com/BruksfildServices01/booking-api/internal/httpresp"
	"github.com/BruksfildServices01/booking-api/internal/models"
	"github.com/BruksfildServices01/booking-api/internal/validators"
)

type ServiceHandler struct {
	db    *gorm.DB
	audit *audit.Dispatcher
}

func NewServiceHandler(db *gorm.DB, audit *audit.Dispatcher) *ServiceHandler {
	return &ServiceHandler{db: db, audit: audit}
}

// --------- Requests ---------

type CreateServiceRequest struct {
	Name                string          `json:"name" binding:"required"`
	Description         string          `json:"description"`
	CategoryID          *uint           `json:"category_id"`
	Color               string          `json:"color"`
	DurationMinutes     int             `json:"duration_minutes" binding:"required,min=1"`
	BufferBeforeMinutes int             `json:"buffer_before_minutes" binding:"min=0"`
	BufferAfterMinutes  int             `json:"buffer_after_minutes" binding:"min=0"`
	Price               decimal.Decimal `json:"price"`
	RequiresApproval    bool            `json:"requires_approval"`
	DisplayOrder        int             `json:"display_order"`
}

type UpdateServiceRequest struct {
	Name                *string          `json:"name"`
	Description         *string          `json:"description"`
	CategoryID          *uint            `json:"category_id"` // 0 clears
	Color               *string          `json:"color"`
	DurationMinutes     *int             `json:"duration_minutes"`
	BufferBeforeMinutes *int             `json:"buffer_before_minutes"`
	BufferAfterMinutes  *int             `json:"buffer_after_minutes"`
	Price               *decimal.Decimal `json:"price"`
	RequiresApproval    *bool            `json:"requires_approval"`
	IsActive            *bool            `json:"is_active"`
	DisplayOrder        *int             `json:"display_order"`
}

type CreateCategoryRequest struct {
	Name         string `json:"name" binding:"required"`
	Description  string `json:"description"`
	DisplayOrder int    `json:"display_order"`
}

type CreateAddonRequest struct {
	Name  string          `json:"name" binding:"required"`
	Price decimal.Decimal `json:"price"`
}

// --------- Handlers ---------

func (h *ServiceHandler) List(c *gin.Context) {
	tenantID := tenantIDFrom(c)

	categoryID, ok := optionalUintQuery(c, "category_id")
	if !ok {
		return
	}
	activeStr := strings.TrimSpace(c.Query("active"))
	query := strings.ToLower(strings.TrimSpace(c.Query("query")))

	q := h.db.WithContext(c.Request.Context()).
		Preload("Category").
		Where("tenant_id = ?", tenantID)

	if categoryID != nil {
		q = q.Where("category_id = ?", *categoryID)
	}

	switch activeStr {
	case "true":
		q = q.Where("is_active = ?", true)
	case "false":
		q = q.Where("is_active = ?", false)
	}

	if query != "" {
		like := "%" + query + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	var services []models.Service
	if err := q.
		Order("display_order ASC, id ASC").
		Find(&services).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.List(c, services)
}

func (h *ServiceHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var svc models.Service
	if err := h.db.WithContext(c.Request.Context()).
		Preload("Category").
		Preload("Addons", "is_active = true").
		Where("id = ? AND tenant_id = ?", id, tenantIDFrom(c)).
		First(&svc).Error; err != nil {
		httperr.Respond(c, notFoundOr(err, "service_not_found"))
		return
	}

	c.JSON(http.StatusOK, svc)
}

func (h *ServiceHandler) Create(c *gin.Context) {
	var req CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}
	if req.Price.IsNegative() {
		httperr.BadRequest(c, "invalid_price", "Price cannot be negative.")
		return
	}
	if req.Color != "" && !validators.IsHexColor(req.Color) {
		httperr.BadRequest(c, "invalid_color", "Color must be #RRGGBB.")
		return
	}

	tenantID := tenantIDFrom(c)
	if req.CategoryID != nil {
		if err := h.checkCategory(c, tenantID, *req.CategoryID); err != nil {
			httperr.Respond(c, err)
			return
		}
	}

	svc := models.Service{
		TenantID:            tenantID,
		Name:                req.Name,
		Description:         req.Description,
		CategoryID:          req.CategoryID,
		Color:               req.Color,
		DurationMinutes:     req.DurationMinutes,
		BufferBeforeMinutes: req.BufferBeforeMinutes,
		BufferAfterMinutes:  req.BufferAfterMinutes,
		Price:               req.Price,
		RequiresApproval:    req.RequiresApproval,
		IsActive:            true,
		DisplayOrder:        req.DisplayOrder,
	}
	if svc.Color == "" {
		svc.Color = "#3B82F6"
	}

	if err := h.db.WithContext(c.Request.Context()).Create(&svc).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	h.audit.Dispatch(auditEvent(c, "service_created", "service", svc.ID, nil))
	c.JSON(http.StatusCreated, svc)
}

func (h *ServiceHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req UpdateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	var svc models.Service
	if err := h.db.WithContext(c.Request.Context()).
		Where("id = ? AND tenant_id = ?", id, tenantIDFrom(c)).
		First(&svc).Error; err != nil {
		httperr.Respond(c, notFoundOr(err, "service_not_found"))
		return
	}

	if req.CategoryID != nil && *req.CategoryID != 0 {
		if err := h.checkCategory(c, svc.TenantID, *req.CategoryID); err != nil {
			httperr.Respond(c, err)
			return
		}
	}

	if err := applyServicePatch(&svc, req); err != nil {
		httperr.Respond(c, err)
		return
	}

	if err := h.db.WithContext(c.Request.Context()).Omit("Addons", "Category").Save(&svc).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	h.audit.Dispatch(auditEvent(c, "service_updated", "service", svc.ID, nil))
	c.JSON(http.StatusOK, svc)
}

func applyServicePatch(svc *models.Service, req UpdateServiceRequest) error {
	touched := false

	if req.Name != nil {
		svc.Name, touched = *req.Name, true
	}
	if req.Description != nil {
		svc.Description, touched = *req.Description, true
	}
	if req.CategoryID != nil {
		svc.CategoryID, svc.Category, touched = nil, nil, true
		if *req.CategoryID != 0 {
			id := *req.CategoryID
			svc.CategoryID = &id
		}
	}
	if req.Color != nil {
		if !validators.IsHexColor(*req.Color) {
			return httperr.ErrBusiness("invalid_color")
		}
		svc.Color, touched = *req.Color, true
	}
	if req.DurationMinutes != nil {
		if *req.DurationMinutes <= 0 {
			return httperr.ErrBusiness("invalid_duration")
		}
		svc.DurationMinutes, touched = *req.DurationMinutes, true
	}
	if req.BufferBeforeMinutes != nil {
		if *req.BufferBeforeMinutes < 0 {
			return httperr.ErrBusiness("invalid_buffer")
		}
		svc.BufferBeforeMinutes, touched = *req.BufferBeforeMinutes, true
	}
	if req.BufferAfterMinutes != nil {
		if *req.BufferAfterMinutes < 0 {
			return httperr.ErrBusiness("invalid_buffer")
		}
		svc.BufferAfterMinutes, touched = *req.BufferAfterMinutes, true
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return httperr.ErrBusiness("invalid_price")
		}
		svc.Price, touched = *req.Price, true
	}
	if req.RequiresApproval != nil {
		svc.RequiresApproval, touched = *req.RequiresApproval, true
	}
	if req.IsActive != nil {
		svc.IsActive, touched = *req.IsActive, true
	}
	if req.DisplayOrder != nil {
		svc.DisplayOrder, touched = *req.DisplayOrder, true
	}

	if !touched {
		return httperr.ErrBusiness("no_fields_to_update")
	}
	return nil
}

// Delete refuses while active bookings exist, deactivates when any booking
// references the service and removes the row otherwise.
func (h *ServiceHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	tenantID := tenantIDFrom(c)

	var outcome string
	err := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var svc models.Service
		if err := tx.Where("id = ? AND tenant_id = ?", id, tenantID).First(&svc).Error; err != nil {
			return notFoundOr(err, "service_not_found")
		}

		var err error
		outcome, err = deleteOrDeactivate(tx, &svc, tenantID, "service_id", svc.ID, func(tx *gorm.DB) error {
			if err := tx.Where("service_id = ?", svc.ID).Delete(&models.ServiceAddon{}).Error; err != nil {
				return err
			}
			return tx.Where("service_id = ?", svc.ID).Delete(&models.ProviderService{}).Error
		})
		return err
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	h.audit.Dispatch(auditEvent(c, "service_"+outcome, "service", id, nil))
	c.JSON(http.StatusOK, gin.H{"status": outcome})
}

// deleteOrDeactivate applies the shared deletion rule for catalog rows
// referenced by bookings through column. cleanup removes dependent rows
// before a hard delete.
func deleteOrDeactivate(
	tx *gorm.DB,
	row any,
	tenantID uint,
	column string,
	id uint,
	cleanup func(tx *gorm.DB) error,
) (string, error) {
	var active, total int64

	base := tx.Model(&models.Booking{}).Where("tenant_id = ? AND "+column+" = ?", tenantID, id)

	if err := base.Session(&gorm.Session{}).Where("status IN ?", domain.ActiveStatuses).Count(&active).Error; err != nil {
		return "", err
	}
	if active > 0 {
		return "", httperr.ErrConflict("has_active_bookings")
	}

	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return "", err
	}
	if total > 0 {
		if err := tx.Model(row).Update("is_active", false).Error; err != nil {
			return "", err
		}
		return "deactivated", nil
	}

	if err := cleanup(tx); err != nil {
		return "", err
	}
	if err := tx.Delete(row).Error; err != nil {
		return "", err
	}
	return "deleted", nil
}

// --------- Categories ---------

func (h *ServiceHandler) checkCategory(c *gin.Context, tenantID, categoryID uint) error {
	var count int64
	if err := h.db.WithContext(c.Request.Context()).
		Model(&models.ServiceCategory{}).
		Where("id = ? AND tenant_id = ?", categoryID, tenantID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return httperr.ErrNotFound("category_not_found")
	}
	return nil
}

func (h *ServiceHandler) ListCategories(c *gin.Context) {
	var categories []models.ServiceCategory
	if err := h.db.WithContext(c.Request.Context()).
		Where("tenant_id = ? AND is_active = ?", tenantIDFrom(c), true).
		Order("display_order ASC, id ASC").
		Find(&categories).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.List(c, categories)
}

func (h *ServiceHandler) CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		httperr.Respond(c, httperr.ErrBusiness("invalid_name"))
		return
	}

	category := models.ServiceCategory{
		TenantID:     tenantIDFrom(c),
		Name:         name,
		Description:  req.Description,
		DisplayOrder: req.DisplayOrder,
		IsActive:     true,
	}
	if err := h.db.WithContext(c.Request.Context()).Create(&category).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	h.audit.Dispatch(auditEvent(c, "category_created", "service_category", category.ID, nil))
	httpresp.Created(c, category)
}

// --------- Add-ons ---------

func (h *ServiceHandler) ListAddons(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var addons []models.ServiceAddon
	if err := h.db.WithContext(c.Request.Context()).
		Where("tenant_id = ? AND service_id = ?", tenantIDFrom(c), id).
		Order("id ASC").
		Find(&addons).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, addons)
}

func (h *ServiceHandler) CreateAddon(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	tenantID := tenantIDFrom(c)

	var req CreateAddonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}
	if req.Price.IsNegative() {
		httperr.BadRequest(c, "invalid_price", "Price cannot be negative.")
		return
	}

	var count int64
	if err := h.db.WithContext(c.Request.Context()).
		Model(&models.Service{}).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Count(&count).Error; err != nil {
		httperr.Respond(c, err)
		return
	}
	if count == 0 {
		httperr.Respond(c, httperr.ErrNotFound("service_not_found"))
		return
	}

	addon := models.ServiceAddon{
		TenantID:  tenantID,
		ServiceID: id,
		Name:      req.Name,
		Price:     req.Price,
		IsActive:  true,
	}
	if err := h.db.WithContext(c.Request.Context()).Create(&addon).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, addon)
}
