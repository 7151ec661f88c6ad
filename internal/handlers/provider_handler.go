package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/booking-api/internal/audit"
	"github.com/BruksfildServices01/booking-api/internal/httperr"
	"github.com/BruksfildServices01/booking-api/internal/httpresp"
	"github.com/BruksfildServices01/booking-api/internal/media"
	"github.com/BruksfildServices01/booking-api/internal/models"
	"github.com/BruksfildServices01/booking-api/internal/validators"
)

type ProviderHandler struct {
	db    *gorm.DB
	audit *audit.Dispatcher
	store media.Store
}

func NewProviderHandler(db *gorm.DB, audit *audit.Dispatcher, store media.Store) *ProviderHandler {
	return &ProviderHandler{db: db, audit: audit, store: store}
}

// --------- Requests ---------

type CreateProviderRequest struct {
	FirstName    string `json:"first_name" binding:"required"`
	LastName     string `json:"last_name"`
	Email        string `json:"email" binding:"omitempty,email"`
	Phone        string `json:"phone"`
	Color        string `json:"color"`
	Bio          string `json:"bio"`
	UserID       *uint  `json:"user_id"`
	DisplayOrder int    `json:"display_order"`
	ServiceIDs   []uint `json:"service_ids"`
}

type UpdateProviderRequest struct {
	FirstName    *string `json:"first_name"`
	LastName     *string `json:"last_name"`
	Email        *string `json:"email"`
	Phone        *string `json:"phone"`
	Color        *string `json:"color"`
	Bio          *string `json:"bio"`
	IsActive     *bool   `json:"is_active"`
	DisplayOrder *int    `json:"display_order"`
	ServiceIDs   *[]uint `json:"service_ids"`
}

type providerView struct {
	models.Provider
	ServiceIDs []uint `json:"service_ids"`
}

func toProviderView(p models.Provider) providerView {
	ids := make([]uint, 0, len(p.Services))
	for _, s := range p.Services {
		ids = append(ids, s.ServiceID)
	}
	p.Services = nil
	return providerView{Provider: p, ServiceIDs: ids}
}

// --------- Handlers ---------

func (h *ProviderHandler) List(c *gin.Context) {
	q := h.db.WithContext(c.Request.Context()).
		Preload("Services").
		Where("tenant_id = ?", tenantIDFrom(c))

	switch c.Query("active") {
	case "true":
		q = q.Where("is_active = ?", true)
	case "false":
		q = q.Where("is_active = ?", false)
	}

	var providers []models.Provider
	if err := q.Order("display_order ASC, id ASC").Find(&providers).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	out := make([]providerView, 0, len(providers))
	for _, p := range providers {
		out = append(out, toProviderView(p))
	}
	httpresp.List(c, out)
}

func (h *ProviderHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	p, err := h.load(c, id)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, toProviderView(*p))
}

func (h *ProviderHandler) load(c *gin.Context, id uint) (*models.Provider, error) {
	var p models.Provider
	if err := h.db.WithContext(c.Request.Context()).
		Preload("Services").
		Where("id = ? AND tenant_id = ?", id, tenantIDFrom(c)).
		First(&p).Error; err != nil {
		return nil, notFoundOr(err, "provider_not_found")
	}
	return &p, nil
}

func (h *ProviderHandler) Create(c *gin.Context) {
	var req CreateProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}
	if req.Color != "" && !validators.IsHexColor(req.Color) {
		httperr.BadRequest(c, "invalid_color", "Color must be #RRGGBB.")
		return
	}

	tenantID := tenantIDFrom(c)
	p := models.Provider{
		TenantID:     tenantID,
		UserID:       req.UserID,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:        req.Phone,
		Color:        req.Color,
		Bio:          req.Bio,
		IsActive:     true,
		DisplayOrder: req.DisplayOrder,
	}
	if p.Color == "" {
		p.Color = "#10B981"
	}

	err := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Services").Create(&p).Error; err != nil {
			return err
		}
		return replaceProviderServices(tx, tenantID, p.ID, req.ServiceIDs)
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	h.audit.Dispatch(auditEvent(c, "provider_created", "provider", p.ID, nil))

	created, err := h.load(c, p.ID)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, toProviderView(*created))
}

func (h *ProviderHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req UpdateProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	p, err := h.load(c, id)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	touched := req.ServiceIDs != nil
	if req.FirstName != nil {
		p.FirstName, touched = *req.FirstName, true
	}
	if req.LastName != nil {
		p.LastName, touched = *req.LastName, true
	}
	if req.Email != nil {
		p.Email, touched = strings.ToLower(strings.TrimSpace(*req.Email)), true
	}
	if req.Phone != nil {
		p.Phone, touched = *req.Phone, true
	}
	if req.Color != nil {
		if !validators.IsHexColor(*req.Color) {
			httperr.BadRequest(c, "invalid_color", "Color must be #RRGGBB.")
			return
		}
		p.Color, touched = *req.Color, true
	}
	if req.Bio != nil {
		p.Bio, touched = *req.Bio, true
	}
	if req.IsActive != nil {
		p.IsActive, touched = *req.IsActive, true
	}
	if req.DisplayOrder != nil {
		p.DisplayOrder, touched = *req.DisplayOrder, true
	}
	if !touched {
		httperr.Respond(c, httperr.ErrBusiness("no_fields_to_update"))
		return
	}

	tenantID := tenantIDFrom(c)
	err = h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Services").Save(p).Error; err != nil {
			return err
		}
		if req.ServiceIDs == nil {
			return nil
		}
		return replaceProviderServices(tx, tenantID, p.ID, *req.ServiceIDs)
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	h.audit.Dispatch(auditEvent(c, "provider_updated", "provider", p.ID, nil))

	updated, err := h.load(c, p.ID)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, toProviderView(*updated))
}

// replaceProviderServices swaps the association set. Every id must be a
// service of the same tenant.
func replaceProviderServices(tx *gorm.DB, tenantID, providerID uint, serviceIDs []uint) error {
	ids := make([]uint, 0, len(serviceIDs))
	seen := map[uint]bool{}
	for _, id := range serviceIDs {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	if len(ids) > 0 {
		var count int64
		if err := tx.Model(&models.Service{}).
			Where("tenant_id = ? AND id IN ?", tenantID, ids).
			Count(&count).Error; err != nil {
			return err
		}
		if int(count) != len(ids) {
			return httperr.ErrNotFound("service_not_found")
		}
	}

	if err := tx.Where("tenant_id = ? AND provider_id = ?", tenantID, providerID).
		Delete(&models.ProviderService{}).Error; err != nil {
		return err
	}

	if len(ids) == 0 {
		return nil
	}

	links := make([]models.ProviderService, 0, len(ids))
	for _, sid := range ids {
		links = append(links, models.ProviderService{TenantID: tenantID, ProviderID: providerID, ServiceID: sid})
	}
	return tx.Create(&links).Error
}

func (h *ProviderHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	tenantID := tenantIDFrom(c)

	var outcome string
	err := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var p models.Provider
		if err := tx.Where("id = ? AND tenant_id = ?", id, tenantID).First(&p).Error; err != nil {
			return notFoundOr(err, "provider_not_found")
		}

		var err error
		outcome, err = deleteOrDeactivate(tx, &p, tenantID, "provider_id", p.ID, func(tx *gorm.DB) error {
			for _, m := range []any{&models.ProviderService{}, &models.Availability{}, &models.Unavailability{}} {
				if err := tx.Where("tenant_id = ? AND provider_id = ?", tenantID, p.ID).Delete(m).Error; err != nil {
					return err
				}
			}
			return nil
		})
		return err
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	h.audit.Dispatch(auditEvent(c, "provider_"+outcome, "provider", id, nil))
	c.JSON(http.StatusOK, gin.H{"status": outcome})
}

// --------- Availability ---------

func (h *ProviderHandler) GetAvailability(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if _, err := h.load(c, id); err != nil {
		httperr.Respond(c, err)
		return
	}

	rows, err := listWindows(h.db.WithContext(c.Request.Context()), tenantIDFrom(c), &id)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *ProviderHandler) PutAvailability(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if _, err := h.load(c, id); err != nil {
		httperr.Respond(c, err)
		return
	}

	var req AvailabilityUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	rows, err := replaceWindows(h.db.WithContext(c.Request.Context()), tenantIDFrom(c), &id, req.Windows)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	h.audit.Dispatch(auditEvent(c, "availability_updated", "provider", id, gin.H{"windows": len(rows)}))
	c.JSON(http.StatusOK, rows)
}

// --------- Avatar ---------

func (h *ProviderHandler) UploadAvatar(c *gin.Context) {
	if h.store == nil {
		httperr.Respond(c, httperr.ErrBusiness("media_storage_disabled"))
		return
	}

	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	p, err := h.load(c, id)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	fh, err := c.FormFile("avatar")
	if err != nil {
		httperr.BadRequest(c, "missing_file", "Upload the image in the avatar field.")
		return
	}
	if fh.Size > media.MaxUploadSize {
		httperr.BadRequest(c, "file_too_large", "Images are limited to 5MB.")
		return
	}

	f, err := fh.Open()
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	defer f.Close()

	body, err := media.Avatar(f, media.AvatarMaxSide)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	key := fmt.Sprintf("tenants/%d/providers/%d/%s.webp", p.TenantID, p.ID, uuid.NewString())
	url, err := h.store.Put(c.Request.Context(), key, body, "image/webp")
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	if err := h.db.WithContext(c.Request.Context()).
		Model(&models.Provider{}).
		Where("id = ? AND tenant_id = ?", p.ID, p.TenantID).
		Update("avatar_url", url).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	h.audit.Dispatch(auditEvent(c, "provider_avatar_updated", "provider", p.ID, nil))
	c.JSON(http.StatusOK, gin.H{"avatar_url": url})
}
