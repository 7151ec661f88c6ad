package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/booking-api/internal/audit"
	"github.com/BruksfildServices01/booking-api/internal/config"
	domain "github.com/BruksfildServices01/booking-api/internal/domain/booking"
	"github.com/BruksfildServices01/booking-api/internal/events"
	"github.com/BruksfildServices01/booking-api/internal/handlers"
	infraRepo "github.com/BruksfildServices01/booking-api/internal/infra/repository"
	"github.com/BruksfildServices01/booking-api/internal/media"
	"github.com/BruksfildServices01/booking-api/internal/middleware"
	"github.com/BruksfildServices01/booking-api/internal/payments"
	ucBooking "github.com/BruksfildServices01/booking-api/internal/usecase/booking"
)

// Deps are the process-wide singletons built in main. Gateway and Store
// may be nil when the integration is not configured.
type Deps struct {
	DB        *gorm.DB
	Config    *config.Config
	Audit     *audit.Dispatcher
	Locker    domain.Locker
	Publisher events.Publisher
	Gateway   payments.Gateway
	Store     media.Store
	Clock     domain.Clock
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	db, cfg := d.DB, d.Config

	// ======================================================
	// 🌍 MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(
		middleware.RequestID(),
		middleware.AccessLog(),
		middleware.CORSMiddleware(cfg.CORSOrigins),
	)

	// ======================================================
	// 🔧 INFRA
	// ======================================================
	bookingRepo := infraRepo.NewBookingGormRepository(db)

	// ======================================================
	// 🧠 USE CASES: BOOKINGS
	// ======================================================
	listSlotsUC := ucBooking.NewListSlots(bookingRepo, cfg.SlotGranularityMinutes, d.Clock)

	bookingUC := handlers.BookingUseCases{
		Create: ucBooking.NewCreateBooking(bookingRepo, d.Locker, d.Audit, d.Publisher, d.Clock),
		Update: ucBooking.NewUpdateBooking(bookingRepo, d.Locker, d.Audit, d.Publisher, d.Clock),
		Cancel: ucBooking.NewCancelBooking(bookingRepo, d.Audit, d.Publisher, d.Clock),
		Get:    ucBooking.NewGetBooking(bookingRepo),
		List:   ucBooking.NewListBookings(bookingRepo),
		Slots:  listSlotsUC,

		Checkout: ucBooking.NewCheckout(bookingRepo, d.Gateway, d.Audit),
	}

	// ======================================================
	// 🧩 HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(db, cfg)
	meHandler := handlers.NewMeHandler(db)

	serviceHandler := handlers.NewServiceHandler(db, d.Audit)
	providerHandler := handlers.NewProviderHandler(db, d.Audit, d.Store)
	availabilityHandler := handlers.NewAvailabilityHandler(db, d.Audit)
	unavailabilityHandler := handlers.NewUnavailabilityHandler(db, d.Audit)
	clientHandler := handlers.NewClientHandler(db, d.Audit)
	bookingHandler := handlers.NewBookingHandler(db, bookingUC)

	auditLogsHandler := handlers.NewAuditLogsHandler(db)
	publicHandler := handlers.NewPublicHandler(db, listSlotsUC)

	adminOnly := middleware.RequireRole(middleware.RoleAdmin)

	// ======================================================
	// 🌐 API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// 🌐 PUBLIC
		// ------------------------------
		publicAPI := api.Group("/public")
		{
			publicAPI.GET("/:slug/services", publicHandler.ListServices)
			publicAPI.GET("/:slug/slots", publicHandler.Slots)
		}

		// ------------------------------
		// 🔐 AUTH
		// ------------------------------
		api.POST("/tenants/register", authHandler.Register)
		api.POST("/tenants/login", authHandler.Login)

		// ------------------------------
		// 🔐 PRIVATE
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(cfg))
		{
			secured.GET("/me", meHandler.GetMe)
			secured.GET("/me/tenant", meHandler.GetTenant)
			secured.PATCH("/me/tenant", adminOnly, meHandler.UpdateTenant)
			secured.GET("/me/audit-logs", adminOnly, auditLogsHandler.List)

			// ------------------------------
			// CATALOG
			// ------------------------------
			secured.GET("/service-categories", serviceHandler.ListCategories)
			secured.POST("/service-categories", adminOnly, serviceHandler.CreateCategory)

			secured.GET("/services", serviceHandler.List)
			secured.GET("/services/:id", serviceHandler.Get)
			secured.POST("/services", adminOnly, serviceHandler.Create)
			secured.PATCH("/services/:id", adminOnly, serviceHandler.Update)
			secured.DELETE("/services/:id", adminOnly, serviceHandler.Delete)
			secured.GET("/services/:id/addons", serviceHandler.ListAddons)
			secured.POST("/services/:id/addons", adminOnly, serviceHandler.CreateAddon)

			secured.GET("/providers", providerHandler.List)
			secured.GET("/providers/:id", providerHandler.Get)
			secured.POST("/providers", adminOnly, providerHandler.Create)
			secured.PATCH("/providers/:id", adminOnly, providerHandler.Update)
			secured.DELETE("/providers/:id", adminOnly, providerHandler.Delete)
			secured.GET("/providers/:id/availability", providerHandler.GetAvailability)
			secured.PUT("/providers/:id/availability", adminOnly, providerHandler.PutAvailability)
			secured.POST("/providers/:id/avatar", adminOnly, providerHandler.UploadAvatar)

			secured.GET("/availability/defaults", availabilityHandler.GetDefaults)
			secured.PUT("/availability/defaults", adminOnly, availabilityHandler.PutDefaults)

			secured.GET("/unavailabilities", unavailabilityHandler.List)
			secured.POST("/unavailabilities", adminOnly, unavailabilityHandler.Create)
			secured.DELETE("/unavailabilities/:id", adminOnly, unavailabilityHandler.Delete)

			// ------------------------------
			// CLIENTS
			// ------------------------------
			secured.GET("/clients", clientHandler.List)
			secured.GET("/clients/:id", clientHandler.Get)
			secured.POST("/clients", clientHandler.Create)
			secured.PATCH("/clients/:id", clientHandler.Update)
			secured.DELETE("/clients/:id", adminOnly, clientHandler.Delete)

			// ------------------------------
			// BOOKINGS
			// ------------------------------
			secured.GET("/bookings", bookingHandler.List)
			secured.GET("/bookings/available-slots", bookingHandler.Slots)
			secured.POST("/bookings", bookingHandler.Create)
			secured.GET("/bookings/:id", bookingHandler.Get)
			secured.PATCH("/bookings/:id", bookingHandler.Update)
			secured.POST("/bookings/:id/cancel", bookingHandler.Cancel)
			secured.POST("/bookings/:id/checkout", bookingHandler.Checkout)
		}
	}
}
