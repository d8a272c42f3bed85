package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/sparklewash/carwash-backend/config"
	"github.com/sparklewash/carwash-backend/database"
	"github.com/sparklewash/carwash-backend/internal/auditlog"
	"github.com/sparklewash/carwash-backend/internal/booking"
	"github.com/sparklewash/carwash-backend/internal/catalog"
	"github.com/sparklewash/carwash-backend/internal/coupon"
	"github.com/sparklewash/carwash-backend/internal/notification"
	"github.com/sparklewash/carwash-backend/internal/reports"
	"github.com/sparklewash/carwash-backend/internal/slot"
	"github.com/sparklewash/carwash-backend/internal/van"
	"github.com/sparklewash/carwash-backend/middleware"
)

func Setup(r *gin.Engine, cfg *config.Config) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimiter())
	api.Use(middleware.AuditMiddleware())

	// ========== Initialize Audit Log Module ==========
	auditRepo := auditlog.NewRepository(database.DB)
	auditSvc := auditlog.NewService(auditRepo)
	auditHandler := auditlog.NewHandler(auditSvc)

	// ========== Catalog ==========
	catalogRepo := catalog.NewRepository(database.DB)
	catalogSvc := catalog.NewService(catalogRepo)
	catalogHandler := catalog.NewHandler(catalogSvc)

	// ========== Vans ==========
	vanRepo := van.NewRepository(database.DB)
	vanSvc := van.NewService(vanRepo, auditSvc)
	vanHandler := van.NewHandler(vanSvc)

	// ========== Slots ==========
	slotRepo := slot.NewRepository(database.DB)
	slotSvc := slot.NewService(slotRepo)
	slotHandler := slot.NewHandler(slotSvc)

	// ========== Coupons ==========
	couponRepo := coupon.NewRepository(database.DB)
	couponSvc := coupon.NewService(couponRepo)
	couponHandler := coupon.NewHandler(couponSvc)

	// ========== Bookings ==========
	bookingRepo := booking.NewRepository(database.DB)
	bookingSvc := booking.NewService(bookingRepo, vanSvc, slotSvc, couponSvc, catalogSvc, auditSvc, cfg)
	bookingHandler := booking.NewHandler(bookingSvc)

	// ========== Notifications ==========
	notifRepo := notification.NewRepository(database.DB)
	notifSvc := notification.NewService(notifRepo)
	notifHandler := notification.NewHandler(notifSvc)
	notification.StartKafkaConsumer(cfg, notifSvc)

	// ========== Reports ==========
	reportsRepo := reports.NewRepository(database.DB)
	reportsSvc := reports.NewService(reportsRepo)
	reportsHandler := reports.NewHandler(reportsSvc)

	// ========== Public browse routes (no auth) ==========
	api.GET("/services", catalogHandler.ListServices)
	api.GET("/services/:id", catalogHandler.GetService)
	api.GET("/packages", catalogHandler.ListPackages)
	api.GET("/banners", catalogHandler.ListBanners)
	api.GET("/vans", vanHandler.ListVans)
	api.GET("/vans/:id", vanHandler.GetVan)
	api.GET("/slots", slotHandler.ListAvailable)

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(cfg))

	// ========== Catalog administration (SuperAdmin Only) ==========
	catalogAdmin := protected.Group("/")
	catalogAdmin.Use(middleware.RBACMiddleware(middleware.RoleSuperAdmin))
	{
		catalogAdmin.POST("/services", catalogHandler.CreateService)
		catalogAdmin.PUT("/services/:id", catalogHandler.UpdateService)
		catalogAdmin.POST("/packages", catalogHandler.CreatePackage)
		catalogAdmin.POST("/banners", catalogHandler.CreateBanner)
		catalogAdmin.DELETE("/banners/:id", catalogHandler.DeleteBanner)
	}

	// ========== Van fleet ==========
	protected.POST("/vans", middleware.RBACMiddleware(middleware.RoleSuperAdmin), vanHandler.RegisterVan)
	protected.PATCH("/vans/:id/status", middleware.RequireOperator(), vanHandler.SetStatus)

	// ========== Slot administration (per-van ownership checked in handlers) ==========
	slotAdmin := protected.Group("/slots")
	slotAdmin.Use(middleware.RequireOperator())
	{
		slotAdmin.POST("", slotHandler.CreateSlot)
		slotAdmin.POST("/generate", slotHandler.GenerateDay)
		slotAdmin.PATCH("/:id/archive", slotHandler.ArchiveSlot)
	}

	// ========== Coupons ==========
	protected.POST("/coupons/preview", couponHandler.Preview)
	couponAdmin := protected.Group("/coupons")
	couponAdmin.Use(middleware.RBACMiddleware(middleware.RoleSuperAdmin))
	{
		couponAdmin.POST("", couponHandler.CreateCoupon)
		couponAdmin.GET("", couponHandler.ListCoupons)
		couponAdmin.PATCH("/:code/disable", couponHandler.DisableCoupon)
	}

	// ========== Bookings ==========
	bookings := protected.Group("/bookings")
	{
		bookings.POST("", bookingHandler.CreateBooking)
		bookings.POST("/payment/verify", bookingHandler.VerifyPayment)
		bookings.GET("/my", bookingHandler.ListMyBookings)
		bookings.GET("/:id", bookingHandler.GetBooking)
		bookings.PATCH("/:id/cancel", bookingHandler.CancelBooking)

		bookings.PATCH("/:id/start", middleware.RequireOperator(), bookingHandler.StartService)
		bookings.PATCH("/:id/complete", middleware.RequireOperator(), bookingHandler.CompleteService)
		bookings.GET("/van/:vanID", middleware.RequireOperator(), bookingHandler.ListVanBookings)
		bookings.GET("/counts", middleware.RequireOperator(), bookingHandler.GetStatusCounts)
		bookings.GET("", middleware.RBACMiddleware(middleware.RoleSuperAdmin), bookingHandler.SearchBookings)
	}

	// ========== Notifications ==========
	notifications := protected.Group("/notifications")
	{
		notifications.GET("", notifHandler.ListNotifications)
		notifications.PATCH("/:id/read", notifHandler.MarkAsRead)
		notifications.PATCH("/read-all", notifHandler.MarkAllAsRead)
	}

	// ========== Reports ==========
	reportRoutes := protected.Group("/reports")
	{
		reportRoutes.GET("/receipt/:bookingID", reportsHandler.DownloadReceipt)
		reportRoutes.GET("/:type", middleware.RequireOperator(), reportsHandler.ExportReport)
	}

	// ========== Audit Logs (SuperAdmin Only) ==========
	auditRoutes := protected.Group("/auditlogs")
	auditRoutes.Use(middleware.RBACMiddleware(middleware.RoleSuperAdmin))
	{
		auditRoutes.GET("", auditHandler.GetAuditLogs)
		auditRoutes.GET("/:id", auditHandler.GetAuditLogByID)
	}
}
