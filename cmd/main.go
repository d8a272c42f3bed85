package main

import (
	"fmt"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/sparklewash/carwash-backend/config"
	"github.com/sparklewash/carwash-backend/database"
	"github.com/sparklewash/carwash-backend/internal/auditlog"
	"github.com/sparklewash/carwash-backend/internal/booking"
	"github.com/sparklewash/carwash-backend/internal/catalog"
	"github.com/sparklewash/carwash-backend/internal/coupon"
	"github.com/sparklewash/carwash-backend/internal/notification"
	"github.com/sparklewash/carwash-backend/internal/slot"
	"github.com/sparklewash/carwash-backend/internal/van"
	"github.com/sparklewash/carwash-backend/routes"
	"github.com/sparklewash/carwash-backend/utils"
)

func main() {
	cfg := config.Load()
	db := database.Connect(cfg)

	utils.InitLogger()

	// Init Redis
	if err := utils.InitRedis(cfg); err != nil {
		log.Fatalf("❌ Redis init failed: %v", err)
	}

	// Init Kafka (optional in local dev)
	utils.InitKafka(cfg)
	defer utils.CloseKafka()

	// Auto-migrate models
	log.Println("🔄 Running database migrations...")
	if err := db.AutoMigrate(
		&auditlog.AuditLog{},
		&catalog.WashService{},
		&catalog.Package{},
		&catalog.Banner{},
		&van.Van{},
		&slot.TimeSlot{},
		&slot.Reservation{},
		&coupon.Coupon{},
		&coupon.Redemption{},
		&booking.Booking{},
		&notification.InAppNotification{},
	); err != nil {
		panic(fmt.Sprintf("❌ DB AutoMigrate failed: %v", err))
	}
	log.Println("✅ Database migrations completed")

	// Setup Gin router
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:4173", "http://127.0.0.1:4173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "Content-Length", "X-Requested-With", "Cache-Control", "Pragma"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.Setup(router, cfg)

	fmt.Printf("🚀 Server starting on port %s\n", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		panic(fmt.Sprintf("Failed to start server: %v", err))
	}
}
