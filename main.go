package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/yeremiapane/venue-app/config"
	"github.com/yeremiapane/venue-app/events"
	"github.com/yeremiapane/venue-app/kds"
	"github.com/yeremiapane/venue-app/models"
	"github.com/yeremiapane/venue-app/router"
	"github.com/yeremiapane/venue-app/services"
	"github.com/yeremiapane/venue-app/utils"
	"gorm.io/gorm"
)

func main() {
	// Load .env di awal sebelum apapun
	if err := godotenv.Load(); err != nil {
		utils.InfoLogger.Println("Warning: .env file not found")
	}
	cfg := config.Load()
	utils.SetLogLevel(cfg.LogLevel)

	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	autoMigrate(db)

	rdb := config.NewRedisClient(cfg)
	if rdb == nil {
		utils.InfoLogger.Println("Redis not configured, price cache disabled")
	}

	publisher := events.NewPublisher(cfg.RabbitMQURL)
	hub := kds.NewHub()
	sessions := services.NewSessionService(db, hub, publisher)

	monitor := services.NewBookingExpiryMonitor(sessions, cfg.BookingHoldTTL)
	monitor.Start()
	defer monitor.Stop()

	r := router.SetupRouter(db, router.Deps{
		Hub:        hub,
		Sessions:   sessions,
		Publisher:  publisher,
		Redis:      rdb,
		CacheTTL:   cfg.CacheTTL,
		CORSOrigin: cfg.CORSOrigin,
		RateRPS:    cfg.RateLimitRPS,
		RateBurst:  cfg.RateLimitBurst,
	})
	r.SetTrustedProxies([]string{"127.0.0.1"})

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		utils.InfoLogger.Printf("Listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.ErrorLogger.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		utils.ErrorLogger.Printf("Server shutdown error: %v", err)
	}
	utils.InfoLogger.Println("Server stopped")
}

func autoMigrate(db *gorm.DB) {
	err := db.AutoMigrate(
		&models.Category{},
		&models.CategoryPrice{},
		&models.Table{},
		&models.Customer{},
		&models.TableSession{},
		&models.Payment{},
	)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
}
