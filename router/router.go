package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/yeremiapane/venue-app/controllers"
	"github.com/yeremiapane/venue-app/events"
	"github.com/yeremiapane/venue-app/kds"
	"github.com/yeremiapane/venue-app/middlewares"
	"github.com/yeremiapane/venue-app/services"
	"gorm.io/gorm"
)

const PriceCachePrefix = "prices"

// Deps adalah dependency opsional router; nilai kosong tetap bisa dipakai
type Deps struct {
	Hub        *kds.Hub
	Sessions   *services.SessionService
	Publisher  events.Publisher
	Redis      *redis.Client
	CacheTTL   time.Duration
	CORSOrigin string
	RateRPS    float64
	RateBurst  int
}

func SetupRouter(db *gorm.DB, deps Deps) *gin.Engine {
	if deps.Hub == nil {
		deps.Hub = kds.NewHub()
	}
	if deps.Sessions == nil {
		deps.Sessions = services.NewSessionService(db, deps.Hub, deps.Publisher)
	}
	if deps.RateRPS <= 0 {
		deps.RateRPS = 50
	}
	if deps.RateBurst <= 0 {
		deps.RateBurst = 10
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.LoggerMiddleware())

	// Apply security middlewares
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(deps.CORSOrigin))
	r.Use(middlewares.NewRateLimiter(deps.RateRPS, deps.RateBurst*5).RateLimit())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	tableController := controllers.NewTableController(db, deps.Hub)
	categoryController := controllers.NewCategoryController(db, deps.Redis, PriceCachePrefix)
	billingController := controllers.NewBillingController(services.NewBillingService(db))
	sessionController := controllers.NewSessionController(deps.Sessions)
	customerController := controllers.NewCustomerController(services.NewCustomerService(db))
	adminController := controllers.NewAdminController(db)

	api := r.Group("/api")
	{
		api.GET("/tables", tableController.GetAllTables)
		api.POST("/tables", tableController.CreateTable)
		api.GET("/tables/:table_uuid/prices",
			middlewares.ResponseCache(deps.Redis, PriceCachePrefix, deps.CacheTTL),
			tableController.GetTablePrices)

		api.GET("/categories", categoryController.GetCategories)
		api.POST("/categories", categoryController.CreateCategory)
		api.POST("/categories/:category_uuid/prices", categoryController.CreatePrice)

		api.POST("/billing/preview", billingController.Preview)

		sessions := api.Group("/sessions")
		sessions.Use(middlewares.MutationRateLimiter(deps.RateRPS, deps.RateBurst))
		{
			sessions.POST("/book", sessionController.BookSession)
			sessions.POST("/start", sessionController.StartSession)
			sessions.POST("/recharge", sessionController.RechargeSession)
			sessions.POST("/stop", sessionController.StopSession)
		}

		api.GET("/customers/search", customerController.SearchCustomers)
		api.POST("/customers", customerController.CreateCustomer)

		api.GET("/dashboard/stats", adminController.GetDashboardStats)

		api.GET("/ws/sessions", controllers.SessionsWSHandler(deps.Hub))
	}

	return r
}
