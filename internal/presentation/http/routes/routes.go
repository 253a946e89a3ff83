package routes

import (
	"github.com/gin-gonic/gin"

	"restaurant-billing/internal/config"
	"restaurant-billing/internal/presentation/http/handler"
	"restaurant-billing/internal/presentation/http/middleware"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Menu    *handler.MenuHandler
	Order   *handler.OrderHandler
	Bill    *handler.BillHandler
	Payment *handler.PaymentHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	Cfg *config.Config
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		rateLimiter := middleware.NewIPRateLimiter(&deps.Cfg.RateLimit)
		v1.Use(rateLimiter.Middleware())

		registerMenuRoutes(v1, h)
		registerOrderRoutes(v1, h)
		registerReportRoutes(v1, h)
		registerPaymentRoutes(v1, h)
		registerPrinterRoutes(v1, h)
	}

	return router
}

func registerMenuRoutes(v1 *gin.RouterGroup, h *Handlers) {
	menu := v1.Group("/menu")
	{
		menu.GET("", h.Menu.List)
		menu.POST("", h.Menu.Create)
		menu.GET("/:id", h.Menu.Get)
		menu.PUT("/:id", h.Menu.Update)
		menu.DELETE("/:id", h.Menu.Delete)
	}
}

func registerOrderRoutes(v1 *gin.RouterGroup, h *Handlers) {
	orders := v1.Group("/orders")
	{
		orders.GET("", h.Order.List)
		orders.POST("", h.Order.Create)
		orders.GET("/:id", h.Order.Get)
		orders.POST("/:id/lines", h.Order.AddLine)
		orders.PATCH("/:id/status", h.Order.UpdateStatus)
		orders.PATCH("/:id/pay", h.Order.Pay)
		orders.GET("/:id/bill", h.Bill.Get)
	}
}

func registerReportRoutes(v1 *gin.RouterGroup, h *Handlers) {
	reports := v1.Group("/reports")
	{
		reports.GET("/daily", h.Bill.DailyReport)
	}
}

func registerPaymentRoutes(v1 *gin.RouterGroup, h *Handlers) {
	payments := v1.Group("/payments")
	{
		payments.GET("/config", h.Payment.Config)
		payments.POST("/intent", h.Payment.CreateIntent)
		payments.POST("/confirm", h.Payment.Confirm)
	}
}

func registerPrinterRoutes(v1 *gin.RouterGroup, h *Handlers) {
	printerGroup := v1.Group("/printer")
	{
		printerGroup.GET("/status", h.Bill.PrinterStatus)
	}
}
