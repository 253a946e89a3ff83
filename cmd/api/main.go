package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"restaurant-billing/internal/application/service"
	"restaurant-billing/internal/config"
	"restaurant-billing/internal/domain/entity"
	"restaurant-billing/internal/infrastructure/database"
	"restaurant-billing/internal/infrastructure/mq"
	"restaurant-billing/internal/infrastructure/repository"
	"restaurant-billing/internal/presentation/http/handler"
	"restaurant-billing/internal/presentation/http/routes"
	"restaurant-billing/pkg/printer"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	location := cfg.App.Location()

	// Connect to database
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize repositories
	menuRepo := repository.NewMenuItemRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	// Card payments are optional; without a secret key the engine still
	// settles cash and UPI payments.
	var paymentProvider service.PaymentProvider
	if cfg.Stripe.SecretKey != "" {
		paymentProvider = service.NewStripeProvider(cfg.Stripe.SecretKey)
	} else {
		log.Printf("Warning: STRIPE_SECRET_KEY not set, card payments disabled")
	}

	// The kitchen event publisher is optional as well.
	var publisher mq.Publisher
	if cfg.RabbitMQ.URL != "" {
		client, err := mq.Dial(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			log.Printf("Warning: Failed to connect to RabbitMQ, kitchen events disabled: %v", err)
		} else {
			publisher = client
			defer client.Close()
		}
	}

	// Initialize thermal printer
	thermalPrinter, err := printer.NewPrinterFromConfig(
		cfg.Printer.Type,
		cfg.Printer.USBPath,
		cfg.Printer.Address,
	)
	if err != nil {
		log.Printf("Warning: Failed to initialize printer: %v", err)
		thermalPrinter = printer.NewNullPrinter()
	}

	billHeader := entity.BillHeader{
		RestaurantName: cfg.Billing.RestaurantName,
		Address:        cfg.Billing.Address,
		Phone:          cfg.Billing.Phone,
		GSTIN:          cfg.Billing.GSTIN,
	}

	// Initialize services
	menuService := service.NewMenuService(menuRepo)
	orderService := service.NewOrderService(orderRepo, menuRepo, paymentProvider, publisher)
	billingService := service.NewBillingService(orderRepo, thermalPrinter, cfg.Printer.Type, billHeader, location)
	reportService := service.NewReportService(orderRepo, location)
	paymentService := service.NewPaymentService(paymentProvider, cfg.Billing.Currency, cfg.Stripe.PublishableKey)

	// Initialize handlers
	handlers := &routes.Handlers{
		Menu:    handler.NewMenuHandler(menuService),
		Order:   handler.NewOrderHandler(orderService),
		Bill:    handler.NewBillHandler(billingService, reportService, location),
		Payment: handler.NewPaymentHandler(paymentService),
	}

	// Setup routes
	router := routes.Setup(handlers, &routes.Deps{Cfg: cfg})

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting %s server on port %s...", cfg.App.Name, port)
	log.Printf("Environment: %s", cfg.App.Env)

	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
