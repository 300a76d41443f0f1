package main

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/DannyP4/ecommerce-funiro/config"
	checkoutControllers "github.com/DannyP4/ecommerce-funiro/controllers/checkout"
	orderControllers "github.com/DannyP4/ecommerce-funiro/controllers/order"
	"github.com/DannyP4/ecommerce-funiro/events"
	"github.com/DannyP4/ecommerce-funiro/models"
	"github.com/DannyP4/ecommerce-funiro/payment/vnpay"
	"github.com/DannyP4/ecommerce-funiro/routes"
	"github.com/DannyP4/ecommerce-funiro/shipping"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	// Load environment variables
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Init DB
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("Failed to connect DB: %v", err)
	}

	// Auto-migrate all tables
	if err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.DeliveryInfo{},
		&models.StatusEvent{},
	); err != nil {
		log.Fatalf("AutoMigrate failed: %v", err)
	}

	// Order-placed event consumers: the admin websocket feed and a
	// notification log entry per order.
	dispatcher := events.NewDispatcher()
	hub := orderControllers.NewHub()
	dispatcher.Subscribe(hub.HandleOrderPlaced)
	dispatcher.Subscribe(func(e events.OrderPlaced) {
		log.WithFields(logrus.Fields{
			"event_id":       e.EventID,
			"order_id":       e.OrderID,
			"customer_id":    e.CustomerID,
			"payment_method": e.PaymentMethod,
			"total_cost":     e.TotalCost,
		}).Info("order placed")
	})

	policy := shipping.Policy{
		FreeThreshold: cfg.ShippingFreeThreshold,
		FlatFee:       cfg.ShippingFlatFee,
	}

	checkout := &checkoutControllers.Checkout{
		DB: db,
		Gateway: vnpay.New(vnpay.Config{
			TmnCode:    cfg.VNPay.TmnCode,
			HashSecret: cfg.VNPay.HashSecret,
			URL:        cfg.VNPay.URL,
			ReturnURL:  cfg.VNPay.ReturnURL,
			Locale:     cfg.VNPay.Locale,
		}),
		Shipping: policy,
		Events:   dispatcher,
		Log:      log,
	}

	// Gin setup
	r := gin.Default()

	// CORS settings
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-API-KEY"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Session cart and delivery info live in a cookie-backed session
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	r.Use(sessions.Sessions("funiro_session", store))

	routes.SetupRoutes(r, routes.Deps{
		DB:       db,
		Cfg:      cfg,
		Checkout: checkout,
		Hub:      hub,
		Shipping: policy,
	})

	log.Infof("Server running on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
