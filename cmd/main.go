package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"storefront-service/internal/config"
	"storefront-service/internal/events"
	"storefront-service/internal/handlers"
	"storefront-service/internal/metrics"
	"storefront-service/internal/middleware"
	"storefront-service/internal/payments"
	"storefront-service/internal/repository"
)

// @title Storefront API
// @version 1.0.0
// @description Quick-commerce grocery storefront: catalog, carts, orders and inventory uploads

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api

// @securityDefinitions.bearer BearerAuth
// @in header
// @name Authorization

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := config.Load()

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if cfg.Environment == "production" {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(logrus.DebugLevel)
	}

	// Redis is optional: with it unavailable, reads go straight to Postgres
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Printf("WARNING: Failed to parse Redis URL: %v (continuing without Redis)", err)
		redisOpts = &redis.Options{Addr: "localhost:6379"}
	}
	redisClient := redis.NewClient(redisOpts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("WARNING: Failed to connect to Redis: %v (caching will be disabled)", err)
	} else {
		log.Println("✓ Redis connected successfully")
	}
	cancel()

	// Event publisher is nil (and silently disabled) when NATS_URL is unset
	eventsPublisher, err := events.NewPublisher(cfg.NATSURL, logger)
	if err != nil {
		log.Printf("WARNING: Failed to initialize events publisher: %v (continuing without event publishing)", err)
	} else if eventsPublisher != nil {
		log.Println("✓ Events publisher initialized (NATS connected)")
	} else {
		log.Println("NATS_URL not set, skipping event publishing initialization")
	}
	defer eventsPublisher.Close()

	var gateway *payments.RazorpayGateway
	if cfg.RazorpayKeyID != "" && cfg.RazorpayKeySecret != "" {
		gateway = payments.NewRazorpayGateway(cfg.RazorpayKeyID, cfg.RazorpayKeySecret, logger)
		log.Println("✓ Razorpay gateway initialized")
	} else {
		log.Println("Razorpay credentials not set, online payments disabled (COD only)")
	}

	// Repositories
	categoryCache := repository.NewCategoryCache(repository.CategoryCacheTTL)
	productsRepo := repository.NewProductRepository(db, redisClient, logger)
	categoriesRepo := repository.NewCategoryRepository(db, categoryCache, logger)
	bannersRepo := repository.NewBannerRepository(db)
	cartsRepo := repository.NewCartRepository(db)
	ordersRepo := repository.NewOrderRepository(db, redisClient, logger)
	inventoryRepo := repository.NewInventoryRepository(db, redisClient, logger)

	// Handlers
	productsHandler := handlers.NewProductsHandler(productsRepo)
	categoriesHandler := handlers.NewCategoriesHandler(categoriesRepo)
	bannersHandler := handlers.NewBannersHandler(bannersRepo)
	cartHandler := handlers.NewCartHandler(cartsRepo, productsRepo)
	ordersHandler := handlers.NewOrdersHandler(ordersRepo, productsRepo, cartsRepo, gateway, eventsPublisher, logger)
	paymentsHandler := handlers.NewPaymentsHandler(ordersRepo, gateway, logger)
	inventoryHandler := handlers.NewInventoryHandler(productsRepo, categoriesRepo, inventoryRepo, eventsPublisher, logger)

	httpMetrics := metrics.NewHTTPMetrics("storefront-service")
	log.Println("✓ Prometheus metrics initialized")

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(httpMetrics.Middleware())
	router.Use(middleware.CORS(cfg.AllowedOrigins))

	// Health and observability endpoints (no auth required)
	router.GET("/health", handlers.HealthCheck)
	router.GET("/ready", handlers.ReadinessCheck)
	router.GET("/metrics", gin.WrapH(metrics.GetPrometheusHandler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Public storefront routes
	api := router.Group("/api")
	{
		api.GET("/products", productsHandler.ListProducts(true))
		api.GET("/products/:slug", productsHandler.GetProductBySlug)
		api.GET("/categories", categoriesHandler.ListCategories)
		api.GET("/banners", bannersHandler.ListBanners)

		cart := api.Group("/cart")
		{
			cart.GET("", cartHandler.GetCart)
			cart.POST("/items", cartHandler.AddItem)
			cart.PUT("/items/:productId", cartHandler.UpdateItem)
			cart.DELETE("/items/:productId", cartHandler.RemoveItem)
		}

		api.POST("/orders", ordersHandler.PlaceOrder)
		api.GET("/orders/:orderNumber", ordersHandler.GetOrder)
		api.GET("/orders/:orderNumber/status", ordersHandler.GetOrderStatus)
		api.POST("/payments/verify", paymentsHandler.VerifyPayment)
	}

	// Admin back-office routes
	admin := router.Group("/api/admin")
	admin.Use(middleware.AdminAuth(cfg.JWTSecret))
	{
		admin.GET("/products", productsHandler.ListProducts(false))
		admin.POST("/products", productsHandler.CreateProduct)
		admin.PUT("/products/:id", productsHandler.UpdateProduct)
		admin.DELETE("/products/:id", productsHandler.DeleteProduct)

		admin.GET("/categories", categoriesHandler.ListAllCategories)
		admin.POST("/categories", categoriesHandler.CreateCategory)
		admin.PUT("/categories/:id", categoriesHandler.UpdateCategory)
		admin.DELETE("/categories/:id", categoriesHandler.DeleteCategory)

		admin.GET("/banners", bannersHandler.ListAllBanners)
		admin.POST("/banners", bannersHandler.CreateBanner)
		admin.PUT("/banners/:id", bannersHandler.UpdateBanner)
		admin.DELETE("/banners/:id", bannersHandler.DeleteBanner)

		admin.GET("/orders", ordersHandler.ListOrders)
		admin.PUT("/orders/:id/status", ordersHandler.UpdateOrderStatus)
		admin.GET("/stats", ordersHandler.GetOrderStats)

		inventory := admin.Group("/inventory")
		{
			inventory.POST("/upload", inventoryHandler.UploadInventory)
			inventory.GET("/upload", inventoryHandler.ListUploadLogs)
			inventory.GET("/upload/template", inventoryHandler.GetImportTemplate)
			inventory.GET("/snapshots", inventoryHandler.ListSnapshots)
			inventory.POST("/rollback/:snapshotId", inventoryHandler.Rollback)
		}
	}

	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Storefront service starting on port %s", port)
		if err := router.Run(":" + port); err != nil {
			log.Fatal("Failed to start server:", err)
		}
	}()

	<-quit
	log.Println("Shutting down storefront-service...")
	log.Println("Storefront service stopped")
}
