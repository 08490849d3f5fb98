package main

import (
	"context"
	"net/http"

	"github.com/mcwa24/bilbord-expo/config"
	"github.com/mcwa24/bilbord-expo/database"
	"github.com/mcwa24/bilbord-expo/handlers"
	"github.com/mcwa24/bilbord-expo/logger"
	"github.com/mcwa24/bilbord-expo/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	if err := config.Load(); err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log, err := logger.Init(config.AppConfig.Environment)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	// Connect to database
	db, err := database.Connect(
		config.AppConfig.DatabaseURL,
		config.AppConfig.ExpiryGrace,
		config.AppConfig.ReorderSettle,
	)
	if err != nil {
		zap.S().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	if err := db.InitializeTables(); err != nil {
		zap.S().Fatalw("failed to initialize tables", "error", err)
	}

	if err := db.SeedAdmin(config.AppConfig.AdminUsername, config.AppConfig.AdminPassword); err != nil {
		zap.S().Fatalw("failed to seed admin user", "error", err)
	}

	// Initialize Cloudinary. The server still starts without it; only
	// uploads are unavailable.
	if config.AppConfig.CloudinaryURL != "" {
		if err := services.InitializeCloudinary(config.AppConfig.CloudinaryURL); err != nil {
			zap.S().Errorw("failed to initialize Cloudinary", "error", err)
		}
	} else {
		zap.S().Warn("CLOUDINARY_URL not set, uploads disabled")
	}

	services.Email = services.NewEmailService(
		config.AppConfig.ResendAPIKey,
		config.AppConfig.EmailFrom,
		config.AppConfig.SiteURL,
	)

	handlers.InitializeHandlers(db)

	// Background expiry sweep
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	services.NewExpirySweeper(db, config.AppConfig.SweepInterval).Start(ctx)

	// Set Gin mode
	if config.AppConfig.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.LoadHTMLGlob("templates/*")

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Bilbord Expo server is running",
		})
	})

	// Public gallery
	router.GET("/", handlers.Gallery)

	// Admin login (no auth required)
	router.POST("/api/admin/login", handlers.AdminLogin)

	// Public read
	router.GET("/api/banners", handlers.GetBanners)

	// Admin API (session token required)
	admin := router.Group("/api")
	admin.Use(handlers.AuthMiddleware())
	{
		admin.POST("/banners", handlers.CreateBanner)
		admin.PUT("/banners/:id", handlers.UpdateBanner)
		admin.DELETE("/banners/:id", handlers.DeleteBanner)
		admin.POST("/banners/reorder", handlers.ReorderBanners)
		admin.POST("/upload", handlers.UploadImage)
		admin.POST("/send-email", handlers.SendEmail)
		admin.GET("/admin/banners/stats", handlers.GetBannerStats)
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: false,
	})

	addr := "0.0.0.0:" + config.AppConfig.ServerPort
	zap.S().Infow("starting server", "addr", addr)
	if err := http.ListenAndServe(addr, c.Handler(router)); err != nil {
		zap.S().Fatalw("server stopped", "error", err)
	}
}
