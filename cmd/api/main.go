package main

import (
	_ "backend/api/swagger" // swagger docs
	"backend/internal/config"
	"backend/internal/database"
	"backend/internal/handler"
	"backend/internal/middleware"
	"backend/internal/notification"
	"backend/internal/repository"
	"backend/internal/service"
	"backend/internal/websocket"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Branch Performance API
// @version         1.0
// @description     Multi-branch performance reporting, financial reconciliation and wastage anomaly detection.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	cfg := config.Load()

	db, err := database.NewConnection(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Notification channels: dashboard always, webhook only when configured
	channels := []notification.Channel{notification.NewDashboardChannel(wsHub)}
	if cfg.WebhookURL != "" {
		channels = append(channels, notification.NewWebhookChannel(cfg.WebhookURL, 10*time.Second))
	}
	dispatcher := notification.NewDispatcher(channels...)

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	branchRepo := repository.NewBranchRepository(db)
	reportRepo := repository.NewReportRepository(db)
	settlementRepo := repository.NewSettlementRepository(db)
	reconRepo := repository.NewReconciliationRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	userService := service.NewUserService(userRepo)
	leaderboardService := service.NewLeaderboardService(reportRepo, cfg.QueryTimeout)
	reconciliationService := service.NewReconciliationService(reportRepo, branchRepo, reconRepo, auditRepo, dispatcher, cfg.Thresholds, cfg.QueryTimeout)
	wastageService := service.NewWastageService(reportRepo, branchRepo, cfg.Thresholds, cfg.QueryTimeout)
	settlementService := service.NewSettlementService(db, settlementRepo, branchRepo, auditRepo, txManager, dispatcher)

	// Initialize Handlers
	authHandler := handler.NewAuthHandler(userService)
	reportHandler := handler.NewReportHandler(leaderboardService, reconciliationService, wastageService)
	settlementHandler := handler.NewSettlementHandler(settlementService)
	branchHandler := handler.NewBranchHandler(branchRepo)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:5174"} // Frontend URL
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint for live dashboard events
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Register API Routes
	authHandler.RegisterRoutes(router.Group(""))
	reportHandler.RegisterRoutes(router.Group(""))
	settlementHandler.RegisterRoutes(router.Group(""))
	branchHandler.RegisterRoutes(router.Group(""))

	log.Printf("Server listening on :%s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
