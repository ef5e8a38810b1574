package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"mio/api"
	"mio/config"
	"mio/database"
	"mio/middleware"
	"mio/models"
	"mio/repository"
	"mio/services"

	"gorm.io/gorm"
)

func main() {
	// Load application configuration
	config.LoadConfig()

	// Initialize database connection
	db, err := database.Init()
	if err != nil {
		log.Fatalf("FATAL: [Main] Failed to initialize database: %v", err)
	}

	// Auto-migrate database schema
	runMigrations(db)

	// Initialize Repositories
	protocolRepo := repository.NewProtocolRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	resultRepo := repository.NewAssessmentResultRepository(db)
	outbox := repository.NewNotificationOutbox()
	log.Println("INFO: [Main] Repositories initialized.")

	// Initialize Services
	classificationService := services.NewClassificationService(resultRepo)
	catalogService := services.NewProtocolCatalogService(protocolRepo)
	slotService := services.NewSlotService(assignmentRepo, protocolRepo)
	notifier := services.NewOutboxNotifier(outbox)
	completionService := services.NewCompletionService(assignmentRepo, protocolRepo, notifier)
	progressService := services.NewProgressService(assignmentRepo, protocolRepo)
	recommendationService := services.NewRecommendationService(protocolRepo, resultRepo, slotService)
	log.Println("INFO: [Main] Services initialized.")

	// Seed the built-in protocol catalog unless disabled in config.
	if config.AppConfig.SeedProtocolCatalog {
		if err := catalogService.SeedDefaults(); err != nil {
			log.Fatalf("FATAL: [Main] Failed to seed protocol catalog: %v", err)
		}
	}

	// Initialize API Handler with all dependencies
	apiHandler := api.NewAPIHandler(
		classificationService,
		catalogService,
		slotService,
		completionService,
		progressService,
		recommendationService,
		outbox,
	)
	log.Println("INFO: [Main] API Handler initialized.")

	// Create Gin engine
	r := gin.Default()

	r.SetTrustedProxies(nil)

	// Register middlewares
	r.Use(middleware.Logger())
	r.Use(middleware.Cors())
	log.Println("INFO: [Main] Middlewares registered.")

	// Register routes
	registerRoutes(r, apiHandler)
	log.Println("INFO: [Main] Routes registered.")

	// Start the server
	serverPort := ":" + config.AppConfig.Server.Port
	if config.AppConfig.Server.Port == "" {
		log.Println("WARN: [Main] Server port not configured, using default :8080.")
		serverPort = ":8080"
	}
	log.Printf("INFO: [Main] Starting server on port %s", serverPort)
	if err := r.Run(serverPort); err != nil {
		log.Fatalf("FATAL: [Main] Server failed to start: %v", err)
	}
}

func runMigrations(db *gorm.DB) {
	log.Println("INFO: [Main] Running database migrations...")
	err := db.AutoMigrate(
		&models.AssessmentResult{},
		&models.Protocol{},
		&models.ProtocolTask{},
		&models.Assignment{},
	)
	if err != nil {
		log.Fatalf("FATAL: [Main] Failed to auto-migrate database: %v", err)
	}
	log.Println("INFO: [Main] Database migration completed.")
}

func registerRoutes(r *gin.Engine, handler *api.APIHandler) {
	// API route group
	apiGroup := r.Group("/api")
	{
		// Assessment related endpoints
		assessmentGroup := apiGroup.Group("/assessment")
		{
			assessmentGroup.GET("/questions", handler.GetQuestionsHandler)
			assessmentGroup.POST("/classify", handler.ClassifyHandler)
			assessmentGroup.GET("/user/:userID", handler.GetLatestResultHandler)
		}

		// Assignment related endpoints
		assignmentGroup := apiGroup.Group("/assignment")
		{
			assignmentGroup.POST("", handler.AssignHandler)
			assignmentGroup.POST("/auto", handler.AutoAssignHandler)
			assignmentGroup.POST("/:assignmentID/complete", handler.CompleteTaskHandler)
			assignmentGroup.GET("/:assignmentID/progress", handler.GetProgressHandler)
		}

		// Per-user views
		userGroup := apiGroup.Group("/user")
		{
			userGroup.GET("/:userID/assignments", handler.GetUserAssignmentsHandler)
			userGroup.GET("/:userID/history", handler.GetAssignmentHistoryHandler)
			userGroup.GET("/:userID/notifications", handler.GetNotificationsHandler)
		}

		// Protocol catalog endpoints
		protocolGroup := apiGroup.Group("/protocol")
		{
			protocolGroup.GET("", handler.ListProtocolsHandler)
			protocolGroup.GET("/:protocolID", handler.GetProtocolHandler)
		}
	}
}
