package router

import (
	"log"

	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/slugbase/slugbase/internal/handlers"
	"github.com/slugbase/slugbase/internal/middleware"
	"github.com/slugbase/slugbase/internal/models"
	"github.com/slugbase/slugbase/internal/repositories"
	"gorm.io/gorm"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	log.Println("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, db *gorm.DB) {
	// AutoMigrate models
	err := db.AutoMigrate(
		&models.User{},
		&models.Team{},
		&models.TeamMember{},
		&models.Bookmark{},
		&models.Folder{},
		&models.Tag{},
		&models.BookmarkFolder{},
		&models.BookmarkTag{},
		&models.BookmarkUserShare{},
		&models.BookmarkTeamShare{},
		&models.FolderUserShare{},
		&models.FolderTeamShare{},
	)
	if err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}
	log.Println("Auto-migrations completed for all models.")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewGormUserRepository(db)
	teamRepo := repositories.NewGormTeamRepository(db)
	bookmarkRepo := repositories.NewGormBookmarkRepository(db)
	folderRepo := repositories.NewGormFolderRepository(db)
	tagRepo := repositories.NewGormTagRepository(db)
	dashboardRepo := repositories.NewGormDashboardRepository(db)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	authHandler := handlers.NewAuthHandler(userRepo)
	authHandler.RegisterAuthRoutes(authGroup)
	log.Println("Auth routes configured.")

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware())
	log.Println("JWT authentication middleware applied to /api/v1 group.")

	// User profile routes
	userHandler := handlers.NewUserHandler(userRepo)
	userHandler.RegisterProfileRoutes(api)
	log.Println("User profile routes configured.")

	// Bookmark routes
	bookmarkHandler := handlers.NewBookmarkHandler(bookmarkRepo, teamRepo)
	bookmarkHandler.RegisterBookmarkRoutes(api)
	log.Println("Bookmark routes configured.")

	// Folder routes
	folderHandler := handlers.NewFolderHandler(folderRepo, teamRepo)
	folderHandler.RegisterFolderRoutes(api)
	log.Println("Folder routes configured.")

	// Tag routes
	tagHandler := handlers.NewTagHandler(tagRepo)
	tagHandler.RegisterTagRoutes(api)
	log.Println("Tag routes configured.")

	// Team routes
	teamHandler := handlers.NewTeamHandler(teamRepo, userRepo)
	teamHandler.RegisterTeamRoutes(api)
	log.Println("Team routes configured.")

	// Dashboard routes
	dashboardHandler := handlers.NewDashboardHandler(dashboardRepo, teamRepo)
	dashboardHandler.RegisterDashboardRoutes(api)
	log.Println("Dashboard routes configured.")

	// Public forwarding route; must register last so it does not
	// shadow the fixed-path routes above.
	forwardHandler := handlers.NewForwardHandler(bookmarkRepo)
	forwardHandler.RegisterForwardRoutes(e)
	log.Println("Forwarding route configured.")

	log.Println("All routes configured.")
}
