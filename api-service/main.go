package main

import (
	"log"
	"net/http"
	"strings"

	"taskhive-backend/api-service/handlers"
	"taskhive-backend/api-service/middleware"
	"taskhive-backend/shared/config"
	"taskhive-backend/shared/database"
	"taskhive-backend/shared/utils/cache"

	_ "taskhive-backend/docs/swagger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title TaskHive API
// @version 1.0
// @description Team task management: organizations, projects, todos, members and invitations
// @host localhost:8001
// @BasePath /api
// @schemes http https

// @tag.name todos
// @tag.description Todo hierarchy operations

// @tag.name invitations
// @tag.description Invitation lifecycle operations

// @tag.name organizations
// @tag.description Organization management operations

// @tag.name projects
// @tag.description Project management operations

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT token.

func main() {
	// Load configuration
	config.LoadConfig()
	cfg := config.GetConfig()

	// Initialize database
	if err := database.InitDatabase(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.CloseDatabase()

	// Role cache is optional; resolver falls back to plain DB reads
	if err := cache.InitCacheManager(); err != nil {
		log.Printf("⚠️ Redis unavailable, role cache disabled: %v", err)
	}

	router := SetupRouter(cfg)

	port := strings.Split(cfg.APIServiceURL, ":")[2]
	log.Printf("🐝 API Service starting on port %s...", port)
	log.Fatal(router.Run(":" + port))
}

// SetupRouter builds the full API route tree
func SetupRouter(cfg *config.Config) *gin.Engine {
	router := gin.Default()

	// Add CORS middleware
	router.Use(cors.Default())

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "api",
		})
	})

	api := router.Group("/api")
	if cfg.AuthRequired {
		api.Use(middleware.AuthMiddleware())
	}

	// Todo routes
	api.GET("/todos", handlers.GetTodos)
	api.POST("/todos", handlers.CreateTodo)
	api.PUT("/todos", handlers.UpdateTodo)
	api.DELETE("/todos", handlers.DeleteTodo)
	api.POST("/todos/:id/attachments", handlers.UploadTodoAttachment)

	// Invitation routes
	api.GET("/invitations", handlers.GetInvitations)
	api.GET("/invitations/:id", handlers.GetInvitation)
	api.POST("/invitations", handlers.CreateInvitation)
	api.POST("/invitations/:id/accept", handlers.ProcessInvitation)
	api.DELETE("/invitations", handlers.DeleteInvitation)

	// Organization routes
	api.GET("/organizations", handlers.GetOrganizations)
	api.GET("/organizations/:id", handlers.GetOrganization)
	api.POST("/organizations", handlers.CreateOrganization)
	api.PUT("/organizations/:id", handlers.UpdateOrganization)
	api.DELETE("/organizations/:id", handlers.DeleteOrganization)

	// Project routes
	api.GET("/projects", handlers.GetProjects)
	api.POST("/projects", handlers.CreateProject)
	api.PUT("/projects", handlers.UpdateProject)
	api.DELETE("/projects", handlers.DeleteProject)

	// Organization member routes
	api.GET("/organization-members", handlers.GetOrganizationMembers)
	api.GET("/organization-members/role", handlers.GetOrganizationRole)
	api.POST("/organization-members", handlers.CreateOrganizationMember)
	api.PUT("/organization-members", handlers.UpdateOrganizationMember)
	api.DELETE("/organization-members", handlers.DeleteOrganizationMember)

	// Project member routes
	api.GET("/project-members", handlers.GetProjectMembers)
	api.GET("/project-members/role", handlers.GetProjectRole)
	api.POST("/project-members", handlers.CreateProjectMember)
	api.PUT("/project-members", handlers.UpdateProjectMember)
	api.DELETE("/project-members", handlers.DeleteProjectMember)

	// User routes (read-only)
	api.GET("/users", handlers.GetUsers)
	api.GET("/users/:id", handlers.GetUser)

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return router
}
