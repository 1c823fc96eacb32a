package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ward-notes-server/internal/audit"
	"ward-notes-server/internal/config"
	"ward-notes-server/internal/handlers"
	"ward-notes-server/internal/metrics"
	"ward-notes-server/internal/middleware"
	"ward-notes-server/internal/models"
	"ward-notes-server/internal/wards"
)

// Dependencies bundles everything the route handlers need.
type Dependencies struct {
	Cfg      *config.Config
	DBs      *models.Databases
	Manager  *wards.Manager
	Cache    *wards.Cache
	Resolver handlers.PDFResolver
	Audit    *audit.Recorder
	Metrics  *metrics.Collector
	Log      *zap.Logger
}

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, deps Dependencies) {
	authHandler := handlers.NewAuthHandler(deps.DBs.Users, deps.Cfg, deps.Audit)
	wardHandler := handlers.NewWardHandler(deps.Manager, deps.Cache, deps.Resolver, deps.Audit, deps.Log)
	patientHandler := handlers.NewPatientHandler(deps.Manager, deps.Cache, deps.Resolver, deps.DBs.Records, deps.DBs.Users, deps.Audit, deps.Log)
	noteHandler := handlers.NewNoteHandler(deps.DBs.Records, deps.DBs.Users, deps.Metrics, deps.Audit)
	adminHandler := handlers.NewAdminHandler(deps.DBs.Records, deps.DBs.Users, deps.Metrics, deps.Audit, deps.Log)
	auditHandler := handlers.NewAuditHandler(deps.DBs.Audit)

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh-token", authHandler.RefreshToken)
		}
	}

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(deps.Cfg))
	{
		authRoutesPrivate := private.Group("/auth")
		{
			authRoutesPrivate.POST("/logout", authHandler.Logout)
			authRoutesPrivate.GET("/profile", authHandler.GetProfile)
			authRoutesPrivate.PUT("/profile", authHandler.UpdateProfile)
		}

		wardRoutes := private.Group("/wards")
		{
			wardRoutes.GET("", wardHandler.GetWards)
			wardRoutes.GET("/search", wardHandler.SearchWards)
			wardRoutes.GET("/:wardId", wardHandler.GetWard)
			wardRoutes.GET("/:wardId/search", wardHandler.SearchWardPatients)
		}

		patientRoutes := private.Group("/patients")
		{
			patientRoutes.GET("/search", wardHandler.SearchPatients)
			patientRoutes.GET("/recent", patientHandler.GetRecentPatients)
			patientRoutes.GET("/:patientId", patientHandler.GetPatient)
			patientRoutes.GET("/:patientId/notes", patientHandler.GetPatientNotes)
			patientRoutes.POST("/:patientId/notes", noteHandler.AddNote)
		}

		noteRoutes := private.Group("/notes")
		{
			noteRoutes.POST("", noteHandler.AddNote)
			noteRoutes.GET("/my-shift", noteHandler.MyShiftNotes)
		}

		// Reading templates is open to all staff; managing them is admin-only.
		private.GET("/templates", adminHandler.ListTemplates)

		adminRoutes := private.Group("/admin")
		adminRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
		{
			adminRoutes.GET("/notes", adminHandler.ListNotes)
			adminRoutes.GET("/notes/export/:format", adminHandler.ExportNotes)

			adminRoutes.POST("/users", adminHandler.CreateUser)
			adminRoutes.GET("/users", adminHandler.ListUsers)
			adminRoutes.POST("/users/:id/reset-password", adminHandler.ResetPassword)

			adminRoutes.GET("/settings", adminHandler.GetSettings)
			adminRoutes.PUT("/settings", adminHandler.UpdateSettings)

			adminRoutes.POST("/template-categories", adminHandler.CreateCategory)
			adminRoutes.DELETE("/template-categories/:id", adminHandler.DeleteCategory)
			adminRoutes.POST("/templates", adminHandler.CreateTemplate)
			adminRoutes.PUT("/templates/:id", adminHandler.UpdateTemplate)
			adminRoutes.DELETE("/templates/:id", adminHandler.DeleteTemplate)

			adminRoutes.GET("/audit-log", auditHandler.ListAuditLog)
			adminRoutes.POST("/wards/refresh", wardHandler.RefreshWards)
		}
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})

	router.GET("/metrics", metrics.Handler())
}
