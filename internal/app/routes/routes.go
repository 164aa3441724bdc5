package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/surgitrack/surgitrack/internal/app/controllers"
	"github.com/surgitrack/surgitrack/internal/app/models"
	"github.com/surgitrack/surgitrack/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	submissionController *controllers.SubmissionController,
	clinicalSubController *controllers.ClinicalSubController,
	eventController *controllers.EventController,
	authMiddleware *middleware.AuthMiddleware,
) {
	// API version group
	v1 := router.Group("/api/v1")

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/login", authController.Login)
		auth.POST("/refresh", authController.Refresh)
	}

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		authenticated.GET("/auth/profile", authController.Profile)

		// Operative submission routes
		submissions := authenticated.Group("/submissions")
		{
			submissions.POST("", submissionController.Create)
			submissions.GET("", submissionController.List)
			submissions.GET("/:id", submissionController.GetByID)

			// Review is the supervisor's decision, one time only.
			submissions.PUT("/:id/review", submissionController.Review)

			submissionsAdmin := submissions.Group("")
			submissionsAdmin.Use(authMiddleware.RoleRequired(models.RoleInstituteAdmin, models.RoleSuperAdmin))
			{
				submissionsAdmin.DELETE("/:id", submissionController.Delete)
			}
		}

		// Clinical activity submission routes
		clinicalSubs := authenticated.Group("/clinical-subs")
		{
			clinicalSubs.POST("", clinicalSubController.Create)
			clinicalSubs.GET("", clinicalSubController.List)
			clinicalSubs.GET("/:id", clinicalSubController.GetByID)
			clinicalSubs.PATCH("/:id", clinicalSubController.Update)

			clinicalSubsAdmin := clinicalSubs.Group("")
			clinicalSubsAdmin.Use(authMiddleware.RoleRequired(models.RoleInstituteAdmin, models.RoleSuperAdmin))
			{
				clinicalSubsAdmin.DELETE("/:id", clinicalSubController.Delete)
			}
		}

		// Academic event and attendance routes
		events := authenticated.Group("/events")
		{
			events.GET("", eventController.List)
			events.GET("/:id", eventController.GetByID)
			events.GET("/:id/attendance", eventController.ListAttendance)
			events.POST("/:id/attendance", eventController.AddAttendance)

			eventsStaff := events.Group("")
			eventsStaff.Use(authMiddleware.RoleRequired(
				models.RoleSupervisor, models.RoleClerk,
				models.RoleInstituteAdmin, models.RoleSuperAdmin,
			))
			{
				eventsStaff.POST("", eventController.Create)
				eventsStaff.DELETE("/:id/attendance/:candDocId", eventController.RemoveAttendance)
				eventsStaff.PUT("/:id/attendance/:candDocId/flag", eventController.FlagAttendance)
				eventsStaff.PUT("/:id/attendance/:candDocId/unflag", eventController.UnflagAttendance)
			}

			eventsAdmin := events.Group("")
			eventsAdmin.Use(authMiddleware.RoleRequired(models.RoleInstituteAdmin, models.RoleSuperAdmin))
			{
				eventsAdmin.DELETE("/:id", eventController.Delete)
			}
		}

		authenticated.GET("/candidates/:candDocId/points", eventController.CandidatePoints)
	}
}
