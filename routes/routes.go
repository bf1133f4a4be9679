package routes

import (
	"journal-editorial-api/controllers"
	"journal-editorial-api/middleware"
	"journal-editorial-api/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			// Authentication
			public.POST("/login", controllers.Login)

			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Journal Editorial API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// User profile
			protected.GET("/profile", controllers.GetProfile)
			protected.PUT("/change-password", controllers.ChangePassword)

			// Common endpoints (all authenticated users)
			protected.GET("/workflow-stages", controllers.GetWorkflowStages)

			// Submissions
			submissions := protected.Group("/submissions")
			{
				// Authors see their own submissions; managers see everything
				submissions.GET("", controllers.GetSubmissions)
				submissions.GET("/:id", controllers.GetSubmission)
				submissions.PUT("/:id/steps/:step", controllers.SaveSubmissionStep)
				submissions.POST("/:id/finalize", controllers.FinalizeSubmission)
				submissions.DELETE("/:id", controllers.DeleteSubmission)
				submissions.GET("/:id/event-log", controllers.GetSubmissionEventLog)

				// Participants
				submissions.GET("/:id/participants", controllers.GetParticipants)
				submissions.POST("/:id/participants",
					middleware.RequireRole(models.RoleManager, models.RoleSubEditor),
					controllers.AddParticipant)

				// Review assignments
				submissions.GET("/:id/reviewers", controllers.GetReviewerGrid)
				submissions.POST("/:id/reviewers",
					middleware.RequireRole(models.RoleManager, models.RoleSubEditor),
					controllers.InviteReviewer)
			}

			// Review assignment lifecycle
			reviews := protected.Group("/reviews")
			{
				// Reviewer responses
				reviews.POST("/:reviewId/accept", controllers.AcceptReview)
				reviews.POST("/:reviewId/decline", controllers.DeclineReview)
				reviews.POST("/:reviewId/submit", controllers.SubmitReview)

				// Editor actions
				reviews.POST("/:reviewId/confirm",
					middleware.RequireRole(models.RoleManager, models.RoleSubEditor),
					controllers.ConfirmReview)
				reviews.POST("/:reviewId/thank",
					middleware.RequireRole(models.RoleManager, models.RoleSubEditor),
					controllers.ThankReviewer)
				reviews.POST("/:reviewId/cancel",
					middleware.RequireRole(models.RoleManager, models.RoleSubEditor),
					controllers.CancelReview)
			}

			// Notifications
			notifications := protected.Group("/notifications")
			{
				notifications.GET("", controllers.GetNotifications)
				notifications.GET("/unread-count", controllers.GetUnreadNotificationCount)
				notifications.PUT("/:id/read", controllers.MarkNotificationRead)
			}
		}
	}
}
