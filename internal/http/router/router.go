package router

import (
	"github.com/gin-gonic/gin"

	"github.com/maslovdev/jobmarket-backend/internal/config"
	"github.com/maslovdev/jobmarket-backend/internal/http/handlers"
	"github.com/maslovdev/jobmarket-backend/internal/http/middleware"
	"github.com/maslovdev/jobmarket-backend/internal/service"
)

func SetupRouter(
	cfg *config.Config,
	jobHandler *handlers.JobHandler,
	responseHandler *handlers.ResponseHandler,
	assignmentHandler *handlers.AssignmentHandler,
	ledgerHandler *handlers.LedgerHandler,
	ratingHandler *handlers.RatingHandler,
	userHandler *handlers.UserHandler,
	healthHandler *handlers.HealthHandler,
	tokenManager *service.TokenManager,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)

	api := r.Group("/api")
	api.Use(middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod))

	// Публичные маршруты
	api.GET("/users/:id", middleware.UUIDValidator("id"), userHandler.GetUser)
	api.GET("/users/:id/ratings", middleware.UUIDValidator("id"), ratingHandler.ListUserRatings)
	api.GET("/users/:id/ratings/summary", middleware.UUIDValidator("id"), ratingHandler.UserRatingSummary)

	// Защищённые маршруты
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	{
		protected.POST("/jobs", jobHandler.CreateJob)
		protected.GET("/jobs/my", jobHandler.ListMyJobs)
		protected.GET("/jobs/available", jobHandler.ListAvailableJobs)
		protected.GET("/jobs/:id", middleware.UUIDValidator("id"), jobHandler.GetJob)
		protected.PUT("/jobs/:id", middleware.UUIDValidator("id"), jobHandler.UpdateJob)
		protected.DELETE("/jobs/:id", middleware.UUIDValidator("id"), jobHandler.DeleteJob)
		protected.POST("/jobs/:id/status", middleware.UUIDValidator("id"), jobHandler.TransitionStatus)

		protected.POST("/jobs/:id/responses", middleware.UUIDValidator("id"), responseHandler.CreateResponse)
		protected.GET("/jobs/:id/responses", middleware.UUIDValidator("id"), responseHandler.ListJobResponses)
		protected.GET("/responses/my", responseHandler.ListMyResponses)
		protected.PUT("/responses/:id", middleware.UUIDValidator("id"), responseHandler.UpdateResponse)
		protected.POST("/responses/:id/withdraw", middleware.UUIDValidator("id"), responseHandler.WithdrawResponse)
		protected.POST("/responses/:id/accept", middleware.UUIDValidator("id"), responseHandler.AcceptResponse)

		protected.GET("/assignments/my", assignmentHandler.ListMyAssignments)
		protected.GET("/assignments/:id", middleware.UUIDValidator("id"), assignmentHandler.GetAssignment)
		protected.PATCH("/assignments/:id/notes", middleware.UUIDValidator("id"), assignmentHandler.UpdateNotes)
		protected.GET("/jobs/:id/assignment", middleware.UUIDValidator("id"), assignmentHandler.GetJobAssignment)

		protected.POST("/assignments/:id/settle", middleware.UUIDValidator("id"), ledgerHandler.SettleAssignment)
		protected.GET("/transactions", ledgerHandler.ListTransactions)
		protected.GET("/earnings", ledgerHandler.ListEarnings)
		protected.GET("/earnings/summary", ledgerHandler.EarningsSummary)

		protected.POST("/assignments/:id/ratings", middleware.UUIDValidator("id"), ratingHandler.SubmitRating)
		protected.GET("/assignments/:id/ratings", middleware.UUIDValidator("id"), ratingHandler.ListAssignmentRatings)
		protected.GET("/assignments/:id/can-rate", middleware.UUIDValidator("id"), ratingHandler.CanRate)
		protected.PUT("/ratings/:id", middleware.UUIDValidator("id"), ratingHandler.UpdateRating)
		protected.POST("/ratings/:id/helpful", middleware.UUIDValidator("id"), ratingHandler.MarkHelpful)
		protected.DELETE("/ratings/:id/helpful", middleware.UUIDValidator("id"), ratingHandler.RemoveHelpful)
	}

	return r
}
