package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dkoroteev/eventcrew-backend/internal/config"
	"github.com/dkoroteev/eventcrew-backend/internal/http/handlers"
	"github.com/dkoroteev/eventcrew-backend/internal/http/middleware"
	"github.com/dkoroteev/eventcrew-backend/internal/models"
	"github.com/dkoroteev/eventcrew-backend/internal/service"
)

// SetupRouter собирает все маршруты приложения.
func SetupRouter(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	profileHandler *handlers.ProfileHandler,
	bookingHandler *handlers.BookingHandler,
	disputeHandler *handlers.DisputeHandler,
	reviewHandler *handlers.ReviewHandler,
	messageHandler *handlers.MessageHandler,
	notificationHandler *handlers.NotificationHandler,
	mediaHandler *handlers.MediaHandler,
	wsHandler *handlers.WSHandler,
	healthHandler *handlers.HealthHandler,
	tokenManager *service.TokenManager,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)
	r.StaticFS("/media", http.Dir(cfg.MediaStoragePath))

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod))
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
	}

	protectedAuth := api.Group("/auth")
	protectedAuth.Use(middleware.AuthMiddleware(tokenManager))
	{
		protectedAuth.POST("/logout", authHandler.Logout)
		protectedAuth.GET("/sessions", authHandler.ListSessions)
		protectedAuth.DELETE("/sessions/:id", middleware.UUIDValidator("id"), authHandler.DeleteSession)
		protectedAuth.DELETE("/sessions", authHandler.DeleteAllSessionsExcept)
	}

	// Публичные маршруты
	api.GET("/ws", wsHandler.Handle)
	api.GET("/users/:id", middleware.UUIDValidator("id"), profileHandler.GetUser)
	api.GET("/users/:id/reviews", middleware.UUIDValidator("id"), reviewHandler.ListUserReviews)
	api.GET("/users/:id/reviews/stats", middleware.UUIDValidator("id"), reviewHandler.Stats)
	api.GET("/technicians/search", profileHandler.SearchTechnicians)
	api.GET("/technicians/:id", middleware.UUIDValidator("id"), profileHandler.GetTechnicianProfile)
	api.GET("/companies/:id", middleware.UUIDValidator("id"), profileHandler.GetCompanyProfile)

	// Защищённые маршруты
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	{
		protected.POST("/profile/technician", profileHandler.CreateTechnicianProfile)
		protected.PUT("/profile/technician", profileHandler.UpdateTechnicianProfile)
		protected.POST("/profile/company", profileHandler.CreateCompanyProfile)
		protected.PUT("/profile/company", profileHandler.UpdateCompanyProfile)

		protected.POST("/bookings", middleware.RequireRole(models.RoleCompany), bookingHandler.Create)
		protected.GET("/bookings", bookingHandler.List)
		protected.GET("/bookings/:id", middleware.UUIDValidator("id"), bookingHandler.Get)
		protected.PUT("/bookings/:id", middleware.UUIDValidator("id"), bookingHandler.Update)
		protected.POST("/bookings/:id/assign", middleware.UUIDValidator("id"), bookingHandler.Assign)
		protected.POST("/bookings/:id/accept", middleware.UUIDValidator("id"), bookingHandler.Accept)
		protected.POST("/bookings/:id/start", middleware.UUIDValidator("id"), bookingHandler.Start)
		protected.POST("/bookings/:id/complete", middleware.UUIDValidator("id"), bookingHandler.Complete)
		protected.POST("/bookings/:id/cancel", middleware.UUIDValidator("id"), bookingHandler.Cancel)

		protected.POST("/bookings/:id/messages", middleware.UUIDValidator("id"), messageHandler.Send)
		protected.GET("/bookings/:id/messages", middleware.UUIDValidator("id"), messageHandler.List)
		protected.PUT("/bookings/:id/messages/read", middleware.UUIDValidator("id"), messageHandler.MarkRead)
		protected.GET("/messages/unread/count", messageHandler.CountUnread)

		protected.POST("/bookings/:id/disputes", middleware.UUIDValidator("id"), disputeHandler.Create)
		protected.GET("/disputes", disputeHandler.ListMy)
		protected.GET("/disputes/:id", middleware.UUIDValidator("id"), disputeHandler.Get)

		protected.POST("/bookings/:id/reviews", middleware.UUIDValidator("id"), reviewHandler.Create)
		protected.POST("/reviews/:id/response", middleware.UUIDValidator("id"), reviewHandler.Respond)
		protected.DELETE("/reviews/:id", middleware.UUIDValidator("id"), reviewHandler.Delete)

		protected.GET("/notifications", notificationHandler.List)
		protected.PUT("/notifications/read", notificationHandler.MarkRead)
		protected.GET("/notifications/unread/count", notificationHandler.CountUnread)

		protected.POST("/media", mediaHandler.Upload)
		protected.GET("/media", mediaHandler.ListMine)
		protected.DELETE("/media/:id", middleware.UUIDValidator("id"), mediaHandler.Delete)
	}

	// Административные маршруты
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(tokenManager), middleware.RequireRole(models.RoleAdmin))
	{
		admin.GET("/disputes", disputeHandler.ListAll)
		admin.PUT("/disputes/:id/status", middleware.UUIDValidator("id"), disputeHandler.UpdateStatus)
		admin.DELETE("/users/:id", middleware.UUIDValidator("id"), profileHandler.DeactivateUser)
	}

	return r
}
