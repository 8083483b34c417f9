package routes

import (
	"time"

	"medialeader/config"
	"medialeader/handlers"
	"medialeader/middleware"
	"medialeader/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Deps carries the externally constructed collaborators the routes
// need. Nothing here reaches for process-wide state.
type Deps struct {
	Config   *config.Config
	Tokens   *services.TokenService
	Mailer   services.Mailer
	Images   services.ImageStore
	FindUser middleware.UserFinder
}

func SetupRouter(deps Deps) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{deps.Config.Server.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	authHandler := handlers.NewAuthHandler(deps.Config, deps.Tokens, deps.Mailer)
	postHandler := handlers.NewPostHandler(deps.Images, deps.Config.Posts.LikePolicy)
	notificationHandler := handlers.NewNotificationHandler()

	// Mirrors the original express-rate-limit budget.
	limiter := middleware.NewIPRateLimiter(100, time.Hour)

	api := router.Group("/api")
	api.Use(middleware.RateLimit(limiter))

	auth := api.Group("/auth")
	auth.POST("/signup", authHandler.Signup)
	auth.POST("/verify-email", authHandler.VerifyEmail)
	auth.POST("/resend-otp", authHandler.ResendVerification)
	auth.POST("/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(middleware.Auth(deps.Tokens, deps.FindUser))

	protected.POST("/posts", postHandler.Create)
	protected.GET("/posts", postHandler.List)
	protected.GET("/posts/my", postHandler.ListMine)
	protected.GET("/posts/:id", postHandler.Get)
	protected.PATCH("/posts/:id", postHandler.Update)
	protected.DELETE("/posts/:id", postHandler.Delete)
	protected.POST("/posts/:id/like", postHandler.Like)
	protected.DELETE("/posts/:id/like", postHandler.Unlike)
	protected.POST("/posts/:id/comments", postHandler.AddComment)
	protected.DELETE("/posts/:id/comments/:commentId", postHandler.DeleteComment)
	protected.POST("/posts/:id/share", postHandler.Share)

	protected.GET("/notifications/my", notificationHandler.ListMine)
	protected.PATCH("/notifications/read-all", notificationHandler.MarkAllRead)
	protected.PATCH("/notifications/:id/read", notificationHandler.MarkRead)
	protected.DELETE("/notifications/:id", notificationHandler.Delete)

	router.NoRoute(func(c *gin.Context) {
		if len(c.Request.URL.Path) >= 4 && c.Request.URL.Path[:4] == "/api" {
			c.JSON(404, gin.H{
				"status":  "error",
				"message": "Endpoint not found",
			})
			return
		}
		c.Next()
	})

	return router
}
