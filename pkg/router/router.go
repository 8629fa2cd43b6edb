package router

import (
	"mindmate/backend/internal/api"
	"mindmate/backend/pkg/di"
	"mindmate/backend/pkg/errors"
	"mindmate/backend/pkg/logger"
	"mindmate/backend/pkg/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// Router is the main router for the application
type Router struct {
	Engine    *gin.Engine
	Container *di.Container
	Logger    *logger.Logger
}

// New creates a new router with the given container
func New(container *di.Container) *Router {
	logger.SetGlobal(container.Logger)

	if container.Config.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(logger.Middleware(container.Logger))
	engine.Use(errors.ErrorHandler())
	engine.Use(errors.RecoveryWithLogger())

	rateLimiterOpts := middleware.DefaultRateLimiterOptions()
	rateLimiterOpts.Limit = rate.Limit(container.Config.Security.RateLimit)
	rateLimiterOpts.Burst = container.Config.Security.RateLimitBurst
	rateLimiter := middleware.NewRateLimiter(container.Logger, rateLimiterOpts)
	engine.Use(rateLimiter.Middleware())

	return &Router{
		Engine:    engine,
		Container: container,
		Logger:    container.Logger,
	}
}

// SetupRoutes registers all application routes
func (r *Router) SetupRoutes() {
	r.Engine.Use(corsMiddleware(r.Container.Config.Security.AllowedOrigins))

	jwtAuth := middleware.JWTAuthMiddleware(r.Container.JWTService, r.Logger)

	userHandler := api.NewUserHandler(r.Container.UserService, r.Logger)
	characterHandler := api.NewCharacterHandler(r.Container.CharacterService, r.Logger)
	chatHandler := api.NewChatHandler(r.Container.ChatService, r.Logger)
	contentHandler := api.NewContentHandler(r.Container.ContentService, r.Logger)

	// Operational endpoints
	r.Engine.GET("/health", r.Container.Health.Handler())
	r.Engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API version 1 routes
	v1 := r.Engine.Group("/api/v1")

	// Public routes (no auth required)
	authRoutes := v1.Group("/auth")
	{
		authRoutes.POST("/signup", userHandler.CreateUser)
		authRoutes.POST("/login", userHandler.Login)
		authRoutes.GET("/me", jwtAuth, userHandler.Me)
	}

	// Protected routes (require authentication)
	protected := v1.Group("/")
	protected.Use(jwtAuth)
	{
		protected.POST("/sessions", chatHandler.PostTurn)
		protected.GET("/sessions/:sessionId", chatHandler.ListSessionMessages)
		protected.GET("/users/:userId/sessions", chatHandler.ListUserSessions)

		protected.GET("/users/:userId", userHandler.GetUser)
		protected.PUT("/users/:userId", userHandler.UpdateUser)
		protected.POST("/users/:userId/following/:targetId", userHandler.Follow)
		protected.DELETE("/users/:userId/following/:targetId", userHandler.Unfollow)
		protected.GET("/users/:userId/following", userHandler.GetFollowing)

		protected.POST("/characters", characterHandler.CreateCharacter)
		protected.GET("/characters", characterHandler.ListCharacters)
		protected.GET("/characters/:characterId", characterHandler.GetCharacter)

		protected.GET("/contents", contentHandler.ListContents)
		protected.GET("/contents/:contentId/messages", contentHandler.GetContentMessages)
		protected.POST("/participations", contentHandler.RecordParticipation)
		protected.GET("/users/:userId/participations", contentHandler.GetUserParticipations)
	}

	// Legacy routes for backward compatibility with existing clients.
	// These will eventually be phased out.
	r.Engine.POST("/sessions/", chatHandler.PostTurn)
	r.Engine.GET("/sessions/:sessionId/", chatHandler.ListSessionMessages)
	r.Engine.GET("/users/:userId/sessions/", chatHandler.ListUserSessions)
	r.Engine.POST("/user/create/", userHandler.CreateUser)
	r.Engine.POST("/user/login/", userHandler.Login)
	r.Engine.GET("/user/:userId/", userHandler.GetUser)
	r.Engine.PUT("/user/:userId/", userHandler.UpdateUser)
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowAll := len(allowedOrigins) == 0
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if origin == "*" {
			allowAll = true
		}
		allowed[origin] = true
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		switch {
		case allowAll:
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		case allowed[origin]:
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept, Accept-Encoding, X-CSRF-Token, Authorization, Origin")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
