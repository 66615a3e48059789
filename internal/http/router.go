package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"dataset-market/internal/domain"
	"dataset-market/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	tokenSvc *service.TokenService,
	authH *AuthHandler,
	userH *UserHandler,
	categoryH *CategoryHandler,
) *gin.Engine {
	r := gin.New()

	// Middlewares básicos: request id, logging, recovery y JSON content-type.
	r.Use(requestIDMiddleware(), zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	auth := r.Group("/auth")
	auth.POST("/register", authH.Register)
	auth.POST("/register/verify", authH.VerifyRegister)
	auth.POST("/register/resend", authH.ResendRegisterOTP)
	auth.POST("/login", authH.Login)
	auth.POST("/refresh", authH.RefreshToken)
	auth.POST("/forgot-password/request", authH.RequestPasswordReset)
	auth.POST("/forgot-password/verify", authH.VerifyResetOTP)
	auth.POST("/forgot-password/reset", authH.ResetPassword)

	users := r.Group("/users", JWTAuthMiddleware(tokenSvc))
	users.GET("/me", userH.Me)
	users.PATCH("/profile", userH.UpdateProfile)
	users.GET("", RequireRole(domain.RoleAdmin), userH.List)

	categories := r.Group("/categories")
	categories.GET("", categoryH.List)
	categories.GET("/:id", categoryH.Get)
	adminCategories := categories.Group("", JWTAuthMiddleware(tokenSvc), RequireRole(domain.RoleAdmin))
	adminCategories.POST("", categoryH.Create)
	adminCategories.PATCH("/:id", categoryH.Update)
	adminCategories.DELETE("/:id", categoryH.Delete)

	return r
}

const requestIDKey = "request_id"

// requestIDMiddleware propaga o genera un X-Request-ID por request.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Writer.Header().Set("X-Request-ID", id)
		c.Next()
	}
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
			zap.String("request_id", c.GetString(requestIDKey)),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
