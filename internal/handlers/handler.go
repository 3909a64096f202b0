package handlers

import (
	"leafscan/internal/logger"
	"leafscan/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires the HTTP layer to services and logging.
type Handler struct {
	services    *service.Service
	log         *logger.Logger
	staticDir   string
	corsOrigins []string
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger, staticDir string, corsOrigins []string) *Handler {
	return &Handler{services: services, log: log, staticDir: staticDir, corsOrigins: corsOrigins}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	if len(h.corsOrigins) > 0 {
		cfg := cors.DefaultConfig()
		cfg.AllowOrigins = h.corsOrigins
		cfg.AllowCredentials = true
		cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization")
		router.Use(cors.New(cfg))
	}

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	// Uploaded images, served read-only
	if h.staticDir != "" {
		router.Static("/static", h.staticDir)
	}

	// Public endpoints
	router.POST("/register", h.register)
	router.POST("/token", h.login)
	router.POST("/predict/anonymous", h.predictAnonymous)

	// Bearer-protected endpoints
	authed := router.Group("", h.authMiddleware)
	{
		authed.POST("/predict", h.predict)
		authed.GET("/predictions/history", h.history)
		authed.DELETE("/predictions/:id", h.deletePrediction)
		authed.GET("/auth/me", h.me)
	}

	return router
}

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(200, gin.H{"status": "ok"})
}
