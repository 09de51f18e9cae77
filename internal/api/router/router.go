package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ucformula/sponsor-scout/internal/api/handler"
	"github.com/ucformula/sponsor-scout/internal/api/response"
)

// New returns an engine with request logging, panic recovery and CORS.
func New(logger *zap.Logger, corsOrigin string) *gin.Engine {
	r := gin.New()
	r.Use(
		requestLogger(logger),
		gin.CustomRecovery(func(c *gin.Context, recovered any) {
			logger.Error("panic in handler", zap.String("path", c.Request.URL.Path), zap.Any("panic", recovered))
			response.Fail(c, http.StatusInternalServerError, "Internal server error")
		}),
		cors(corsOrigin),
	)
	return r
}

func RegisterRoutes(r *gin.Engine, h *handler.SponsorHandler) {
	api := r.Group("/api")
	{
		api.GET("/hello", h.Hello)

		api.GET("/scrape", h.Scrape)
		api.POST("/scrape", h.Scrape)
		api.POST("/analyze", h.Analyze)
		api.POST("/generate", h.Generate)

		api.GET("/sponsors", h.Sponsors)
		api.GET("/analyzed-sponsors", h.AnalyzedSponsors)
		api.GET("/templates", h.Templates)
		api.GET("/templates/:name", h.Template)
		api.GET("/filters", h.Filters)
	}
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// cors lets the browser frontend on another port call the API.
func cors(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if origin == "" {
			c.Next()
			return
		}

		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
