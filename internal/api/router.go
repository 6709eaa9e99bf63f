package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"mediaextract/internal/logging"
	"mediaextract/internal/pipeline"
)

// Runner executes one extraction request.
type Runner interface {
	Run(ctx context.Context, in pipeline.Input) (pipeline.Result, error)
}

// Options configures the HTTP surface.
type Options struct {
	// APIKey, when set, is required on extraction routes.
	APIKey string
	// MaxUploadBytes caps the uploaded image size.
	MaxUploadBytes int64
	// CORSOrigins enables CORS for the listed origins; "*" allows any.
	CORSOrigins []string
}

// NewRouter builds the gin engine serving /health and /extract.
func NewRouter(runner Runner, opts Options, logger *slog.Logger) *gin.Engine {
	logger = logging.NewComponentLogger(logger, "api")
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = defaultMaxUploadBytes
	}

	engine := gin.New()
	engine.MaxMultipartMemory = opts.MaxUploadBytes
	engine.Use(requestID(), requestLogger(logger), recovery(logger))
	if corsMiddleware := newCORS(opts.CORSOrigins); corsMiddleware != nil {
		engine.Use(corsMiddleware)
	}

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	h := &extractHandler{runner: runner, maxUpload: opts.MaxUploadBytes, logger: logger}
	protected := engine.Group("")
	protected.Use(requireAPIKey(opts.APIKey))
	protected.POST("/extract", h.handle)
	protected.POST("/api/extract", h.handle)

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
	return engine
}

func newCORS(origins []string) gin.HandlerFunc {
	if len(origins) == 0 {
		return nil
	}
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", headerAPIKey, headerRequestID},
		ExposeHeaders: []string{headerRequestID},
	}
	for _, origin := range origins {
		if origin == "*" {
			cfg.AllowAllOrigins = true
			return cors.New(cfg)
		}
	}
	cfg.AllowOrigins = origins
	return cors.New(cfg)
}
