package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/macrocam/macrocam/internal/analyzer"
	"github.com/macrocam/macrocam/internal/config"
	"github.com/macrocam/macrocam/internal/storage"
	"github.com/macrocam/macrocam/internal/uploads"
)

// Options wires the gateway's collaborators.
type Options struct {
	Uploads  *uploads.Store
	Analyzer analyzer.Runner
	Analyses *storage.AnalysisStore
	// UploadPolicy is one of the config.UploadPolicy* values.
	UploadPolicy string
	// MaxUploadBytes limits request bodies; zero means unlimited.
	MaxUploadBytes int64
}

type Handler struct {
	uploads        *uploads.Store
	analyzer       analyzer.Runner
	analyses       *storage.AnalysisStore
	uploadPolicy   string
	maxUploadBytes int64
}

func New(opts Options) *Handler {
	if opts.Analyses == nil {
		opts.Analyses = storage.New(0)
	}
	if opts.UploadPolicy == "" {
		opts.UploadPolicy = config.UploadPolicyKeep
	}

	return &Handler{
		uploads:        opts.Uploads,
		analyzer:       opts.Analyzer,
		analyses:       opts.Analyses,
		uploadPolicy:   opts.UploadPolicy,
		maxUploadBytes: opts.MaxUploadBytes,
	}
}

// Router returns the gateway's routes. Cross-origin requests are allowed
// from anywhere so browser and device clients can post directly.
func (h *Handler) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(), cors.Default())

	router.POST("/analyze-image", h.HandleAnalyze)
	router.GET("/api/analyses", h.HandleAnalyses)
	router.GET("/api/analyses/:id", h.HandleAnalysisDetail)
	router.GET("/healthcheck", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	return router
}

// Response helpers
func (h *Handler) writeJSON(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

func (h *Handler) writeError(c *gin.Context, message string, code int) {
	slog.Error(message, "path", c.Request.URL.Path, "status", code)
	c.JSON(code, gin.H{"error": message})
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Info("Request handled",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"client", c.ClientIP(),
		)
	}
}
