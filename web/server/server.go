// Package server serves a progressive preview of the renderer over
// server-sent events.
package server

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/df07/go-blackhole-raytracer/pkg/config"
	"github.com/df07/go-blackhole-raytracer/pkg/renderer"
)

//go:embed static/index.html
var indexPage []byte

// Server handles web requests for the preview
type Server struct {
	port     int
	base     *config.Config
	scene    *renderer.Scene
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *renderer.Metrics
}

// NewServer creates a web server. Render requests start from base and the
// loaded scene; a nil logger uses slog.Default().
func NewServer(port int, base *config.Config, scene *renderer.Scene, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &Server{
		port:     port,
		base:     base,
		scene:    scene,
		logger:   logger,
		registry: registry,
		metrics:  renderer.NewMetrics(registry),
	}
}

// Router builds the HTTP routes
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())

	router.GET("/", s.handleIndex)

	api := router.Group("/api")
	api.GET("/health", s.handleHealth)
	api.GET("/config", s.handleConfig)
	api.GET("/render", s.handleRender)
	api.GET("/inspect", s.handleInspect)

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
	return router
}

// Start starts the web server and blocks until it stops
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("starting web server", "addr", "http://localhost"+addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("web server: %w", err)
	}
	return nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

// handleIndex serves the preview page
func (s *Server) handleIndex(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexPage)
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleConfig returns the base configuration and request limits
func (s *Server) handleConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"defaults": gin.H{
			"width":    s.base.Image.Width,
			"height":   s.base.Image.Height,
			"frames":   s.base.Image.Frames,
			"samples":  s.base.Image.SamplesPerFrame,
			"features": s.base.Features.Names(),
			"fov":      s.base.Camera.FOV,
			"radius":   s.base.Camera.Radius,
		},
		"features": config.FeatureNames(),
		"limits": gin.H{
			"width":   gin.H{"min": minImageSize, "max": maxImageSize},
			"height":  gin.H{"min": minImageSize, "max": maxImageSize},
			"frames":  gin.H{"min": 1, "max": maxFrames},
			"samples": gin.H{"min": 1, "max": maxSamples},
		},
	})
}
