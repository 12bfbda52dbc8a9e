// Package api exposes the coding suite over HTTP: the coding endpoint, draft
// note analysis, coder feedback CRUD, gateway status and the live
// documentation websocket.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/brainsait/drg-suite/internal/domain"
	"github.com/brainsait/drg-suite/internal/engine"
	"github.com/brainsait/drg-suite/internal/feedback"
	"github.com/brainsait/drg-suite/internal/gateway"
	"github.com/brainsait/drg-suite/internal/nudge"
)

// Server is the HTTP surface of the coding suite.
type Server struct {
	configManager domain.ConfigManager
	engine        *engine.Engine
	nudges        *nudge.Service
	sessions      *nudge.SessionManager
	feedback      feedback.Store
	gateway       *gateway.Client
	logger        *logrus.Logger
	router        *gin.Engine
	server        *http.Server
}

// NewServer wires the HTTP server over the given components.
func NewServer(
	configManager domain.ConfigManager,
	eng *engine.Engine,
	nudgeService *nudge.Service,
	sessions *nudge.SessionManager,
	feedbackStore feedback.Store,
	gatewayClient *gateway.Client,
	logger *logrus.Logger,
) *Server {
	cfg := configManager.GetConfig()

	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(requestIDMiddleware())
	router.Use(loggingMiddleware(logger))

	s := &Server{
		configManager: configManager,
		engine:        eng,
		nudges:        nudgeService,
		sessions:      sessions,
		feedback:      feedbackStore,
		gateway:       gatewayClient,
		logger:        logger,
		router:        router,
	}
	s.setupRoutes()
	return s
}

// Start serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	cfg := s.configManager.GetServerConfig()
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("HTTP server listening")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/code", s.handleCode)
		v1.POST("/analyze-draft", s.handleAnalyzeDraft)

		v1.GET("/claims/:id/status", s.handleClaimStatus)
		v1.GET("/gateway/metrics", s.handleGatewayMetrics)

		v1.POST("/feedback", s.handleSaveFeedback)
		v1.GET("/feedback", s.handleListFeedback)
		v1.DELETE("/feedback/:id", s.handleDeleteFeedback)
		v1.GET("/feedback/export", s.handleExportFeedback)
		v1.POST("/feedback/import", s.handleImportFeedback)
	}

	s.router.GET("/ws/cdi", s.handleDocumentationSocket)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"version":   engine.Version,
	})
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, Authorization, X-Request-ID")
		c.Header("Access-Control-Expose-Headers", "Content-Length")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header("X-Request-ID", requestID)
		c.Set("request_id", requestID)
		c.Next()
	}
}

func loggingMiddleware(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"duration":   time.Since(start).String(),
			"request_id": c.GetString("request_id"),
		}).Info("request handled")
	}
}
