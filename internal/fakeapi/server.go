package fakeapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/gravadigital/simradar/internal/config"
	"github.com/gravadigital/simradar/internal/locale"
	"github.com/gravadigital/simradar/internal/logger"
	"github.com/gravadigital/simradar/internal/middleware/requestlog"
)

// Server represents the fake backend HTTP server
type Server struct {
	httpServer *http.Server
	config     *config.Config
	store      *Store
}

// New creates a new server instance
func New(cfg *config.Config, store *Store) *Server {
	return &Server{
		config: cfg,
		store:  store,
	}
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:    ":" + s.config.Server.Port,
		Handler: s.Router(),

		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Server().Info("Starting HTTP server", "port", s.config.Server.Port)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	logger.Server().Info("Shutting down HTTP server...")

	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}

	return nil
}

// Router configures the gin engine with middleware and routes
func (s *Server) Router() *gin.Engine {
	switch s.config.Server.GinMode {
	case gin.ReleaseMode, gin.TestMode:
		gin.SetMode(s.config.Server.GinMode)
	}

	router := gin.New()

	router.Use(requestlog.New(logger.Server()))
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	origins := config.SplitList(s.config.CORS.AllowOrigins)
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
	}
	if methods := config.SplitList(s.config.CORS.AllowMethods); len(methods) > 0 {
		corsConfig.AllowMethods = methods
	}
	if headers := config.SplitList(s.config.CORS.AllowHeaders); len(headers) > 0 {
		corsConfig.AllowHeaders = headers
	}
	router.Use(cors.New(corsConfig))

	h := NewHandler(s.store)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "simradar fake backend is running",
			"status":  "healthy",
		})
	})

	s.setupRoutes(router, h)

	return router
}

// setupRoutes registers every endpoint, including the locale specific aliases
func (s *Server) setupRoutes(router *gin.Engine, h *Handler) {
	for _, l := range locale.All() {
		router.GET(ginPath(l.Routes.Participants, "event_id"), h.GetParticipants)
		router.GET(ginPath(l.Routes.ParticipationStatus, "event_id", "user_id"), h.ParticipationStatus(l.Routes.StatusField))
	}

	router.GET("/export_participants/:event_id", h.ExportParticipants)
	router.POST("/export_participants_by_title", h.ExportParticipantsByTitle)

	router.POST("/add_user_event", h.AddUserEvent)
	router.DELETE("/delete_user_event", h.DeleteUserEvent)
	router.DELETE("/delete_event", h.DeleteEvent)

	router.DELETE("/delete_user_group", h.DeleteUserGroup)
	router.DELETE("/delete_group", h.DeleteGroup)
	router.DELETE("/delete_user", h.DeleteUser)
}

// ginPath turns a "%d" route template into a gin pattern with named params
func ginPath(template string, params ...string) string {
	args := make([]any, len(params))
	for i, p := range params {
		args[i] = ":" + p
	}
	return fmt.Sprintf(strings.ReplaceAll(template, "%d", "%s"), args...)
}
