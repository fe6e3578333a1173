package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"pedalboard/internal/models"
	"pedalboard/internal/pedals"
)

// Store is the pedalboard collection the handlers operate on.
type Store interface {
	List(ctx context.Context) ([]models.Pedalboard, error)
	Get(ctx context.Context, id string) (models.Pedalboard, error)
	Create(ctx context.Context, in models.CreatePedalboardInput) (models.Pedalboard, error)
	Update(ctx context.Context, id string, in models.UpdatePedalboardInput) (models.Pedalboard, error)
	Delete(ctx context.Context, id string) error
	ToggleFavorite(ctx context.Context, id string) (models.Pedalboard, error)
	SetPedals(ctx context.Context, id string, seq []models.Pedal) (models.Pedalboard, error)
	EditPedals(ctx context.Context, id string, edit pedals.Edit) (models.Pedalboard, error)
}

// Server provides HTTP handlers for the pedalboard web client.
type Server struct {
	engine    *gin.Engine
	store     Store
	logger    *slog.Logger
	staticDir string
}

// New constructs the HTTP server with routes and middleware configured.
func New(store Store, logger *slog.Logger, staticDir string) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithWriter(gin.DefaultWriter, "/api"))

	srv := &Server{
		engine:    router,
		store:     store,
		logger:    logger.With("component", "server"),
		staticDir: staticDir,
	}

	srv.registerRoutes()
	return srv
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// registerRoutes wires all API and static handlers together.
func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")
	{
		api.GET("/healthz", s.handleHealth)
		api.GET("/pedal-types", s.handlePedalTypes)

		boards := api.Group("/pedalboards")
		{
			boards.GET("", s.handleListPedalboards)
			boards.POST("", s.handleCreatePedalboard)
			boards.GET(":id", s.handleGetPedalboard)
			boards.PATCH(":id", s.handleUpdatePedalboard)
			boards.DELETE(":id", s.handleDeletePedalboard)
			boards.POST(":id/favorite", s.handleToggleFavorite)

			boards.PUT(":id/pedals", s.handleSetPedals)
			boards.POST(":id/pedals", s.handleAddPedal)
			boards.DELETE(":id/pedals/:pedalId", s.handleRemovePedal)
			boards.POST(":id/pedals/:pedalId/move", s.handleMovePedal)
		}
	}

	s.mountStatic()
}

// handleHealth provides a basic readiness endpoint.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handlePedalTypes lists the pedal types the forms offer.
func (s *Server) handlePedalTypes(c *gin.Context) {
	respondSuccess(c, http.StatusOK, gin.H{"pedal_types": models.PedalTypes()})
}

// respondError maps domain errors to status codes, logs, and writes a JSON payload.
func (s *Server) respondError(c *gin.Context, err error) {
	var ve *models.ValidationError
	switch {
	case errors.As(err, &ve):
		s.logger.Warn("request rejected", slog.String("path", c.FullPath()), slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "fields": ve.Errors})
	case errors.Is(err, models.ErrNotFound):
		s.logger.Warn("request rejected", slog.String("path", c.FullPath()), slog.String("error", err.Error()))
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		s.logger.Error("request failed", slog.String("path", c.FullPath()), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// respondBadRequest reports a malformed request body.
func (s *Server) respondBadRequest(c *gin.Context, err error) {
	s.logger.Warn("malformed request", slog.String("path", c.FullPath()), slog.String("error", err.Error()))
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// respondSuccess wraps a payload in a JSON envelope for consistency.
func respondSuccess(c *gin.Context, status int, payload any) {
	if payload == nil {
		c.Status(status)
		return
	}
	c.JSON(status, payload)
}
