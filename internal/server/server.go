// Package server implements the self-hosted LockieMedia data service.
package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/lockiemedia/lockie/internal/api"
	"github.com/lockiemedia/lockie/internal/storage"
)

// SavedMessage acknowledges a successful save.
const SavedMessage = "Data saved successfully"

// DataStore is the persistence the service needs. *storage.SQLiteStore
// implements it.
type DataStore interface {
	Load(ctx context.Context) (map[string]json.RawMessage, error)
	Save(ctx context.Context, requestID string, collections map[string]json.RawMessage) error
	ReplaceTicketSubtasks(ctx context.Context, requestID string, ticketID api.ID, subtasks []api.Record) error
	LastSave(ctx context.Context) (*storage.SaveInfo, error)
}

// Config holds HTTP server configuration.
type Config struct {
	Listen    string
	DataPath  string
	KeyHeader string
	APIKey    string
}

// Server serves the snapshot endpoint.
type Server struct {
	echo   *echo.Echo
	store  DataStore
	logger *zap.Logger
	config Config
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status   string     `json:"status"`
	LastSave *time.Time `json:"lastSave,omitempty"`
}

// New creates a data service. An empty API key is refused: the service
// holds a user's whole workspace.
func New(store DataStore, logger *zap.Logger, cfg Config) (*Server, error) {
	if store == nil {
		return nil, errors.New("store cannot be nil")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("an api key is required; set service.api_key or LOCKIE_SERVICE_API_KEY")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Listen == "" {
		cfg.Listen = ":8080"
	}
	if cfg.DataPath == "" {
		cfg.DataPath = api.DefaultDataPath
	}
	if cfg.KeyHeader == "" {
		cfg.KeyHeader = api.DefaultKeyHeader
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator:    uuid.NewString,
		TargetHeader: api.RequestIDHeader,
	}))
	e.Use(requestLogger(logger))

	s := &Server{
		echo:   e,
		store:  store,
		logger: logger.Named("server"),
		config: cfg,
	}
	s.registerRoutes()

	return s, nil
}

func requestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", c.Response().Header().Get(api.RequestIDHeader)),
			)

			return nil
		}
	}
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)

	data := s.echo.Group(s.config.DataPath, middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
		KeyLookup: "header:" + s.config.KeyHeader,
		Validator: func(key string, c echo.Context) (bool, error) {
			return subtle.ConstantTimeCompare([]byte(key), []byte(s.config.APIKey)) == 1, nil
		},
		ErrorHandler: func(err error, c echo.Context) error {
			s.logger.Warn("rejected request", zap.String("uri", c.Request().RequestURI), zap.Error(err))
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing API key")
		},
	}))
	data.GET("", s.handleGetData)
	data.POST("", s.handleSaveData)
	data.POST("/"+api.CollectionDevTickets+"/:id/subtasks", s.handleSaveSubtasks)
}

// Handler exposes the HTTP handler, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) handleHealth(c echo.Context) error {
	resp := HealthResponse{Status: "ok"}

	last, err := s.store.LastSave(c.Request().Context())
	if err != nil {
		s.logger.Error("health check failed", zap.Error(err))
		return c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: "unavailable"})
	}
	if last != nil {
		resp.LastSave = &last.SavedAt
	}

	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleGetData(c echo.Context) error {
	data, err := s.store.Load(c.Request().Context())
	if err != nil {
		s.logger.Error("failed to load data", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load data")
	}
	return c.JSON(http.StatusOK, data)
}

func (s *Server) handleSaveData(c echo.Context) error {
	var body map[string]json.RawMessage
	if err := json.NewDecoder(c.Request().Body).Decode(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "request body must be a JSON object")
	}

	collections := make(map[string]json.RawMessage, len(body))
	for name, raw := range body {
		if !slices.Contains(api.Collections, name) {
			s.logger.Warn("ignoring unknown collection", zap.String("collection", name))
			continue
		}
		if err := checkShape(name, raw); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		collections[name] = raw
	}

	if err := s.store.Save(c.Request().Context(), requestID(c), collections); err != nil {
		s.logger.Error("failed to save data", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to save data")
	}

	return c.JSON(http.StatusOK, api.SaveResponse{Message: SavedMessage})
}

func (s *Server) handleSaveSubtasks(c echo.Context) error {
	ticketID := api.ID(c.Param("id"))

	var req api.SubtasksRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "request body must be a JSON object")
	}

	if err := s.store.ReplaceTicketSubtasks(c.Request().Context(), requestID(c), ticketID, req.Subtasks); err != nil {
		if errors.Is(err, storage.ErrEmptyTicketID) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		s.logger.Error("failed to save subtasks", zap.String("ticket", string(ticketID)), zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to save subtasks")
	}

	return c.JSON(http.StatusOK, api.SaveResponse{Message: SavedMessage})
}

// checkShape rejects collections that are neither the expected JSON object
// (user records) nor a JSON array (everything else).
func checkShape(name string, raw json.RawMessage) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("%s: invalid JSON", name)
	}

	switch name {
	case api.CollectionUserPreferences, api.CollectionUserProfile:
		if _, ok := v.(map[string]any); !ok {
			return fmt.Errorf("%s must be an object", name)
		}
	default:
		if _, ok := v.([]any); !ok {
			return fmt.Errorf("%s must be an array", name)
		}
	}
	return nil
}

func requestID(c echo.Context) string {
	return c.Response().Header().Get(api.RequestIDHeader)
}

// Start starts the HTTP server. It returns nil after a clean Shutdown.
func (s *Server) Start() error {
	s.logger.Info("starting data service",
		zap.String("addr", s.config.Listen),
		zap.String("data_path", s.config.DataPath),
	)
	if err := s.echo.Start(s.config.Listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down data service")
	return s.echo.Shutdown(ctx)
}
