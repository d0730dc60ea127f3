// ABOUTME: HTTP API over the field repository using echo
// ABOUTME: Routes, user middleware, error-to-status mapping and graceful shutdown

package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/harper/cropfit/internal/identity"
	"github.com/harper/cropfit/internal/models"
	"github.com/harper/cropfit/internal/storage"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// UserHeader carries the caller's user id.
const UserHeader = "X-User-Id"

const (
	uidKey          = "uid"
	shutdownTimeout = 5 * time.Second
)

// Server is the HTTP API.
type Server struct {
	echo   *echo.Echo
	repo   storage.FieldRepository
	logger *log.Logger
	start  time.Time
}

// New builds the API over repo. A nil logger uses the default logger.
func New(repo storage.FieldRepository, logger *log.Logger) (*Server, error) {
	if repo == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if logger == nil {
		logger = log.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{echo: e, repo: repo, logger: logger, start: time.Now()}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.logger.Debug("request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency)
			return nil
		},
	}))

	e.GET("/health", s.health)

	auth := RequireUser()
	e.GET("/fields", s.listFields, auth)
	e.POST("/fields", s.createField, auth)
	e.PUT("/fields/:id/favourite", s.setFavourite, auth)
	e.DELETE("/fields/:id", s.deleteField, auth)
	e.GET("/fields.geojson", s.fieldsGeoJSON, auth)

	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- s.echo.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// RequireUser reads the user id from UserHeader and rejects requests without one.
func RequireUser() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			uid := c.Request().Header.Get(UserHeader)
			if err := storage.RequireUser(uid); err != nil {
				return c.JSON(http.StatusUnauthorized, errorBody(err))
			}
			c.Set(uidKey, uid)
			return next(c)
		}
	}
}

func userID(c echo.Context) string {
	uid, _ := c.Get(uidKey).(string)
	return uid
}

func errorBody(err error) map[string]string {
	return map[string]string{"error": err.Error()}
}

// StatusFor maps domain errors onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalid), errors.Is(err, models.ErrNoPoints):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrUnauthorized), errors.Is(err, identity.ErrNoUser):
		return http.StatusUnauthorized
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrReadOnly):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(c echo.Context, err error) error {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "uri", c.Request().RequestURI, "err", err)
	}
	return c.JSON(status, errorBody(err))
}
