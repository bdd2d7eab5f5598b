// Package server implements the ticklist HTTP/JSON API.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/slateworks/ticklist/internal/auth"
	"github.com/slateworks/ticklist/internal/logger"
	"github.com/slateworks/ticklist/internal/store"
)

// Server is the API server
type Server struct {
	store  store.Store
	tokens *auth.Tokens
	echo   *echo.Echo
}

// New creates a server around an opened store and a signing secret.
func New(st store.Store, signingSecret string) *Server {
	s := &Server{
		store:  st,
		tokens: auth.NewTokens(signingSecret),
	}
	s.setupEcho()
	return s
}

func (s *Server) setupEcho() {
	e := echo.New()
	e.HideBanner = true

	// Request logging middleware
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			err := next(c)

			res := c.Response()
			logger.Info("HTTP request",
				logger.F("method", req.Method),
				logger.F("uri", req.RequestURI),
				logger.F("status", res.Status),
				logger.F("duration", time.Since(start).String()))

			return err
		}
	})

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORS())

	// Health check
	e.GET("/health", s.handleHealth)

	api := e.Group("/api")

	// Auth endpoints (public)
	api.POST("/auth/register", s.handleRegister)
	api.POST("/auth/login", s.handleLogin)
	api.GET("/auth/verify", s.handleVerify, s.authMiddleware)

	// Todo endpoints (protected)
	todos := api.Group("/todos")
	todos.Use(s.authMiddleware)
	todos.GET("", s.handleListTodos)
	todos.POST("", s.handleCreateTodo)
	todos.PUT("/:id", s.handleUpdateTodo)
	todos.DELETE("/:id", s.handleDeleteTodo)

	s.echo = e
}

// Router returns the HTTP handler
func (s *Server) Router() http.Handler {
	return s.echo
}

// Start starts the server
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Close closes the underlying store
func (s *Server) Close() error {
	return s.store.Close()
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
