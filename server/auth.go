package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/slateworks/ticklist/internal/logger"
	"github.com/slateworks/ticklist/internal/model"
	"github.com/slateworks/ticklist/internal/store"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

// handleRegister handles user registration
func (s *Server) handleRegister(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	if req.Username == "" || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "All fields are required"})
	}

	if len(req.Password) < 6 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Password must be at least 6 characters"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("bcrypt error", logger.F("error", err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create user"})
	}

	user, err := s.store.CreateUser(c.Request().Context(), req.Username, req.Email, string(hash))
	if err != nil {
		if errors.Is(err, store.ErrDuplicateIdentity) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Username or email already exists"})
		}
		logger.Error("failed to create user", logger.F("error", err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create user"})
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		logger.Error("failed to issue token", logger.F("error", err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create user"})
	}

	logger.Info("user registered", logger.F("username", user.Username))
	return c.JSON(http.StatusCreated, authResponse{Token: token, User: user})
}

// handleLogin handles user login
func (s *Server) handleLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Username and password are required"})
	}

	// The identity matches either username or email
	user, err := s.store.FindUserByIdentity(c.Request().Context(), req.Username)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			logger.Error("failed to find user", logger.F("error", err))
		}
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		logger.Error("failed to issue token", logger.F("error", err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to log in"})
	}

	logger.Info("user logged in", logger.F("username", user.Username))
	return c.JSON(http.StatusOK, authResponse{Token: token, User: user})
}

// handleVerify confirms the bearer token and echoes the embedded identity
func (s *Server) handleVerify(c echo.Context) error {
	ident := identityFrom(c)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"valid": true,
		"user": map[string]interface{}{
			"id":       ident.UserID,
			"username": ident.Username,
		},
	})
}
