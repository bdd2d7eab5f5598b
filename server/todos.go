package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/slateworks/ticklist/internal/logger"
	"github.com/slateworks/ticklist/internal/store"
)

type createTodoRequest struct {
	Text string `json:"text"`
}

type updateTodoRequest struct {
	Text      *string `json:"text"`
	Completed *bool   `json:"completed"`
}

func (s *Server) handleListTodos(c echo.Context) error {
	ident := identityFrom(c)

	todos, err := s.store.ListTodos(c.Request().Context(), ident.UserID)
	if err != nil {
		logger.Error("failed to list todos", logger.F("error", err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch todos"})
	}

	return c.JSON(http.StatusOK, todos)
}

func (s *Server) handleCreateTodo(c echo.Context) error {
	ident := identityFrom(c)

	var req createTodoRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	todo, err := s.store.CreateTodo(c.Request().Context(), ident.UserID, req.Text)
	if err != nil {
		if errors.Is(err, store.ErrValidation) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Todo text is required"})
		}
		logger.Error("failed to create todo", logger.F("error", err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create todo"})
	}

	return c.JSON(http.StatusCreated, todo)
}

func (s *Server) handleUpdateTodo(c echo.Context) error {
	ident := identityFrom(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid todo ID"})
	}

	var req updateTodoRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	patch := store.TodoPatch{Text: req.Text, Completed: req.Completed}
	if patch.Empty() {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "No fields to update"})
	}

	todo, err := s.store.UpdateTodo(c.Request().Context(), id, ident.UserID, patch)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Todo not found"})
		case errors.Is(err, store.ErrValidation):
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Todo text is required"})
		default:
			logger.Error("failed to update todo", logger.F("error", err))
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update todo"})
		}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"todo": todo})
}

func (s *Server) handleDeleteTodo(c echo.Context) error {
	ident := identityFrom(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid todo ID"})
	}

	if err := s.store.DeleteTodo(c.Request().Context(), id, ident.UserID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Todo not found"})
		}
		logger.Error("failed to delete todo", logger.F("error", err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to delete todo"})
	}

	return c.JSON(http.StatusOK, map[string]string{})
}
