package server

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/slateworks/ticklist/internal/auth"
)

const identityKey = "identity"

// authMiddleware extracts and verifies the bearer token. A missing token is
// 401; a token that fails verification is 403. On success the decoded
// identity is attached to the request context.
func (s *Server) authMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get("Authorization")
		if header == "" {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Access token required"})
		}

		token := strings.TrimPrefix(header, "Bearer ")
		if token == header || token == "" {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Access token required"})
		}

		ident, err := s.tokens.Verify(token)
		if err != nil {
			return c.JSON(http.StatusForbidden, map[string]string{"error": "Invalid token"})
		}

		c.Set(identityKey, ident)
		return next(c)
	}
}

// identityFrom returns the identity attached by authMiddleware.
func identityFrom(c echo.Context) auth.Identity {
	return c.Get(identityKey).(auth.Identity)
}
