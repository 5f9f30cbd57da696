package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/vibast-solutions/ms-go-contacts/app/dto"
	"github.com/vibast-solutions/ms-go-contacts/app/service"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

const ContextKeyUser = "user"

type identityResolver interface {
	Resolve(ctx context.Context, token string) (*dto.UserSnapshot, error)
	RequireRole(user *dto.UserSnapshot, role string) error
}

type AuthMiddleware struct {
	guard identityResolver
}

func NewAuthMiddleware(guard identityResolver) *AuthMiddleware {
	return &AuthMiddleware{guard: guard}
}

func (m *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			logrus.Debug("Missing authorization header")
			return unauthorized(c, "missing authorization header")
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			logrus.Debug("Invalid authorization header format")
			return unauthorized(c, "invalid authorization header format")
		}

		user, err := m.guard.Resolve(c.Request().Context(), parts[1])
		if err != nil {
			if errors.Is(err, service.ErrUnauthenticated) {
				logrus.WithError(err).Debug("Rejected bearer token")
				return unauthorized(c, "could not validate credentials")
			}
			logrus.WithError(err).Error("Failed to resolve bearer token")
			return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
		}

		c.Set(ContextKeyUser, user)
		return next(c)
	}
}

// RequireRole must run after RequireAuth.
func (m *AuthMiddleware) RequireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := CurrentUser(c)
			if err := m.guard.RequireRole(user, role); err != nil {
				fields := logrus.Fields{"required_role": role}
				if user != nil {
					fields["user_id"] = user.ID
				}
				logrus.WithFields(fields).Debug("Insufficient role")
				return c.JSON(http.StatusForbidden, dto.ErrorResponse{Error: "insufficient permissions"})
			}
			return next(c)
		}
	}
}

// CurrentUser returns the identity stored by RequireAuth, or nil.
func CurrentUser(c echo.Context) *dto.UserSnapshot {
	user, _ := c.Get(ContextKeyUser).(*dto.UserSnapshot)
	return user
}

func unauthorized(c echo.Context, message string) error {
	c.Response().Header().Set("WWW-Authenticate", "Bearer")
	return c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: message})
}
