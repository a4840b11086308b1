// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"codeberg.org/oliverandrich/taskmanager/internal/auth"
	"codeberg.org/oliverandrich/taskmanager/internal/repository"
	"codeberg.org/oliverandrich/taskmanager/internal/services/token"
)

// SessionMiddleware resolves the session cookie into an authenticated user
// on the request context. Missing, invalid or expired sessions leave the
// request unauthenticated; they never abort it.
func SessionMiddleware(tokens *token.Service, repo *repository.Repository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(sessionCookieName)
			if err != nil || cookie.Value == "" {
				return next(c)
			}

			userID, err := tokens.ResolveSession(cookie.Value)
			if err != nil {
				return next(c)
			}

			user, err := repo.GetUserByID(c.Request().Context(), userID)
			if err != nil || !user.IsActive {
				return next(c)
			}

			ctx := auth.WithUser(c.Request().Context(), user)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// RequireAuth redirects unauthenticated requests to the login page with a
// flash message.
func (h *Handlers) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := auth.UserFrom(c.Request().Context()); !ok {
			h.setFlash(c, "Please log in to access this page.")
			return c.Redirect(http.StatusSeeOther, "/users/login")
		}
		return next(c)
	}
}
