// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package handlers contains the HTTP handlers for all pages and form
// endpoints.
package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"codeberg.org/oliverandrich/taskmanager/internal/auth"
	"codeberg.org/oliverandrich/taskmanager/internal/config"
	"codeberg.org/oliverandrich/taskmanager/internal/services/account"
	"codeberg.org/oliverandrich/taskmanager/internal/services/google"
	"codeberg.org/oliverandrich/taskmanager/internal/services/task"
	"codeberg.org/oliverandrich/taskmanager/internal/services/token"
)

// Handlers bundles the services the HTTP layer depends on.
type Handlers struct {
	cfg      *config.Config
	accounts *account.Service
	tasks    *task.Service
	tokens   *token.Service
	google   *google.Service
}

func New(cfg *config.Config, accounts *account.Service, tasks *task.Service, tokens *token.Service, googleSvc *google.Service) *Handlers {
	return &Handlers{
		cfg:      cfg,
		accounts: accounts,
		tasks:    tasks,
		tokens:   tokens,
		google:   googleSvc,
	}
}

// Health responds to liveness probes.
func (h *Handlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Index renders the landing page. Logged-in visitors go straight to the
// dashboard.
func (h *Handlers) Index(c echo.Context) error {
	if _, ok := auth.UserFrom(c.Request().Context()); ok {
		return c.Redirect(http.StatusSeeOther, "/dashboard")
	}
	return h.render(c, http.StatusOK, "index.html", map[string]any{
		"Flash": h.popFlash(c),
	})
}

// Dashboard renders the task overview for the logged-in user.
func (h *Handlers) Dashboard(c echo.Context) error {
	user, ok := auth.UserFrom(c.Request().Context())
	if !ok {
		return c.Redirect(http.StatusSeeOther, "/users/login")
	}

	tasks, err := h.tasks.List(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}

	return h.render(c, http.StatusOK, "dashboard.html", map[string]any{
		"Username":       user.Username,
		"ProfilePicture": user.ProfilePicture.String,
		"Tasks":          tasks,
		"Flash":          h.popFlash(c),
	})
}
