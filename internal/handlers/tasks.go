// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"codeberg.org/oliverandrich/taskmanager/internal/auth"
	"codeberg.org/oliverandrich/taskmanager/internal/models"
	"codeberg.org/oliverandrich/taskmanager/internal/repository"
	"codeberg.org/oliverandrich/taskmanager/internal/services/task"
)

// AddTask creates a task from the dashboard form.
func (h *Handlers) AddTask(c echo.Context) error {
	user, _ := auth.UserFrom(c.Request().Context())

	_, err := h.tasks.Create(c.Request().Context(), user.ID, task.Params{
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		Deadline:    c.FormValue("deadline"),
	})
	if err != nil {
		if message, ok := taskInputError(err); ok {
			h.setFlash(c, message)
			return c.Redirect(http.StatusSeeOther, "/dashboard")
		}
		return err
	}

	return c.Redirect(http.StatusSeeOther, "/dashboard")
}

// EditTaskPage renders the edit form for one of the user's tasks.
func (h *Handlers) EditTaskPage(c echo.Context) error {
	user, _ := auth.UserFrom(c.Request().Context())

	taskID, err := parseTaskID(c)
	if err != nil {
		return h.renderNotFound(c)
	}

	found, err := h.tasks.Get(c.Request().Context(), user.ID, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return h.renderNotFound(c)
		}
		return err
	}

	return h.render(c, http.StatusOK, "edit_task.html", map[string]any{
		"Task": found,
	})
}

// EditTask saves changes to one of the user's tasks.
func (h *Handlers) EditTask(c echo.Context) error {
	user, _ := auth.UserFrom(c.Request().Context())

	taskID, err := parseTaskID(c)
	if err != nil {
		return h.renderNotFound(c)
	}

	params := task.Params{
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		Deadline:    c.FormValue("deadline"),
	}
	if err := h.tasks.Update(c.Request().Context(), user.ID, taskID, params); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return h.renderNotFound(c)
		}
		if message, ok := taskInputError(err); ok {
			return h.render(c, http.StatusOK, "edit_task.html", map[string]any{
				"Error": message,
				"Task": &models.Task{
					ID:          taskID,
					Title:       params.Title,
					Description: params.Description,
				},
			})
		}
		return err
	}

	return c.Redirect(http.StatusSeeOther, "/dashboard")
}

// CompleteTask marks one of the user's tasks as done.
func (h *Handlers) CompleteTask(c echo.Context) error {
	return h.mutateTask(c, h.tasks.Complete)
}

// DeleteTask removes one of the user's tasks.
func (h *Handlers) DeleteTask(c echo.Context) error {
	return h.mutateTask(c, h.tasks.Delete)
}

func (h *Handlers) mutateTask(c echo.Context, op func(ctx context.Context, ownerID, taskID int64) error) error {
	user, _ := auth.UserFrom(c.Request().Context())

	taskID, err := parseTaskID(c)
	if err != nil {
		return h.renderNotFound(c)
	}

	if err := op(c.Request().Context(), user.ID, taskID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return h.renderNotFound(c)
		}
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/dashboard")
}

func parseTaskID(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

func (h *Handlers) renderNotFound(c echo.Context) error {
	return h.render(c, http.StatusNotFound, "error.html", map[string]any{
		"Status":  "404 Not Found",
		"Message": "The task you are looking for does not exist.",
	})
}

func taskInputError(err error) (string, bool) {
	switch {
	case errors.Is(err, task.ErrTitleRequired):
		return "Please enter a title for the task.", true
	case errors.Is(err, task.ErrInvalidDeadline):
		return "Please enter the deadline as YYYY-MM-DD.", true
	}
	return "", false
}
