// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package task implements owner-scoped task management.
package task

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"codeberg.org/oliverandrich/taskmanager/internal/models"
	"codeberg.org/oliverandrich/taskmanager/internal/repository"
)

// DeadlineFormat is the wire format for deadlines in forms and views.
const DeadlineFormat = "2006-01-02"

var (
	ErrTitleRequired   = errors.New("title is required")
	ErrInvalidDeadline = errors.New("invalid deadline format, expected YYYY-MM-DD")
)

// Params carries form input for creating or updating a task. Deadline is a
// date string in DeadlineFormat; empty means no deadline on create and
// "keep the current deadline" on update.
type Params struct {
	Title       string
	Description string
	Deadline    string
}

// Service manages tasks. Every operation is scoped to an owner; a task
// belonging to someone else is indistinguishable from a missing one.
type Service struct {
	repo *repository.Repository
}

func NewService(repo *repository.Repository) *Service {
	return &Service{repo: repo}
}

// Create stores a new incomplete task for the owner.
func (s *Service) Create(ctx context.Context, ownerID int64, params Params) (*models.Task, error) {
	title := strings.TrimSpace(params.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	deadline, err := parseDeadline(params.Deadline)
	if err != nil {
		return nil, err
	}

	task := &models.Task{
		Title:       title,
		Description: params.Description,
		Deadline:    deadline,
		OwnerID:     ownerID,
	}
	if err := s.repo.CreateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return task, nil
}

// List returns the owner's tasks, newest first.
func (s *Service) List(ctx context.Context, ownerID int64) ([]models.Task, error) {
	return s.repo.ListTasksByOwner(ctx, ownerID)
}

// Get returns one of the owner's tasks.
func (s *Service) Get(ctx context.Context, ownerID, taskID int64) (*models.Task, error) {
	return s.repo.GetTaskForOwner(ctx, taskID, ownerID)
}

// Update rewrites title and description and, when a deadline is supplied,
// the deadline. An empty deadline leaves the stored one untouched.
func (s *Service) Update(ctx context.Context, ownerID, taskID int64, params Params) error {
	title := strings.TrimSpace(params.Title)
	if title == "" {
		return ErrTitleRequired
	}

	current, err := s.repo.GetTaskForOwner(ctx, taskID, ownerID)
	if err != nil {
		return err
	}

	if params.Deadline != "" {
		current.Deadline, err = parseDeadline(params.Deadline)
		if err != nil {
			return err
		}
	}
	current.Title = title
	current.Description = params.Description

	return s.repo.UpdateTask(ctx, current)
}

// Complete marks one of the owner's tasks as done.
func (s *Service) Complete(ctx context.Context, ownerID, taskID int64) error {
	return s.repo.CompleteTask(ctx, taskID, ownerID)
}

// Delete removes one of the owner's tasks.
func (s *Service) Delete(ctx context.Context, ownerID, taskID int64) error {
	return s.repo.DeleteTask(ctx, taskID, ownerID)
}

func parseDeadline(value string) (sql.NullTime, error) {
	if value == "" {
		return sql.NullTime{}, nil
	}
	parsed, err := time.Parse(DeadlineFormat, value)
	if err != nil {
		return sql.NullTime{}, ErrInvalidDeadline
	}
	return sql.NullTime{Time: parsed, Valid: true}, nil
}
