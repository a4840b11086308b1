// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"

	"codeberg.org/oliverandrich/taskmanager/internal/models"
)

// CreateTask inserts a new task and sets its ID.
func (r *Repository) CreateTask(ctx context.Context, task *models.Task) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (title, description, deadline, is_completed, owner_id)
		 VALUES (?, ?, ?, ?, ?)`,
		task.Title, task.Description, task.Deadline, task.IsCompleted, task.OwnerID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	task.ID = id
	return nil
}

// ListTasksByOwner returns all tasks of the given owner, newest first.
func (r *Repository) ListTasksByOwner(ctx context.Context, ownerID int64) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.SelectContext(ctx, &tasks,
		`SELECT * FROM tasks WHERE owner_id = ? ORDER BY created_at DESC, id DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// GetTaskForOwner retrieves a task scoped by owner. A task owned by someone
// else is indistinguishable from a missing one.
func (r *Repository) GetTaskForOwner(ctx context.Context, taskID, ownerID int64) (*models.Task, error) {
	var task models.Task
	err := r.db.GetContext(ctx, &task,
		`SELECT * FROM tasks WHERE id = ? AND owner_id = ?`, taskID, ownerID)
	if err != nil {
		return nil, wrapError(err)
	}
	return &task, nil
}

// UpdateTask saves title, description and deadline, scoped by owner.
func (r *Repository) UpdateTask(ctx context.Context, task *models.Task) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET title = ?, description = ?, deadline = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND owner_id = ?`,
		task.Title, task.Description, task.Deadline, task.ID, task.OwnerID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// CompleteTask marks a task completed, scoped by owner.
func (r *Repository) CompleteTask(ctx context.Context, taskID, ownerID int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET is_completed = 1, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND owner_id = ?`,
		taskID, ownerID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// DeleteTask removes a task, scoped by owner.
func (r *Repository) DeleteTask(ctx context.Context, taskID, ownerID int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = ? AND owner_id = ?`, taskID, ownerID)
	if err != nil {
		return err
	}
	return requireRow(res)
}
