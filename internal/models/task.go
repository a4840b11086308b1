// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import (
	"database/sql"
	"time"
)

// Task belongs to exactly one user. All access is scoped by OwnerID.
type Task struct { //nolint:govet // fieldalignment: readability over optimization
	ID          int64        `db:"id" json:"id"`
	Title       string       `db:"title" json:"title"`
	Description string       `db:"description" json:"description"`
	Deadline    sql.NullTime `db:"deadline" json:"deadline"`
	IsCompleted bool         `db:"is_completed" json:"is_completed"`
	OwnerID     int64        `db:"owner_id" json:"owner_id"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updated_at"`
}

// DeadlineString formats the deadline for display, empty when unset.
func (t *Task) DeadlineString() string {
	if !t.Deadline.Valid {
		return ""
	}
	return t.Deadline.Time.Format("2006-01-02")
}
