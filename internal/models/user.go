// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import (
	"database/sql"
	"time"
)

// User is an account holder. Local accounts carry a password hash and go
// through email verification; Google-linked accounts may have no password.
type User struct { //nolint:govet // fieldalignment: readability over optimization
	ID                int64          `db:"id" json:"id"`
	Username          string         `db:"username" json:"username"`
	Email             string         `db:"email" json:"email"`
	PasswordHash      sql.NullString `db:"password_hash" json:"-"`
	GoogleID          sql.NullString `db:"google_id" json:"-"`
	ProfilePicture    sql.NullString `db:"profile_picture" json:"profile_picture"`
	EmailVerified     bool           `db:"email_verified" json:"email_verified"`
	IsActive          bool           `db:"is_active" json:"is_active"`
	VerificationToken sql.NullString `db:"verification_token" json:"-"`
	ResetToken        sql.NullString `db:"reset_token" json:"-"`
	ResetTokenExpires sql.NullTime   `db:"reset_token_expires" json:"-"`
	CreatedAt         time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at" json:"updated_at"`
}
