// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"database/sql"
	"time"

	"codeberg.org/oliverandrich/taskmanager/internal/models"
)

// CreateUser inserts a new user and sets its ID.
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, email, password_hash, google_id, profile_picture, email_verified, is_active, verification_token)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.Username, user.Email, user.PasswordHash, user.GoogleID, user.ProfilePicture,
		user.EmailVerified, user.IsActive, user.VerificationToken)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	user.ID = id
	return nil
}

// GetUserByID retrieves a user by ID.
func (r *Repository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE id = ?`, id)
	if err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email address.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE email = ?`, email)
	if err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// GetUserByEmailOrUsername retrieves a user matching either the email or the
// username. Used by registration to detect duplicates in one query.
func (r *Repository) GetUserByEmailOrUsername(ctx context.Context, email, username string) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user,
		`SELECT * FROM users WHERE email = ? OR username = ?`, email, username)
	if err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// GetUserByVerificationToken retrieves a user by their verification token.
func (r *Repository) GetUserByVerificationToken(ctx context.Context, token string) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user,
		`SELECT * FROM users WHERE verification_token = ?`, token)
	if err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// GetUserByResetToken retrieves a user by their password reset token. Expiry
// is checked by the caller.
func (r *Repository) GetUserByResetToken(ctx context.Context, token string) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user,
		`SELECT * FROM users WHERE reset_token = ?`, token)
	if err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// GetUserByGoogleIDOrEmail retrieves a user matching either the Google
// subject ID or the email address.
func (r *Repository) GetUserByGoogleIDOrEmail(ctx context.Context, googleID, email string) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user,
		`SELECT * FROM users WHERE google_id = ? OR email = ?`, googleID, email)
	if err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// SetVerificationToken stores a new verification token for the user.
func (r *Repository) SetVerificationToken(ctx context.Context, userID int64, token string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET verification_token = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		token, userID)
	return err
}

// MarkEmailVerified marks the user verified and active and consumes the
// verification token.
func (r *Repository) MarkEmailVerified(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET email_verified = 1, is_active = 1, verification_token = NULL, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`, userID)
	return err
}

// SetResetToken stores a password reset token with its expiry, replacing any
// prior token.
func (r *Repository) SetResetToken(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET reset_token = ?, reset_token_expires = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		token, expiresAt, userID)
	return err
}

// ResetPassword stores a new password hash and consumes the reset token.
func (r *Repository) ResetPassword(ctx context.Context, userID int64, passwordHash string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, reset_token = NULL, reset_token_expires = NULL, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`, passwordHash, userID)
	return err
}

// LinkGoogleAccount backfills the Google identity on an existing user and
// marks the account verified and active.
func (r *Repository) LinkGoogleAccount(ctx context.Context, userID int64, googleID, picture string) error {
	pic := sql.NullString{String: picture, Valid: picture != ""}
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET google_id = ?, profile_picture = ?, email_verified = 1, is_active = 1, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`, googleID, pic, userID)
	return err
}
