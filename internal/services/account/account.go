// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package account implements registration, login and the token-based
// verification and password-reset flows.
package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"codeberg.org/oliverandrich/taskmanager/internal/models"
	"codeberg.org/oliverandrich/taskmanager/internal/repository"
	"codeberg.org/oliverandrich/taskmanager/internal/services/google"
	"codeberg.org/oliverandrich/taskmanager/internal/services/token"
)

// ResetTokenTTL is how long a password reset token stays valid.
// Verification tokens do not expire.
const ResetTokenTTL = 15 * time.Minute

var (
	ErrDuplicateUser      = errors.New("email or username already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrAccountInactive    = errors.New("account is not active")
	ErrTokenInvalid       = errors.New("invalid or expired token")
	ErrInvalidEmail       = errors.New("invalid email format")
)

// Mailer sends account-related notifications. Delivery failures are logged
// and swallowed; no operation fails because an email did not go out.
type Mailer interface {
	SendVerification(toEmail, token string) error
	SendPasswordReset(toEmail, token string) error
}

// Service is the user directory.
type Service struct {
	repo   *repository.Repository
	tokens *token.Service
	mailer Mailer
}

// NewService creates an account service. The mailer may be nil, in which
// case no mail is sent.
func NewService(repo *repository.Repository, tokens *token.Service, mailer Mailer) *Service {
	return &Service{
		repo:   repo,
		tokens: tokens,
		mailer: mailer,
	}
}

// Register creates a new local account. The account starts unverified and
// inactive; a verification link is mailed out best-effort.
func (s *Service) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}

	_, err := s.repo.GetUserByEmailOrUsername(ctx, email, username)
	if err == nil {
		return nil, ErrDuplicateUser
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	passwordHash, err := s.tokens.HashPassword(password)
	if err != nil {
		return nil, err
	}
	verificationToken, err := s.tokens.OpaqueToken()
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:          username,
		Email:             email,
		PasswordHash:      sql.NullString{String: passwordHash, Valid: true},
		VerificationToken: sql.NullString{String: verificationToken, Valid: true},
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.sendVerification(user.Email, verificationToken)

	slog.Info("register_success", "user_id", user.ID, "email", email)
	return user, nil
}

// VerifyEmail consumes a verification token, marking the account verified
// and active. Unknown or already-consumed tokens fail.
func (s *Service) VerifyEmail(ctx context.Context, verificationToken string) error {
	user, err := s.repo.GetUserByVerificationToken(ctx, verificationToken)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTokenInvalid
		}
		return fmt.Errorf("failed to look up verification token: %w", err)
	}

	if err := s.repo.MarkEmailVerified(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to mark email verified: %w", err)
	}

	slog.Info("email_verified", "user_id", user.ID)
	return nil
}

// ResendVerification re-sends the verification link. It succeeds regardless
// of whether the email is registered, to prevent account enumeration. An
// existing token is reused rather than replaced.
func (s *Service) ResendVerification(ctx context.Context, email string) error {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}
	if user.EmailVerified {
		return nil
	}

	verificationToken := user.VerificationToken.String
	if verificationToken == "" {
		verificationToken, err = s.tokens.OpaqueToken()
		if err != nil {
			return err
		}
		if err := s.repo.SetVerificationToken(ctx, user.ID, verificationToken); err != nil {
			return fmt.Errorf("failed to store verification token: %w", err)
		}
	}

	s.sendVerification(user.Email, verificationToken)
	return nil
}

// Login authenticates with email and password. Unknown users and wrong
// passwords are indistinguishable; unverified and inactive accounts are
// reported as such, in that order.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Constant-time: always perform a bcrypt comparison
			s.tokens.VerifyDummy(password)
			slog.Warn("login_failed", "email", email, "reason", "user_not_found")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !user.PasswordHash.Valid || !s.tokens.VerifyPassword(password, user.PasswordHash.String) {
		slog.Warn("login_failed", "email", email, "reason", "invalid_password")
		return nil, ErrInvalidCredentials
	}

	if !user.EmailVerified {
		slog.Warn("login_failed", "email", email, "reason", "email_not_verified")
		return nil, ErrEmailNotVerified
	}
	if !user.IsActive {
		slog.Warn("login_failed", "email", email, "reason", "account_inactive")
		return nil, ErrAccountInactive
	}

	slog.Info("login_success", "user_id", user.ID)
	return user, nil
}

// ForgotPassword mints a time-boxed reset token and mails the reset link.
// It succeeds regardless of whether the email is registered, to prevent
// account enumeration. A prior token is overwritten.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	resetToken, err := s.tokens.OpaqueToken()
	if err != nil {
		return err
	}
	if err := s.repo.SetResetToken(ctx, user.ID, resetToken, time.Now().Add(ResetTokenTTL)); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	if s.mailer != nil {
		if err := s.mailer.SendPasswordReset(user.Email, resetToken); err != nil {
			slog.Error("reset_email_failed", "email", user.Email, "error", err)
		}
	}
	return nil
}

// CheckResetToken reports whether a reset token is known and unexpired.
func (s *Service) CheckResetToken(ctx context.Context, resetToken string) error {
	_, err := s.lookupResetToken(ctx, resetToken)
	return err
}

// ResetPassword consumes an unexpired reset token and stores a new password.
func (s *Service) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	user, err := s.lookupResetToken(ctx, resetToken)
	if err != nil {
		return err
	}

	passwordHash, err := s.tokens.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.repo.ResetPassword(ctx, user.ID, passwordHash); err != nil {
		return fmt.Errorf("failed to reset password: %w", err)
	}

	slog.Info("password_reset", "user_id", user.ID)
	return nil
}

// ResolveGoogleUser maps a Google profile onto a local account: match by
// subject ID or email, create a verified passwordless account when neither
// matches, and backfill the Google link when matched by email only.
func (s *Service) ResolveGoogleUser(ctx context.Context, profile *google.Profile) (*models.User, error) {
	user, err := s.repo.GetUserByGoogleIDOrEmail(ctx, profile.Sub, profile.Email)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("failed to look up user: %w", err)
		}

		user = &models.User{
			Username:       usernameFromEmail(profile.Email),
			Email:          profile.Email,
			GoogleID:       sql.NullString{String: profile.Sub, Valid: true},
			ProfilePicture: sql.NullString{String: profile.Picture, Valid: profile.Picture != ""},
			EmailVerified:  true,
			IsActive:       true,
		}
		if err := s.repo.CreateUser(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		slog.Info("google_user_created", "user_id", user.ID)
		return user, nil
	}

	if !user.GoogleID.Valid {
		if err := s.repo.LinkGoogleAccount(ctx, user.ID, profile.Sub, profile.Picture); err != nil {
			return nil, fmt.Errorf("failed to link google account: %w", err)
		}
		slog.Info("google_account_linked", "user_id", user.ID)
		return s.repo.GetUserByID(ctx, user.ID)
	}

	return user, nil
}

func (s *Service) lookupResetToken(ctx context.Context, resetToken string) (*models.User, error) {
	if resetToken == "" {
		return nil, ErrTokenInvalid
	}
	user, err := s.repo.GetUserByResetToken(ctx, resetToken)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTokenInvalid
		}
		return nil, fmt.Errorf("failed to look up reset token: %w", err)
	}
	if !user.ResetTokenExpires.Valid || time.Now().After(user.ResetTokenExpires.Time) {
		return nil, ErrTokenInvalid
	}
	return user, nil
}

func (s *Service) sendVerification(email, verificationToken string) {
	if s.mailer == nil {
		return
	}
	if err := s.mailer.SendVerification(email, verificationToken); err != nil {
		slog.Error("verification_email_failed", "email", email, "error", err)
	}
}

func usernameFromEmail(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}
