// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"codeberg.org/oliverandrich/taskmanager/internal/services/account"
)

// RegisterPage renders the registration form.
func (h *Handlers) RegisterPage(c echo.Context) error {
	return h.render(c, http.StatusOK, "register.html", nil)
}

// Register creates a new account and shows the check-your-email page.
func (h *Handlers) Register(c echo.Context) error {
	username := c.FormValue("username")
	email := c.FormValue("email")
	password := c.FormValue("password")

	if password != c.FormValue("password_confirm") {
		return h.render(c, http.StatusOK, "register.html", map[string]any{
			"Error":    "Passwords do not match.",
			"Username": username,
			"Email":    email,
		})
	}

	_, err := h.accounts.Register(c.Request().Context(), username, email, password)
	if err != nil {
		var message string
		switch {
		case errors.Is(err, account.ErrDuplicateUser):
			message = "Email or username already registered."
		case errors.Is(err, account.ErrInvalidEmail):
			message = "Please enter a valid email address."
		default:
			return err
		}
		return h.render(c, http.StatusOK, "register.html", map[string]any{
			"Error":    message,
			"Username": username,
			"Email":    email,
		})
	}

	return h.render(c, http.StatusOK, "register_success.html", map[string]any{
		"Email": email,
	})
}

// VerifyEmail consumes the verification link from the email.
func (h *Handlers) VerifyEmail(c echo.Context) error {
	err := h.accounts.VerifyEmail(c.Request().Context(), c.QueryParam("token"))
	if err != nil {
		if errors.Is(err, account.ErrTokenInvalid) {
			return h.render(c, http.StatusBadRequest, "verify_failed.html", nil)
		}
		return err
	}
	return h.render(c, http.StatusOK, "verify_success.html", nil)
}

// ResendVerificationPage renders the resend form.
func (h *Handlers) ResendVerificationPage(c echo.Context) error {
	return h.render(c, http.StatusOK, "resend_verification.html", nil)
}

// ResendVerification re-sends the verification email. The response does not
// reveal whether the address is registered.
func (h *Handlers) ResendVerification(c echo.Context) error {
	if err := h.accounts.ResendVerification(c.Request().Context(), c.FormValue("email")); err != nil {
		return err
	}
	return h.render(c, http.StatusOK, "resend_verification_success.html", nil)
}

// LoginPage renders the login form.
func (h *Handlers) LoginPage(c echo.Context) error {
	return h.render(c, http.StatusOK, "login.html", map[string]any{
		"Flash":         h.popFlash(c),
		"GoogleEnabled": h.google.Enabled(),
	})
}

// Login authenticates with email and password and starts a session.
func (h *Handlers) Login(c echo.Context) error {
	email := c.FormValue("email")
	password := c.FormValue("password")

	user, err := h.accounts.Login(c.Request().Context(), email, password)
	if err != nil {
		var message string
		switch {
		case errors.Is(err, account.ErrInvalidCredentials):
			message = "Invalid email or password."
		case errors.Is(err, account.ErrEmailNotVerified):
			message = "Please verify your email before logging in."
		case errors.Is(err, account.ErrAccountInactive):
			message = "Your account is inactive."
		default:
			return err
		}
		return h.render(c, http.StatusUnauthorized, "login.html", map[string]any{
			"Error":         message,
			"Email":         email,
			"GoogleEnabled": h.google.Enabled(),
		})
	}

	sessionToken, err := h.tokens.IssueSession(user.ID)
	if err != nil {
		return err
	}
	h.setSessionCookie(c, sessionToken)
	return c.Redirect(http.StatusSeeOther, "/dashboard")
}

// Logout ends the session and returns to the landing page.
func (h *Handlers) Logout(c echo.Context) error {
	h.clearCookie(c, sessionCookieName)
	h.setFlash(c, "You have been logged out.")
	return c.Redirect(http.StatusSeeOther, "/")
}

// ForgotPasswordPage renders the reset-request form.
func (h *Handlers) ForgotPasswordPage(c echo.Context) error {
	return h.render(c, http.StatusOK, "forgot_password.html", nil)
}

// ForgotPassword mails a reset link. The response does not reveal whether
// the address is registered.
func (h *Handlers) ForgotPassword(c echo.Context) error {
	if err := h.accounts.ForgotPassword(c.Request().Context(), c.FormValue("email")); err != nil {
		return err
	}
	return h.render(c, http.StatusOK, "forgot_password_success.html", nil)
}

// ResetPasswordPage validates the reset link and renders the new-password
// form.
func (h *Handlers) ResetPasswordPage(c echo.Context) error {
	resetToken := c.QueryParam("token")
	if err := h.accounts.CheckResetToken(c.Request().Context(), resetToken); err != nil {
		if errors.Is(err, account.ErrTokenInvalid) {
			return h.render(c, http.StatusBadRequest, "reset_password_invalid.html", nil)
		}
		return err
	}
	return h.render(c, http.StatusOK, "reset_password.html", map[string]any{
		"Token": resetToken,
	})
}

// ResetPassword consumes the reset token and stores the new password.
func (h *Handlers) ResetPassword(c echo.Context) error {
	resetToken := c.FormValue("token")
	password := c.FormValue("password")

	if password != c.FormValue("confirm_password") {
		return h.render(c, http.StatusOK, "reset_password.html", map[string]any{
			"Error": "Passwords do not match.",
			"Token": resetToken,
		})
	}

	err := h.accounts.ResetPassword(c.Request().Context(), resetToken, password)
	if err != nil {
		if errors.Is(err, account.ErrTokenInvalid) {
			return h.render(c, http.StatusBadRequest, "reset_password_invalid.html", nil)
		}
		return err
	}
	return h.render(c, http.StatusOK, "reset_password_success.html", nil)
}
