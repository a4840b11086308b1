// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const stateTTL = 5 * time.Minute

// GoogleLogin starts the OAuth flow by redirecting to Google's consent
// screen with a fresh state value bound to the browser.
func (h *Handlers) GoogleLogin(c echo.Context) error {
	if !h.google.Enabled() {
		return h.render(c, http.StatusNotFound, "error.html", map[string]any{
			"Status":  "404 Not Found",
			"Message": "Google sign-in is not configured.",
		})
	}

	state := uuid.NewString()
	c.SetCookie(&http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   int(stateTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.SecureCookies(),
		SameSite: http.SameSiteLaxMode,
	})

	return c.Redirect(http.StatusSeeOther, h.google.AuthCodeURL(state))
}

// GoogleCallback completes the OAuth flow: verify the state, trade the code
// for the profile, resolve it to a local account and start a session.
func (h *Handlers) GoogleCallback(c echo.Context) error {
	if !h.google.Enabled() {
		return c.Redirect(http.StatusSeeOther, "/users/login")
	}

	stateCookie, err := c.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" ||
		subtle.ConstantTimeCompare([]byte(stateCookie.Value), []byte(c.QueryParam("state"))) != 1 {
		slog.Warn("google_callback_rejected", "reason", "state_mismatch")
		return h.loginFailed(c, "Sign-in with Google failed. Please try again.")
	}
	h.clearCookie(c, stateCookieName)

	if errParam := c.QueryParam("error"); errParam != "" {
		slog.Warn("google_callback_rejected", "reason", errParam)
		return h.loginFailed(c, "Sign-in with Google was cancelled.")
	}

	code := c.QueryParam("code")
	if code == "" {
		return h.loginFailed(c, "Sign-in with Google failed. Please try again.")
	}

	accessToken, err := h.google.Exchange(c.Request().Context(), code)
	if err != nil {
		slog.Error("google_exchange_failed", "error", err)
		return h.loginFailed(c, "Sign-in with Google failed. Please try again.")
	}

	profile, err := h.google.FetchProfile(c.Request().Context(), accessToken)
	if err != nil {
		slog.Error("google_profile_failed", "error", err)
		return h.loginFailed(c, "Sign-in with Google failed. Please try again.")
	}

	user, err := h.accounts.ResolveGoogleUser(c.Request().Context(), profile)
	if err != nil {
		return err
	}

	sessionToken, err := h.tokens.IssueSession(user.ID)
	if err != nil {
		return err
	}
	h.setSessionCookie(c, sessionToken)
	return c.Redirect(http.StatusSeeOther, "/dashboard")
}

func (h *Handlers) loginFailed(c echo.Context, message string) error {
	h.setFlash(c, message)
	return c.Redirect(http.StatusSeeOther, "/users/login")
}
