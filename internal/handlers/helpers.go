// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"bytes"
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"

	"codeberg.org/oliverandrich/taskmanager/internal/templates"
)

// Cookie names. The session cookie holds a signed token, the flash cookie
// a one-shot message, the state cookie the pending OAuth state value.
const (
	sessionCookieName = "access_token"
	flashCookieName   = "flash_message"
	stateCookieName   = "oauth_state"
)

// render executes a page template, injecting the CSRF token for forms.
func (h *Handlers) render(c echo.Context, status int, name string, data map[string]any) error {
	if data == nil {
		data = map[string]any{}
	}
	if csrf, ok := c.Get("csrf").(string); ok {
		data["CSRF"] = csrf
	}

	var buf bytes.Buffer
	if err := templates.Render(&buf, name, data); err != nil {
		return err
	}
	return c.HTMLBlob(status, buf.Bytes())
}

func (h *Handlers) setSessionCookie(c echo.Context, sessionToken string) {
	c.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    sessionToken,
		Path:     "/",
		MaxAge:   int(h.tokens.SessionTTL().Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.SecureCookies(),
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handlers) clearCookie(c echo.Context, name string) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.SecureCookies(),
		SameSite: http.SameSiteLaxMode,
	})
}

// setFlash stores a one-shot message shown on the next rendered page.
func (h *Handlers) setFlash(c echo.Context, message string) {
	c.SetCookie(&http.Cookie{
		Name:     flashCookieName,
		Value:    url.QueryEscape(message),
		Path:     "/",
		MaxAge:   int((5 * time.Minute).Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.SecureCookies(),
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlash returns the pending flash message, if any, and clears it.
func (h *Handlers) popFlash(c echo.Context) string {
	cookie, err := c.Cookie(flashCookieName)
	if err != nil || cookie.Value == "" {
		return ""
	}
	h.clearCookie(c, flashCookieName)

	message, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return ""
	}
	return message
}
