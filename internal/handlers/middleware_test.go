// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/oliverandrich/taskmanager/internal/auth"
	"codeberg.org/oliverandrich/taskmanager/internal/handlers"
	"codeberg.org/oliverandrich/taskmanager/internal/testutil"
)

func TestSessionMiddlewareResolvesUser(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	alice := testutil.NewTestUser(t, f.repo, "alice", "alice@example.com")

	sessionToken, err := f.tokens.IssueSession(alice.ID)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: sessionToken})
	c, _ := testutil.NewEchoContext(f.e, req)

	mw := handlers.SessionMiddleware(f.tokens, f.repo)
	var resolved bool
	err = mw(func(c echo.Context) error {
		user, ok := auth.UserFrom(c.Request().Context())
		require.True(t, ok)
		assert.Equal(t, alice.ID, user.ID)
		resolved = true
		return nil
	})(c)
	require.NoError(t, err)
	assert.True(t, resolved)
}

func TestSessionMiddlewareIgnoresGarbage(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: "not-a-token"})
	c, _ := testutil.NewEchoContext(f.e, req)

	mw := handlers.SessionMiddleware(f.tokens, f.repo)
	err := mw(func(c echo.Context) error {
		_, ok := auth.UserFrom(c.Request().Context())
		assert.False(t, ok)
		return nil
	})(c)
	require.NoError(t, err)
}

func TestSessionMiddlewareMissingCookie(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c, _ := testutil.NewEchoContext(f.e, req)

	mw := handlers.SessionMiddleware(f.tokens, f.repo)
	err := mw(func(c echo.Context) error {
		_, ok := auth.UserFrom(c.Request().Context())
		assert.False(t, ok)
		return nil
	})(c)
	require.NoError(t, err)
}

func TestRequireAuthRedirectsToLogin(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	c, rec := testutil.NewEchoContext(f.e, req)

	err := f.h.RequireAuth(func(c echo.Context) error {
		t.Fatal("handler must not run")
		return nil
	})(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/users/login", rec.Header().Get(echo.HeaderLocation))

	res := rec.Result()
	defer func() { _ = res.Body.Close() }()
	var flash string
	for _, cookie := range res.Cookies() {
		if cookie.Name == "flash_message" {
			flash, _ = url.QueryUnescape(cookie.Value)
		}
	}
	assert.Equal(t, "Please log in to access this page.", flash)
}

func TestRequireAuthPassesAuthenticated(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	alice := testutil.NewTestUser(t, f.repo, "alice", "alice@example.com")

	req := asUser(httptest.NewRequest(http.MethodGet, "/dashboard", nil), alice)
	c, _ := testutil.NewEchoContext(f.e, req)

	var called bool
	err := f.h.RequireAuth(func(c echo.Context) error {
		called = true
		return nil
	})(c)
	require.NoError(t, err)
	assert.True(t, called)
}
