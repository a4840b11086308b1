// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package token_test

import (
	"testing"
	"time"

	"codeberg.org/oliverandrich/taskmanager/internal/services/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T, ttl time.Duration) *token.Service {
	t.Helper()
	svc, err := token.NewService("test-secret", ttl)
	require.NoError(t, err)
	return svc
}

func TestNewService_MissingSecret(t *testing.T) {
	_, err := token.NewService("", time.Minute)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "signing secret is required")
}

func TestHashAndVerifyPassword(t *testing.T) {
	svc := newService(t, time.Minute)

	hash, err := svc.HashPassword("hunter2hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2hunter2", hash)

	assert.True(t, svc.VerifyPassword("hunter2hunter2", hash))
	assert.False(t, svc.VerifyPassword("wrong", hash))
}

func TestIssueAndResolveSession(t *testing.T) {
	svc := newService(t, 30*time.Minute)

	tok, err := svc.IssueSession(42)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	userID, err := svc.ResolveSession(tok)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
}

func TestResolveSession_Expired(t *testing.T) {
	svc := newService(t, -time.Minute)

	tok, err := svc.IssueSession(42)
	require.NoError(t, err)

	_, err = svc.ResolveSession(tok)
	assert.ErrorIs(t, err, token.ErrInvalidSession)
}

func TestResolveSession_WrongSecret(t *testing.T) {
	svc := newService(t, time.Minute)
	other, err := token.NewService("other-secret", time.Minute)
	require.NoError(t, err)

	tok, err := other.IssueSession(42)
	require.NoError(t, err)

	_, err = svc.ResolveSession(tok)
	assert.ErrorIs(t, err, token.ErrInvalidSession)
}

func TestResolveSession_Garbage(t *testing.T) {
	svc := newService(t, time.Minute)

	for _, tok := range []string{"", "not-a-token", "a.b.c"} {
		_, err := svc.ResolveSession(tok)
		assert.ErrorIs(t, err, token.ErrInvalidSession)
	}
}

func TestOpaqueToken(t *testing.T) {
	svc := newService(t, time.Minute)

	tok, err := svc.OpaqueToken()
	require.NoError(t, err)

	// 32 random bytes hex-encoded
	assert.Len(t, tok, 64)
}

func TestOpaqueToken_Unique(t *testing.T) {
	svc := newService(t, time.Minute)

	seen := make(map[string]bool)
	for range 10 {
		tok, err := svc.OpaqueToken()
		require.NoError(t, err)
		assert.False(t, seen[tok], "duplicate token generated")
		seen[tok] = true
	}
}
