// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"codeberg.org/oliverandrich/taskmanager/internal/models"
	"codeberg.org/oliverandrich/taskmanager/internal/repository"
	"codeberg.org/oliverandrich/taskmanager/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUser(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user := &models.User{
		Username:          "alice",
		Email:             "alice@example.com",
		PasswordHash:      sql.NullString{String: "hash", Valid: true},
		VerificationToken: sql.NullString{String: "tok", Valid: true},
	}

	err := repo.CreateUser(ctx, user)

	require.NoError(t, err)
	assert.NotZero(t, user.ID)

	got, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "alice@example.com", got.Email)
	assert.False(t, got.EmailVerified)
	assert.False(t, got.IsActive)
	assert.Equal(t, "tok", got.VerificationToken.String)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	testutil.NewTestUser(t, repo, "alice", "alice@example.com")

	err := repo.CreateUser(ctx, &models.User{Username: "other", Email: "alice@example.com"})

	require.Error(t, err)
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	testutil.NewTestUser(t, repo, "alice", "alice@example.com")

	err := repo.CreateUser(ctx, &models.User{Username: "alice", Email: "other@example.com"})

	require.Error(t, err)
}

func TestGetUserByEmail_NotFound(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	_, err := repo.GetUserByEmail(context.Background(), "nobody@example.com")

	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestGetUserByEmailOrUsername(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "alice", "alice@example.com")

	byEmail, err := repo.GetUserByEmailOrUsername(ctx, "alice@example.com", "nomatch")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	byUsername, err := repo.GetUserByEmailOrUsername(ctx, "nomatch@example.com", "alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byUsername.ID)

	_, err = repo.GetUserByEmailOrUsername(ctx, "nomatch@example.com", "nomatch")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestMarkEmailVerified_ConsumesToken(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user := &models.User{
		Username:          "bob",
		Email:             "bob@example.com",
		VerificationToken: sql.NullString{String: "verify-me", Valid: true},
	}
	require.NoError(t, repo.CreateUser(ctx, user))

	found, err := repo.GetUserByVerificationToken(ctx, "verify-me")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	require.NoError(t, repo.MarkEmailVerified(ctx, user.ID))

	got, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, got.EmailVerified)
	assert.True(t, got.IsActive)
	assert.False(t, got.VerificationToken.Valid)

	// Token is single use
	_, err = repo.GetUserByVerificationToken(ctx, "verify-me")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSetResetToken_OverwritesPrior(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "alice", "alice@example.com")
	expires := time.Now().Add(15 * time.Minute)

	require.NoError(t, repo.SetResetToken(ctx, user.ID, "first", expires))
	require.NoError(t, repo.SetResetToken(ctx, user.ID, "second", expires))

	_, err := repo.GetUserByResetToken(ctx, "first")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	got, err := repo.GetUserByResetToken(ctx, "second")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.True(t, got.ResetTokenExpires.Valid)
}

func TestResetPassword_ClearsToken(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "alice", "alice@example.com")
	require.NoError(t, repo.SetResetToken(ctx, user.ID, "tok", time.Now().Add(15*time.Minute)))

	require.NoError(t, repo.ResetPassword(ctx, user.ID, "new-hash"))

	got, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", got.PasswordHash.String)
	assert.False(t, got.ResetToken.Valid)
	assert.False(t, got.ResetTokenExpires.Valid)
}

func TestLinkGoogleAccount(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user := &models.User{Username: "carol", Email: "carol@example.com"}
	require.NoError(t, repo.CreateUser(ctx, user))

	require.NoError(t, repo.LinkGoogleAccount(ctx, user.ID, "google-sub-123", "https://example.com/p.jpg"))

	got, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "google-sub-123", got.GoogleID.String)
	assert.Equal(t, "https://example.com/p.jpg", got.ProfilePicture.String)
	assert.True(t, got.EmailVerified)
	assert.True(t, got.IsActive)
}

func TestLinkGoogleAccount_EmptyPictureStaysNull(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "carol", "carol@example.com")

	require.NoError(t, repo.LinkGoogleAccount(ctx, user.ID, "sub-1", ""))

	got, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, got.ProfilePicture.Valid)
}

func TestGetUserByGoogleIDOrEmail(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "carol", "carol@example.com")
	require.NoError(t, repo.LinkGoogleAccount(ctx, user.ID, "sub-1", ""))

	bySub, err := repo.GetUserByGoogleIDOrEmail(ctx, "sub-1", "nomatch@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, bySub.ID)

	byEmail, err := repo.GetUserByGoogleIDOrEmail(ctx, "no-sub", "carol@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	_, err = repo.GetUserByGoogleIDOrEmail(ctx, "no-sub", "nomatch@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
