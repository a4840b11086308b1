// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package task_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/oliverandrich/taskmanager/internal/models"
	"codeberg.org/oliverandrich/taskmanager/internal/repository"
	"codeberg.org/oliverandrich/taskmanager/internal/services/task"
	"codeberg.org/oliverandrich/taskmanager/internal/testutil"
)

func newTaskService(t *testing.T) (*task.Service, *models.User, *models.User) {
	t.Helper()
	_, repo := testutil.NewTestDB(t)
	alice := testutil.NewTestUser(t, repo, "alice", "alice@example.com")
	bob := testutil.NewTestUser(t, repo, "bob", "bob@example.com")
	return task.NewService(repo), alice, bob
}

func TestCreateTask(t *testing.T) {
	t.Parallel()
	svc, alice, _ := newTaskService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, alice.ID, task.Params{
		Title:       "Write report",
		Description: "quarterly numbers",
		Deadline:    "2026-09-30",
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.False(t, created.IsCompleted)
	require.True(t, created.Deadline.Valid)
	assert.Equal(t, "2026-09-30", created.Deadline.Time.Format(task.DeadlineFormat))
}

func TestCreateTaskNoDeadline(t *testing.T) {
	t.Parallel()
	svc, alice, _ := newTaskService(t)

	created, err := svc.Create(context.Background(), alice.ID, task.Params{Title: "Untimed"})
	require.NoError(t, err)
	assert.False(t, created.Deadline.Valid)
	assert.Empty(t, created.DeadlineString())
}

func TestCreateTaskValidation(t *testing.T) {
	t.Parallel()
	svc, alice, _ := newTaskService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, alice.ID, task.Params{Title: "   "})
	assert.ErrorIs(t, err, task.ErrTitleRequired)

	_, err = svc.Create(ctx, alice.ID, task.Params{Title: "x", Deadline: "30.09.2026"})
	assert.ErrorIs(t, err, task.ErrInvalidDeadline)
}

func TestListOnlyOwnTasks(t *testing.T) {
	t.Parallel()
	svc, alice, bob := newTaskService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, alice.ID, task.Params{Title: "alice 1"})
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)
	_, err = svc.Create(ctx, alice.ID, task.Params{Title: "alice 2"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, bob.ID, task.Params{Title: "bob 1"})
	require.NoError(t, err)

	tasks, err := svc.List(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "alice 2", tasks[0].Title)
	assert.Equal(t, "alice 1", tasks[1].Title)
}

func TestUpdateKeepsDeadlineWhenEmpty(t *testing.T) {
	t.Parallel()
	svc, alice, _ := newTaskService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, alice.ID, task.Params{Title: "t", Deadline: "2026-09-30"})
	require.NoError(t, err)

	require.NoError(t, svc.Update(ctx, alice.ID, created.ID, task.Params{
		Title:       "renamed",
		Description: "updated",
	}))

	updated, err := svc.Get(ctx, alice.ID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)
	assert.Equal(t, "updated", updated.Description)
	require.True(t, updated.Deadline.Valid)
	assert.Equal(t, "2026-09-30", updated.Deadline.Time.Format(task.DeadlineFormat))
}

func TestUpdateReplacesDeadline(t *testing.T) {
	t.Parallel()
	svc, alice, _ := newTaskService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, alice.ID, task.Params{Title: "t", Deadline: "2026-09-30"})
	require.NoError(t, err)

	require.NoError(t, svc.Update(ctx, alice.ID, created.ID, task.Params{
		Title:    "t",
		Deadline: "2026-12-24",
	}))

	updated, err := svc.Get(ctx, alice.ID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "2026-12-24", updated.Deadline.Time.Format(task.DeadlineFormat))
}

func TestOwnerScoping(t *testing.T) {
	t.Parallel()
	svc, alice, bob := newTaskService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, alice.ID, task.Params{Title: "private"})
	require.NoError(t, err)

	_, err = svc.Get(ctx, bob.ID, created.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, svc.Update(ctx, bob.ID, created.ID, task.Params{Title: "stolen"}), repository.ErrNotFound)
	assert.ErrorIs(t, svc.Complete(ctx, bob.ID, created.ID), repository.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, bob.ID, created.ID), repository.ErrNotFound)

	// Alice's task is untouched.
	got, err := svc.Get(ctx, alice.ID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "private", got.Title)
	assert.False(t, got.IsCompleted)
}

func TestCompleteAndDelete(t *testing.T) {
	t.Parallel()
	svc, alice, _ := newTaskService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, alice.ID, task.Params{Title: "finish me"})
	require.NoError(t, err)

	require.NoError(t, svc.Complete(ctx, alice.ID, created.ID))
	got, err := svc.Get(ctx, alice.ID, created.ID)
	require.NoError(t, err)
	assert.True(t, got.IsCompleted)

	require.NoError(t, svc.Delete(ctx, alice.ID, created.ID))
	_, err = svc.Get(ctx, alice.ID, created.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
