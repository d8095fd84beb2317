package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notetaker/storage"
)

func TestCreateUser(t *testing.T) {
	ctx := context.Background()
	svc := NewUsersService(storage.NewMemoryStore(), false)

	t.Run("SetsFields", func(t *testing.T) {
		user, err := svc.Create(ctx, "alice", "alice@example.com")
		require.NoError(t, err)

		assert.NotEmpty(t, user.ID)
		assert.Equal(t, "alice", user.Username)
		assert.Equal(t, "alice@example.com", user.Email)
		assert.False(t, user.CreatedAt.IsZero())
	})

	t.Run("RequiresUsername", func(t *testing.T) {
		_, err := svc.Create(ctx, "", "a@example.com")
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("RequiresEmail", func(t *testing.T) {
		_, err := svc.Create(ctx, "bob", "  ")
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("DuplicatesAllowedByDefault", func(t *testing.T) {
		_, err := svc.Create(ctx, "alice", "alice@example.com")
		assert.NoError(t, err)
	})
}

func TestCreateUserUniqueness(t *testing.T) {
	ctx := context.Background()
	svc := NewUsersService(storage.NewMemoryStore(), true)

	_, err := svc.Create(ctx, "alice", "alice@example.com")
	require.NoError(t, err)

	t.Run("RejectsDuplicateUsername", func(t *testing.T) {
		_, err := svc.Create(ctx, "alice", "other@example.com")
		assert.ErrorIs(t, err, ErrDuplicate)
	})

	t.Run("RejectsDuplicateEmail", func(t *testing.T) {
		_, err := svc.Create(ctx, "other", "alice@example.com")
		assert.ErrorIs(t, err, ErrDuplicate)
	})

	t.Run("AcceptsFreshUser", func(t *testing.T) {
		_, err := svc.Create(ctx, "bob", "bob@example.com")
		assert.NoError(t, err)
	})
}

func TestListUsersNewestFirst(t *testing.T) {
	ctx := context.Background()
	svc := NewUsersService(storage.NewMemoryStore(), false)

	_, err := svc.Create(ctx, "first", "first@example.com")
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	_, err = svc.Create(ctx, "second", "second@example.com")
	require.NoError(t, err)

	users, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "second", users[0].Username)
	assert.Equal(t, "first", users[1].Username)
}

func TestUpdateUser(t *testing.T) {
	ctx := context.Background()
	svc := NewUsersService(storage.NewMemoryStore(), false)

	created, err := svc.Create(ctx, "alice", "alice@example.com")
	require.NoError(t, err)

	t.Run("UpdatesWhitelistedFields", func(t *testing.T) {
		email := "new@example.com"
		updated, err := svc.Update(ctx, created.ID, UserUpdate{Email: &email})
		require.NoError(t, err)
		assert.Equal(t, "new@example.com", updated.Email)
		assert.Equal(t, "alice", updated.Username)
	})

	t.Run("NoRecognizedFields", func(t *testing.T) {
		_, err := svc.Update(ctx, created.ID, UserUpdate{})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("Missing", func(t *testing.T) {
		username := "ghost"
		_, err := svc.Update(ctx, "00000000-0000-0000-0000-000000000000", UserUpdate{Username: &username})
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestDeleteUserTwice(t *testing.T) {
	ctx := context.Background()
	svc := NewUsersService(storage.NewMemoryStore(), false)

	created, err := svc.Create(ctx, "alice", "alice@example.com")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))
	assert.ErrorIs(t, svc.Delete(ctx, created.ID), storage.ErrNotFound)
}
