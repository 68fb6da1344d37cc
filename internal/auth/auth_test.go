package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MetalTracker/internal/storage"
)

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc := NewService(storage.NewMemoryStore(), time.Hour)

	require.NoError(t, svc.Register(ctx, "alice", "correct horse"))
	assert.ErrorIs(t, svc.Register(ctx, "alice", "another one"), ErrUserExists)

	token, err := svc.Login(ctx, "alice", "correct horse")
	require.NoError(t, err)
	user, ok := svc.Validate(token)
	assert.True(t, ok)
	assert.Equal(t, "alice", user)

	_, err = svc.Login(ctx, "alice", "wrong password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "bob", "correct horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	svc.Logout(token)
	_, ok = svc.Validate(token)
	assert.False(t, ok)
}

func TestRegister_Validation(t *testing.T) {
	ctx := context.Background()
	svc := NewService(storage.NewMemoryStore(), 0)

	assert.ErrorIs(t, svc.Register(ctx, "", "password123"), ErrInvalidUsername)
	assert.ErrorIs(t, svc.Register(ctx, "bad\x00name", "password123"), ErrInvalidUsername)
	assert.ErrorIs(t, svc.Register(ctx, strings.Repeat("a", 129), "password123"), ErrInvalidUsername)
	assert.ErrorIs(t, svc.Register(ctx, "carol", "short"), ErrWeakPassword)
}

func TestStoredHashIsNotPlaintext(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	svc := NewService(store, time.Hour)
	require.NoError(t, svc.Register(ctx, "dave", "secret-password"))

	hash, ok, err := store.UserHash(ctx, "dave")
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotContains(t, hash, "secret-password")
	assert.True(t, strings.HasPrefix(hash, "$2"))
}

func TestSessionExpiry(t *testing.T) {
	ctx := context.Background()
	svc := NewService(storage.NewMemoryStore(), time.Minute)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	require.NoError(t, svc.Register(ctx, "erin", "password123"))
	token, err := svc.Login(ctx, "erin", "password123")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, ok := svc.Validate(token)
	assert.False(t, ok)
}
