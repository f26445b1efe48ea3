package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/entarch/archcat-go/internal/apptype"
)

// memStore is an in-memory AdminStore for manager tests.
type memStore struct {
	admins map[string]*apptype.Admin
}

func newMemStore() *memStore {
	return &memStore{admins: make(map[string]*apptype.Admin)}
}

func (m *memStore) GetAdmin(ctx context.Context, username string) (*apptype.Admin, error) {
	admin, ok := m.admins[username]
	if !ok {
		return nil, apptype.ErrNotFound
	}
	copy := *admin
	return &copy, nil
}

func (m *memStore) UpsertAdmin(ctx context.Context, admin *apptype.Admin) error {
	copy := *admin
	m.admins[admin.Username] = &copy
	return nil
}

func (m *memStore) RecordFailedLogin(ctx context.Context, username string, attempts int, at time.Time) error {
	admin := m.admins[username]
	admin.LoginAttempts = attempts
	admin.LastLoginAttempt = &at
	return nil
}

func (m *memStore) RecordSuccessfulLogin(ctx context.Context, username string, at time.Time) error {
	admin := m.admins[username]
	admin.LoginAttempts = 0
	admin.LastLoginAttempt = &at
	admin.LastLogin = &at
	return nil
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func setupManager(t *testing.T) (*Manager, *memStore, *time.Time) {
	store := newMemStore()
	store.admins["alice"] = &apptype.Admin{
		Username:     "alice",
		PasswordHash: hashOf(t, "s3cret"),
		Role:         "admin",
		IsActive:     true,
	}
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := &now
	return NewManagerWithClock(store, func() time.Time { return *clock }), store, clock
}

func TestLoginSuccess(t *testing.T) {
	mgr, store, _ := setupManager(t)

	admin, err := mgr.Login(context.Background(), "alice", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "admin", admin.Role)
	assert.NotNil(t, store.admins["alice"].LastLogin)
}

func TestLoginWrongPassword(t *testing.T) {
	mgr, store, _ := setupManager(t)

	_, err := mgr.Login(context.Background(), "alice", "nope")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, 1, store.admins["alice"].LoginAttempts)
}

func TestLoginUnknownUserAndInactive(t *testing.T) {
	mgr, store, _ := setupManager(t)

	_, err := mgr.Login(context.Background(), "ghost", "x")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	store.admins["alice"].IsActive = false
	_, err = mgr.Login(context.Background(), "alice", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginLockoutAfterMaxAttempts(t *testing.T) {
	mgr, store, _ := setupManager(t)
	ctx := context.Background()

	for i := 0; i < MaxAttempts; i++ {
		_, err := mgr.Login(ctx, "alice", "nope")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}
	assert.Equal(t, MaxAttempts, store.admins["alice"].LoginAttempts)

	// Even the right password is rejected while locked.
	_, err := mgr.Login(ctx, "alice", "s3cret")
	var locked *LockedError
	require.True(t, errors.As(err, &locked))
	assert.Greater(t, locked.RetryAfter, time.Duration(0))
	assert.LessOrEqual(t, locked.RetryAfter, LockoutWindow)
}

func TestLoginLockoutExpires(t *testing.T) {
	mgr, store, clock := setupManager(t)
	ctx := context.Background()

	for i := 0; i < MaxAttempts; i++ {
		_, _ = mgr.Login(ctx, "alice", "nope")
	}

	*clock = clock.Add(LockoutWindow + time.Second)

	admin, err := mgr.Login(ctx, "alice", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "alice", admin.Username)
	assert.Zero(t, store.admins["alice"].LoginAttempts)
}

func TestLoginLockoutExpiryRestartsCount(t *testing.T) {
	mgr, store, clock := setupManager(t)
	ctx := context.Background()

	for i := 0; i < MaxAttempts; i++ {
		_, _ = mgr.Login(ctx, "alice", "nope")
	}
	*clock = clock.Add(LockoutWindow + time.Second)

	// A failure after the window starts a fresh count, not a re-lock.
	_, err := mgr.Login(ctx, "alice", "nope")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, 1, store.admins["alice"].LoginAttempts)

	_, err = mgr.Login(ctx, "alice", "s3cret")
	assert.NoError(t, err)
}

func TestCreateAdmin(t *testing.T) {
	store := newMemStore()
	mgr := NewManager(store)
	ctx := context.Background()

	require.NoError(t, mgr.CreateAdmin(ctx, "bob", "hunter2", ""))
	admin := store.admins["bob"]
	require.NotNil(t, admin)
	assert.Equal(t, "admin", admin.Role)
	assert.True(t, admin.IsActive)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("hunter2")))

	assert.ErrorIs(t, mgr.CreateAdmin(ctx, "", "x", ""), apptype.ErrInvalidData)
	assert.ErrorIs(t, mgr.CreateAdmin(ctx, "x", "", ""), apptype.ErrInvalidData)

	_, err := mgr.Login(ctx, "bob", "hunter2")
	assert.NoError(t, err)
}
