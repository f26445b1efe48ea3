// Package auth verifies administrator credentials with bcrypt hashing and a
// fixed-window lockout after repeated failures.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/entarch/archcat-go/internal/apptype"
)

const (
	// MaxAttempts failed logins within the lockout window lock the account.
	MaxAttempts = 5
	// LockoutWindow is how long an account stays locked after too many failures.
	LockoutWindow = 5 * time.Minute
)

// ErrInvalidCredentials is returned for a wrong password, an unknown
// username, or a deactivated account. Callers must not distinguish the cases.
var ErrInvalidCredentials = errors.New("invalid credentials")

// LockedError reports an account lockout and how long until retry is allowed.
type LockedError struct {
	RetryAfter time.Duration
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("account locked, retry in %s", e.RetryAfter.Round(time.Second))
}

// AdminStore is the persistence contract the manager drives.
type AdminStore interface {
	GetAdmin(ctx context.Context, username string) (*apptype.Admin, error)
	UpsertAdmin(ctx context.Context, admin *apptype.Admin) error
	RecordFailedLogin(ctx context.Context, username string, attempts int, at time.Time) error
	RecordSuccessfulLogin(ctx context.Context, username string, at time.Time) error
}

// Manager authenticates admins against an AdminStore.
type Manager struct {
	store AdminStore
	now   func() time.Time
}

// NewManager returns a manager using the wall clock.
func NewManager(store AdminStore) *Manager {
	return &Manager{store: store, now: time.Now}
}

// NewManagerWithClock returns a manager with an injected clock, for tests.
func NewManagerWithClock(store AdminStore, now func() time.Time) *Manager {
	return &Manager{store: store, now: now}
}

// Login verifies a username/password pair. It returns the admin on success,
// ErrInvalidCredentials on bad input, or a LockedError while the account is
// locked out. Failed attempts are counted; a success resets the counter.
func (m *Manager) Login(ctx context.Context, username, password string) (*apptype.Admin, error) {
	admin, err := m.store.GetAdmin(ctx, username)
	if err != nil {
		if errors.Is(err, apptype.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !admin.IsActive {
		return nil, ErrInvalidCredentials
	}

	now := m.now()
	if admin.LoginAttempts >= MaxAttempts && admin.LastLoginAttempt != nil {
		elapsed := now.Sub(*admin.LastLoginAttempt)
		if elapsed < LockoutWindow {
			return nil, &LockedError{RetryAfter: LockoutWindow - elapsed}
		}
		// Window expired; the next failure starts a fresh count.
		admin.LoginAttempts = 0
	}

	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) != nil {
		if err := m.store.RecordFailedLogin(ctx, username, admin.LoginAttempts+1, now); err != nil {
			return nil, err
		}
		return nil, ErrInvalidCredentials
	}

	if err := m.store.RecordSuccessfulLogin(ctx, username, now); err != nil {
		return nil, err
	}
	return admin, nil
}

// CreateAdmin hashes the password and stores an active admin record.
func (m *Manager) CreateAdmin(ctx context.Context, username, password, role string) error {
	if username == "" || password == "" {
		return fmt.Errorf("%w: username and password are required", apptype.ErrInvalidData)
	}
	if role == "" {
		role = "admin"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return m.store.UpsertAdmin(ctx, &apptype.Admin{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
	})
}
