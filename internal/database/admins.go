package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/entarch/archcat-go/internal/apptype"
	"github.com/entarch/archcat-go/internal/metrics"
)

// GetAdmin retrieves an administrator record by username.
func (dm *DBManager) GetAdmin(ctx context.Context, username string) (*apptype.Admin, error) {
	done := metrics.TimeOp("db_get_admin")
	success := false
	defer func() { done(success) }()

	stmt, err := dm.getPreparedStmt(ctx,
		"SELECT username, password_hash, role, login_attempts, last_login_attempt, last_login, is_active FROM admins WHERE username = ?")
	if err != nil {
		return nil, err
	}

	var admin apptype.Admin
	var lastAttempt, lastLogin sql.NullString
	var isActive int
	err = stmt.QueryRowContext(ctx, username).Scan(
		&admin.Username, &admin.PasswordHash, &admin.Role,
		&admin.LoginAttempts, &lastAttempt, &lastLogin, &isActive)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("admin %q: %w", username, apptype.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get admin %q: %w", username, err)
	}
	admin.IsActive = isActive != 0
	if lastAttempt.Valid && lastAttempt.String != "" {
		t := dm.parseTime(lastAttempt)
		admin.LastLoginAttempt = &t
	}
	if lastLogin.Valid && lastLogin.String != "" {
		t := dm.parseTime(lastLogin)
		admin.LastLogin = &t
	}

	success = true
	return &admin, nil
}

// UpsertAdmin creates or replaces an administrator record.
func (dm *DBManager) UpsertAdmin(ctx context.Context, admin *apptype.Admin) error {
	done := metrics.TimeOp("db_upsert_admin")
	success := false
	defer func() { done(success) }()

	isActive := 0
	if admin.IsActive {
		isActive = 1
	}
	_, err := dm.db.ExecContext(ctx, `INSERT INTO admins (username, password_hash, role, login_attempts, is_active)
        VALUES (?, ?, ?, 0, ?)
        ON CONFLICT(username) DO UPDATE SET password_hash = excluded.password_hash, role = excluded.role, is_active = excluded.is_active`,
		admin.Username, admin.PasswordHash, admin.Role, isActive)
	if err != nil {
		return fmt.Errorf("failed to upsert admin %q: %w", admin.Username, err)
	}

	success = true
	return nil
}

// RecordFailedLogin writes the new attempt count and stamps the attempt time.
// The caller computes the count so an expired lockout window restarts at one.
func (dm *DBManager) RecordFailedLogin(ctx context.Context, username string, attempts int, at time.Time) error {
	_, err := dm.db.ExecContext(ctx,
		"UPDATE admins SET login_attempts = ?, last_login_attempt = ? WHERE username = ?",
		attempts, at.UTC().Format(timeLayout), username)
	if err != nil {
		return fmt.Errorf("failed to record failed login for %q: %w", username, err)
	}
	return nil
}

// RecordSuccessfulLogin resets the attempt counter and stamps the login time.
func (dm *DBManager) RecordSuccessfulLogin(ctx context.Context, username string, at time.Time) error {
	stamp := at.UTC().Format(timeLayout)
	_, err := dm.db.ExecContext(ctx,
		"UPDATE admins SET login_attempts = 0, last_login_attempt = ?, last_login = ? WHERE username = ?",
		stamp, stamp, username)
	if err != nil {
		return fmt.Errorf("failed to record login for %q: %w", username, err)
	}
	return nil
}
