package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/entarch/archcat-go/internal/apptype"
	"github.com/entarch/archcat-go/internal/metrics"
)

// LogAction records an admin action. Audit writes never fail the operation
// they describe; errors are logged and swallowed by the caller.
func (dm *DBManager) LogAction(ctx context.Context, username, action, entityType, entityID string, details json.RawMessage) error {
	done := metrics.TimeOp("db_log_action")
	success := false
	defer func() { done(success) }()

	var detailsVal any
	if len(details) > 0 {
		detailsVal = string(details)
	}
	_, err := dm.db.ExecContext(ctx,
		"INSERT INTO audit_logs (username, action, entity_type, entity_id, details, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		username, action, entityType, entityID, detailsVal, nowString())
	if err != nil {
		return fmt.Errorf("failed to write audit entry: %w", err)
	}

	success = true
	return nil
}

// ListAuditLog returns the most recent audit entries, newest first, optionally
// filtered by action.
func (dm *DBManager) ListAuditLog(ctx context.Context, action string, limit int) ([]apptype.AuditEntry, error) {
	done := metrics.TimeOp("db_list_audit_log")
	success := false
	defer func() { done(success) }()

	if limit <= 0 {
		limit = 50
	}

	query := "SELECT id, username, action, entity_type, entity_id, details, created_at FROM audit_logs"
	var args []any
	if action != "" {
		query += " WHERE action = ?"
		args = append(args, action)
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := dm.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w: %w", apptype.ErrUnavailable, err)
	}
	defer rows.Close()

	var entries []apptype.AuditEntry
	for rows.Next() {
		var entry apptype.AuditEntry
		var entityType, entityID, details, createdAt sql.NullString
		if err := rows.Scan(&entry.ID, &entry.Username, &entry.Action, &entityType, &entityID, &details, &createdAt); err != nil {
			dm.log.Warn("failed to scan audit row", zap.Error(err))
			continue
		}
		entry.EntityType = entityType.String
		entry.EntityID = entityID.String
		if details.Valid && details.String != "" {
			entry.Details = json.RawMessage(details.String)
		}
		entry.CreatedAt = dm.parseTime(createdAt)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit log: %w", err)
	}

	success = true
	return entries, nil
}
