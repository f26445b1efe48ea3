package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/entarch/archcat-go/internal/apptype"
	"github.com/entarch/archcat-go/internal/metrics"
)

// entityExists checks an endpoint inside an open transaction.
func entityExists(ctx context.Context, tx *sql.Tx, id string) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx, "SELECT 1 FROM entities WHERE id = ?", id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check entity %q: %w", id, err)
	}
	return true, nil
}

// CreateRelationships creates typed links between existing entities and
// returns the minted ids. Both endpoints must exist.
func (dm *DBManager) CreateRelationships(ctx context.Context, relationships []apptype.RelationshipInput) ([]string, error) {
	done := metrics.TimeOp("db_create_relationships")
	success := false
	defer func() { done(success) }()

	tx, err := dm.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w: %w", apptype.ErrUnavailable, err)
	}
	defer tx.Rollback()

	ids := make([]string, 0, len(relationships))
	for _, rel := range relationships {
		if rel.SourceID == "" || rel.TargetID == "" || strings.TrimSpace(rel.Type) == "" {
			return nil, fmt.Errorf("%w: relationship needs source_id, target_id, and relationship_type", apptype.ErrInvalidData)
		}
		if rel.SourceID == rel.TargetID {
			return nil, fmt.Errorf("%w: relationship cannot link entity %q to itself", apptype.ErrInvalidData, rel.SourceID)
		}
		for _, endpoint := range []string{rel.SourceID, rel.TargetID} {
			ok, err := entityExists(ctx, tx, endpoint)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, fmt.Errorf("entity %q: %w", endpoint, apptype.ErrNotFound)
			}
		}

		id := uuid.NewString()
		_, err := tx.ExecContext(ctx,
			"INSERT INTO relationships (id, source_id, target_id, relationship_type, created_at) VALUES (?, ?, ?, ?, ?)",
			id, rel.SourceID, rel.TargetID, rel.Type, nowString())
		if err != nil {
			return nil, fmt.Errorf("failed to insert relationship %s -> %s: %w", rel.SourceID, rel.TargetID, err)
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	success = true
	return ids, nil
}

func (dm *DBManager) scanRelationships(rows *sql.Rows) ([]apptype.Relationship, error) {
	var relationships []apptype.Relationship
	for rows.Next() {
		var rel apptype.Relationship
		var createdAt sql.NullString
		if err := rows.Scan(&rel.ID, &rel.SourceID, &rel.TargetID, &rel.Type, &createdAt); err != nil {
			dm.log.Warn("failed to scan relationship row", zap.Error(err))
			continue
		}
		rel.CreatedAt = dm.parseTime(createdAt)
		relationships = append(relationships, rel)
	}
	return relationships, rows.Err()
}

// ListRelationshipsFor returns every relationship touching the entity, in
// either direction.
func (dm *DBManager) ListRelationshipsFor(ctx context.Context, entityID string) ([]apptype.Relationship, error) {
	done := metrics.TimeOp("db_list_relationships_for")
	success := false
	defer func() { done(success) }()

	stmt, err := dm.getPreparedStmt(ctx, `SELECT id, source_id, target_id, relationship_type, created_at
        FROM relationships WHERE source_id = ? OR target_id = ? ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	rows, err := stmt.QueryContext(ctx, entityID, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to query relationships: %w: %w", apptype.ErrUnavailable, err)
	}
	defer rows.Close()

	relationships, err := dm.scanRelationships(rows)
	if err != nil {
		return nil, err
	}
	success = true
	return relationships, nil
}

// ListAllRelationships returns every relationship in the catalog.
func (dm *DBManager) ListAllRelationships(ctx context.Context) ([]apptype.Relationship, error) {
	done := metrics.TimeOp("db_list_all_relationships")
	success := false
	defer func() { done(success) }()

	rows, err := dm.db.QueryContext(ctx,
		"SELECT id, source_id, target_id, relationship_type, created_at FROM relationships ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("failed to query relationships: %w: %w", apptype.ErrUnavailable, err)
	}
	defer rows.Close()

	relationships, err := dm.scanRelationships(rows)
	if err != nil {
		return nil, err
	}
	success = true
	return relationships, nil
}

// ListRelationshipsFilter narrows ListRelationships for admin views. Zero
// values mean "no filter". EntityID matches either endpoint.
type ListRelationshipsFilter struct {
	Type     string
	EntityID string
}

// ListRelationships returns relationships matching the filter.
func (dm *DBManager) ListRelationships(ctx context.Context, filter ListRelationshipsFilter) ([]apptype.Relationship, error) {
	done := metrics.TimeOp("db_list_relationships")
	success := false
	defer func() { done(success) }()

	query := "SELECT id, source_id, target_id, relationship_type, created_at FROM relationships"
	var conditions []string
	var args []any
	if filter.Type != "" {
		conditions = append(conditions, "relationship_type = ?")
		args = append(args, filter.Type)
	}
	if filter.EntityID != "" {
		conditions = append(conditions, "(source_id = ? OR target_id = ?)")
		args = append(args, filter.EntityID, filter.EntityID)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at, id"

	rows, err := dm.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query relationships: %w: %w", apptype.ErrUnavailable, err)
	}
	defer rows.Close()

	relationships, err := dm.scanRelationships(rows)
	if err != nil {
		return nil, err
	}
	success = true
	return relationships, nil
}

// UpdateRelationship changes the type of an existing relationship.
func (dm *DBManager) UpdateRelationship(ctx context.Context, id, relationshipType string) error {
	done := metrics.TimeOp("db_update_relationship")
	success := false
	defer func() { done(success) }()

	if strings.TrimSpace(relationshipType) == "" {
		return fmt.Errorf("%w: relationship_type must be a non-empty string", apptype.ErrInvalidData)
	}
	result, err := dm.db.ExecContext(ctx,
		"UPDATE relationships SET relationship_type = ? WHERE id = ?", relationshipType, id)
	if err != nil {
		return fmt.Errorf("failed to update relationship %q: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("relationship %q: %w", id, apptype.ErrNotFound)
	}

	success = true
	return nil
}

// DeleteRelationship deletes one relationship by id.
func (dm *DBManager) DeleteRelationship(ctx context.Context, id string) error {
	done := metrics.TimeOp("db_delete_relationship")
	success := false
	defer func() { done(success) }()

	result, err := dm.db.ExecContext(ctx, "DELETE FROM relationships WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete relationship %q: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("relationship %q: %w", id, apptype.ErrNotFound)
	}

	success = true
	return nil
}

// DeleteRelationshipsBetween deletes every relationship between two entities,
// in both orientations. Returns the number of rows removed.
func (dm *DBManager) DeleteRelationshipsBetween(ctx context.Context, a, b string) (int64, error) {
	done := metrics.TimeOp("db_delete_relationships_between")
	success := false
	defer func() { done(success) }()

	result, err := dm.db.ExecContext(ctx,
		"DELETE FROM relationships WHERE (source_id = ? AND target_id = ?) OR (source_id = ? AND target_id = ?)",
		a, b, b, a)
	if err != nil {
		return 0, fmt.Errorf("failed to delete relationships between %q and %q: %w", a, b, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	success = true
	return rowsAffected, nil
}
