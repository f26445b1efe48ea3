package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/entarch/archcat-go/internal/apptype"
	"github.com/entarch/archcat-go/internal/metrics"
)

// validateMetadata checks that a metadata payload, when present, is a JSON
// object; values stay schema-less beyond that.
func validateMetadata(raw json.RawMessage) error {
	if len(raw) == 0 {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return fmt.Errorf("%w: metadata must be a JSON object: %v", apptype.ErrInvalidData, err)
	}
	return nil
}

// CreateEntities creates entities with their tags and returns the minted ids.
func (dm *DBManager) CreateEntities(ctx context.Context, entities []apptype.EntityInput) ([]string, error) {
	done := metrics.TimeOp("db_create_entities")
	success := false
	defer func() { done(success) }()

	ids := make([]string, 0, len(entities))
	for _, entity := range entities {
		if strings.TrimSpace(entity.Name) == "" {
			return nil, fmt.Errorf("%w: entity name must be a non-empty string", apptype.ErrInvalidData)
		}
		if !apptype.ValidEntityType(entity.Type) {
			return nil, fmt.Errorf("%w: invalid entity type %q for entity %q", apptype.ErrInvalidData, entity.Type, entity.Name)
		}
		if err := validateMetadata(entity.Metadata); err != nil {
			return nil, fmt.Errorf("entity %q: %w", entity.Name, err)
		}

		tx, err := dm.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to begin transaction for entity %q: %w: %w", entity.Name, apptype.ErrUnavailable, err)
		}

		id := uuid.NewString()
		var metadata any
		if len(entity.Metadata) > 0 {
			metadata = string(entity.Metadata)
		}
		_, err = tx.ExecContext(ctx,
			"INSERT INTO entities (id, name, entity_type, description, metadata, created_at) VALUES (?, ?, ?, ?, ?, ?)",
			id, entity.Name, entity.Type, entity.Description, metadata, nowString())
		if err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to insert entity %q: %w", entity.Name, err)
		}

		if err := insertEntityTags(ctx, tx, id, entity.Tags); err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to tag entity %q: %w", entity.Name, err)
		}

		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("failed to commit entity %q: %w", entity.Name, err)
		}
		ids = append(ids, id)
	}

	success = true
	return ids, nil
}

// scanEntity reads one entity row and attaches its tags.
func (dm *DBManager) scanEntity(ctx context.Context, row *sql.Row) (*apptype.Entity, error) {
	var entity apptype.Entity
	var metadata sql.NullString
	var createdAt sql.NullString

	if err := row.Scan(&entity.ID, &entity.Name, &entity.Type, &entity.Description, &metadata, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, apptype.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan entity: %w", err)
	}
	if metadata.Valid && metadata.String != "" {
		entity.Metadata = json.RawMessage(metadata.String)
	}
	entity.CreatedAt = dm.parseTime(createdAt)

	tags, err := dm.getEntityTags(ctx, entity.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tags for entity %q: %w", entity.ID, err)
	}
	entity.Tags = tags
	return &entity, nil
}

// GetEntity retrieves a single entity by id, tags included.
func (dm *DBManager) GetEntity(ctx context.Context, id string) (*apptype.Entity, error) {
	done := metrics.TimeOp("db_get_entity")
	success := false
	defer func() { done(success) }()

	stmt, err := dm.getPreparedStmt(ctx,
		"SELECT id, name, entity_type, description, metadata, created_at FROM entities WHERE id = ?")
	if err != nil {
		return nil, err
	}
	entity, err := dm.scanEntity(ctx, stmt.QueryRowContext(ctx, id))
	if err != nil {
		if err == apptype.ErrNotFound {
			return nil, fmt.Errorf("entity %q: %w", id, apptype.ErrNotFound)
		}
		return nil, err
	}
	success = true
	return entity, nil
}

// GetEntityByName retrieves a single entity by its unique display name.
func (dm *DBManager) GetEntityByName(ctx context.Context, name string) (*apptype.Entity, error) {
	done := metrics.TimeOp("db_get_entity_by_name")
	success := false
	defer func() { done(success) }()

	stmt, err := dm.getPreparedStmt(ctx,
		"SELECT id, name, entity_type, description, metadata, created_at FROM entities WHERE name = ?")
	if err != nil {
		return nil, err
	}
	entity, err := dm.scanEntity(ctx, stmt.QueryRowContext(ctx, name))
	if err != nil {
		if err == apptype.ErrNotFound {
			return nil, fmt.Errorf("entity named %q: %w", name, apptype.ErrNotFound)
		}
		return nil, err
	}
	success = true
	return entity, nil
}

// ListEntitiesFilter narrows ListEntities. Zero values mean "no filter".
type ListEntitiesFilter struct {
	Type          string
	Search        string
	SearchIn      string // name, description, or all (default name)
	Tags          []string
	CreatedAfter  time.Time
	CreatedBefore time.Time
}

// ListEntities returns entities matching the filter, ordered by name.
func (dm *DBManager) ListEntities(ctx context.Context, filter ListEntitiesFilter) ([]apptype.Entity, error) {
	done := metrics.TimeOp("db_list_entities")
	success := false
	defer func() { done(success) }()

	query := `SELECT DISTINCT e.id, e.name, e.entity_type, e.description, e.metadata, e.created_at
        FROM entities e`
	var conditions []string
	var args []any

	if len(filter.Tags) > 0 {
		query += ` JOIN entity_tags et ON e.id = et.entity_id`
		placeholders := strings.Repeat("?,", len(filter.Tags))
		conditions = append(conditions, fmt.Sprintf("et.tag_name IN (%s)", placeholders[:len(placeholders)-1]))
		for _, tag := range filter.Tags {
			args = append(args, tag)
		}
	}
	if filter.Type != "" && filter.Type != "All" {
		conditions = append(conditions, "e.entity_type = ?")
		args = append(args, filter.Type)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		switch filter.SearchIn {
		case "description":
			conditions = append(conditions, "e.description LIKE ?")
			args = append(args, pattern)
		case "all":
			conditions = append(conditions, "(e.name LIKE ? OR e.description LIKE ?)")
			args = append(args, pattern, pattern)
		default: // name
			conditions = append(conditions, "e.name LIKE ?")
			args = append(args, pattern)
		}
	}

	if !filter.CreatedAfter.IsZero() {
		conditions = append(conditions, "e.created_at >= ?")
		args = append(args, filter.CreatedAfter.UTC().Format(timeLayout))
	}
	if !filter.CreatedBefore.IsZero() {
		conditions = append(conditions, "e.created_at <= ?")
		args = append(args, filter.CreatedBefore.UTC().Format(timeLayout))
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY e.name"

	rows, err := dm.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query entities: %w: %w", apptype.ErrUnavailable, err)
	}
	defer rows.Close()

	var entities []apptype.Entity
	for rows.Next() {
		var entity apptype.Entity
		var metadata sql.NullString
		var createdAt sql.NullString
		if err := rows.Scan(&entity.ID, &entity.Name, &entity.Type, &entity.Description, &metadata, &createdAt); err != nil {
			dm.log.Warn("failed to scan entity row", zap.Error(err))
			continue
		}
		if metadata.Valid && metadata.String != "" {
			entity.Metadata = json.RawMessage(metadata.String)
		}
		entity.CreatedAt = dm.parseTime(createdAt)

		tags, err := dm.getEntityTags(ctx, entity.ID)
		if err != nil {
			dm.log.Warn("failed to get tags for entity", zap.String("id", entity.ID), zap.Error(err))
			continue
		}
		entity.Tags = tags
		entities = append(entities, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entities: %w", err)
	}

	success = true
	return entities, nil
}

// UpdateEntity updates the mutable fields of an entity. Nil description and
// nil metadata are left unchanged; an explicit empty object clears metadata.
func (dm *DBManager) UpdateEntity(ctx context.Context, id string, description *string, metadata json.RawMessage) error {
	done := metrics.TimeOp("db_update_entity")
	success := false
	defer func() { done(success) }()

	if description == nil && metadata == nil {
		success = true
		return nil
	}
	if err := validateMetadata(metadata); err != nil {
		return fmt.Errorf("entity %q: %w", id, err)
	}

	var sets []string
	var args []any
	if description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *description)
	}
	if metadata != nil {
		sets = append(sets, "metadata = ?")
		args = append(args, string(metadata))
	}
	args = append(args, id)

	result, err := dm.db.ExecContext(ctx,
		fmt.Sprintf("UPDATE entities SET %s WHERE id = ?", strings.Join(sets, ", ")), args...)
	if err != nil {
		return fmt.Errorf("failed to update entity %q: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("entity %q: %w", id, apptype.ErrNotFound)
	}

	success = true
	return nil
}

// DeleteEntities deletes entities together with their tags and relationships.
func (dm *DBManager) DeleteEntities(ctx context.Context, ids []string) error {
	done := metrics.TimeOp("db_delete_entities")
	success := false
	defer func() { done(success) }()

	if len(ids) == 0 {
		success = true
		return nil
	}

	tx, err := dm.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w: %w", apptype.ErrUnavailable, err)
	}
	defer tx.Rollback()

	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, "DELETE FROM entity_tags WHERE entity_id = ?", id); err != nil {
			return fmt.Errorf("failed to delete tags for entity %q: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM relationships WHERE source_id = ? OR target_id = ?", id, id); err != nil {
			return fmt.Errorf("failed to delete relationships for entity %q: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM entities WHERE id = ?", id); err != nil {
			return fmt.Errorf("failed to delete entity %q: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	success = true
	return nil
}

// CountEntities returns the catalog size, for health reporting.
func (dm *DBManager) CountEntities(ctx context.Context) (int, error) {
	var n int
	if err := dm.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM entities").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count entities: %w: %w", apptype.ErrUnavailable, err)
	}
	return n, nil
}
