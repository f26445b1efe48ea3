package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/entarch/archcat-go/internal/apptype"
	"github.com/entarch/archcat-go/internal/metrics"
)

// insertEntityTags registers tags in the vocabulary and attaches them to an
// entity inside an open transaction. Blank tags are skipped.
func insertEntityTags(ctx context.Context, tx *sql.Tx, entityID string, tags []string) error {
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, "INSERT OR IGNORE INTO tags (name) VALUES (?)", tag); err != nil {
			return fmt.Errorf("failed to register tag %q: %w", tag, err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT OR IGNORE INTO entity_tags (entity_id, tag_name) VALUES (?, ?)", entityID, tag); err != nil {
			return fmt.Errorf("failed to attach tag %q: %w", tag, err)
		}
	}
	return nil
}

// getEntityTags returns an entity's tags sorted by name.
func (dm *DBManager) getEntityTags(ctx context.Context, entityID string) ([]string, error) {
	stmt, err := dm.getPreparedStmt(ctx,
		"SELECT tag_name FROM entity_tags WHERE entity_id = ? ORDER BY tag_name")
	if err != nil {
		return nil, err
	}
	rows, err := stmt.QueryContext(ctx, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entity tags: %w: %w", apptype.ErrUnavailable, err)
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			dm.log.Warn("failed to scan tag row", zap.Error(err))
			continue
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

// ListTagsFor returns the tags of one entity, sorted by name.
func (dm *DBManager) ListTagsFor(ctx context.Context, entityID string) ([]string, error) {
	return dm.getEntityTags(ctx, entityID)
}

// SetEntityTags replaces the full tag set of an entity.
func (dm *DBManager) SetEntityTags(ctx context.Context, entityID string, tags []string) error {
	done := metrics.TimeOp("db_set_entity_tags")
	success := false
	defer func() { done(success) }()

	if _, err := dm.GetEntity(ctx, entityID); err != nil {
		return err
	}

	tx, err := dm.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w: %w", apptype.ErrUnavailable, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM entity_tags WHERE entity_id = ?", entityID); err != nil {
		return fmt.Errorf("failed to clear tags for entity %q: %w", entityID, err)
	}
	if err := insertEntityTags(ctx, tx, entityID, tags); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	success = true
	return nil
}

// AddTag registers a tag in the vocabulary without attaching it to anything.
func (dm *DBManager) AddTag(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: tag name must be a non-empty string", apptype.ErrInvalidData)
	}
	if _, err := dm.db.ExecContext(ctx, "INSERT OR IGNORE INTO tags (name) VALUES (?)", name); err != nil {
		return fmt.Errorf("failed to register tag %q: %w", name, err)
	}
	return nil
}

// ListTags returns every tag in the vocabulary with its usage count, sorted
// by name.
func (dm *DBManager) ListTags(ctx context.Context) ([]apptype.TagCount, error) {
	done := metrics.TimeOp("db_list_tags")
	success := false
	defer func() { done(success) }()

	rows, err := dm.db.QueryContext(ctx, `SELECT t.name, COUNT(et.entity_id)
        FROM tags t
        LEFT JOIN entity_tags et ON t.name = et.tag_name
        GROUP BY t.name
        ORDER BY t.name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tags: %w: %w", apptype.ErrUnavailable, err)
	}
	defer rows.Close()

	var tags []apptype.TagCount
	for rows.Next() {
		var tc apptype.TagCount
		if err := rows.Scan(&tc.Name, &tc.EntityCount); err != nil {
			dm.log.Warn("failed to scan tag count row", zap.Error(err))
			continue
		}
		tags = append(tags, tc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tags: %w", err)
	}

	success = true
	return tags, nil
}
