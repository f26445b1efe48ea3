package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/tursodatabase/go-libsql"
	"go.uber.org/zap"

	"github.com/entarch/archcat-go/internal/apptype"
	"github.com/entarch/archcat-go/pkg/logger"
)

// timeLayout is the storage format for all timestamp columns.
const timeLayout = time.RFC3339

// DBManager handles all database operations
type DBManager struct {
	config *Config
	db     *sql.DB
	log    *zap.Logger

	stmtMu    sync.RWMutex
	stmtCache map[string]*sql.Stmt
}

// NewDBManager opens the catalog database and applies the schema.
func NewDBManager(config *Config) (*DBManager, error) {
	dbURL := config.URL
	if !strings.HasPrefix(dbURL, "file:") && config.AuthToken != "" {
		dbURL += "?authToken=" + config.AuthToken
	}

	db, err := sql.Open("libsql", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w: %w", apptype.ErrUnavailable, err)
	}

	manager := &DBManager{
		config:    config,
		db:        db,
		log:       logger.Get(),
		stmtCache: make(map[string]*sql.Stmt),
	}

	if err := manager.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return manager, nil
}

// initialize creates tables and indexes if they don't exist
func (dm *DBManager) initialize() error {
	tx, err := dm.db.BeginTx(context.Background(), nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for initialization: %w: %w", apptype.ErrUnavailable, err)
	}
	defer tx.Rollback()

	for _, statement := range schema {
		if _, err := tx.Exec(statement); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}

	return tx.Commit()
}

// Config returns the active configuration.
func (dm *DBManager) Config() *Config {
	return dm.config
}

// nowString stamps writes with a stable UTC timestamp string.
func nowString() string {
	return time.Now().UTC().Format(timeLayout)
}

// parseTime tolerates missing or unparseable stored timestamps, returning the
// zero time rather than failing a read.
func (dm *DBManager) parseTime(raw sql.NullString) time.Time {
	if !raw.Valid || raw.String == "" {
		return time.Time{}
	}
	t, err := time.Parse(timeLayout, raw.String)
	if err != nil {
		dm.log.Warn("failed to parse stored timestamp", zap.String("value", raw.String), zap.Error(err))
		return time.Time{}
	}
	return t
}

// Close closes the database connection and cached statements.
func (dm *DBManager) Close() error {
	dm.stmtMu.Lock()
	for _, stmt := range dm.stmtCache {
		_ = stmt.Close()
	}
	dm.stmtCache = make(map[string]*sql.Stmt)
	dm.stmtMu.Unlock()

	if err := dm.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
