package database

// schema is applied statement by statement inside one transaction at startup.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS entities (
        id TEXT PRIMARY KEY,
        name TEXT NOT NULL UNIQUE,
        entity_type TEXT NOT NULL,
        description TEXT NOT NULL DEFAULT '',
        metadata TEXT,
        created_at TEXT NOT NULL
    )`,

	`CREATE TABLE IF NOT EXISTS relationships (
        id TEXT PRIMARY KEY,
        source_id TEXT NOT NULL,
        target_id TEXT NOT NULL,
        relationship_type TEXT NOT NULL,
        created_at TEXT NOT NULL,
        FOREIGN KEY (source_id) REFERENCES entities(id),
        FOREIGN KEY (target_id) REFERENCES entities(id)
    )`,

	`CREATE TABLE IF NOT EXISTS tags (
        name TEXT PRIMARY KEY
    )`,

	`CREATE TABLE IF NOT EXISTS entity_tags (
        entity_id TEXT NOT NULL,
        tag_name TEXT NOT NULL,
        PRIMARY KEY (entity_id, tag_name),
        FOREIGN KEY (entity_id) REFERENCES entities(id),
        FOREIGN KEY (tag_name) REFERENCES tags(name)
    )`,

	`CREATE TABLE IF NOT EXISTS admins (
        username TEXT PRIMARY KEY,
        password_hash TEXT NOT NULL,
        role TEXT NOT NULL DEFAULT 'admin',
        login_attempts INTEGER NOT NULL DEFAULT 0,
        last_login_attempt TEXT,
        last_login TEXT,
        is_active INTEGER NOT NULL DEFAULT 1
    )`,

	`CREATE TABLE IF NOT EXISTS audit_logs (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        username TEXT NOT NULL,
        action TEXT NOT NULL,
        entity_type TEXT,
        entity_id TEXT,
        details TEXT,
        created_at TEXT NOT NULL
    )`,

	`CREATE INDEX IF NOT EXISTS idx_entities_name ON entities(name)`,
	`CREATE INDEX IF NOT EXISTS idx_entities_type ON entities(entity_type)`,
	`CREATE INDEX IF NOT EXISTS idx_relationships_source ON relationships(source_id)`,
	`CREATE INDEX IF NOT EXISTS idx_relationships_target ON relationships(target_id)`,
	`CREATE INDEX IF NOT EXISTS idx_relationships_type ON relationships(relationship_type)`,
	`CREATE INDEX IF NOT EXISTS idx_entity_tags_tag ON entity_tags(tag_name)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_logs_action ON audit_logs(action)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_logs_created ON audit_logs(created_at)`,
}
