package store

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the named-query schema.
const Schema = `
-- One row per named query
CREATE TABLE IF NOT EXISTS named_queries (
    name TEXT PRIMARY KEY,
    format TEXT NOT NULL,
    document BLOB NOT NULL,

    -- Unix nanoseconds
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

-- Schema version table
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_named_queries_updated_at ON named_queries(updated_at);
`

// InsertSchemaVersion inserts the schema version into the schema_version table.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion retrieves the current schema version from the database.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`
