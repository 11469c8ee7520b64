package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // "sqlite3" driver (cgo)
	_ "modernc.org/sqlite"          // "sqlite" driver (pure Go)

	"collectionbuilder/querybuilder/pkg/config"
	"collectionbuilder/querybuilder/pkg/query/codec"
)

// SQLiteBackend stores documents in a SQLite database. Either the pure-Go
// modernc driver ("sqlite") or the cgo mattn driver ("sqlite3") can be used;
// the schema and statements are shared.
type SQLiteBackend struct {
	db        *sql.DB
	config    config.SQLiteStorageConfig
	mu        sync.RWMutex
	closeOnce sync.Once
	logger    *slog.Logger

	getStmt    *sql.Stmt
	putStmt    *sql.Stmt
	deleteStmt *sql.Stmt
	listStmt   *sql.Stmt
}

// NewSQLiteBackend opens the database, applies pragmas and creates the schema.
func NewSQLiteBackend(cfg config.SQLiteStorageConfig) (*SQLiteBackend, error) {
	if cfg.Path == "" {
		return nil, NewStorageError("sqlite", "open", "", errors.New("db path cannot be empty"))
	}
	if cfg.Driver == "" {
		cfg.Driver = config.DefaultSQLiteDriver
	}
	if cfg.JournalMode == "" {
		cfg.JournalMode = config.DefaultSQLiteJournalMode
	}

	logger := slog.Default().With("component", "store.sqlite")

	db, err := sql.Open(cfg.Driver, cfg.Path)
	if err != nil {
		return nil, NewStorageError("sqlite", "open", "", err)
	}

	// SQLite only supports a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	b := &SQLiteBackend{
		db:     db,
		config: cfg,
		logger: logger,
	}

	if err := b.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	if err := b.prepareStatements(); err != nil {
		db.Close()
		return nil, NewStorageError("sqlite", "prepare", "", err)
	}

	logger.Info("SQLite storage initialized",
		"path", cfg.Path,
		"driver", cfg.Driver,
		"journal_mode", cfg.JournalMode,
	)

	return b, nil
}

// initialize applies pragmas, creates the schema and checks its version.
func (b *SQLiteBackend) initialize() error {
	mode := strings.ToUpper(b.config.JournalMode)
	if _, err := b.db.Exec(fmt.Sprintf("PRAGMA journal_mode=%s;", mode)); err != nil {
		return NewStorageError("sqlite", "set_journal_mode", "", err)
	}

	if _, err := b.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", b.config.BusyTimeout.Milliseconds())); err != nil {
		return NewStorageError("sqlite", "set_busy_timeout", "", err)
	}

	if _, err := b.db.Exec(Schema); err != nil {
		return NewStorageError("sqlite", "create_schema", "", err)
	}

	if _, err := b.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return NewStorageError("sqlite", "insert_schema_version", "", err)
	}

	var version int
	if err := b.db.QueryRow(GetSchemaVersion).Scan(&version); err != nil {
		return NewStorageError("sqlite", "get_schema_version", "", err)
	}
	if version != SchemaVersion {
		return NewStorageError("sqlite", "schema_version_mismatch", "",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}
	return nil
}

// prepareStatements prepares SQL statements for reuse.
func (b *SQLiteBackend) prepareStatements() error {
	var err error

	b.getStmt, err = b.db.Prepare(`
		SELECT format, document, updated_at
		FROM named_queries
		WHERE name = ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare get statement: %w", err)
	}

	b.putStmt, err = b.db.Prepare(`
		INSERT INTO named_queries (name, format, document, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET
			format = excluded.format,
			document = excluded.document,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare put statement: %w", err)
	}

	b.deleteStmt, err = b.db.Prepare(`
		DELETE FROM named_queries
		WHERE name = ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare delete statement: %w", err)
	}

	b.listStmt, err = b.db.Prepare(`
		SELECT name, updated_at
		FROM named_queries
		ORDER BY name
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare list statement: %w", err)
	}

	return nil
}

// Name implements Backend.
func (b *SQLiteBackend) Name() string {
	return "sqlite"
}

// Get implements Backend.
func (b *SQLiteBackend) Get(ctx context.Context, name string) (Record, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var (
		format    string
		document  []byte
		updatedAt int64
	)
	err := b.getStmt.QueryRowContext(ctx, name).Scan(&format, &document, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, notFound(b.Name(), "get", name)
	}
	if err != nil {
		return Record{}, NewStorageError(b.Name(), "get", name, err)
	}

	return Record{
		Name:      name,
		Format:    codec.Format(format),
		Document:  document,
		UpdatedAt: time.Unix(0, updatedAt),
	}, nil
}

// Put implements Backend.
func (b *SQLiteBackend) Put(ctx context.Context, rec Record) error {
	updatedAt := rec.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	_, err := b.putStmt.ExecContext(ctx,
		rec.Name,
		string(rec.Format),
		rec.Document,
		updatedAt.UnixNano(),
		updatedAt.UnixNano(),
	)
	if err != nil {
		return NewStorageError(b.Name(), "put", rec.Name, err)
	}
	return nil
}

// Delete implements Backend.
func (b *SQLiteBackend) Delete(ctx context.Context, name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	res, err := b.deleteStmt.ExecContext(ctx, name)
	if err != nil {
		return NewStorageError(b.Name(), "delete", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return NewStorageError(b.Name(), "delete", name, err)
	}
	if n == 0 {
		return notFound(b.Name(), "delete", name)
	}
	return nil
}

// List implements Backend.
func (b *SQLiteBackend) List(ctx context.Context) ([]Entry, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	rows, err := b.listStmt.QueryContext(ctx)
	if err != nil {
		return nil, NewStorageError(b.Name(), "list", "", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			name      string
			updatedAt int64
		)
		if err := rows.Scan(&name, &updatedAt); err != nil {
			return nil, NewStorageError(b.Name(), "list", "", err)
		}
		entries = append(entries, Entry{Name: name, UpdatedAt: time.Unix(0, updatedAt)})
	}
	if err := rows.Err(); err != nil {
		return nil, NewStorageError(b.Name(), "list", "", err)
	}
	return entries, nil
}

// Close implements Backend.
func (b *SQLiteBackend) Close() error {
	var err error
	b.closeOnce.Do(func() {
		for _, stmt := range []*sql.Stmt{b.getStmt, b.putStmt, b.deleteStmt, b.listStmt} {
			if stmt != nil {
				stmt.Close()
			}
		}
		err = b.db.Close()
	})
	return err
}
