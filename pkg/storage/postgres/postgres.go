package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"github.com/platinummonkey/chatterbox/pkg/auth"
	"github.com/platinummonkey/chatterbox/pkg/storage"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// FileChecker reports whether a referenced attachment is stored.
type FileChecker interface {
	Exists(d storage.Descriptor) (bool, error)
}

// PostgresStorage is the relational store for the chat server.
type PostgresStorage struct {
	db     *sql.DB
	hasher *auth.PasswordHasher
	files  FileChecker
}

// NewPostgresStorage wires the store. files is consulted when messages reference attachments.
func NewPostgresStorage(db *sql.DB, hasher *auth.PasswordHasher, files FileChecker) *PostgresStorage {
	return &PostgresStorage{
		db:     db,
		hasher: hasher,
		files:  files,
	}
}

// DB returns the underlying pool.
func (s *PostgresStorage) DB() *sql.DB {
	return s.db
}

// Migrate applies the embedded schema files in name order. Every statement is idempotent.
func (s *PostgresStorage) Migrate(ctx context.Context) error {
	names, err := fs.Glob(migrationFS, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("failed to list migrations: %w", err)
	}
	sort.Strings(names)

	for _, name := range names {
		body, err := migrationFS.ReadFile(name)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", name, err)
		}
		if _, err := s.db.ExecContext(ctx, string(body)); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", name, err)
		}
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}
