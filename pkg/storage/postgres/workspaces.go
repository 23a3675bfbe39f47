package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

const workspaceColumns = "id, name, owner_id, created_at"

func scanWorkspace(row rowScanner) (*Workspace, error) {
	var ws Workspace
	if err := row.Scan(&ws.ID, &ws.Name, &ws.OwnerID, &ws.CreatedAt); err != nil {
		return nil, err
	}
	return &ws, nil
}

// CreateWorkspace inserts a workspace.
func (s *PostgresStorage) CreateWorkspace(ctx context.Context, name string, ownerID int64) (*Workspace, error) {
	return createWorkspace(ctx, s.db, name, ownerID)
}

func createWorkspace(ctx context.Context, q queryer, name string, ownerID int64) (*Workspace, error) {
	query := `
		INSERT INTO workspaces (name, owner_id)
		VALUES ($1, $2)
		RETURNING ` + workspaceColumns

	ws, err := scanWorkspace(q.QueryRowContext(ctx, query, name, ownerID))
	if err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}
	return ws, nil
}

// FindWorkspaceByName returns ErrNotFound when no workspace has that name.
func (s *PostgresStorage) FindWorkspaceByName(ctx context.Context, name string) (*Workspace, error) {
	return findWorkspaceByName(ctx, s.db, name)
}

func findWorkspaceByName(ctx context.Context, q queryer, name string) (*Workspace, error) {
	query := `SELECT ` + workspaceColumns + ` FROM workspaces WHERE name = $1`

	ws, err := scanWorkspace(q.QueryRowContext(ctx, query, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find workspace: %w", err)
	}
	return ws, nil
}

// FindWorkspaceByID returns ErrNotFound when the id does not exist.
func (s *PostgresStorage) FindWorkspaceByID(ctx context.Context, id int64) (*Workspace, error) {
	query := `SELECT ` + workspaceColumns + ` FROM workspaces WHERE id = $1`

	ws, err := scanWorkspace(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find workspace: %w", err)
	}
	return ws, nil
}

// UpdateWorkspaceOwner sets the owner of workspace id.
func (s *PostgresStorage) UpdateWorkspaceOwner(ctx context.Context, id, ownerID int64) (*Workspace, error) {
	return updateWorkspaceOwner(ctx, s.db, id, ownerID)
}

func updateWorkspaceOwner(ctx context.Context, q queryer, id, ownerID int64) (*Workspace, error) {
	query := `
		UPDATE workspaces
		SET owner_id = $1
		WHERE id = $2
		RETURNING ` + workspaceColumns

	ws, err := scanWorkspace(q.QueryRowContext(ctx, query, ownerID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update workspace owner: %w", err)
	}
	return ws, nil
}
