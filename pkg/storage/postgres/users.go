package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/platinummonkey/chatterbox/pkg/auth"
)

const userColumns = "id, ws_id, fullname, email, created_at"

func scanUser(row rowScanner) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.WorkspaceID, &u.FullName, &u.Email, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser registers a user. The workspace is looked up by name and created when missing;
// a new workspace is owned by the user that created it.
func (s *PostgresStorage) CreateUser(ctx context.Context, input SignupInput) (*User, error) {
	if input.Email == "" || input.Password == "" || input.FullName == "" || input.Workspace == "" {
		return nil, validationf("fullname, email, workspace and password are required")
	}

	existing, err := s.FindUserByEmail(ctx, input.Email)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailExists
	}

	passwordHash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ws, err := findWorkspaceByName(ctx, tx, input.Workspace)
	if errors.Is(err, ErrNotFound) {
		ws, err = createWorkspace(ctx, tx, input.Workspace, 0)
	}
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO users (ws_id, fullname, email, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + userColumns

	user, err := scanUser(tx.QueryRowContext(ctx, query, ws.ID, input.FullName, input.Email, passwordHash))
	if err != nil {
		if isUniqueViolation(err, "") {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if ws.OwnerID == 0 {
		if _, err := updateWorkspaceOwner(ctx, tx, ws.ID, user.ID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return user, nil
}

// FindUserByEmail returns ErrNotFound when no user has that email.
func (s *PostgresStorage) FindUserByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(s.db.QueryRowContext(ctx, query, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// FindUserByID returns ErrNotFound when the id does not exist.
func (s *PostgresStorage) FindUserByID(ctx context.Context, id int64) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// VerifyCredentials returns the identity for a matching email and password.
// Unknown emails and wrong passwords both yield (nil, nil).
func (s *PostgresStorage) VerifyCredentials(ctx context.Context, email, password string) (*auth.Identity, error) {
	query := `SELECT ` + userColumns + `, password_hash FROM users WHERE email = $1`

	var (
		u            User
		passwordHash string
	)
	err := s.db.QueryRowContext(ctx, query, email).
		Scan(&u.ID, &u.WorkspaceID, &u.FullName, &u.Email, &u.CreatedAt, &passwordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	ok, err := s.hasher.Verify(password, passwordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password for user %d: %w", u.ID, err)
	}
	if !ok {
		return nil, nil
	}

	identity := u.Identity()
	return &identity, nil
}

// ListWorkspaceUsers returns every user of a workspace ordered by id.
func (s *PostgresStorage) ListWorkspaceUsers(ctx context.Context, workspaceID int64) ([]ChatUser, error) {
	query := `SELECT id, fullname, email FROM users WHERE ws_id = $1 ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	return scanChatUsers(rows)
}

// FindUsersByIDs returns the users among ids, ordered by id. Unknown ids are skipped.
func (s *PostgresStorage) FindUsersByIDs(ctx context.Context, ids []int64) ([]ChatUser, error) {
	query := `SELECT id, fullname, email FROM users WHERE id = ANY($1) ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to find users: %w", err)
	}
	defer rows.Close()

	return scanChatUsers(rows)
}

func scanChatUsers(rows *sql.Rows) ([]ChatUser, error) {
	users := []ChatUser{}
	for rows.Next() {
		var u ChatUser
		if err := rows.Scan(&u.ID, &u.FullName, &u.Email); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, nil
}
