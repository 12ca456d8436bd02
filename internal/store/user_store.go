package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/model"
)

// CreateUser registers a subject. Handles are unique; a taken handle
// returns ErrConflict.
func (s *SQLiteStore) CreateUser(ctx context.Context, in model.NewUser) (*model.User, error) {
	in.Handle = strings.TrimSpace(in.Handle)
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if strings.IndexFunc(in.Handle, unicode.IsSpace) >= 0 {
		return nil, invalid("handle", "nospace", "must not contain whitespace")
	}
	if in.Role == "" {
		in.Role = model.RoleEngineer
	}
	if in.DisplayName == "" {
		in.DisplayName = in.Handle
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO users (handle, display_name, credential_hash, role, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		in.Handle, in.DisplayName, in.CredentialHash, in.Role, s.timestamp(),
	)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("handle %q is taken: %w", in.Handle, ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading user id: %w", err)
	}

	s.logger.Info("user.created", zap.Int64("user_id", id), zap.String("handle", in.Handle))
	return s.GetUser(ctx, id)
}

// EnsureUser returns the subject with handle, creating it when missing.
func (s *SQLiteStore) EnsureUser(ctx context.Context, handle, displayName string) (*model.User, error) {
	u, err := s.GetUserByHandle(ctx, handle)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return s.CreateUser(ctx, model.NewUser{Handle: handle, DisplayName: displayName})
}

// GetUser retrieves a subject by ID.
func (s *SQLiteStore) GetUser(ctx context.Context, id int64) (*model.User, error) {
	var u model.User
	err := s.db.GetContext(ctx, &u, "SELECT * FROM users WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting user %d: %w", id, err)
	}
	return &u, nil
}

// GetUserByHandle retrieves a subject by login handle.
func (s *SQLiteStore) GetUserByHandle(ctx context.Context, handle string) (*model.User, error) {
	handle = strings.TrimSpace(handle)
	var u model.User
	err := s.db.GetContext(ctx, &u, "SELECT * FROM users WHERE handle = ?", handle)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %q: %w", handle, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting user %q: %w", handle, err)
	}
	return &u, nil
}

// ListUsers returns all subjects ordered by handle.
func (s *SQLiteStore) ListUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := s.db.SelectContext(ctx, &users, "SELECT * FROM users ORDER BY handle"); err != nil {
		return nil, fmt.Errorf("querying users: %w", err)
	}
	return users, nil
}

// SetCredentialHash replaces a subject's stored credential hash.
func (s *SQLiteStore) SetCredentialHash(ctx context.Context, id int64, hash string) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE users SET credential_hash = ? WHERE id = ?", hash, id)
	if err != nil {
		return fmt.Errorf("updating credentials of user %d: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	return nil
}
