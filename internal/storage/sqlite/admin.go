package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iudanet/bundlegate/internal/storage"
)

// CreateAdmin creates a new administrator in the storage
func (s *Storage) CreateAdmin(ctx context.Context, login, passwordHash string) error {
	query := `INSERT INTO admins (login, password_hash) VALUES (?, ?)`

	_, err := s.db.ExecContext(ctx, query, login, passwordHash)
	if err != nil {
		// Проверяем на duplicate login
		if strings.Contains(err.Error(), "UNIQUE constraint failed: admins.login") {
			return storage.ErrAdminAlreadyExists
		}
		return fmt.Errorf("failed to insert admin: %w", err)
	}

	return nil
}

// GetPasswordHash retrieves the password hash for login
func (s *Storage) GetPasswordHash(ctx context.Context, login string) (string, error) {
	query := `SELECT password_hash FROM admins WHERE login = ?`

	var hash string
	err := s.db.QueryRowContext(ctx, query, login).Scan(&hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", storage.ErrAdminNotFound
		}
		return "", fmt.Errorf("failed to get admin: %w", err)
	}

	return hash, nil
}

// UpdatePasswordHash replaces the password hash for login
func (s *Storage) UpdatePasswordHash(ctx context.Context, login, passwordHash string) error {
	query := `UPDATE admins SET password_hash = ? WHERE login = ?`

	result, err := s.db.ExecContext(ctx, query, passwordHash, login)
	if err != nil {
		return fmt.Errorf("failed to update admin: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return storage.ErrAdminNotFound
	}

	return nil
}

// DeleteAdmin removes the administrator; deleting an unknown login is a no-op
func (s *Storage) DeleteAdmin(ctx context.Context, login string) error {
	query := `DELETE FROM admins WHERE login = ?`

	if _, err := s.db.ExecContext(ctx, query, login); err != nil {
		return fmt.Errorf("failed to delete admin: %w", err)
	}

	return nil
}

// AdminExists reports whether the administrator exists
func (s *Storage) AdminExists(ctx context.Context, login string) (bool, error) {
	query := `SELECT 1 FROM admins WHERE login = ?`

	var one int
	err := s.db.QueryRowContext(ctx, query, login).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check admin: %w", err)
	}

	return true, nil
}

// ListAdminLogins returns all administrator logins
func (s *Storage) ListAdminLogins(ctx context.Context) ([]string, error) {
	query := `SELECT login FROM admins ORDER BY login`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list admins: %w", err)
	}
	defer rows.Close()

	var logins []string
	for rows.Next() {
		var login string
		if err := rows.Scan(&login); err != nil {
			return nil, fmt.Errorf("failed to scan login: %w", err)
		}
		logins = append(logins, login)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate admins: %w", err)
	}

	return logins, nil
}
