package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iudanet/bundlegate/internal/models"
	"github.com/iudanet/bundlegate/internal/storage"
)

// CheckOrCreate returns the execution verdict for bundleID and stamps its
// last access time. An unseen bundle is inserted allowed (fail-open policy).
// Единый upsert: UNIQUE индекс по bundle_id сериализует одновременный первый
// контакт, поэтому двух строк для одного bundle_id не бывает.
func (s *Storage) CheckOrCreate(ctx context.Context, bundleID string, now int64) (bool, error) {
	query := `
		INSERT INTO bundles (bundle_id, allow_execution, last_access_time)
		VALUES (?, TRUE, ?)
		ON CONFLICT (bundle_id) DO UPDATE SET last_access_time = excluded.last_access_time
		RETURNING allow_execution
	`

	var allowed bool
	err := s.db.QueryRowContext(ctx, query, bundleID, now).Scan(&allowed)
	if err != nil {
		return false, fmt.Errorf("failed to check or create bundle: %w", err)
	}

	return allowed, nil
}

// SetExecution sets the execution flag for bundleID, materializing the row
// first if the bundle has never checked in
func (s *Storage) SetExecution(ctx context.Context, bundleID string, allowed bool, now int64) error {
	query := `
		INSERT INTO bundles (bundle_id, allow_execution, last_access_time)
		VALUES (?, ?, ?)
		ON CONFLICT (bundle_id) DO UPDATE SET allow_execution = excluded.allow_execution
	`

	if _, err := s.db.ExecContext(ctx, query, bundleID, allowed, now); err != nil {
		return fmt.Errorf("failed to set execution: %w", err)
	}

	return nil
}

// Remove deletes the bundle; removing an unknown bundle is a no-op
func (s *Storage) Remove(ctx context.Context, bundleID string) error {
	query := `DELETE FROM bundles WHERE bundle_id = ?`

	if _, err := s.db.ExecContext(ctx, query, bundleID); err != nil {
		return fmt.Errorf("failed to remove bundle: %w", err)
	}

	return nil
}

// List returns the total bundle count and one page ordered by last access
// time descending (most recently checked-in first)
func (s *Storage) List(ctx context.Context, limit, offset int) (int, []models.Bundle, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bundles`).Scan(&count); err != nil {
		return 0, nil, fmt.Errorf("failed to count bundles: %w", err)
	}

	if count == 0 {
		return 0, nil, nil
	}

	query := `
		SELECT id, bundle_id, allow_execution, last_access_time
		FROM bundles
		ORDER BY last_access_time DESC
		LIMIT ? OFFSET ?
	`

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to list bundles: %w", err)
	}
	defer rows.Close()

	bundles, err := scanBundles(rows)
	if err != nil {
		return 0, nil, err
	}

	return count, bundles, nil
}

// Get returns a single bundle by its bundle_id
func (s *Storage) Get(ctx context.Context, bundleID string) (*models.Bundle, error) {
	query := `
		SELECT id, bundle_id, allow_execution, last_access_time
		FROM bundles
		WHERE bundle_id = ?
	`

	bundle := &models.Bundle{}
	err := s.db.QueryRowContext(ctx, query, bundleID).Scan(
		&bundle.ID,
		&bundle.BundleID,
		&bundle.AllowExecution,
		&bundle.LastAccessTime,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrBundleNotFound
		}
		return nil, fmt.Errorf("failed to get bundle: %w", err)
	}

	return bundle, nil
}

// Search returns bundles whose bundle_id contains substring anywhere.
// instr() вместо LIKE: LIKE в SQLite нечувствителен к регистру для ASCII,
// а поиск должен быть строго чувствительным к регистру.
func (s *Storage) Search(ctx context.Context, substring string, limit int) ([]models.Bundle, error) {
	query := `
		SELECT id, bundle_id, allow_execution, last_access_time
		FROM bundles
		WHERE instr(bundle_id, ?) > 0
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, substring, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search bundles: %w", err)
	}
	defer rows.Close()

	return scanBundles(rows)
}

// scanBundles читает строки результата в срез моделей
func scanBundles(rows *sql.Rows) ([]models.Bundle, error) {
	var bundles []models.Bundle
	for rows.Next() {
		var b models.Bundle
		if err := rows.Scan(&b.ID, &b.BundleID, &b.AllowExecution, &b.LastAccessTime); err != nil {
			return nil, fmt.Errorf("failed to scan bundle: %w", err)
		}
		bundles = append(bundles, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bundles: %w", err)
	}

	return bundles, nil
}
