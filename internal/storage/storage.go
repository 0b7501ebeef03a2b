package storage

import (
	"context"

	"github.com/iudanet/bundlegate/internal/models"
)

// AdminStorage defines interface for administrator credential persistence.
// Plaintext passwords never reach this layer, only bcrypt hashes.
type AdminStorage interface {
	// CreateAdmin creates a new administrator
	// Returns ErrAdminAlreadyExists if login is taken
	CreateAdmin(ctx context.Context, login, passwordHash string) error

	// GetPasswordHash returns the stored password hash for login
	// Returns ErrAdminNotFound if administrator doesn't exist
	GetPasswordHash(ctx context.Context, login string) (string, error)

	// UpdatePasswordHash replaces the password hash for login
	// Returns ErrAdminNotFound if administrator doesn't exist
	UpdatePasswordHash(ctx context.Context, login, passwordHash string) error

	// DeleteAdmin removes the administrator; no-op if absent
	DeleteAdmin(ctx context.Context, login string) error

	// AdminExists reports whether the administrator exists
	AdminExists(ctx context.Context, login string) (bool, error)

	// ListAdminLogins returns all administrator logins
	ListAdminLogins(ctx context.Context) ([]string, error)
}

// BundleStorage defines interface for the bundle registry.
// Timestamps are unix seconds supplied by the caller.
type BundleStorage interface {
	// CheckOrCreate returns the bundle's execution verdict, updating its
	// last access time. An unseen bundleID is inserted with execution
	// allowed (fail-open). The check-then-insert is atomic: concurrent
	// first contact for the same bundleID produces exactly one row.
	CheckOrCreate(ctx context.Context, bundleID string, now int64) (bool, error)

	// SetExecution sets the execution flag, materializing the row first
	// if the bundle has never checked in
	SetExecution(ctx context.Context, bundleID string, allowed bool, now int64) error

	// Remove deletes the bundle; no-op if absent
	Remove(ctx context.Context, bundleID string) error

	// List returns the total row count and a page ordered by last access
	// time descending. The count does not depend on limit/offset.
	List(ctx context.Context, limit, offset int) (int, []models.Bundle, error)

	// Get returns a single bundle
	// Returns ErrBundleNotFound if bundle doesn't exist
	Get(ctx context.Context, bundleID string) (*models.Bundle, error)

	// Search returns bundles whose bundle_id contains substring
	// (case-sensitive), capped at limit rows
	Search(ctx context.Context, substring string, limit int) ([]models.Bundle, error)
}
