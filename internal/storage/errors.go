package storage

import "errors"

// Common storage errors
var (
	// ErrAdminNotFound indicates that administrator was not found in storage
	ErrAdminNotFound = errors.New("admin not found")

	// ErrAdminAlreadyExists indicates that administrator with this login already exists
	ErrAdminAlreadyExists = errors.New("admin already exists")

	// ErrBundleNotFound indicates that bundle was not found in storage
	ErrBundleNotFound = errors.New("bundle not found")
)
