// Package auth implements the administrator credential store. Passwords are
// bcrypt-hashed before they reach persistence; plaintext never crosses the
// storage boundary and is never logged.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/iudanet/bundlegate/internal/storage"
)

// dummyHash — валидный bcrypt хеш, против которого сверяется пароль при
// неизвестном логине. Оба пути отказа стоят одну bcrypt-проверку, чтобы по
// времени ответа нельзя было понять, какое из полей неверно.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Service provides credential operations over AdminStorage
type Service struct {
	logger *slog.Logger
	admins storage.AdminStorage
}

// NewService creates a new credential store service
func NewService(logger *slog.Logger, admins storage.AdminStorage) *Service {
	return &Service{
		logger: logger,
		admins: admins,
	}
}

// CreateAdmin hashes the password and creates the administrator
// Returns storage.ErrAdminAlreadyExists if login is taken
func (s *Service) CreateAdmin(ctx context.Context, login, password string) error {
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}

	if err := s.admins.CreateAdmin(ctx, login, hash); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "admin created", slog.String("login", login))
	return nil
}

// Validate checks login/password. Bad credentials are a normal false result,
// not an error; the caller cannot tell an unknown login from a wrong password.
func (s *Service) Validate(ctx context.Context, login, password string) (bool, error) {
	hash, err := s.admins.GetPasswordHash(ctx, login)
	if err != nil {
		if errors.Is(err, storage.ErrAdminNotFound) {
			// Сжигаем одну bcrypt-проверку на неизвестном логине
			_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
			return false, nil
		}
		return false, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return false, nil
	}

	return true, nil
}

// ChangePassword hashes the new password and stores it
// Returns storage.ErrAdminNotFound if administrator doesn't exist
func (s *Service) ChangePassword(ctx context.Context, login, newPassword string) error {
	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}

	if err := s.admins.UpdatePasswordHash(ctx, login, hash); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "admin password changed", slog.String("login", login))
	return nil
}

// RemoveAdmin deletes the administrator; no-op if absent
func (s *Service) RemoveAdmin(ctx context.Context, login string) error {
	return s.admins.DeleteAdmin(ctx, login)
}

// Exists reports whether the administrator exists
func (s *Service) Exists(ctx context.Context, login string) (bool, error) {
	return s.admins.AdminExists(ctx, login)
}

// ListLogins returns all administrator logins
func (s *Service) ListLogins(ctx context.Context) ([]string, error) {
	return s.admins.ListAdminLogins(ctx)
}

// hashPassword хеширует пароль с bcrypt.DefaultCost
func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
