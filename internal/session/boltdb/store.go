package boltdb

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"go.etcd.io/bbolt"

	"github.com/iudanet/bundlegate/internal/session"
)

var bucketSessions = []byte("sessions")

// Store represents BoltDB-backed conversation state storage
type Store struct {
	db *bbolt.DB
}

// New creates a new BoltDB session store
// dbPath is the path to the BoltDB database file
func New(ctx context.Context, dbPath string) (*Store, error) {
	// Открываем BoltDB
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open boltdb: %w", err)
	}

	store := &Store{db: db}

	// Создаем bucket если он не существует
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketSessions)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create sessions bucket: %w", err)
	}

	return store, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Get retrieves conversation state for chatID
func (s *Store) Get(ctx context.Context, chatID int64) (*session.Data, error) {
	var data *session.Data

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketSessions)
		if bucket == nil {
			return fmt.Errorf("sessions bucket not found")
		}

		raw := bucket.Get(key(chatID))
		if raw == nil {
			return session.ErrNotFound
		}

		// Десериализуем
		data = &session.Data{}
		if err := json.Unmarshal(raw, data); err != nil {
			return fmt.Errorf("failed to unmarshal session data: %w", err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return data, nil
}

// Put stores conversation state for chatID
func (s *Store) Put(ctx context.Context, chatID int64, data *session.Data) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketSessions)
		if bucket == nil {
			return fmt.Errorf("sessions bucket not found")
		}

		// Сериализуем данные в JSON
		raw, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("failed to marshal session data: %w", err)
		}

		if err := bucket.Put(key(chatID), raw); err != nil {
			return fmt.Errorf("failed to save session data: %w", err)
		}

		return nil
	})
}

// Clear removes conversation state for chatID; idempotent
func (s *Store) Clear(ctx context.Context, chatID int64) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketSessions)
		if bucket == nil {
			return fmt.Errorf("sessions bucket not found")
		}

		if err := bucket.Delete(key(chatID)); err != nil {
			return fmt.Errorf("failed to delete session data: %w", err)
		}

		return nil
	})
}

// key кодирует chat id в ключ bucket
func key(chatID int64) []byte {
	return []byte(strconv.FormatInt(chatID, 10))
}
