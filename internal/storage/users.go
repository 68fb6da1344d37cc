package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// UserHash returns the stored password hash for username.
func (s *SQLiteStore) UserHash(ctx context.Context, username string) (string, bool, error) {
	var hash string
	err := s.db.QueryRowContext(ctx, `SELECT hash FROM users WHERE username = ?`, username).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query user: %w", err)
	}
	return hash, true, nil
}

// CreateUser stores a new account, failing with ErrUserExists on a duplicate name.
func (s *SQLiteStore) CreateUser(ctx context.Context, username, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `INSERT INTO users (username, hash, created_at) VALUES (?, ?, ?)`,
		username, hash, time.Now().Unix())
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return ErrUserExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	s.log.Info().Str("username", username).Msg("user registered")
	return nil
}

// UserHash returns the stored password hash for username.
func (s *MemoryStore) UserHash(_ context.Context, username string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	hash, ok := s.users[username]
	return hash, ok, nil
}

// CreateUser stores a new account, failing with ErrUserExists on a duplicate name.
func (s *MemoryStore) CreateUser(_ context.Context, username, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[username]; ok {
		return ErrUserExists
	}
	if s.users == nil {
		s.users = map[string]string{}
	}
	s.users[username] = hash
	return nil
}
