// Package auth registers users with bcrypt-hashed passwords and issues session tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"MetalTracker/internal/storage"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = storage.ErrUserExists
	ErrInvalidUsername    = errors.New("invalid username")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
)

// bcryptCost matches the default work factor.
const bcryptCost = 10

// DefaultSessionTTL is how long a login token stays valid.
const DefaultSessionTTL = 24 * time.Hour

// UserStore persists username to password-hash pairs.
type UserStore interface {
	UserHash(ctx context.Context, username string) (string, bool, error)
	CreateUser(ctx context.Context, username, hash string) error
}

type session struct {
	username string
	expires  time.Time
}

// Service handles registration, login and token validation.
type Service struct {
	store    UserStore
	ttl      time.Duration
	now      func() time.Time
	mu       sync.Mutex
	sessions map[string]session
}

func NewService(store UserStore, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Service{store: store, ttl: ttl, now: time.Now, sessions: make(map[string]session)}
}

// validateUsername rejects empty, overlong and control-character names.
func validateUsername(username string) error {
	if username == "" || len(username) > 128 {
		return ErrInvalidUsername
	}
	for _, c := range username {
		if c < 0x20 || c == 0x7f {
			return ErrInvalidUsername
		}
	}
	return nil
}

// bcrypt ignores everything past 72 bytes
func passwordBytes(password string) []byte {
	b := []byte(password)
	if len(b) > 72 {
		b = b[:72]
	}
	return b
}

// Register creates an account.
func (s *Service) Register(ctx context.Context, username, password string) error {
	if err := validateUsername(username); err != nil {
		return err
	}
	if len(password) < 8 {
		return ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword(passwordBytes(password), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.store.CreateUser(ctx, username, string(hash))
}

// Login checks credentials and returns a new session token.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	hash, ok, err := s.store.UserHash(ctx, username)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), passwordBytes(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = session{username: username, expires: s.now().Add(s.ttl)}
	return token, nil
}

// Validate returns the user owning token, dropping it when expired.
func (s *Service) Validate(token string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok {
		return "", false
	}
	if !s.now().Before(sess.expires) {
		delete(s.sessions, token)
		return "", false
	}
	return sess.username, true
}

// Logout invalidates token.
func (s *Service) Logout(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}
