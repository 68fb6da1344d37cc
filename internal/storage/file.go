package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"MetalTracker/internal/model"
)

// FileStore keeps the data set in a single JSON document on disk.
type FileStore struct {
	path string
	mu   sync.Mutex
	log  zerolog.Logger
}

func NewFileStore(path string, log zerolog.Logger) *FileStore {
	return &FileStore{path: path, log: log.With().Str("component", "file_store").Logger()}
}

// Load reads the data file. Returns a fresh data set if the file doesn't exist.
func (s *FileStore) Load(_ context.Context) (*model.AppData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewAppData(time.Now()), nil
		}
		return nil, fmt.Errorf("open %s: %w", s.path, err)
	}
	defer f.Close()
	return ImportJSON(f)
}

// Save writes the data set through a temp file so a crash never leaves a torn document.
func (s *FileStore) Save(_ context.Context, data *model.AppData) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	tmp := s.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create %s: %w", tmp, err)
	}
	if err := ExportJSON(f, data); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	s.log.Debug().Str("path", s.path).Int("transactions", len(data.Transactions)).Msg("data saved")
	return nil
}

// Reset removes the data file.
func (s *FileStore) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	s.log.Info().Str("path", s.path).Msg("data reset")
	return nil
}

func (s *FileStore) Close() error { return nil }
