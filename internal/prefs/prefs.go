// Package prefs persists the local flags that survive restarts: theme,
// cached profile fields and the session markers.
package prefs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/julianstephens/genie/internal/models"
)

// Store is read once at startup and written on every confirmed change.
type Store interface {
	Load() (models.Preferences, error)
	Save(models.Preferences) error
}

const (
	dirMode  = 0o700
	fileMode = 0o600
)

// FileStore keeps preferences in a TOML file.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Path() string { return s.path }

// Load returns the defaults when the file does not exist yet.
func (s *FileStore) Load() (models.Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefs := models.DefaultPreferences()
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return prefs, nil
	}
	if err != nil {
		return prefs, fmt.Errorf("read preferences: %w", err)
	}
	if err := toml.Unmarshal(data, &prefs); err != nil {
		return models.DefaultPreferences(), fmt.Errorf("decode preferences: %w", err)
	}
	if prefs.Theme != models.ThemeDark {
		prefs.Theme = models.ThemeLight
	}
	return prefs, nil
}

// Save replaces the file atomically.
func (s *FileStore) Save(p models.Preferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return fmt.Errorf("create preferences directory: %w", err)
	}
	data, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".prefs-*.toml")
	if err != nil {
		return fmt.Errorf("create temp preferences file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp preferences file: %w", err)
	}
	if err := tmp.Chmod(fileMode); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod temp preferences file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp preferences file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace preferences file: %w", err)
	}
	cleanup = false
	return nil
}

// MemoryStore keeps preferences in memory. Saves counts writes.
type MemoryStore struct {
	mu    sync.Mutex
	prefs models.Preferences
	Saves int
	Err   error
}

func NewMemoryStore(initial models.Preferences) *MemoryStore {
	return &MemoryStore{prefs: initial}
}

func (m *MemoryStore) Load() (models.Preferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.prefs, nil
}

func (m *MemoryStore) Save(p models.Preferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.prefs = p
	m.Saves++
	return nil
}

// Current returns the last saved value.
func (m *MemoryStore) Current() models.Preferences {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.prefs
}
