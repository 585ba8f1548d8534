// Package session provides the persistent session slot holding the auth
// token and the signed-in user record. One slot, full overwrite on every
// save.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/workcity/crm-client/internal/core/domain"
)

// FileStore keeps the session in a JSON file with 0600 permissions. Writes
// go through a temp file and rename so a crash never leaves a torn slot.
// A corrupt or unreadable file is treated as an empty slot.
type FileStore struct {
	path string
}

// NewFileStore builds a FileStore at path. When path is empty the slot
// lives under the user config directory.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("session: resolve config dir: %w", err)
		}
		path = filepath.Join(dir, "workcity", "session.json")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("session: prepare directory: %w", err)
	}
	return &FileStore{path: path}, nil
}

// Path returns the slot location on disk.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Load(_ context.Context) (*domain.Session, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("session: read slot: %w", err)
	}

	var sess domain.Session
	if err := json.Unmarshal(raw, &sess); err != nil || sess.Token == "" {
		// Corrupt slot: self-heal by discarding it.
		_ = os.Remove(s.path)
		return nil, nil
	}
	return &sess, nil
}

func (s *FileStore) Save(_ context.Context, sess *domain.Session) error {
	raw, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("session: encode slot: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("session: write slot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("session: commit slot: %w", err)
	}
	return nil
}

func (s *FileStore) Clear(_ context.Context) error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("session: clear slot: %w", err)
	}
	return nil
}
