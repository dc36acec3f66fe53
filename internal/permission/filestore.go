// Package permission holds the delegated-permission machinery: the persisted
// store backends, the lifecycle manager and the pending-action queue.
package permission

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"engagelayer/internal/config"
	"engagelayer/internal/core"
)

// FileStore keeps the single permission record as one JSON document on
// disk, the headless analogue of the original client's local storage entry.
// Writes go through a temp file and a rename, so the record is replaced
// wholesale or not at all. One writer per session by construction; sharing
// the file between processes needs external locking.
type FileStore struct {
	Logger *slog.Logger
	Config *config.Config

	path string
}

func (s *FileStore) Init(context.Context) error {
	s.Logger = s.Logger.With("component", "permission.FileStore")

	s.path = s.Config.StatePath
	if s.path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		s.path = filepath.Join(home, ".engagelayer", "permission.json")
	}

	return os.MkdirAll(filepath.Dir(s.path), 0o700)
}

func (s *FileStore) Load(context.Context) (*core.Permission, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, core.ErrNoPermission
		}
		return nil, err
	}

	var p core.Permission
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("corrupt permission record: %w", err)
	}
	return &p, nil
}

func (s *FileStore) Save(_ context.Context, p *core.Permission) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func (s *FileStore) Clear(context.Context) error {
	err := os.Remove(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
