// internal/store/file.go
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/florets/hanabi/internal/game"
)

// FileStore keeps one JSON document per game under a data directory, the
// way the original deployment did. Replace goes through a temp file, fsync
// and rename so a reader never observes a partially written record and a
// crash mid-replace leaves the previous record intact.
type FileStore struct {
	Dir string
}

// NewFileStore creates the data directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", dir, err)
	}
	return &FileStore{Dir: dir}, nil
}

func (s *FileStore) path(id uuid.UUID) string {
	return filepath.Join(s.Dir, id.String()+".json")
}

func (s *FileStore) Get(_ context.Context, id uuid.UUID) (*game.Game, error) {
	data, err := os.ReadFile(s.path(id))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("read game %s: %w", id, err)
	}
	var g game.Game
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("decode game %s: %w", id, err)
	}
	return &g, nil
}

func (s *FileStore) Replace(_ context.Context, id uuid.UUID, g *game.Game) error {
	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return fmt.Errorf("encode game %s: %w", id, err)
	}

	tmp, err := os.CreateTemp(s.Dir, id.String()+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file for game %s: %w", id, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write game %s: %w", id, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync game %s: %w", id, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close game %s: %w", id, err)
	}
	if err := os.Rename(tmp.Name(), s.path(id)); err != nil {
		return fmt.Errorf("replace game %s: %w", id, err)
	}
	return nil
}
