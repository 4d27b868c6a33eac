// Package localstore persists named client-side values as files in one directory.
package localstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"github.com/jerseyretro/storefront/internal/ports"
)

var _ ports.Slot = (*FileSlot)(nil)

var slotName = regexp.MustCompile(`^[a-z0-9_.-]+$`)

// Dir is a directory of slots.
type Dir struct {
	path string
}

// Open creates the directory (mode 0700) when missing.
func Open(path string) (*Dir, error) {
	if path == "" {
		return nil, errors.New("state directory is required")
	}
	if err := os.MkdirAll(path, 0o700); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}
	return &Dir{path: path}, nil
}

// Slot returns the slot stored in <dir>/<name>.json.
func (d *Dir) Slot(name string) (*FileSlot, error) {
	if !slotName.MatchString(name) {
		return nil, fmt.Errorf("invalid slot name %q", name)
	}
	return &FileSlot{path: filepath.Join(d.path, name+".json")}, nil
}

// FileSlot is one file. Writes are atomic: a temp file in the same directory is renamed over it.
type FileSlot struct {
	path string
}

// Path returns the backing file path.
func (s *FileSlot) Path() string { return s.path }

func (s *FileSlot) Load(_ context.Context) ([]byte, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ports.ErrSlotEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("read slot: %w", err)
	}
	return b, nil
}

func (s *FileSlot) Store(_ context.Context, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), "."+filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("create temp slot: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write temp slot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("sync temp slot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp slot: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		cleanup()
		return fmt.Errorf("replace slot: %w", err)
	}
	return nil
}

func (s *FileSlot) Remove(_ context.Context) error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove slot: %w", err)
	}
	return nil
}
