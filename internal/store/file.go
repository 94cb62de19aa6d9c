// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"moneybox/internal/models"
)

// FileStore keeps the catalog in a single JSON file. Every save rewrites the
// whole file through a temp file and rename, so readers never observe a
// partially written document.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore returns a FileStore for the given path. The parent directory
// is created if needed.
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore{path: path}, nil
}

// Path returns the location of the JSON file.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the catalog. A missing file is seeded with the default catalog.
func (s *FileStore) Load(ctx context.Context) (*models.Catalog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.read()
	if errors.Is(err, fs.ErrNotExist) {
		c = models.DefaultCatalog()
		if err := s.write(c, 0); err != nil {
			return nil, fmt.Errorf("seed catalog: %w", err)
		}
		slog.Info("catalog file seeded with defaults", "path", s.path)
		return c, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Save writes the catalog if the file still holds the revision c was loaded at.
func (s *FileStore) Save(ctx context.Context, c *models.Catalog) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var current int64
	existing, err := s.read()
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return err
	default:
		current = existing.Metadata.Revision
	}

	if current != c.Metadata.Revision {
		return fmt.Errorf("%w: loaded %d, stored %d", ErrConflict, c.Metadata.Revision, current)
	}
	return s.write(c, current)
}

// Ping checks that the data directory is reachable.
func (s *FileStore) Ping(ctx context.Context) error {
	_, err := os.Stat(filepath.Dir(s.path))
	return err
}

func (s *FileStore) read() (*models.Catalog, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	var c models.Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	normalize(&c)
	return &c, nil
}

// write stamps metadata for revision current+1 and atomically replaces the file.
func (s *FileStore) write(c *models.Catalog, current int64) error {
	normalize(c)
	meta := c.Metadata
	meta.Revision = current + 1
	meta.LastUpdated = time.Now().UTC()

	out := *c
	out.Metadata = meta
	data, err := json.MarshalIndent(&out, "", "  ")
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace catalog file: %w", err)
	}

	c.Metadata = meta
	return nil
}
