// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// Local stores objects as files in a single directory.
type Local struct {
	dir     string
	baseURL string // URL prefix the directory is served under, e.g. "/uploads"
}

// NewLocal creates the directory if needed and returns a backend for it.
func NewLocal(dir, baseURL string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Local{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Dir returns the backing directory.
func (l *Local) Dir() string {
	return l.dir
}

// path resolves name inside the directory, refusing anything that is not a
// single path element.
func (l *Local) path(name string) (string, error) {
	if name == "" || name == "." || name == ".." || name != filepath.Base(name) || strings.ContainsAny(name, `/\`) {
		return "", ErrInvalidName
	}
	return filepath.Join(l.dir, name), nil
}

// Put writes the object through a temp file and rename.
func (l *Local) Put(ctx context.Context, name, contentType string, body io.Reader, size int64) error {
	p, err := l.path(name)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(l.dir, ".upload-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmpName, p); err != nil {
		return fmt.Errorf("store %s: %w", name, err)
	}
	return nil
}

// Open returns a reader for the named file.
func (l *Local) Open(ctx context.Context, name string) (io.ReadCloser, ObjectInfo, error) {
	p, err := l.path(name)
	if err != nil {
		return nil, ObjectInfo{}, err
	}
	f, err := os.Open(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ObjectInfo{}, ErrNotFound
	}
	if err != nil {
		return nil, ObjectInfo{}, fmt.Errorf("open %s: %w", name, err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, ObjectInfo{}, fmt.Errorf("stat %s: %w", name, err)
	}
	if st.IsDir() {
		f.Close()
		return nil, ObjectInfo{}, ErrNotFound
	}
	return f, l.info(st), nil
}

// Delete removes the named file.
func (l *Local) Delete(ctx context.Context, name string) error {
	p, err := l.path(name)
	if err != nil {
		return err
	}
	err = os.Remove(p)
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	return nil
}

// List returns every regular, non-hidden file in the directory.
func (l *Local) List(ctx context.Context) ([]ObjectInfo, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("read upload dir: %w", err)
	}

	out := make([]ObjectInfo, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		st, err := e.Info()
		if err != nil {
			// Removed between ReadDir and Info.
			continue
		}
		out = append(out, l.info(st))
	}
	return out, nil
}

// URL returns the public URL the file is served under.
func (l *Local) URL(name string) string {
	return l.baseURL + "/" + name
}

// Ping checks that the directory exists.
func (l *Local) Ping(ctx context.Context) error {
	st, err := os.Stat(l.dir)
	if err != nil {
		return err
	}
	if !st.IsDir() {
		return fmt.Errorf("%s is not a directory", l.dir)
	}
	return nil
}

func (l *Local) info(st fs.FileInfo) ObjectInfo {
	return ObjectInfo{
		Name:        st.Name(),
		Size:        st.Size(),
		ContentType: mime.TypeByExtension(strings.ToLower(filepath.Ext(st.Name()))),
		ModTime:     st.ModTime(),
	}
}
