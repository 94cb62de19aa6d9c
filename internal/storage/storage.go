// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package storage provides blob backends for uploaded images: a flat local
// directory and an S3-compatible bucket. Both address objects by plain file
// name; callers are expected to validate names before use.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	// ErrNotFound is returned when the named object does not exist.
	ErrNotFound = errors.New("object not found")

	// ErrInvalidName is returned for names that are not a single path element.
	ErrInvalidName = errors.New("invalid object name")
)

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Name        string
	Size        int64
	ContentType string
	ModTime     time.Time
}

// Backend stores image files by name.
type Backend interface {
	Put(ctx context.Context, name, contentType string, body io.Reader, size int64) error
	Open(ctx context.Context, name string) (io.ReadCloser, ObjectInfo, error)
	Delete(ctx context.Context, name string) error
	List(ctx context.Context) ([]ObjectInfo, error)
	URL(name string) string
	Ping(ctx context.Context) error
}
