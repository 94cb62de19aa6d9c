// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package media implements the image store: uploads arrive as base64 data
// URIs, are checked against an allow-list and decoded far enough to prove
// they are images, and are written to a storage backend under a generated
// name of the form <epoch-ms>_<random>.<ext>.
package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "golang.org/x/image/webp" // register WebP decoder

	"moneybox/internal/models"
	"moneybox/internal/sanitize"
	"moneybox/internal/storage"
)

const (
	// DefaultMaxUploadSize is the largest decoded image accepted (5 MB).
	DefaultMaxUploadSize = 5 << 20

	// maxImagePixels caps the number of pixels to prevent memory bombs.
	maxImagePixels = 50_000_000
)

var (
	ErrUnsupportedType = errors.New("unsupported image type")
	ErrTooLarge        = errors.New("image too large")
	ErrInvalidData     = errors.New("invalid image data")
	ErrInvalidFilename = errors.New("invalid filename")
	ErrNotFound        = errors.New("image not found")
)

// allowedTypes maps accepted MIME types to the extension files are stored
// under and the decoder format name image.DecodeConfig reports.
var allowedTypes = map[string]struct{ ext, format string }{
	"image/jpeg": {".jpg", "jpeg"},
	"image/jpg":  {".jpg", "jpeg"},
	"image/png":  {".png", "png"},
	"image/gif":  {".gif", "gif"},
	"image/webp": {".webp", "webp"},
}

// extensionTypes maps listable file extensions to their content type.
var extensionTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// AllowedTypes returns the accepted MIME types, sorted.
func AllowedTypes() []string {
	out := make([]string, 0, len(allowedTypes))
	for t := range allowedTypes {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Service stores and lists images on a backend.
type Service struct {
	backend  storage.Backend
	maxBytes int64
	now      func() time.Time
}

// NewService returns an image service. maxBytes <= 0 selects
// DefaultMaxUploadSize.
func NewService(backend storage.Backend, maxBytes int64) *Service {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadSize
	}
	return &Service{backend: backend, maxBytes: maxBytes, now: time.Now}
}

// MaxBytes returns the decoded size limit.
func (s *Service) MaxBytes() int64 {
	return s.maxBytes
}

// Ping checks the storage backend.
func (s *Service) Ping(ctx context.Context) error {
	return s.backend.Ping(ctx)
}

// UploadInput is the upload request body.
type UploadInput struct {
	ImageData string `json:"imageData"` // data:<mime>;base64,<payload> or bare base64
	Name      string `json:"name"`      // original file name, informational
	Type      string `json:"type"`      // MIME type, required for bare base64
}

// Upload validates and stores an image. Nothing is written unless every
// check passes.
func (s *Service) Upload(ctx context.Context, in UploadInput) (*models.Image, error) {
	contentType, payload, err := parseDataURI(in.ImageData, in.Type)
	if err != nil {
		return nil, err
	}
	kind, ok := allowedTypes[contentType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}

	// Reject oversized payloads before allocating the decoded buffer.
	if int64(base64.StdEncoding.DecodedLen(len(payload))) > s.maxBytes+3 {
		return nil, ErrTooLarge
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: bad base64: %v", ErrInvalidData, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidData)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, ErrTooLarge
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	if format != kind.format {
		return nil, fmt.Errorf("%w: content is %s, declared %s", ErrInvalidData, format, contentType)
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxImagePixels {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrTooLarge, cfg.Width, cfg.Height, maxImagePixels)
	}

	now := s.now()
	filename := fmt.Sprintf("%d_%s%s", now.UnixMilli(), randomSuffix(), kind.ext)
	storedType := extensionTypes[kind.ext]

	if err := s.backend.Put(ctx, filename, storedType, bytes.NewReader(data), int64(len(data))); err != nil {
		return nil, fmt.Errorf("store image: %w", err)
	}

	slog.Info("image uploaded", "filename", filename, "size", len(data), "type", storedType)

	return &models.Image{
		ID:           strings.TrimSuffix(filename, kind.ext),
		Filename:     filename,
		URL:          s.backend.URL(filename),
		Size:         int64(len(data)),
		ContentType:  storedType,
		Width:        cfg.Width,
		Height:       cfg.Height,
		OriginalName: sanitize.Input(in.Name),
		UploadedAt:   now.UTC(),
	}, nil
}

// List returns stored images, newest first. Files without an image
// extension are ignored.
func (s *Service) List(ctx context.Context) ([]models.Image, error) {
	objects, err := s.backend.List(ctx)
	if err != nil {
		return nil, err
	}

	images := make([]models.Image, 0, len(objects))
	for _, obj := range objects {
		ext := strings.ToLower(filepath.Ext(obj.Name))
		ct, ok := extensionTypes[ext]
		if !ok {
			continue
		}
		images = append(images, models.Image{
			ID:          strings.TrimSuffix(obj.Name, filepath.Ext(obj.Name)),
			Filename:    obj.Name,
			URL:         s.backend.URL(obj.Name),
			Size:        obj.Size,
			ContentType: ct,
			UploadedAt:  uploadedAt(obj),
		})
	}

	sort.SliceStable(images, func(i, j int) bool {
		return images[i].UploadedAt.After(images[j].UploadedAt)
	})
	return images, nil
}

// Open returns the image bytes and metadata for a stored file.
func (s *Service) Open(ctx context.Context, filename string) (io.ReadCloser, *models.Image, error) {
	if err := ValidateFilename(filename); err != nil {
		return nil, nil, err
	}
	rc, obj, err := s.backend.Open(ctx, filename)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil, ErrNotFound
	}
	if errors.Is(err, storage.ErrInvalidName) {
		return nil, nil, ErrInvalidFilename
	}
	if err != nil {
		return nil, nil, err
	}
	img := &models.Image{
		ID:          strings.TrimSuffix(filename, filepath.Ext(filename)),
		Filename:    filename,
		URL:         s.backend.URL(filename),
		Size:        obj.Size,
		ContentType: extensionTypes[strings.ToLower(filepath.Ext(filename))],
		UploadedAt:  uploadedAt(obj),
	}
	return rc, img, nil
}

// Delete removes a stored file.
func (s *Service) Delete(ctx context.Context, filename string) error {
	if err := ValidateFilename(filename); err != nil {
		return err
	}
	err := s.backend.Delete(ctx, filename)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, storage.ErrInvalidName):
		return ErrInvalidFilename
	case err != nil:
		return err
	}
	slog.Info("image deleted", "filename", filename)
	return nil
}

// ValidateFilename rejects anything that is not a plain image file name:
// path separators, traversal sequences, NUL bytes and unknown extensions.
func ValidateFilename(name string) error {
	switch {
	case name == "",
		strings.Contains(name, ".."),
		strings.ContainsAny(name, "/\\\x00"),
		filepath.Base(name) != name,
		strings.HasPrefix(name, "."):
		return fmt.Errorf("%w: %q", ErrInvalidFilename, name)
	}
	if _, ok := extensionTypes[strings.ToLower(filepath.Ext(name))]; !ok {
		return fmt.Errorf("%w: %q has no image extension", ErrInvalidFilename, name)
	}
	return nil
}

// parseDataURI splits a data URI into its MIME type and base64 payload.
// A bare base64 string is accepted when fallbackType is given.
func parseDataURI(raw, fallbackType string) (string, string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", "", fmt.Errorf("%w: imageData is required", ErrInvalidData)
	}

	contentType := fallbackType
	payload := raw
	if strings.HasPrefix(raw, "data:") {
		header, body, ok := strings.Cut(raw[len("data:"):], ",")
		if !ok {
			return "", "", fmt.Errorf("%w: malformed data URI", ErrInvalidData)
		}
		params := strings.Split(header, ";")
		if len(params) < 2 || !strings.EqualFold(params[len(params)-1], "base64") {
			return "", "", fmt.Errorf("%w: data URI must be base64 encoded", ErrInvalidData)
		}
		contentType = params[0]
		payload = body
	}

	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if contentType == "" {
		return "", "", fmt.Errorf("%w: image type is required", ErrUnsupportedType)
	}

	// Line-wrapped base64 is common in pasted data URIs.
	payload = strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', ' ', '\t':
			return -1
		}
		return r
	}, payload)

	return contentType, payload, nil
}

// randomSuffix returns nine lowercase hex characters.
func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
}

// uploadedAt derives the upload time from the epoch-ms filename prefix,
// falling back to the backend's modification time.
func uploadedAt(obj storage.ObjectInfo) time.Time {
	prefix, _, ok := strings.Cut(obj.Name, "_")
	if ok {
		if ms, err := strconv.ParseInt(prefix, 10, 64); err == nil && ms > 0 {
			return time.UnixMilli(ms).UTC()
		}
	}
	return obj.ModTime.UTC()
}
