// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"moneybox/internal/media"
)

// uploadOverhead allows for the base64 expansion of an image plus the
// surrounding JSON fields.
const uploadOverhead = 64 << 10

// Images handles image upload, listing, fetch and delete.
type Images struct {
	svc *media.Service
}

// NewImages creates the image handlers.
func NewImages(svc *media.Service) *Images {
	return &Images{svc: svc}
}

// Upload stores a base64 data-URI image.
func (h *Images) Upload(w http.ResponseWriter, r *http.Request) {
	limit := h.svc.MaxBytes()*4/3 + uploadOverhead
	var in media.UploadInput
	if err := decodeJSON(w, r, limit, &in); err != nil {
		writeServiceError(w, r, err)
		return
	}
	img, err := h.svc.Upload(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, img)
}

// List returns the stored images, newest first.
func (h *Images) List(w http.ResponseWriter, r *http.Request) {
	images, err := h.svc.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"images": images})
}

// Serve streams an image by exact filename.
func (h *Images) Serve(w http.ResponseWriter, r *http.Request) {
	rc, img, err := h.svc.Open(r.Context(), chi.URLParam(r, "filename"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	defer rc.Close()

	hdr := w.Header()
	hdr.Set("Content-Type", img.ContentType)
	hdr.Set("Cache-Control", "public, max-age=31536000, immutable")
	if img.Size > 0 {
		hdr.Set("Content-Length", strconv.FormatInt(img.Size, 10))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		slog.Warn("image stream interrupted", "filename", img.Filename, "error", err)
	}
}

// Delete removes an image by filename.
func (h *Images) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "filename")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
