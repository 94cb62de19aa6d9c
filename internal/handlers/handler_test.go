// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler tests.
// They run against a file-backed catalog and a local upload directory, so
// no external services are needed.
package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"moneybox/internal/catalog"
	"moneybox/internal/media"
	"moneybox/internal/storage"
	"moneybox/internal/store"
)

// testEnv holds a router wired to real services over temp directories.
type testEnv struct {
	router    chi.Router
	store     *store.FileStore
	uploadDir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()

	fs, err := store.NewFileStore(filepath.Join(dir, "catalog.json"))
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	uploadDir := filepath.Join(dir, "uploads")
	backend, err := storage.NewLocal(uploadDir, "/uploads")
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}

	svc := catalog.NewService(fs)
	cat := NewCatalog(svc, nil)
	img := NewImages(media.NewService(backend, 0))
	health := NewHealth(time.Now(), map[string]Pinger{"database": svc, "images": backend, "cache": nil})

	r := chi.NewRouter()
	r.Get("/api/health", health.Check)
	r.Get("/api/categories", cat.List)
	r.Post("/api/categories", cat.CreateCategory)
	r.Get("/api/categories/{id}", cat.GetCategory)
	r.Put("/api/categories/{id}", cat.UpdateCategory)
	r.Delete("/api/categories/{id}", cat.DeleteCategory)
	r.Put("/api/categories/{categoryId}/products/reorder", cat.ReorderProducts)
	r.Post("/api/products", cat.CreateProduct)
	r.Post("/api/products/bulk", cat.BulkProducts)
	r.Put("/api/products/{id}", cat.UpdateProduct)
	r.Delete("/api/products/{id}", cat.DeleteProduct)
	r.Post("/api/images/upload", img.Upload)
	r.Get("/api/images", img.List)
	r.Get("/api/images/{filename}", img.Serve)
	r.Delete("/api/images/{filename}", img.Delete)

	return &testEnv{router: r, store: fs, uploadDir: uploadDir}
}

// do sends a request with an optional JSON body and returns the recorder.
func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, rd)
	if rd != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

// decode unmarshals the response body, failing the test on error.
func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return v
}

func expectStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("status: got %d, want %d (body %s)", rr.Code, want, rr.Body.String())
	}
}

// newRecorderFor calls a list handler directly, bypassing the router.
func newRecorderFor(h http.HandlerFunc) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h(rr, httptest.NewRequest(http.MethodGet, "/api/categories", nil))
	return rr
}
