// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"moneybox/internal/catalog"
)

// DocumentCache serves the encoded catalog, loading it on a miss.
type DocumentCache interface {
	Fetch(ctx context.Context, load func(ctx context.Context) ([]byte, error)) ([]byte, error)
}

// Catalog handles category and product endpoints.
type Catalog struct {
	svc   *catalog.Service
	cache DocumentCache // nil when caching is disabled
}

// NewCatalog creates the catalog handlers. cache may be nil.
func NewCatalog(svc *catalog.Service, cache DocumentCache) *Catalog {
	return &Catalog{svc: svc, cache: cache}
}

// List returns the full catalog tree.
func (h *Catalog) List(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		c, err := h.svc.List(r.Context())
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
		return
	}

	data, err := h.cache.Fetch(r.Context(), h.encodeCatalog)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *Catalog) encodeCatalog(ctx context.Context) ([]byte, error) {
	c, err := h.svc.List(ctx)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode catalog: %w", err)
	}
	return append(data, '\n'), nil
}

// GetCategory returns a single category.
func (h *Catalog) GetCategory(w http.ResponseWriter, r *http.Request) {
	cat, err := h.svc.GetCategory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

// CreateCategory appends a category.
func (h *Catalog) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var in catalog.CategoryInput
	if err := decodeJSON(w, r, maxJSONBody, &in); err != nil {
		writeServiceError(w, r, err)
		return
	}
	cat, err := h.svc.CreateCategory(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, cat)
}

// UpdateCategory merges fields into a category.
func (h *Catalog) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var in catalog.CategoryInput
	if err := decodeJSON(w, r, maxJSONBody, &in); err != nil {
		writeServiceError(w, r, err)
		return
	}
	cat, err := h.svc.UpdateCategory(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

// DeleteCategory removes a category and its products.
func (h *Catalog) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteCategory(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// reorderRequest is the body of the reorder endpoint.
type reorderRequest struct {
	ProductOrders []catalog.ProductOrder `json:"productOrders"`
}

// ReorderProducts applies a client-computed product order.
func (h *Catalog) ReorderProducts(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := decodeJSON(w, r, maxJSONBody, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	res, err := h.svc.Reorder(r.Context(), chi.URLParam(r, "categoryId"), req.ProductOrders)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// CreateProduct adds a product to a category.
func (h *Catalog) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var in catalog.ProductInput
	if err := decodeJSON(w, r, maxJSONBody, &in); err != nil {
		writeServiceError(w, r, err)
		return
	}
	p, err := h.svc.CreateProduct(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// UpdateProduct merges fields into a product.
func (h *Catalog) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var in catalog.ProductInput
	if err := decodeJSON(w, r, maxJSONBody, &in); err != nil {
		writeServiceError(w, r, err)
		return
	}
	p, err := h.svc.UpdateProduct(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// DeleteProduct removes a product.
func (h *Catalog) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// BulkProducts applies one action to many products.
func (h *Catalog) BulkProducts(w http.ResponseWriter, r *http.Request) {
	var req catalog.BulkRequest
	if err := decodeJSON(w, r, maxJSONBody, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	res, err := h.svc.Bulk(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
