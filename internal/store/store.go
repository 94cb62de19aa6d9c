// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store persists the catalog document. Handlers and services only
// see the CatalogStore interface; the JSON file and PostgreSQL backends are
// interchangeable behind it.
package store

import (
	"context"
	"errors"

	"moneybox/internal/models"
)

// ErrConflict is returned by Save when the stored revision no longer matches
// the revision the caller loaded.
var ErrConflict = errors.New("catalog revision conflict")

// CatalogStore loads and saves the whole catalog.
//
// Save compares c.Metadata.Revision with the stored revision and fails with
// ErrConflict if they differ. On success it stamps c.Metadata with the new
// revision and lastUpdated time.
type CatalogStore interface {
	Load(ctx context.Context) (*models.Catalog, error)
	Save(ctx context.Context, c *models.Catalog) error
	Ping(ctx context.Context) error
}

// normalize makes sure empty collections encode as [] rather than null.
func normalize(c *models.Catalog) {
	if c.Categories == nil {
		c.Categories = []models.Category{}
	}
	for i := range c.Categories {
		if c.Categories[i].Products == nil {
			c.Categories[i].Products = []models.Product{}
		}
	}
	if c.Metadata.Version == "" {
		c.Metadata.Version = models.SchemaVersion
	}
}
