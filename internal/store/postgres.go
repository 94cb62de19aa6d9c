// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"moneybox/internal/models"
)

// DefaultCatalogKey identifies the catalog row used by the service.
const DefaultCatalogKey = "default"

// PostgresStore keeps the catalog as one JSONB document row. The revision
// column is checked in the UPDATE so concurrent writers from different
// processes cannot overwrite each other.
type PostgresStore struct {
	db  *sql.DB
	key string
}

// NewPostgresStore returns a store for the catalog row identified by key.
func NewPostgresStore(db *sql.DB, key string) *PostgresStore {
	if key == "" {
		key = DefaultCatalogKey
	}
	return &PostgresStore{db: db, key: key}
}

// Load returns the stored catalog, seeding the default one on first use.
func (s *PostgresStore) Load(ctx context.Context) (*models.Catalog, error) {
	c, err := s.find(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		if err := s.seed(ctx); err != nil {
			return nil, err
		}
		c, err = s.find(ctx)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *PostgresStore) find(ctx context.Context) (*models.Catalog, error) {
	var (
		doc      []byte
		revision int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT document, revision FROM catalogs WHERE id = $1`, s.key,
	).Scan(&doc, &revision)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	var c models.Catalog
	if err := json.Unmarshal(doc, &c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	normalize(&c)
	c.Metadata.Revision = revision
	return &c, nil
}

// seed inserts the default catalog unless another process got there first.
func (s *PostgresStore) seed(ctx context.Context) error {
	c := models.DefaultCatalog()
	c.Metadata.Revision = 1
	doc, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode default catalog: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO catalogs (id, document, revision)
		VALUES ($1, $2, 1)
		ON CONFLICT (id) DO NOTHING
	`, s.key, doc)
	if err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	slog.Info("catalog row seeded with defaults", "key", s.key)
	return nil
}

// Save replaces the document if the row is still at c.Metadata.Revision.
func (s *PostgresStore) Save(ctx context.Context, c *models.Catalog) error {
	normalize(c)
	meta := c.Metadata
	meta.Revision++
	meta.LastUpdated = time.Now().UTC()

	out := *c
	out.Metadata = meta
	doc, err := json.Marshal(&out)
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE catalogs SET document = $1, revision = $2, updated_at = $3
		WHERE id = $4 AND revision = $5
	`, doc, meta.Revision, meta.LastUpdated, s.key, c.Metadata.Revision)
	if err != nil {
		return fmt.Errorf("save catalog: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save catalog rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: revision %d is stale", ErrConflict, c.Metadata.Revision)
	}

	c.Metadata = meta
	return nil
}

// Ping verifies the database connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
