// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package catalog implements the catalog operations: category and product
// CRUD, reorder and bulk actions. Every mutation is a read-modify-write
// transaction over a store.CatalogStore, serialized within the process and
// retried when another writer moved the stored revision.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"moneybox/internal/models"
	"moneybox/internal/store"
)

// maxAttempts bounds how often a transaction is retried on ErrConflict.
const maxAttempts = 3

// defaultIcon is given to products created without one.
const defaultIcon = "📦"

// Invalidator is notified after every successful save.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

// ChangeRecorder receives the entries of one saved transaction.
type ChangeRecorder interface {
	Record(ctx context.Context, changes ...store.Change)
}

// Option configures a Service.
type Option func(*Service)

// WithInvalidator registers a cache to clear after each save.
func WithInvalidator(i Invalidator) Option {
	return func(s *Service) { s.invalidator = i }
}

// WithChangeRecorder registers an audit log for applied changes.
func WithChangeRecorder(r ChangeRecorder) Option {
	return func(s *Service) { s.changes = r }
}

// WithClock overrides the time source used for ids and timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// Service applies catalog operations to a store.
type Service struct {
	store       store.CatalogStore
	mu          sync.Mutex // serializes load-apply-save
	ids         *idGenerator
	now         func() time.Time
	invalidator Invalidator
	changes     ChangeRecorder
}

// NewService returns a catalog service backed by st.
func NewService(st store.CatalogStore, opts ...Option) *Service {
	s := &Service{store: st, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.ids = newIDGenerator(s.now)
	return s
}

// Ping checks the underlying store.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// change is one entity touched by a transaction.
type change struct {
	entityType string
	entityID   string
	action     string
}

// errUnchanged lets a transaction finish without saving.
var errUnchanged = errors.New("catalog unchanged")

// mutate runs fn against a freshly loaded catalog and saves the result. fn
// may run more than once, so it must derive all of its output from the
// catalog it is given. Hooks run after the lock is released.
func (s *Service) mutate(ctx context.Context, fn func(c *models.Catalog) ([]change, error)) error {
	revision, changes, err := s.apply(ctx, fn)
	if err != nil || changes == nil {
		return err
	}
	s.afterSave(ctx, revision, changes)
	return nil
}

// apply is the locked load-apply-save loop. It returns nil changes when fn
// left the catalog unchanged.
func (s *Service) apply(ctx context.Context, fn func(c *models.Catalog) ([]change, error)) (int64, []change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for attempt := 1; ; attempt++ {
		c, err := s.store.Load(ctx)
		if err != nil {
			return 0, nil, fmt.Errorf("load catalog: %w", err)
		}

		changes, err := fn(c)
		if errors.Is(err, errUnchanged) {
			return 0, nil, nil
		}
		if err != nil {
			return 0, nil, err
		}

		err = s.store.Save(ctx, c)
		if err == nil {
			if changes == nil {
				changes = []change{}
			}
			return c.Metadata.Revision, changes, nil
		}
		if !errors.Is(err, store.ErrConflict) {
			return 0, nil, fmt.Errorf("save catalog: %w", err)
		}
		if attempt >= maxAttempts {
			return 0, nil, fmt.Errorf("save catalog after %d attempts: %w", attempt, err)
		}
		slog.Warn("catalog revision conflict, retrying", "attempt", attempt)
	}
}

// afterSave invalidates the cache and records the changes of a saved
// transaction. The save already happened, so a client going away must not
// cancel these.
func (s *Service) afterSave(ctx context.Context, revision int64, changes []change) {
	ctx = context.WithoutCancel(ctx)

	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx)
	}

	entries := make([]store.Change, 0, len(changes))
	for _, ch := range changes {
		slog.Info("catalog changed",
			"entity_type", ch.entityType,
			"entity_id", ch.entityID,
			"action", ch.action,
			"revision", revision,
		)
		entries = append(entries, store.Change{
			EntityType: ch.entityType,
			EntityID:   ch.entityID,
			Action:     ch.action,
			Revision:   revision,
		})
	}
	if s.changes != nil && len(entries) > 0 {
		s.changes.Record(ctx, entries...)
	}
}

// List returns the full catalog in stored order.
func (s *Service) List(ctx context.Context) (*models.Catalog, error) {
	c, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return c, nil
}

// GetCategory returns one category with its products.
func (s *Service) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	c, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	i := c.CategoryIndex(id)
	if i < 0 {
		return nil, ErrCategoryNotFound
	}
	return &c.Categories[i], nil
}

// CreateCategory appends a new, empty category.
func (s *Service) CreateCategory(ctx context.Context, in CategoryInput) (*models.Category, error) {
	in.clean()
	if err := in.validate(); err != nil {
		return nil, err
	}

	var created models.Category
	err := s.mutate(ctx, func(c *models.Catalog) ([]change, error) {
		id := s.ids.next("category")
		for c.CategoryIndex(id) >= 0 {
			id = s.ids.next("category")
		}
		created = models.Category{
			ID:          id,
			Name:        in.Name,
			Order:       len(c.Categories) + 1,
			Description: in.Description,
			Products:    []models.Product{},
		}
		c.Categories = append(c.Categories, created)
		return []change{{"category", id, "create"}}, nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateCategory merges the input over an existing category. An empty
// description keeps the current one.
func (s *Service) UpdateCategory(ctx context.Context, id string, in CategoryInput) (*models.Category, error) {
	in.clean()
	if err := in.validate(); err != nil {
		return nil, err
	}

	var updated models.Category
	err := s.mutate(ctx, func(c *models.Catalog) ([]change, error) {
		i := c.CategoryIndex(id)
		if i < 0 {
			return nil, ErrCategoryNotFound
		}
		cat := &c.Categories[i]
		cat.Name = in.Name
		if in.Description != "" {
			cat.Description = in.Description
		}
		now := s.now().UTC()
		cat.UpdatedAt = &now
		updated = *cat
		return []change{{"category", id, "update"}}, nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteCategory removes a category and every product inside it.
func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	return s.mutate(ctx, func(c *models.Catalog) ([]change, error) {
		i := c.CategoryIndex(id)
		if i < 0 {
			return nil, ErrCategoryNotFound
		}
		changes := []change{{"category", id, "delete"}}
		for _, p := range c.Categories[i].Products {
			changes = append(changes, change{"product", p.ID, "delete"})
		}
		c.Categories = append(c.Categories[:i], c.Categories[i+1:]...)
		return changes, nil
	})
}

// CreateProduct appends a product to an existing category.
func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	in.clean()
	if err := in.validate(true); err != nil {
		return nil, err
	}
	if in.Icon == "" {
		in.Icon = defaultIcon
	}

	var created models.Product
	err := s.mutate(ctx, func(c *models.Catalog) ([]change, error) {
		i := c.CategoryIndex(in.CategoryID)
		if i < 0 {
			return nil, ErrCategoryNotFound
		}
		id := s.ids.next("product")
		for ci, _ := c.LocateProduct(id); ci >= 0; ci, _ = c.LocateProduct(id) {
			id = s.ids.next("product")
		}
		cat := &c.Categories[i]
		created = models.Product{
			ID:          id,
			Name:        in.Name,
			Description: in.Description,
			Icon:        in.Icon,
			Image:       in.Image,
			Order:       len(cat.Products) + 1,
		}
		cat.Products = append(cat.Products, created)
		return []change{{"product", id, "create"}}, nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateProduct merges the input over an existing product. Empty optional
// fields keep their current values.
func (s *Service) UpdateProduct(ctx context.Context, id string, in ProductInput) (*models.Product, error) {
	in.clean()
	if err := in.validate(false); err != nil {
		return nil, err
	}

	var updated models.Product
	err := s.mutate(ctx, func(c *models.Catalog) ([]change, error) {
		ci, pi := c.LocateProduct(id)
		if ci < 0 {
			return nil, ErrProductNotFound
		}
		p := &c.Categories[ci].Products[pi]
		p.Name = in.Name
		mergeProduct(p, in.Description, in.Icon, in.Image)
		now := s.now().UTC()
		p.UpdatedAt = &now
		updated = *p
		return []change{{"product", id, "update"}}, nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteProduct removes the first product with the given id.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	return s.mutate(ctx, func(c *models.Catalog) ([]change, error) {
		ci, pi := c.LocateProduct(id)
		if ci < 0 {
			return nil, ErrProductNotFound
		}
		c.RemoveProduct(ci, pi)
		return []change{{"product", id, "delete"}}, nil
	})
}

func mergeProduct(p *models.Product, description, icon, image string) {
	if description != "" {
		p.Description = description
	}
	if icon != "" {
		p.Icon = icon
	}
	if image != "" {
		p.Image = image
	}
}
