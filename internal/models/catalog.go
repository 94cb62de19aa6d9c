// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"sort"
	"time"
)

// SchemaVersion is written to Metadata.Version for every persisted catalog.
const SchemaVersion = "1.0.0"

// Catalog is the full category/product tree. It is persisted as a single
// document and always loaded and saved as a whole.
type Catalog struct {
	Categories []Category `json:"categories"`
	Metadata   Metadata   `json:"metadata"`
}

// Metadata describes the persisted document. Revision increases by one on
// every successful save and is used for optimistic concurrency.
type Metadata struct {
	LastUpdated time.Time `json:"lastUpdated"`
	Version     string    `json:"version"`
	Revision    int64     `json:"revision"`
}

// Category groups products. Products are embedded, so deleting a category
// deletes its products too.
type Category struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Order       int        `json:"order"`
	Description string     `json:"description,omitempty"`
	Products    []Product  `json:"products"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// Product is a single catalog entry owned by exactly one category.
type Product struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Icon        string     `json:"icon"`
	Image       string     `json:"image,omitempty"`
	Order       int        `json:"order"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// CategoryIndex returns the position of the category with the given id,
// or -1 if none matches.
func (c *Catalog) CategoryIndex(id string) int {
	for i := range c.Categories {
		if c.Categories[i].ID == id {
			return i
		}
	}
	return -1
}

// LocateProduct finds a product by id across all categories, scanning them
// in stored order. It returns the category and product positions of the
// first match, or (-1, -1).
//
// This is the only place that searches products by id; replace it with an
// id-to-category index if catalogs ever grow large.
func (c *Catalog) LocateProduct(id string) (catIdx, prodIdx int) {
	for ci := range c.Categories {
		for pi := range c.Categories[ci].Products {
			if c.Categories[ci].Products[pi].ID == id {
				return ci, pi
			}
		}
	}
	return -1, -1
}

// RemoveProduct deletes the product at the given position and returns it.
func (c *Catalog) RemoveProduct(catIdx, prodIdx int) Product {
	products := c.Categories[catIdx].Products
	p := products[prodIdx]
	c.Categories[catIdx].Products = append(products[:prodIdx], products[prodIdx+1:]...)
	return p
}

// ProductCount returns the number of products across all categories.
func (c *Catalog) ProductCount() int {
	n := 0
	for i := range c.Categories {
		n += len(c.Categories[i].Products)
	}
	return n
}

// Clone returns a deep copy, so a caller can mutate the result without
// affecting the original.
func (c *Catalog) Clone() *Catalog {
	out := &Catalog{
		Categories: make([]Category, len(c.Categories)),
		Metadata:   c.Metadata,
	}
	for i, cat := range c.Categories {
		cat.Products = append([]Product(nil), cat.Products...)
		if cat.Products == nil {
			cat.Products = []Product{}
		}
		cat.UpdatedAt = cloneTime(cat.UpdatedAt)
		for j := range cat.Products {
			cat.Products[j].UpdatedAt = cloneTime(cat.Products[j].UpdatedAt)
		}
		out.Categories[i] = cat
	}
	return out
}

// SortProducts orders the category's products by Order ascending. Products
// with equal order keep their relative position.
func (c *Category) SortProducts() {
	sort.SliceStable(c.Products, func(i, j int) bool {
		return c.Products[i].Order < c.Products[j].Order
	})
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// DefaultCatalog returns the catalog seeded into an empty store.
func DefaultCatalog() *Catalog {
	return &Catalog{
		Categories: []Category{
			{
				ID:    "savings",
				Name:  "Savings",
				Order: 1,
				Products: []Product{
					{
						ID:          "cash-isa",
						Name:        "Cash ISA",
						Description: "A tax-free way to save up to £20,000 per year",
						Icon:        "💰",
						Order:       1,
					},
				},
			},
		},
		Metadata: Metadata{
			LastUpdated: time.Now().UTC(),
			Version:     SchemaVersion,
		},
	}
}
