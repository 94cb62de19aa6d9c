// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"testing"
	"time"
)

func sampleCatalog() *Catalog {
	return &Catalog{
		Categories: []Category{
			{ID: "a", Name: "A", Order: 1, Products: []Product{
				{ID: "a1", Name: "A1", Order: 1},
				{ID: "a2", Name: "A2", Order: 2},
			}},
			{ID: "b", Name: "B", Order: 2, Products: []Product{
				{ID: "b1", Name: "B1", Order: 1},
			}},
		},
	}
}

func TestCategoryIndex(t *testing.T) {
	c := sampleCatalog()
	if got := c.CategoryIndex("b"); got != 1 {
		t.Errorf("CategoryIndex(b) = %d, want 1", got)
	}
	if got := c.CategoryIndex("missing"); got != -1 {
		t.Errorf("CategoryIndex(missing) = %d, want -1", got)
	}
}

func TestLocateProduct(t *testing.T) {
	c := sampleCatalog()

	tests := []struct {
		id       string
		wantCat  int
		wantProd int
	}{
		{"a1", 0, 0},
		{"a2", 0, 1},
		{"b1", 1, 0},
		{"nope", -1, -1},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			ci, pi := c.LocateProduct(tt.id)
			if ci != tt.wantCat || pi != tt.wantProd {
				t.Errorf("LocateProduct(%q) = (%d, %d), want (%d, %d)", tt.id, ci, pi, tt.wantCat, tt.wantProd)
			}
		})
	}
}

func TestRemoveProduct(t *testing.T) {
	c := sampleCatalog()
	p := c.RemoveProduct(0, 0)
	if p.ID != "a1" {
		t.Errorf("removed %q, want a1", p.ID)
	}
	if len(c.Categories[0].Products) != 1 || c.Categories[0].Products[0].ID != "a2" {
		t.Errorf("remaining products = %+v", c.Categories[0].Products)
	}
	if c.ProductCount() != 2 {
		t.Errorf("ProductCount = %d, want 2", c.ProductCount())
	}
}

func TestCloneIsDeep(t *testing.T) {
	now := time.Now()
	c := sampleCatalog()
	c.Categories[0].Products[0].UpdatedAt = &now

	cp := c.Clone()
	cp.Categories[0].Name = "changed"
	cp.Categories[0].Products[0].Name = "changed"
	*cp.Categories[0].Products[0].UpdatedAt = now.Add(time.Hour)
	cp.Categories[1].Products = append(cp.Categories[1].Products, Product{ID: "b2"})

	if c.Categories[0].Name != "A" {
		t.Error("category name leaked into original")
	}
	if c.Categories[0].Products[0].Name != "A1" {
		t.Error("product name leaked into original")
	}
	if !c.Categories[0].Products[0].UpdatedAt.Equal(now) {
		t.Error("updatedAt pointer shared with original")
	}
	if len(c.Categories[1].Products) != 1 {
		t.Error("appended product leaked into original")
	}
}

func TestCloneKeepsEmptyProductsNonNil(t *testing.T) {
	c := &Catalog{Categories: []Category{{ID: "x", Products: nil}}}
	if c.Clone().Categories[0].Products == nil {
		t.Error("clone should normalise nil products to an empty slice")
	}
}

func TestSortProductsIsStable(t *testing.T) {
	cat := Category{Products: []Product{
		{ID: "p1", Order: 2},
		{ID: "p2", Order: 1},
		{ID: "p3", Order: 2},
	}}
	cat.SortProducts()

	want := []string{"p2", "p1", "p3"}
	for i, id := range want {
		if cat.Products[i].ID != id {
			t.Fatalf("position %d: got %q, want %q", i, cat.Products[i].ID, id)
		}
	}
}

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()
	if len(c.Categories) != 1 || c.Categories[0].ID != "savings" {
		t.Fatalf("unexpected default categories: %+v", c.Categories)
	}
	if c.Categories[0].Products[0].ID != "cash-isa" {
		t.Errorf("default product = %q, want cash-isa", c.Categories[0].Products[0].ID)
	}
	if c.Metadata.Version != SchemaVersion {
		t.Errorf("version = %q, want %q", c.Metadata.Version, SchemaVersion)
	}
}
