package catalog

import (
	"context"
	"fmt"

	"moneybox/internal/models"
)

// ProductOrder assigns a display position to one product.
type ProductOrder struct {
	ID    string `json:"id"`
	Order int    `json:"order"`
}

// ReorderResult is the outcome of a reorder command.
type ReorderResult struct {
	Category *models.Category `json:"category"`
	Skipped  []string         `json:"skipped"`
}

// Reorder applies client-computed positions to products in one category
// and sorts the category by them. Ids that are not in the category are
// skipped and reported; products not mentioned keep their order.
func (s *Service) Reorder(ctx context.Context, categoryID string, orders []ProductOrder) (*ReorderResult, error) {
	if err := validateOrders(orders); err != nil {
		return nil, err
	}

	var result ReorderResult
	err := s.mutate(ctx, func(c *models.Catalog) ([]change, error) {
		i := c.CategoryIndex(categoryID)
		if i < 0 {
			return nil, ErrCategoryNotFound
		}
		cat := &c.Categories[i]

		byID := make(map[string]int, len(orders))
		for _, o := range orders {
			byID[o.ID] = o.Order
		}
		applied := 0
		for pi := range cat.Products {
			if order, ok := byID[cat.Products[pi].ID]; ok {
				cat.Products[pi].Order = order
				delete(byID, cat.Products[pi].ID)
				applied++
			}
		}

		skipped := []string{}
		for _, o := range orders {
			if _, left := byID[o.ID]; left {
				skipped = append(skipped, o.ID)
			}
		}

		cat.SortProducts()
		snapshot := *cat
		result = ReorderResult{Category: &snapshot, Skipped: skipped}

		if applied == 0 {
			return nil, errUnchanged
		}
		return []change{{"category", categoryID, "reorder"}}, nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func validateOrders(orders []ProductOrder) error {
	if len(orders) == 0 {
		return invalid("productOrders", "Product orders must be a non-empty list.")
	}
	v := &ValidationError{}
	seen := make(map[string]bool, len(orders))
	for i, o := range orders {
		field := fmt.Sprintf("productOrders[%d]", i)
		switch {
		case o.ID == "":
			v.add(field+".id", "Product ID is required.")
		case seen[o.ID]:
			v.add(field+".id", fmt.Sprintf("Duplicate product ID %q.", o.ID))
		}
		seen[o.ID] = true
		if o.Order < 1 {
			v.add(field+".order", "Order must be a positive integer.")
		}
	}
	return v.err()
}
