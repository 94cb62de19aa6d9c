package catalog

import (
	"context"
	"fmt"

	"moneybox/internal/models"
	"moneybox/internal/sanitize"
)

// BulkAction names the operation applied by a bulk request.
type BulkAction string

const (
	BulkDelete BulkAction = "delete"
	BulkUpdate BulkAction = "update"
	BulkMove   BulkAction = "move"
)

// BulkRequest is the body of the bulk endpoint.
type BulkRequest struct {
	Action     BulkAction `json:"action"`
	ProductIDs []string   `json:"productIds"`
	Data       BulkData   `json:"data"`
}

// BulkData carries the action parameters. Move reads TargetCategoryID;
// update reads the product fields and keeps current values for empty ones.
type BulkData struct {
	TargetCategoryID string `json:"targetCategoryId,omitempty"`
	Name             string `json:"name,omitempty"`
	Description      string `json:"description,omitempty"`
	Icon             string `json:"icon,omitempty"`
	Image            string `json:"image,omitempty"`
}

// BulkItemResult reports the outcome for one product id.
type BulkItemResult struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// BulkResult summarizes a bulk request.
type BulkResult struct {
	Action    BulkAction       `json:"action"`
	Processed int              `json:"processed"`
	Failed    int              `json:"failed"`
	Results   []BulkItemResult `json:"results"`
}

func (r *BulkRequest) clean() {
	for i, id := range r.ProductIDs {
		r.ProductIDs[i] = sanitize.Input(id)
	}
	r.Data.TargetCategoryID = sanitize.Input(r.Data.TargetCategoryID)
	r.Data.Name = sanitize.Input(r.Data.Name)
	r.Data.Description = sanitize.HTML(sanitize.Input(r.Data.Description))
	r.Data.Icon = sanitize.Input(r.Data.Icon)
	r.Data.Image = sanitize.Input(r.Data.Image)
}

func (r *BulkRequest) validate() error {
	v := &ValidationError{}
	switch r.Action {
	case BulkDelete, BulkMove, BulkUpdate:
	case "":
		v.add("action", "Action is required.")
	default:
		v.add("action", fmt.Sprintf("Unknown action %q (want delete, update or move).", r.Action))
	}

	switch {
	case len(r.ProductIDs) == 0:
		v.add("productIds", "Product IDs must be a non-empty list.")
	case len(r.ProductIDs) > maxBulkIDs:
		v.add("productIds", fmt.Sprintf("Too many product IDs (max %d).", maxBulkIDs))
	}
	for i, id := range r.ProductIDs {
		if id == "" {
			v.add(fmt.Sprintf("productIds[%d]", i), "Product ID must not be empty.")
		}
	}

	switch r.Action {
	case BulkMove:
		if r.Data.TargetCategoryID == "" {
			v.add("data.targetCategoryId", "Target category ID is required for move.")
		}
	case BulkUpdate:
		d := r.Data
		if d.Name == "" && d.Description == "" && d.Icon == "" && d.Image == "" {
			v.add("data", "Update needs at least one of name, description, icon or image.")
		}
		checkMax(v, "data.name", d.Name, maxNameLen)
		checkOptional(v, "data.", d.Description, d.Icon, d.Image)
	}
	return v.err()
}

// Bulk applies one action to many products. A missing move target fails the
// whole request before anything changes; a missing product only fails its
// own item. All successful items are persisted together in one save.
func (s *Service) Bulk(ctx context.Context, req BulkRequest) (*BulkResult, error) {
	req.clean()
	if err := req.validate(); err != nil {
		return nil, err
	}

	var result BulkResult
	err := s.mutate(ctx, func(c *models.Catalog) ([]change, error) {
		target := -1
		if req.Action == BulkMove {
			target = c.CategoryIndex(req.Data.TargetCategoryID)
			if target < 0 {
				return nil, ErrTargetCategoryNotFound
			}
		}

		result = BulkResult{Action: req.Action, Results: make([]BulkItemResult, 0, len(req.ProductIDs))}
		var changes []change
		now := s.now().UTC()

		for _, id := range req.ProductIDs {
			ci, pi := c.LocateProduct(id)
			if ci < 0 {
				result.Failed++
				result.Results = append(result.Results, BulkItemResult{ID: id, Error: "Product not found"})
				continue
			}

			switch req.Action {
			case BulkDelete:
				c.RemoveProduct(ci, pi)
			case BulkUpdate:
				p := &c.Categories[ci].Products[pi]
				if req.Data.Name != "" {
					p.Name = req.Data.Name
				}
				mergeProduct(p, req.Data.Description, req.Data.Icon, req.Data.Image)
				stamp := now
				p.UpdatedAt = &stamp
			case BulkMove:
				if ci != target {
					p := c.RemoveProduct(ci, pi)
					p.Order = len(c.Categories[target].Products) + 1
					stamp := now
					p.UpdatedAt = &stamp
					c.Categories[target].Products = append(c.Categories[target].Products, p)
				}
			}

			result.Processed++
			result.Results = append(result.Results, BulkItemResult{ID: id, Success: true})
			changes = append(changes, change{"product", id, string(req.Action)})
		}

		if len(changes) == 0 {
			return nil, errUnchanged
		}
		return changes, nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
