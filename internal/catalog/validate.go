package catalog

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"moneybox/internal/sanitize"
)

// Validation limits for catalog fields.
const (
	maxNameLen                = 100
	maxCategoryDescriptionLen = 500
	maxProductDescriptionLen  = 5_000
	maxIconLen                = 10
	maxImageLen               = 500
	maxBulkIDs                = 500
)

// CategoryInput is the body of category create and update requests.
type CategoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ProductInput is the body of product create and update requests.
// CategoryID is only read on create.
type ProductInput struct {
	CategoryID  string `json:"categoryId"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Image       string `json:"image"`
}

// clean sanitizes every field in place.
func (in *CategoryInput) clean() {
	in.Name = sanitize.Input(in.Name)
	in.Description = sanitize.HTML(sanitize.Input(in.Description))
}

func (in *CategoryInput) validate() error {
	v := &ValidationError{}
	checkName(v, in.Name)
	checkMax(v, "description", in.Description, maxCategoryDescriptionLen)
	return v.err()
}

func (in *ProductInput) clean() {
	in.CategoryID = sanitize.Input(in.CategoryID)
	in.Name = sanitize.Input(in.Name)
	in.Description = sanitize.HTML(sanitize.Input(in.Description))
	in.Icon = sanitize.Input(in.Icon)
	in.Image = sanitize.Input(in.Image)
}

func (in *ProductInput) validate(requireCategory bool) error {
	v := &ValidationError{}
	if requireCategory && in.CategoryID == "" {
		v.add("categoryId", "Category ID is required.")
	}
	checkName(v, in.Name)
	checkOptional(v, "", in.Description, in.Icon, in.Image)
	return v.err()
}

func checkName(v *ValidationError, name string) {
	if name == "" {
		v.add("name", "Name is required.")
		return
	}
	checkMax(v, "name", name, maxNameLen)
}

// checkOptional validates the optional product fields shared by create,
// update and bulk update. prefix is prepended to the reported field names.
func checkOptional(v *ValidationError, prefix, description, icon, image string) {
	checkMax(v, prefix+"description", description, maxProductDescriptionLen)
	checkMax(v, prefix+"icon", icon, maxIconLen)
	checkMax(v, prefix+"image", image, maxImageLen)
	if image != "" && !sanitize.SafeURL(image) {
		v.add(prefix+"image", "Image must be a safe URL.")
	}
}

func checkMax(v *ValidationError, field, value string, limit int) {
	if utf8.RuneCountInString(value) > limit {
		v.add(field, fmt.Sprintf("%s is too long (max %d characters).", fieldLabel(field), limit))
	}
}

func fieldLabel(field string) string {
	if i := strings.LastIndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}
	switch field {
	case "name":
		return "Name"
	case "description":
		return "Description"
	case "icon":
		return "Icon"
	case "image":
		return "Image"
	}
	return field
}
