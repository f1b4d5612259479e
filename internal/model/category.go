package model

import (
	"strings"
	"time"
)

// DefaultCategoryColor is applied to custom categories created without a color.
const DefaultCategoryColor = "#6366F1"

// Category is a node in the single-level category taxonomy.
type Category struct {
	CreatedAt time.Time
	ID        string
	Name      string
	ParentID  string // empty for top-level categories
	Color     string
	Icon      string
	IsCustom  bool
}

// HasParent reports whether the category is a sub-category.
func (c Category) HasParent() bool {
	return c.ParentID != ""
}

// Default category IDs. These are stable and shared by the seed training set.
const (
	CategoryGroceries     = "groceries"
	CategoryDining        = "dining"
	CategoryTransport     = "transportation"
	CategoryHousing       = "housing"
	CategoryUtilities     = "utilities"
	CategoryEntertainment = "entertainment"
	CategoryShopping      = "shopping"
	CategoryHealth        = "health"
	CategoryIncome        = "income"
	CategoryTransfer      = "transfer"
	CategoryFees          = "fees"
	CategoryUncategorized = "uncategorized"
)

// DefaultCategories returns the fixed seed taxonomy. Callers get a fresh slice.
func DefaultCategories() []Category {
	return []Category{
		{ID: CategoryGroceries, Name: "Groceries", Color: "#4CAF50", Icon: "cart"},
		{ID: CategoryDining, Name: "Dining", Color: "#FF9800", Icon: "utensils"},
		{ID: CategoryTransport, Name: "Transportation", Color: "#2196F3", Icon: "car"},
		{ID: CategoryHousing, Name: "Housing", Color: "#795548", Icon: "home"},
		{ID: CategoryUtilities, Name: "Utilities", Color: "#607D8B", Icon: "bolt"},
		{ID: CategoryEntertainment, Name: "Entertainment", Color: "#9C27B0", Icon: "film"},
		{ID: CategoryShopping, Name: "Shopping", Color: "#E91E63", Icon: "bag"},
		{ID: CategoryHealth, Name: "Health", Color: "#F44336", Icon: "heart"},
		{ID: CategoryIncome, Name: "Income", Color: "#009688", Icon: "wallet"},
		{ID: CategoryTransfer, Name: "Transfers", Color: "#9E9E9E", Icon: "swap"},
		{ID: CategoryFees, Name: "Fees & Charges", Color: "#FFC107", Icon: "receipt"},
		{ID: CategoryUncategorized, Name: "Uncategorized", Color: "#BDBDBD", Icon: "tag"},
	}
}

// IsDefaultCategoryID reports whether id belongs to the seed taxonomy.
func IsDefaultCategoryID(id string) bool {
	for _, c := range DefaultCategories() {
		if c.ID == id {
			return true
		}
	}
	return false
}

// SameName compares category names case-insensitively, ignoring surrounding space.
func SameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
