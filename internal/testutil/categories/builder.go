// Package categories seeds custom categories for tests through a fluent builder.
//
// Example usage:
//
//	cats, err := categories.NewBuilder(t).
//		WithFixture(categories.FixtureHousehold).
//		WithChild(categories.CategoryPetCare, "Vet Visits").
//		Build(ctx, store)
package categories

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/spice-planner/internal/model"
	"github.com/Veraticus/spice-planner/internal/service"
)

// Builder provides a fluent interface for constructing custom test categories.
type Builder interface {
	// WithCategory adds a single top-level category.
	WithCategory(name CategoryName) Builder

	// WithCategories adds multiple top-level categories.
	WithCategories(names ...CategoryName) Builder

	// WithChild adds a sub-category under parent, adding parent if needed.
	WithChild(parent, name CategoryName) Builder

	// WithBasicCategories adds the minimal set of custom categories commonly used in tests.
	WithBasicCategories() Builder

	// WithFixture adds categories from a predefined fixture.
	WithFixture(fixture Fixture) Builder

	// Build creates the categories in the repository, parents first, and returns them.
	Build(ctx context.Context, repo service.CategoryRepository) (Categories, error)

	// BuildMap creates categories and returns them keyed by name.
	BuildMap(ctx context.Context, repo service.CategoryRepository) (CategoryMap, error)
}

// CategoryName represents a strongly-typed category name.
type CategoryName string

// String returns the string representation of the category name.
func (c CategoryName) String() string {
	return string(c)
}

// ID returns the identifier the builder assigns to the category.
func (c CategoryName) ID() string {
	return "custom-" + strings.ReplaceAll(strings.ToLower(strings.TrimSpace(string(c))), " ", "-")
}

// Custom category names used across tests. None collide with the default taxonomy.
const (
	CategoryCoffee          CategoryName = "Coffee"
	CategoryPetCare         CategoryName = "Pet Care"
	CategoryChildcare       CategoryName = "Childcare"
	CategoryTravel          CategoryName = "Travel"
	CategoryGifts           CategoryName = "Gifts"
	CategorySubscriptions   CategoryName = "Subscriptions"
	CategoryHomeImprovement CategoryName = "Home Improvement"
	CategorySideBusiness    CategoryName = "Side Business"
	CategoryEducation       CategoryName = "Education"
	CategoryInsurance       CategoryName = "Insurance"
)

// Categories represents a collection of created test categories.
type Categories []model.Category

// Find returns the category with the given name, or nil if not found.
func (c Categories) Find(name CategoryName) *model.Category {
	for i := range c {
		if model.SameName(c[i].Name, name.String()) {
			return &c[i]
		}
	}
	return nil
}

// MustFind returns the category with the given name, or fails the test if not found.
func (c Categories) MustFind(t *testing.T, name CategoryName) model.Category {
	t.Helper()
	cat := c.Find(name)
	if cat == nil {
		t.Fatalf("category %q not found in test data", name)
	}
	return *cat
}

// Names returns all category names as a slice of strings.
func (c Categories) Names() []string {
	names := make([]string, len(c))
	for i, cat := range c {
		names[i] = cat.Name
	}
	return names
}

// CategoryMap provides O(1) lookup for categories by name.
type CategoryMap map[CategoryName]model.Category

// Get returns the category for the given name and whether it was found.
func (m CategoryMap) Get(name CategoryName) (model.Category, bool) {
	cat, ok := m[name]
	return cat, ok
}

// MustGet returns the category for the given name or fails the test.
func (m CategoryMap) MustGet(t *testing.T, name CategoryName) model.Category {
	t.Helper()
	cat, ok := m.Get(name)
	if !ok {
		t.Fatalf("category %q not found in test data", name)
	}
	return cat
}

type entry struct {
	name   CategoryName
	parent CategoryName
}

// categoryBuilder implements the Builder interface. Entries keep insertion
// order so parents are always created before their children.
type categoryBuilder struct {
	t       *testing.T
	seen    map[CategoryName]struct{}
	entries []entry
}

// NewBuilder creates a new category builder for the given test.
func NewBuilder(t *testing.T) Builder {
	t.Helper()
	return &categoryBuilder{
		t:    t,
		seen: make(map[CategoryName]struct{}),
	}
}

func (b *categoryBuilder) add(name, parent CategoryName) {
	if _, ok := b.seen[name]; ok {
		return
	}
	b.seen[name] = struct{}{}
	b.entries = append(b.entries, entry{name: name, parent: parent})
}

func (b *categoryBuilder) WithCategory(name CategoryName) Builder {
	b.add(name, "")
	return b
}

func (b *categoryBuilder) WithCategories(names ...CategoryName) Builder {
	for _, name := range names {
		b.add(name, "")
	}
	return b
}

func (b *categoryBuilder) WithChild(parent, name CategoryName) Builder {
	b.add(parent, "")
	b.add(name, parent)
	return b
}

func (b *categoryBuilder) WithBasicCategories() Builder {
	return b.WithCategories(CategoryCoffee, CategoryPetCare, CategoryTravel)
}

func (b *categoryBuilder) WithFixture(fixture Fixture) Builder {
	return b.WithCategories(fixture.Categories()...)
}

func (b *categoryBuilder) Build(ctx context.Context, repo service.CategoryRepository) (Categories, error) {
	b.t.Helper()

	result := make(Categories, 0, len(b.entries))
	for _, e := range b.entries {
		cat := model.Category{
			ID:        e.name.ID(),
			Name:      e.name.String(),
			Color:     model.DefaultCategoryColor,
			IsCustom:  true,
			CreatedAt: time.Now().UTC(),
		}
		if e.parent != "" {
			cat.ParentID = e.parent.ID()
		}
		if err := repo.CreateCategory(ctx, cat); err != nil {
			return nil, fmt.Errorf("failed to create category %q: %w", e.name, err)
		}
		result = append(result, cat)
	}
	return result, nil
}

func (b *categoryBuilder) BuildMap(ctx context.Context, repo service.CategoryRepository) (CategoryMap, error) {
	categories, err := b.Build(ctx, repo)
	if err != nil {
		return nil, err
	}

	m := make(CategoryMap, len(categories))
	for _, cat := range categories {
		m[CategoryName(cat.Name)] = cat
	}
	return m, nil
}
