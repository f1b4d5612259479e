// Package category manages the custom category taxonomy layered over the default set.
package category

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/Veraticus/spice-planner/internal/common"
	"github.com/Veraticus/spice-planner/internal/model"
	"github.com/Veraticus/spice-planner/internal/service"
	"github.com/google/uuid"
)

var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// NewCategory is the input to Create.
type NewCategory struct {
	Name     string
	ParentID string
	Color    string
	Icon     string
}

// Changes is the input to Update. Nil fields are left as they are; an empty
// ParentID moves the category to the top level.
type Changes struct {
	Name     *string
	ParentID *string
	Color    *string
	Icon     *string
}

// Manager implements category CRUD, merge and usage statistics.
type Manager struct {
	categories service.CategoryRepository
	history    service.TransactionHistoryProvider
	writer     service.TransactionCategoryWriter
	now        func() time.Time
}

// NewManager creates a Manager over the given repositories.
func NewManager(categories service.CategoryRepository, history service.TransactionHistoryProvider, writer service.TransactionCategoryWriter) *Manager {
	return &Manager{
		categories: categories,
		history:    history,
		writer:     writer,
		now:        time.Now,
	}
}

// List returns every category, defaults included.
func (m *Manager) List(ctx context.Context) ([]model.Category, error) {
	cats, err := m.categories.GetCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return cats, nil
}

// Get returns one category.
func (m *Manager) Get(ctx context.Context, id string) (model.Category, error) {
	cat, err := m.categories.GetCategory(ctx, id)
	if err != nil {
		return model.Category{}, fmt.Errorf("failed to get category %q: %w", id, err)
	}
	return *cat, nil
}

// Create validates and stores a new custom category.
func (m *Manager) Create(ctx context.Context, in NewCategory) (model.Category, error) {
	all, err := m.List(ctx)
	if err != nil {
		return model.Category{}, err
	}

	name := strings.TrimSpace(in.Name)
	if err := validateName(name, "", all); err != nil {
		return model.Category{}, err
	}
	if err := validateParent(in.ParentID, "", all); err != nil {
		return model.Category{}, err
	}
	color, err := normalizeColor(in.Color)
	if err != nil {
		return model.Category{}, err
	}

	cat := model.Category{
		ID:        uuid.NewString(),
		Name:      name,
		ParentID:  in.ParentID,
		Color:     color,
		Icon:      in.Icon,
		IsCustom:  true,
		CreatedAt: m.now(),
	}
	if err := m.categories.CreateCategory(ctx, cat); err != nil {
		return model.Category{}, fmt.Errorf("failed to create category: %w", err)
	}

	slog.Info("Created category", "id", cat.ID, "name", cat.Name)
	return cat, nil
}

// Update applies changes to a custom category.
func (m *Manager) Update(ctx context.Context, id string, changes Changes) (model.Category, error) {
	cat, all, err := m.loadCustom(ctx, id)
	if err != nil {
		return model.Category{}, err
	}

	if changes.Name != nil {
		name := strings.TrimSpace(*changes.Name)
		if err := validateName(name, id, all); err != nil {
			return model.Category{}, err
		}
		cat.Name = name
	}
	if changes.ParentID != nil {
		if err := validateParent(*changes.ParentID, id, all); err != nil {
			return model.Category{}, err
		}
		if *changes.ParentID != "" && hasChildren(id, all) {
			return model.Category{}, fmt.Errorf("%w: %q has sub-categories", ErrInvalidParent, cat.Name)
		}
		cat.ParentID = *changes.ParentID
	}
	if changes.Color != nil {
		color, err := normalizeColor(*changes.Color)
		if err != nil {
			return model.Category{}, err
		}
		cat.Color = color
	}
	if changes.Icon != nil {
		cat.Icon = *changes.Icon
	}

	if err := m.categories.UpdateCategory(ctx, cat); err != nil {
		return model.Category{}, fmt.Errorf("failed to update category: %w", err)
	}
	return cat, nil
}

// Delete removes a custom category. Transactions that reference it block the
// delete unless reassignTo names another category to move them to.
func (m *Manager) Delete(ctx context.Context, id, reassignTo string) error {
	cat, _, err := m.loadCustom(ctx, id)
	if err != nil {
		return err
	}

	if reassignTo != "" {
		if reassignTo == id {
			return fmt.Errorf("%w: cannot reassign %q to itself", ErrSameCategory, cat.Name)
		}
		if _, err := m.categories.GetCategory(ctx, reassignTo); err != nil {
			return fmt.Errorf("reassignment target %q: %w", reassignTo, err)
		}
	}

	count, err := m.history.CountTransactionsByCategory(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count usage of %q: %w", cat.Name, err)
	}
	if count > 0 {
		if reassignTo == "" {
			return fmt.Errorf("%w: %q has %d transactions", ErrCategoryInUse, cat.Name, count)
		}
		if _, err := m.writer.ReassignCategory(ctx, id, reassignTo); err != nil {
			return fmt.Errorf("failed to reassign transactions: %w", err)
		}
	}

	return m.remove(ctx, cat)
}

// Merge moves all usage of sourceID to targetID and deletes the source.
// It returns the number of transactions moved.
func (m *Manager) Merge(ctx context.Context, sourceID, targetID string) (int, error) {
	if sourceID == targetID {
		return 0, fmt.Errorf("%w: %q", ErrSameCategory, sourceID)
	}
	source, _, err := m.loadCustom(ctx, sourceID)
	if err != nil {
		return 0, err
	}
	if _, err := m.categories.GetCategory(ctx, targetID); err != nil {
		return 0, fmt.Errorf("merge target %q: %w", targetID, err)
	}

	moved, err := m.writer.ReassignCategory(ctx, sourceID, targetID)
	if err != nil {
		return 0, fmt.Errorf("failed to move transactions: %w", err)
	}
	if err := m.remove(ctx, source); err != nil {
		return moved, err
	}

	slog.Info("Merged categories", "source", source.Name, "target", targetID, "moved", moved)
	return moved, nil
}

func (m *Manager) remove(ctx context.Context, cat model.Category) error {
	if err := m.categories.ClearParent(ctx, cat.ID); err != nil {
		return fmt.Errorf("failed to detach sub-categories of %q: %w", cat.Name, err)
	}
	if err := m.categories.DeleteCategory(ctx, cat.ID); err != nil {
		return fmt.Errorf("failed to delete category %q: %w", cat.Name, err)
	}
	return nil
}

// loadCustom fetches a category and the full list, rejecting defaults.
func (m *Manager) loadCustom(ctx context.Context, id string) (model.Category, []model.Category, error) {
	all, err := m.List(ctx)
	if err != nil {
		return model.Category{}, nil, err
	}
	cat, ok := find(id, all)
	if !ok {
		return model.Category{}, nil, fmt.Errorf("category %q: %w", id, common.ErrNotFound)
	}
	if !cat.IsCustom {
		return model.Category{}, nil, fmt.Errorf("%w: %q", ErrCannotModifyDefault, cat.Name)
	}
	return cat, all, nil
}

func find(id string, all []model.Category) (model.Category, bool) {
	for _, c := range all {
		if c.ID == id {
			return c, true
		}
	}
	return model.Category{}, false
}

func hasChildren(id string, all []model.Category) bool {
	for _, c := range all {
		if c.ParentID == id {
			return true
		}
	}
	return false
}

func validateName(name, selfID string, all []model.Category) error {
	if name == "" {
		return ErrInvalidName
	}
	for _, c := range all {
		if c.ID != selfID && model.SameName(c.Name, name) {
			return fmt.Errorf("%w: %q", ErrNameExists, name)
		}
	}
	return nil
}

// validateParent enforces the single-level hierarchy: a parent must exist and be top level.
func validateParent(parentID, selfID string, all []model.Category) error {
	if parentID == "" {
		return nil
	}
	if parentID == selfID {
		return fmt.Errorf("%w: a category cannot be its own parent", ErrInvalidParent)
	}
	parent, ok := find(parentID, all)
	if !ok {
		return fmt.Errorf("%w: %q not found", ErrInvalidParent, parentID)
	}
	if parent.HasParent() {
		return fmt.Errorf("%w: %q is already a sub-category", ErrInvalidParent, parent.Name)
	}
	return nil
}

func normalizeColor(color string) (string, error) {
	color = strings.TrimSpace(color)
	if color == "" {
		return model.DefaultCategoryColor, nil
	}
	if !colorPattern.MatchString(color) {
		return "", fmt.Errorf("%w: %q", ErrInvalidColor, color)
	}
	return strings.ToUpper(color), nil
}

// IsValidationError reports whether err is one of the permanent validation failures.
func IsValidationError(err error) bool {
	for _, target := range []error{
		ErrInvalidName, ErrNameExists, ErrInvalidParent, ErrInvalidColor,
		ErrCannotModifyDefault, ErrCategoryInUse, ErrSameCategory, common.ErrNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
