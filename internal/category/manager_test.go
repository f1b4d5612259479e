package category

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Veraticus/spice-planner/internal/common"
	"github.com/Veraticus/spice-planner/internal/model"
	"github.com/Veraticus/spice-planner/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) (*Manager, *storage.MemoryStorage) {
	t.Helper()
	store := storage.NewMemoryStorage()
	m := NewManager(store, store, store)
	m.now = func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }
	return m, store
}

func saveTransactions(t *testing.T, store *storage.MemoryStorage, categoryID string, n int, start time.Time) {
	t.Helper()
	txns := make([]model.Transaction, n)
	for i := range txns {
		txns[i] = model.Transaction{
			ID:          fmt.Sprintf("%s-%d", categoryID, i),
			AccountID:   "chequing",
			Date:        start.AddDate(0, 0, i),
			Description: "PURCHASE",
			Amount:      model.Cents(-1000),
			CategoryID:  categoryID,
		}
	}
	require.NoError(t, store.SaveTransactions(context.Background(), txns))
}

func TestManager_Create(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		wantErr error
		name    string
		input   NewCategory
	}{
		{name: "blank name", input: NewCategory{Name: "   "}, wantErr: ErrInvalidName},
		{name: "name collides with default", input: NewCategory{Name: "groceries"}, wantErr: ErrNameExists},
		{name: "unknown parent", input: NewCategory{Name: "Coffee", ParentID: "nope"}, wantErr: ErrInvalidParent},
		{name: "bad color", input: NewCategory{Name: "Coffee", Color: "brown"}, wantErr: ErrInvalidColor},
		{name: "short color", input: NewCategory{Name: "Coffee", Color: "#FFF"}, wantErr: ErrInvalidColor},
		{name: "valid", input: NewCategory{Name: " Coffee ", ParentID: model.CategoryDining, Color: "#6f4e37"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, store := newTestManager(t)
			before, err := store.GetCategories(ctx)
			require.NoError(t, err)

			cat, err := m.Create(ctx, tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.True(t, IsValidationError(err))
				after, listErr := store.GetCategories(ctx)
				require.NoError(t, listErr)
				assert.Len(t, after, len(before), "failed create must not mutate")
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "Coffee", cat.Name)
			assert.Equal(t, "#6F4E37", cat.Color)
			assert.True(t, cat.IsCustom)
			assert.NotEmpty(t, cat.ID)

			stored, err := m.Get(ctx, cat.ID)
			require.NoError(t, err)
			assert.Equal(t, cat, stored)
		})
	}
}

func TestManager_CreateDefaultsColor(t *testing.T) {
	m, _ := newTestManager(t)
	cat, err := m.Create(context.Background(), NewCategory{Name: "Pets"})
	require.NoError(t, err)
	assert.Equal(t, model.DefaultCategoryColor, cat.Color)
}

func TestManager_CreateRejectsNestedParent(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)

	child, err := m.Create(ctx, NewCategory{Name: "Coffee", ParentID: model.CategoryDining})
	require.NoError(t, err)

	_, err = m.Create(ctx, NewCategory{Name: "Espresso", ParentID: child.ID})
	assert.ErrorIs(t, err, ErrInvalidParent)
}

func TestManager_Update(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)

	cat, err := m.Create(ctx, NewCategory{Name: "Coffee"})
	require.NoError(t, err)

	name := "Cafes"
	color := "#112233"
	parent := model.CategoryDining
	updated, err := m.Update(ctx, cat.ID, Changes{Name: &name, Color: &color, ParentID: &parent})
	require.NoError(t, err)
	assert.Equal(t, "Cafes", updated.Name)
	assert.Equal(t, "#112233", updated.Color)
	assert.Equal(t, model.CategoryDining, updated.ParentID)

	taken := "Dining"
	_, err = m.Update(ctx, cat.ID, Changes{Name: &taken})
	assert.ErrorIs(t, err, ErrNameExists)

	self := cat.ID
	_, err = m.Update(ctx, cat.ID, Changes{ParentID: &self})
	assert.ErrorIs(t, err, ErrInvalidParent)

	same := "cafes"
	renamed, err := m.Update(ctx, cat.ID, Changes{Name: &same})
	require.NoError(t, err, "renaming to a different case of its own name is allowed")
	assert.Equal(t, "cafes", renamed.Name)
}

func TestManager_UpdateParentWithChildren(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)

	parent, err := m.Create(ctx, NewCategory{Name: "Hobbies"})
	require.NoError(t, err)
	_, err = m.Create(ctx, NewCategory{Name: "Climbing", ParentID: parent.ID})
	require.NoError(t, err)

	dining := model.CategoryDining
	_, err = m.Update(ctx, parent.ID, Changes{ParentID: &dining})
	assert.ErrorIs(t, err, ErrInvalidParent)
}

func TestManager_DefaultCategoriesAreImmutable(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager(t)

	name := "Food"
	_, err := m.Update(ctx, model.CategoryGroceries, Changes{Name: &name})
	assert.ErrorIs(t, err, ErrCannotModifyDefault)

	// Deleting a default fails the same way with or without usage.
	assert.ErrorIs(t, m.Delete(ctx, model.CategoryGroceries, ""), ErrCannotModifyDefault)
	saveTransactions(t, store, model.CategoryGroceries, 3, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, m.Delete(ctx, model.CategoryGroceries, ""), ErrCannotModifyDefault)
	assert.ErrorIs(t, m.Delete(ctx, model.CategoryGroceries, model.CategoryDining), ErrCannotModifyDefault)

	_, err = m.Merge(ctx, model.CategoryGroceries, model.CategoryDining)
	assert.ErrorIs(t, err, ErrCannotModifyDefault)

	_, err = m.Get(ctx, model.CategoryGroceries)
	assert.NoError(t, err)
}

func TestManager_DeleteInUse(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager(t)

	cat, err := m.Create(ctx, NewCategory{Name: "Coffee"})
	require.NoError(t, err)
	saveTransactions(t, store, cat.ID, 2, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))

	err = m.Delete(ctx, cat.ID, "")
	assert.ErrorIs(t, err, ErrCategoryInUse)

	err = m.Delete(ctx, cat.ID, "missing-target")
	assert.ErrorIs(t, err, common.ErrNotFound)

	err = m.Delete(ctx, cat.ID, cat.ID)
	assert.ErrorIs(t, err, ErrSameCategory)

	require.NoError(t, m.Delete(ctx, cat.ID, model.CategoryDining))

	_, err = m.Get(ctx, cat.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
	count, err := store.CountTransactionsByCategory(ctx, model.CategoryDining)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestManager_DeleteUnusedAndMissing(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)

	cat, err := m.Create(ctx, NewCategory{Name: "Coffee"})
	require.NoError(t, err)
	require.NoError(t, m.Delete(ctx, cat.ID, ""))

	assert.ErrorIs(t, m.Delete(ctx, cat.ID, ""), common.ErrNotFound)
}

func TestManager_DeleteParentDetachesChildren(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)

	parent, err := m.Create(ctx, NewCategory{Name: "Hobbies"})
	require.NoError(t, err)
	child, err := m.Create(ctx, NewCategory{Name: "Climbing", ParentID: parent.ID})
	require.NoError(t, err)

	require.NoError(t, m.Delete(ctx, parent.ID, ""))

	got, err := m.Get(ctx, child.ID)
	require.NoError(t, err)
	assert.False(t, got.HasParent())
}

func TestManager_Merge(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager(t)

	source, err := m.Create(ctx, NewCategory{Name: "Coffee"})
	require.NoError(t, err)
	saveTransactions(t, store, source.ID, 4, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))

	moved, err := m.Merge(ctx, source.ID, model.CategoryDining)
	require.NoError(t, err)
	assert.Equal(t, 4, moved)

	_, err = m.Get(ctx, source.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = m.Merge(ctx, "missing", model.CategoryDining)
	assert.ErrorIs(t, err, common.ErrNotFound)

	other, err := m.Create(ctx, NewCategory{Name: "Tea"})
	require.NoError(t, err)
	_, err = m.Merge(ctx, other.ID, "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, err = m.Merge(ctx, other.ID, other.ID)
	assert.ErrorIs(t, err, ErrSameCategory)
}
