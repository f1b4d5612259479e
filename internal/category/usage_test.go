package category

import (
	"context"
	"testing"
	"time"

	"github.com/Veraticus/spice-planner/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyFrequency(t *testing.T) {
	tests := []struct {
		want     Frequency
		count    int
		perMonth float64
	}{
		{FrequencyNever, 0, 0},
		{FrequencyRarely, 1, 0.5},
		{FrequencyOccasionally, 3, 1},
		{FrequencyOccasionally, 10, 3.9},
		{FrequencyRegularly, 12, 4},
		{FrequencyFrequently, 40, 12},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, classifyFrequency(tt.count, tt.perMonth), "count=%d rate=%v", tt.count, tt.perMonth)
	}
}

func TestManager_UsageStatistics(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager(t)

	window, err := model.NewDateRange(
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 5, 30, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)

	saveTransactions(t, store, model.CategoryGroceries, 30, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC))
	saveTransactions(t, store, model.CategoryDining, 2, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))

	stats, err := m.UsageStatistics(ctx, window)
	require.NoError(t, err)
	require.Len(t, stats, len(model.DefaultCategories()))

	groceries := stats[0]
	assert.Equal(t, model.CategoryGroceries, groceries.Category.ID, "most used first")
	assert.Equal(t, 30, groceries.TransactionCount)
	assert.Equal(t, 30, groceries.WindowCount)
	assert.Equal(t, model.Dollars(300), groceries.TotalAmount)
	assert.Equal(t, model.Dollars(10), groceries.AverageAmount)
	require.NotNil(t, groceries.LastUsed)
	assert.True(t, groceries.LastUsed.Equal(time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, FrequencyRegularly, groceries.Frequency)

	dining := stats[1]
	assert.Equal(t, model.CategoryDining, dining.Category.ID)
	assert.Equal(t, 2, dining.TransactionCount)
	assert.Zero(t, dining.WindowCount)
	assert.Equal(t, FrequencyNever, dining.Frequency, "old usage outside the window")

	for _, u := range stats[2:] {
		assert.Nil(t, u.LastUsed)
		assert.True(t, u.AverageAmount.IsZero())
	}
}

func TestManager_Suggestions(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager(t)
	start := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	window := model.LastDays(time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC), 90)

	unused, err := m.Create(ctx, NewCategory{Name: "Boats"})
	require.NoError(t, err)
	coffee, err := m.Create(ctx, NewCategory{Name: "Coffee"})
	require.NoError(t, err)
	tea, err := m.Create(ctx, NewCategory{Name: "Tea"})
	require.NoError(t, err)

	saveTransactions(t, store, model.CategoryGroceries, 51, start)
	saveTransactions(t, store, coffee.ID, 3, start)
	saveTransactions(t, store, tea.ID, 1, start)

	suggestions, err := m.Suggestions(ctx, window)
	require.NoError(t, err)

	byType := make(map[SuggestionType][]Suggestion)
	for _, s := range suggestions {
		byType[s.Type] = append(byType[s.Type], s)
	}

	require.Len(t, byType[SuggestDelete], 1)
	assert.Equal(t, []string{unused.ID}, byType[SuggestDelete][0].CategoryIDs)

	require.Len(t, byType[SuggestSubcategory], 1)
	assert.Equal(t, []string{model.CategoryGroceries}, byType[SuggestSubcategory][0].CategoryIDs)

	require.Len(t, byType[SuggestMerge], 1)
	assert.ElementsMatch(t, []string{coffee.ID, tea.ID}, byType[SuggestMerge][0].CategoryIDs)
}

func TestSuggest_SingleSparseCategoryIsNotMerged(t *testing.T) {
	stats := []Usage{
		{Category: model.Category{ID: "a", Name: "A", IsCustom: true}, TransactionCount: 2},
		{Category: model.Category{ID: "b", Name: "B", IsCustom: true}, TransactionCount: 6},
		{Category: model.Category{ID: model.CategoryFees, Name: "Fees"}, TransactionCount: 0},
	}
	assert.Empty(t, suggest(stats))
}
