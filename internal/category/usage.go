package category

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Veraticus/spice-planner/internal/model"
	"github.com/shopspring/decimal"
)

// Frequency buckets how often a category is used.
type Frequency string

// Frequency buckets.
const (
	FrequencyNever        Frequency = "never"
	FrequencyRarely       Frequency = "rarely"
	FrequencyOccasionally Frequency = "occasionally"
	FrequencyRegularly    Frequency = "regularly"
	FrequencyFrequently   Frequency = "frequently"
)

// classifyFrequency buckets a transactions-per-month rate.
func classifyFrequency(count int, perMonth float64) Frequency {
	switch {
	case count == 0:
		return FrequencyNever
	case perMonth < 1:
		return FrequencyRarely
	case perMonth < 4:
		return FrequencyOccasionally
	case perMonth < 12:
		return FrequencyRegularly
	default:
		return FrequencyFrequently
	}
}

// Usage is the usage summary of one category.
type Usage struct {
	LastUsed         *time.Time
	Category         model.Category
	Frequency        Frequency
	TotalAmount      model.Money // sum of absolute amounts
	AverageAmount    model.Money
	TransactionCount int
	WindowCount      int // transactions inside the statistics window
}

// UsageStatistics summarizes every category. Counts, totals and last use
// cover all history; Frequency is based on the rate inside window.
func (m *Manager) UsageStatistics(ctx context.Context, window model.DateRange) ([]Usage, error) {
	cats, err := m.List(ctx)
	if err != nil {
		return nil, err
	}

	months := window.Months()
	stats := make([]Usage, 0, len(cats))
	for _, cat := range cats {
		txns, err := m.history.GetTransactionsByCategory(ctx, cat.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load transactions for %q: %w", cat.Name, err)
		}

		u := Usage{
			Category:         cat,
			TransactionCount: len(txns),
			TotalAmount:      model.Zero(model.DefaultCurrency),
			AverageAmount:    model.Zero(model.DefaultCurrency),
		}
		for _, t := range txns {
			u.TotalAmount = u.TotalAmount.Add(t.Amount.Abs())
			if window.Contains(t.Date) {
				u.WindowCount++
			}
			if u.LastUsed == nil || t.Date.After(*u.LastUsed) {
				d := t.Date
				u.LastUsed = &d
			}
		}
		if u.TransactionCount > 0 {
			avg := u.TotalAmount.Decimal().Div(decimal.NewFromInt(int64(u.TransactionCount)))
			u.AverageAmount = model.MoneyFromDecimal(avg, u.TotalAmount.Currency)
		}
		perMonth := 0.0
		if months > 0 {
			perMonth = float64(u.WindowCount) / months
		}
		u.Frequency = classifyFrequency(u.WindowCount, perMonth)
		stats = append(stats, u)
	}

	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].TransactionCount != stats[j].TransactionCount {
			return stats[i].TransactionCount > stats[j].TransactionCount
		}
		return stats[i].Category.Name < stats[j].Category.Name
	})
	return stats, nil
}

// SuggestionType identifies a taxonomy clean-up suggestion.
type SuggestionType string

// Suggestion types.
const (
	SuggestDelete      SuggestionType = "delete_unused"
	SuggestSubcategory SuggestionType = "create_subcategory"
	SuggestMerge       SuggestionType = "merge"
)

// Suggestion thresholds.
const (
	subcategoryThreshold = 50
	mergeMinUsage        = 1
	mergeMaxUsage        = 5
	mergeMinCandidates   = 2
)

// Suggestion proposes a change to the taxonomy. For merges the first ID is
// the suggested target.
type Suggestion struct {
	Type        SuggestionType
	Message     string
	CategoryIDs []string
}

// Suggestions derives clean-up suggestions from usage statistics.
func (m *Manager) Suggestions(ctx context.Context, window model.DateRange) ([]Suggestion, error) {
	stats, err := m.UsageStatistics(ctx, window)
	if err != nil {
		return nil, err
	}
	return suggest(stats), nil
}

func suggest(stats []Usage) []Suggestion {
	var suggestions []Suggestion
	var sparse []Usage

	for _, u := range stats {
		switch {
		case u.TransactionCount == 0 && u.Category.IsCustom:
			suggestions = append(suggestions, Suggestion{
				Type:        SuggestDelete,
				CategoryIDs: []string{u.Category.ID},
				Message:     fmt.Sprintf("%q has never been used; consider deleting it", u.Category.Name),
			})
		case u.TransactionCount > subcategoryThreshold && !u.Category.HasParent():
			suggestions = append(suggestions, Suggestion{
				Type:        SuggestSubcategory,
				CategoryIDs: []string{u.Category.ID},
				Message: fmt.Sprintf("%q has %d transactions; consider splitting it into sub-categories",
					u.Category.Name, u.TransactionCount),
			})
		case u.TransactionCount >= mergeMinUsage && u.TransactionCount <= mergeMaxUsage && u.Category.IsCustom:
			sparse = append(sparse, u)
		}
	}

	if len(sparse) >= mergeMinCandidates {
		ids := make([]string, len(sparse))
		names := make([]string, len(sparse))
		for i, u := range sparse {
			ids[i] = u.Category.ID
			names[i] = fmt.Sprintf("%q", u.Category.Name)
		}
		suggestions = append(suggestions, Suggestion{
			Type:        SuggestMerge,
			CategoryIDs: ids,
			Message:     fmt.Sprintf("%s are rarely used; consider merging them", strings.Join(names, ", ")),
		})
	}
	return suggestions
}
