package anomaly

import (
	"math"
	"time"

	"github.com/Veraticus/spice-planner/internal/model"
)

// GroupStats summarizes the expense amounts of one category group.
type GroupStats struct {
	Count  int
	Mean   float64
	StdDev float64 // population standard deviation
}

func computeStats(amounts []float64) GroupStats {
	if len(amounts) == 0 {
		return GroupStats{}
	}
	var sum float64
	for _, a := range amounts {
		sum += a
	}
	mean := sum / float64(len(amounts))

	var sq float64
	for _, a := range amounts {
		d := a - mean
		sq += d * d
	}
	return GroupStats{
		Count:  len(amounts),
		Mean:   mean,
		StdDev: math.Sqrt(sq / float64(len(amounts))),
	}
}

// Baseline is the history model used when the evaluated set is too small to
// describe a category on its own. It is immutable once built.
type Baseline struct {
	BuiltAt time.Time
	groups  map[string]GroupStats
}

// BuildBaseline computes per-category expense statistics over full history.
func BuildBaseline(history []model.Transaction, now time.Time) *Baseline {
	grouped := groupExpenses(history)
	groups := make(map[string]GroupStats, len(grouped))
	for key, txns := range grouped {
		groups[key] = computeStats(amountsOf(txns))
	}
	return &Baseline{BuiltAt: now, groups: groups}
}

// Stats returns the history statistics for a category group.
func (b *Baseline) Stats(categoryID string) (GroupStats, bool) {
	if b == nil {
		return GroupStats{}, false
	}
	s, ok := b.groups[groupKey(categoryID)]
	return s, ok
}

// Groups returns the number of category groups in the baseline.
func (b *Baseline) Groups() int {
	if b == nil {
		return 0
	}
	return len(b.groups)
}

func groupKey(categoryID string) string {
	if categoryID == "" {
		return model.CategoryUncategorized
	}
	return categoryID
}

// groupExpenses buckets outflows by category, preserving input order within each group.
func groupExpenses(txns []model.Transaction) map[string][]model.Transaction {
	groups := make(map[string][]model.Transaction)
	for _, t := range txns {
		if !t.IsExpense() {
			continue
		}
		key := groupKey(t.CategoryID)
		groups[key] = append(groups[key], t)
	}
	return groups
}

func amountsOf(txns []model.Transaction) []float64 {
	amounts := make([]float64, len(txns))
	for i, t := range txns {
		amounts[i] = t.Amount.Abs().Float64()
	}
	return amounts
}
