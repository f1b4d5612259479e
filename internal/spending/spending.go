// Package spending summarizes expenses by category for a window and compares
// them with the preceding window.
package spending

import (
	"sort"

	"github.com/Veraticus/spice-planner/internal/model"
	"github.com/shopspring/decimal"
)

// TrendTolerance is the relative change inside which spending counts as stable.
var TrendTolerance = decimal.RequireFromString("0.05")

// Analyze builds a spending snapshot of the expenses inside window. Each
// category's trend compares its total with the window of equal length that
// precedes it. Transactions outside both windows are ignored.
func Analyze(transactions []model.Transaction, window model.DateRange) model.SpendingSnapshot {
	previous := window.Previous()
	current := make(map[string]model.Money)
	prior := make(map[string]model.Money)

	total := model.Zero(model.DefaultCurrency)
	for _, t := range transactions {
		if !t.IsExpense() {
			continue
		}
		id := categoryOf(t)
		amount := t.Amount.Abs()
		switch {
		case window.Contains(t.Date):
			current[id] = addTo(current[id], amount)
			total = total.Add(amount)
		case previous.Contains(t.Date):
			prior[id] = addTo(prior[id], amount)
		}
	}

	snapshot := model.SpendingSnapshot{Window: window, Total: total}
	for id, amount := range current {
		row := model.CategorySpending{
			CategoryID: id,
			Amount:     amount,
			Trend:      trend(amount, prior[id]),
		}
		if total.IsPositive() {
			row.Share = amount.Float64() / total.Float64()
		}
		snapshot.Categories = append(snapshot.Categories, row)
	}

	sort.Slice(snapshot.Categories, func(i, j int) bool {
		a, b := snapshot.Categories[i], snapshot.Categories[j]
		if a.Amount.Cmp(b.Amount) != 0 {
			return a.Amount.GreaterThan(b.Amount)
		}
		return a.CategoryID < b.CategoryID
	})
	return snapshot
}

func categoryOf(t model.Transaction) string {
	if t.CategoryID == "" {
		return model.CategoryUncategorized
	}
	return t.CategoryID
}

func addTo(sum, amount model.Money) model.Money {
	if sum.Currency == "" {
		return amount
	}
	return sum.Add(amount)
}

func trend(current, prior model.Money) model.Trend {
	if !prior.IsPositive() {
		if current.IsPositive() {
			return model.TrendIncreasing
		}
		return model.TrendStable
	}
	change := current.Decimal().Div(prior.Decimal()).Sub(decimal.NewFromInt(1))
	switch {
	case change.GreaterThan(TrendTolerance):
		return model.TrendIncreasing
	case change.LessThan(TrendTolerance.Neg()):
		return model.TrendDecreasing
	default:
		return model.TrendStable
	}
}

// Monthly converts an amount spent over window into an average monthly amount.
func Monthly(amount model.Money, window model.DateRange) model.Money {
	months := window.Months()
	if months <= 0 {
		return amount
	}
	return model.MoneyFromDecimal(amount.Decimal().Div(decimal.NewFromFloat(months)), amount.Currency)
}

// Overrun is a category whose monthly spending exceeds its budget.
type Overrun struct {
	CategoryID string
	Monthly    model.Money
	Limit      model.Money
	Over       model.Money
}

// Overruns compares a snapshot with monthly budget limits, largest overrun first.
func Overruns(snapshot model.SpendingSnapshot, budget *model.BudgetSnapshot) []Overrun {
	if budget == nil || len(budget.Limits) == 0 {
		return nil
	}

	var overruns []Overrun
	for _, row := range snapshot.Categories {
		limit, ok := budget.Limits[row.CategoryID]
		if !ok {
			continue
		}
		monthly := Monthly(row.Amount, snapshot.Window)
		if monthly.GreaterThan(limit) {
			overruns = append(overruns, Overrun{
				CategoryID: row.CategoryID,
				Monthly:    monthly,
				Limit:      limit,
				Over:       monthly.Sub(limit),
			})
		}
	}

	sort.SliceStable(overruns, func(i, j int) bool {
		return overruns[i].Over.GreaterThan(overruns[j].Over)
	})
	return overruns
}
