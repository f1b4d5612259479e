package tax

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// ErrInvalidBracketTable is returned for empty, unordered or negative bracket definitions.
var ErrInvalidBracketTable = errors.New("invalid bracket table")

// Step is one row of a progressive schedule as published: the income where
// the rate starts to apply and the rate itself.
type Step struct {
	Threshold decimal.Decimal
	Rate      decimal.Decimal
}

// S builds a Step from decimal strings. It panics on malformed input and is
// meant for static tables.
func S(threshold, rate string) Step {
	return Step{
		Threshold: decimal.RequireFromString(threshold),
		Rate:      decimal.RequireFromString(rate),
	}
}

// Bracket is a piecewise-linear segment: tax = Base + Rate × (income − Threshold).
type Bracket struct {
	Threshold decimal.Decimal
	Base      decimal.Decimal
	Rate      decimal.Decimal
}

// BracketTable is an ordered progressive schedule starting at zero income.
type BracketTable []Bracket

// NewBracketTable derives each bracket's base amount from the rows below it,
// so the resulting schedule is continuous at every threshold.
func NewBracketTable(steps ...Step) (BracketTable, error) {
	if len(steps) == 0 {
		return nil, fmt.Errorf("%w: no brackets", ErrInvalidBracketTable)
	}
	if !steps[0].Threshold.IsZero() {
		return nil, fmt.Errorf("%w: first threshold must be 0, got %s", ErrInvalidBracketTable, steps[0].Threshold)
	}

	table := make(BracketTable, len(steps))
	base := decimal.Zero
	for i, s := range steps {
		if s.Rate.IsNegative() {
			return nil, fmt.Errorf("%w: negative rate %s", ErrInvalidBracketTable, s.Rate)
		}
		if i > 0 {
			prev := steps[i-1]
			if !s.Threshold.GreaterThan(prev.Threshold) {
				return nil, fmt.Errorf("%w: threshold %s does not exceed %s",
					ErrInvalidBracketTable, s.Threshold, prev.Threshold)
			}
			base = base.Add(prev.Rate.Mul(s.Threshold.Sub(prev.Threshold)))
		}
		table[i] = Bracket{Threshold: s.Threshold, Base: base, Rate: s.Rate}
	}
	return table, nil
}

// MustBracketTable is NewBracketTable for static tables.
func MustBracketTable(steps ...Step) BracketTable {
	table, err := NewBracketTable(steps...)
	if err != nil {
		panic(err)
	}
	return table
}

// bracketFor returns the index of the last bracket whose threshold is at or below income.
func (t BracketTable) bracketFor(income decimal.Decimal) int {
	i := sort.Search(len(t), func(i int) bool {
		return t[i].Threshold.GreaterThan(income)
	})
	if i == 0 {
		return 0
	}
	return i - 1
}

// Tax evaluates the schedule at income. Non-positive income owes nothing.
func (t BracketTable) Tax(income decimal.Decimal) decimal.Decimal {
	if len(t) == 0 || !income.IsPositive() {
		return decimal.Zero
	}
	b := t[t.bracketFor(income)]
	return b.Base.Add(b.Rate.Mul(income.Sub(b.Threshold)))
}

// RateAt returns the statutory rate of the bracket containing income.
func (t BracketTable) RateAt(income decimal.Decimal) decimal.Decimal {
	if len(t) == 0 {
		return decimal.Zero
	}
	return t[t.bracketFor(income)].Rate
}

// marginalRow is one precomputed entry of a combined marginal-rate table.
type marginalRow struct {
	threshold decimal.Decimal
	rate      decimal.Decimal
}

// marginalTable combines two schedules over the union of their thresholds.
type marginalTable []marginalRow

func buildMarginalTable(federal, local BracketTable) marginalTable {
	seen := make(map[string]bool)
	var thresholds []decimal.Decimal
	for _, table := range []BracketTable{federal, local} {
		for _, b := range table {
			key := b.Threshold.String()
			if seen[key] {
				continue
			}
			seen[key] = true
			thresholds = append(thresholds, b.Threshold)
		}
	}
	sort.Slice(thresholds, func(i, j int) bool {
		return thresholds[i].LessThan(thresholds[j])
	})

	rows := make(marginalTable, len(thresholds))
	for i, th := range thresholds {
		rows[i] = marginalRow{
			threshold: th,
			rate:      federal.RateAt(th).Add(local.RateAt(th)),
		}
	}
	return rows
}

func (m marginalTable) lookup(income decimal.Decimal) decimal.Decimal {
	i := sort.Search(len(m), func(i int) bool {
		return m[i].threshold.GreaterThan(income)
	})
	if i == 0 {
		if len(m) == 0 {
			return decimal.Zero
		}
		return m[0].rate
	}
	return m[i-1].rate
}
