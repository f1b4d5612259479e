// Package tax computes income tax breakdowns and registered-account contribution room.
package tax

import (
	"errors"
	"fmt"

	"github.com/Veraticus/spice-planner/internal/model"
	"github.com/shopspring/decimal"
)

// ErrInvalidIncome is returned for negative gross income.
var ErrInvalidIncome = errors.New("income must not be negative")

// Payroll holds the two capped payroll deductions.
type Payroll struct {
	PensionRate      decimal.Decimal
	PensionExemption decimal.Decimal
	PensionMax       decimal.Decimal
	InsuranceRate    decimal.Decimal
	InsuranceMax     decimal.Decimal
}

// DefaultPayroll returns representative pension and insurance parameters.
func DefaultPayroll() Payroll {
	return Payroll{
		PensionRate:      decimal.RequireFromString("0.0595"),
		PensionExemption: decimal.RequireFromString("3500"),
		PensionMax:       decimal.RequireFromString("3867.50"),
		InsuranceRate:    decimal.RequireFromString("0.0166"),
		InsuranceMax:     decimal.RequireFromString("1049.12"),
	}
}

func (p Payroll) pension(income decimal.Decimal) decimal.Decimal {
	pensionable := income.Sub(p.PensionExemption)
	if !pensionable.IsPositive() {
		return decimal.Zero
	}
	return decimal.Min(pensionable.Mul(p.PensionRate), p.PensionMax)
}

func (p Payroll) insurance(income decimal.Decimal) decimal.Decimal {
	if !income.IsPositive() {
		return decimal.Zero
	}
	return decimal.Min(income.Mul(p.InsuranceRate), p.InsuranceMax)
}

// Schedule is the full set of tables a Calculator evaluates.
type Schedule struct {
	Jurisdictions map[Jurisdiction]BracketTable
	Federal       BracketTable
	Default       Jurisdiction
	Payroll       Payroll
}

// DefaultSchedule returns the representative federal, provincial and payroll tables.
func DefaultSchedule() Schedule {
	return Schedule{
		Federal:       FederalBrackets(),
		Jurisdictions: JurisdictionBrackets(),
		Default:       DefaultJurisdiction,
		Payroll:       DefaultPayroll(),
	}
}

// Breakdown is the result of one tax calculation. Components are rounded to
// the minor unit and TotalTax is their exact sum.
type Breakdown struct {
	Jurisdiction          Jurisdiction
	GrossIncome           model.Money
	FederalTax            model.Money
	JurisdictionTax       model.Money
	PensionContribution   model.Money
	InsuranceContribution model.Money
	TotalTax              model.Money
	AfterTaxIncome        model.Money
	MarginalRate          float64
	AverageRate           float64
}

// Estimator computes tax breakdowns.
type Estimator interface {
	Calculate(income model.Money, jurisdiction string) (Breakdown, error)
}

// Calculator evaluates a Schedule. It holds no mutable state and is safe for concurrent use.
type Calculator struct {
	schedule Schedule
	marginal map[Jurisdiction]marginalTable
}

// NewCalculator precomputes the marginal-rate tables for every jurisdiction in s.
func NewCalculator(s Schedule) (*Calculator, error) {
	if len(s.Federal) == 0 {
		return nil, fmt.Errorf("%w: federal schedule is empty", ErrInvalidBracketTable)
	}
	if _, ok := s.Jurisdictions[s.Default]; !ok {
		return nil, fmt.Errorf("%w: default jurisdiction %q has no schedule", ErrInvalidBracketTable, s.Default)
	}

	marginal := make(map[Jurisdiction]marginalTable, len(s.Jurisdictions))
	for j, table := range s.Jurisdictions {
		marginal[j] = buildMarginalTable(s.Federal, table)
	}

	return &Calculator{schedule: s, marginal: marginal}, nil
}

// NewDefaultCalculator builds a Calculator over DefaultSchedule.
func NewDefaultCalculator() *Calculator {
	c, err := NewCalculator(DefaultSchedule())
	if err != nil {
		panic(err)
	}
	return c
}

// Resolve maps a jurisdiction code to a supported one, falling back to the default.
func (c *Calculator) Resolve(code string) Jurisdiction {
	j := NormalizeJurisdiction(code)
	if _, ok := c.schedule.Jurisdictions[j]; ok {
		return j
	}
	return c.schedule.Default
}

// Calculate computes the tax breakdown for a gross annual income.
func (c *Calculator) Calculate(income model.Money, jurisdiction string) (Breakdown, error) {
	if income.IsNegative() {
		return Breakdown{}, fmt.Errorf("%w: %s", ErrInvalidIncome, income)
	}

	j := c.Resolve(jurisdiction)
	currency := income.Currency
	gross := income.Decimal()

	federal := model.MoneyFromDecimal(c.schedule.Federal.Tax(gross), currency)
	local := model.MoneyFromDecimal(c.schedule.Jurisdictions[j].Tax(gross), currency)
	pension := model.MoneyFromDecimal(c.schedule.Payroll.pension(gross), currency)
	insurance := model.MoneyFromDecimal(c.schedule.Payroll.insurance(gross), currency)
	total := model.SumMoney(federal, local, pension, insurance)

	b := Breakdown{
		Jurisdiction:          j,
		GrossIncome:           income,
		FederalTax:            federal,
		JurisdictionTax:       local,
		PensionContribution:   pension,
		InsuranceContribution: insurance,
		TotalTax:              total,
		AfterTaxIncome:        income.Sub(total),
		MarginalRate:          c.marginal[j].lookup(gross).InexactFloat64(),
	}
	if income.IsPositive() {
		b.AverageRate = total.Decimal().Div(gross).InexactFloat64()
	}
	return b, nil
}

// MarginalRate returns the combined federal and jurisdiction rate at income.
func (c *Calculator) MarginalRate(income model.Money, jurisdiction string) float64 {
	return c.marginal[c.Resolve(jurisdiction)].lookup(income.Decimal()).InexactFloat64()
}
