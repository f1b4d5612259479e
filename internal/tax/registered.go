package tax

import (
	"fmt"

	"github.com/Veraticus/spice-planner/internal/model"
	"github.com/shopspring/decimal"
)

// Plan holds the static registered-account parameters.
type Plan struct {
	TaxDeferredRateCap       decimal.Decimal // share of income that may be contributed
	TaxDeferredAbsoluteCap   model.Money
	AssumedMarginalRate      decimal.Decimal
	RecommendedIncomeShare   decimal.Decimal
	TaxFreeAnnualCap         model.Money
	TaxFreeRecommendedLimit  model.Money
	AssumedContributionShare decimal.Decimal // used when no contribution ledger is supplied
	TaxDeferredMateriality   model.Money
	TaxFreeMateriality       model.Money
}

// DefaultPlan returns the representative current-year plan parameters.
func DefaultPlan() Plan {
	return Plan{
		TaxDeferredRateCap:       decimal.RequireFromString("0.18"),
		TaxDeferredAbsoluteCap:   model.Dollars(31560),
		AssumedMarginalRate:      decimal.RequireFromString("0.30"),
		RecommendedIncomeShare:   decimal.RequireFromString("0.10"),
		TaxFreeAnnualCap:         model.Dollars(7000),
		TaxFreeRecommendedLimit:  model.Dollars(5000),
		AssumedContributionShare: decimal.RequireFromString("0.5"),
		TaxDeferredMateriality:   model.Dollars(1000),
		TaxFreeMateriality:       model.Dollars(500),
	}
}

// RoomAnalysis describes the contribution room of one registered-account class.
type RoomAnalysis struct {
	Class                   model.RegisteredAccountClass
	MaxContribution         model.Money
	CurrentContribution     model.Money
	ContributionRoom        model.Money
	EstimatedTaxSavings     model.Money
	RecommendedContribution model.Money
	AssumedCurrent          bool // CurrentContribution is the placeholder share, not a ledger figure
	Material                bool // room exceeds the class's materiality threshold
}

// RegisteredAnalysis holds both account-class analyses.
type RegisteredAnalysis struct {
	TaxDeferred RoomAnalysis
	TaxFree     RoomAnalysis
}

// RegisteredAccountAnalyzer computes contribution room from income and plan parameters.
type RegisteredAccountAnalyzer struct {
	plan Plan
}

// NewRegisteredAccountAnalyzer creates an analyzer over plan.
func NewRegisteredAccountAnalyzer(plan Plan) *RegisteredAccountAnalyzer {
	return &RegisteredAccountAnalyzer{plan: plan}
}

// Plan returns the analyzer's parameters.
func (a *RegisteredAccountAnalyzer) Plan() Plan {
	return a.plan
}

// Analyze runs both analyses. Contributions in room override the placeholder
// assumption for the classes they cover.
func (a *RegisteredAccountAnalyzer) Analyze(income model.Money, room *model.ContributionRoom) (RegisteredAnalysis, error) {
	if income.IsNegative() {
		return RegisteredAnalysis{}, fmt.Errorf("%w: %s", ErrInvalidIncome, income)
	}

	var deferred, free *model.Money
	if room != nil {
		deferred, free = room.TaxDeferredContributed, room.TaxFreeContributed
	}

	return RegisteredAnalysis{
		TaxDeferred: a.taxDeferred(income, deferred),
		TaxFree:     a.taxFree(income.Currency, free),
	}, nil
}

func (a *RegisteredAccountAnalyzer) taxDeferred(income model.Money, contributed *model.Money) RoomAnalysis {
	p := a.plan
	maxContribution := model.MinMoney(income.Scale(p.TaxDeferredRateCap), p.TaxDeferredAbsoluteCap)
	current, assumed := a.current(maxContribution, contributed)
	room := remaining(maxContribution, current)

	return RoomAnalysis{
		Class:                   model.TaxDeferredAccount,
		MaxContribution:         maxContribution,
		CurrentContribution:     current,
		ContributionRoom:        room,
		EstimatedTaxSavings:     room.Scale(p.AssumedMarginalRate),
		RecommendedContribution: model.MinMoney(room, income.Scale(p.RecommendedIncomeShare)),
		AssumedCurrent:          assumed,
		Material:                room.GreaterThan(p.TaxDeferredMateriality),
	}
}

func (a *RegisteredAccountAnalyzer) taxFree(currency string, contributed *model.Money) RoomAnalysis {
	p := a.plan
	maxContribution := p.TaxFreeAnnualCap
	current, assumed := a.current(maxContribution, contributed)
	room := remaining(maxContribution, current)

	return RoomAnalysis{
		Class:                   model.TaxFreeAccount,
		MaxContribution:         maxContribution,
		CurrentContribution:     current,
		ContributionRoom:        room,
		EstimatedTaxSavings:     model.Zero(currency),
		RecommendedContribution: model.MinMoney(room, p.TaxFreeRecommendedLimit),
		AssumedCurrent:          assumed,
		Material:                room.GreaterThan(p.TaxFreeMateriality),
	}
}

func (a *RegisteredAccountAnalyzer) current(maxContribution model.Money, contributed *model.Money) (model.Money, bool) {
	if contributed != nil {
		return *contributed, false
	}
	return maxContribution.Scale(a.plan.AssumedContributionShare), true
}

func remaining(maxContribution, current model.Money) model.Money {
	return model.MaxMoney(maxContribution.Sub(current), model.Zero(maxContribution.Currency))
}
