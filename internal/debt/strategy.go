package debt

import "github.com/Veraticus/spice-planner/internal/model"

// StrategySelector picks the payoff method for a profile.
type StrategySelector interface {
	Select(profile model.UserFinancialProfile, totalDebt model.Money) model.DebtMethod
}

// SelectorFunc adapts a function to StrategySelector.
type SelectorFunc func(profile model.UserFinancialProfile, totalDebt model.Money) model.DebtMethod

// Select implements StrategySelector.
func (f SelectorFunc) Select(profile model.UserFinancialProfile, totalDebt model.Money) model.DebtMethod {
	return f(profile, totalDebt)
}

// ThresholdSelector is the default policy: large debt loads go avalanche,
// young users hybrid, everyone else snowball.
type ThresholdSelector struct {
	AvalancheAbove model.Money
	HybridBelowAge int
}

// DefaultSelector returns the default policy thresholds.
func DefaultSelector() ThresholdSelector {
	return ThresholdSelector{
		AvalancheAbove: model.Dollars(50000),
		HybridBelowAge: 30,
	}
}

// Select implements StrategySelector.
func (s ThresholdSelector) Select(profile model.UserFinancialProfile, totalDebt model.Money) model.DebtMethod {
	switch {
	case totalDebt.GreaterThan(s.AvalancheAbove):
		return model.DebtAvalanche
	case profile.Age < s.HybridBelowAge:
		return model.DebtHybrid
	default:
		return model.DebtSnowball
	}
}

// FixedSelector always returns the same method, for users who choose their own.
type FixedSelector model.DebtMethod

// Select implements StrategySelector.
func (s FixedSelector) Select(model.UserFinancialProfile, model.Money) model.DebtMethod {
	return model.DebtMethod(s)
}
