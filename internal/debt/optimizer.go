// Package debt projects debt payoff plans under the avalanche, snowball and
// hybrid orderings.
package debt

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/Veraticus/spice-planner/internal/model"
)

// ErrUnknownMethod is returned for a payoff method outside the closed set.
var ErrUnknownMethod = errors.New("unknown debt payoff method")

const monthsPerYear = 12

// RateTable maps debt account types to assumed annual interest rates.
type RateTable map[model.AccountType]float64

// DefaultRates returns the per-type rates used when an account has none of its own.
func DefaultRates() RateTable {
	return RateTable{
		model.AccountCreditCard: 0.20,
		model.AccountLoan:       0.08,
		model.AccountMortgage:   0.04,
	}
}

// Config holds the optimizer's parameters.
type Config struct {
	Rates                 RateTable
	HybridThreshold       model.Money // debts below this are paid snowball-style first
	MinimumPaymentFloor   model.Money
	ExtraFundsShare       float64 // share of the monthly surplus applied to debt
	InterestSavingsFactor float64 // share of horizon interest counted as savings
	MinimumPaymentRate    float64 // share of balance paid monthly when no minimum is known
	HorizonMonths         int     // window for the interest-saved estimate
	MaxMonths             int     // projections stop here; debts still open are unpayable
}

// DefaultConfig returns the default optimizer parameters.
func DefaultConfig() Config {
	return Config{
		Rates:                 DefaultRates(),
		HybridThreshold:       model.Dollars(1000),
		MinimumPaymentFloor:   model.Dollars(25),
		ExtraFundsShare:       0.30,
		InterestSavingsFactor: 0.30,
		MinimumPaymentRate:    0.01,
		HorizonMonths:         24,
		MaxMonths:             600,
	}
}

// Debt is a debt account normalized for projection. Balance is positive.
type Debt struct {
	AccountID      string
	Name           string
	Type           model.AccountType
	Balance        model.Money
	MinimumPayment model.Money
	AnnualRate     float64
}

// PayoffStep is one debt's position and outcome within a plan.
type PayoffStep struct {
	Debt         Debt
	InterestPaid model.Money
	Position     int // 1-based
	PayoffMonth  int // months from now, 0 when unpayable
	Payable      bool
}

// Plan is a projected payoff schedule for one ordering.
type Plan struct {
	Method          model.DebtMethod
	Steps           []PayoffStep
	TotalDebt       model.Money
	ExtraPayment    model.Money // monthly amount on top of minimums
	MonthlyPayment  model.Money // minimums plus extra
	TotalInterest   model.Money
	HorizonInterest model.Money // interest accrued inside the estimate horizon
	InterestSaved   model.Money
	MonthsToPayoff  int
	Feasible        bool // every debt is projected to be paid off
}

// PayoffOrder returns the account IDs in payoff order.
func (p Plan) PayoffOrder() []string {
	order := make([]string, len(p.Steps))
	for i, s := range p.Steps {
		order[i] = s.Debt.AccountID
	}
	return order
}

// Optimizer builds payoff plans.
type Optimizer struct {
	selector StrategySelector
	cfg      Config
}

// NewOptimizer creates an optimizer with the default strategy selector.
func NewOptimizer(cfg Config) *Optimizer {
	return &Optimizer{cfg: cfg, selector: DefaultSelector()}
}

// WithSelector returns a copy of the optimizer that picks strategies with s.
func (o *Optimizer) WithSelector(s StrategySelector) *Optimizer {
	c := *o
	c.selector = s
	return &c
}

// Config returns the optimizer's parameters.
func (o *Optimizer) Config() Config {
	return o.cfg
}

// Debts normalizes the debt accounts among accounts, resolving rates and minimum payments.
func (o *Optimizer) Debts(accounts []model.Account) []Debt {
	var debts []Debt
	for _, a := range accounts {
		if !a.IsDebt() || !a.Balance.IsNegative() {
			continue
		}
		d := Debt{
			AccountID:  a.ID,
			Name:       a.Name,
			Type:       a.Type,
			Balance:    a.Outstanding(),
			AnnualRate: o.rateFor(a),
		}
		if a.MinimumPayment != nil && a.MinimumPayment.IsPositive() {
			d.MinimumPayment = *a.MinimumPayment
		} else {
			d.MinimumPayment = o.defaultMinimum(d)
		}
		debts = append(debts, d)
	}
	return debts
}

func (o *Optimizer) rateFor(a model.Account) float64 {
	if a.InterestRate != nil && *a.InterestRate >= 0 {
		return *a.InterestRate
	}
	return o.cfg.Rates[a.Type]
}

// defaultMinimum is 1% of the balance plus a month of interest, with a floor,
// never more than the balance itself.
func (o *Optimizer) defaultMinimum(d Debt) model.Money {
	share := d.Balance.ScaleFloat(o.cfg.MinimumPaymentRate)
	interest := d.Balance.ScaleFloat(d.AnnualRate / monthsPerYear)
	minimum := model.MaxMoney(share.Add(interest), o.cfg.MinimumPaymentFloor)
	return model.MinMoney(minimum, d.Balance)
}

// ExtraFunds returns the monthly amount available for extra debt payments:
// a share of income minus expenses, or zero when there is no surplus.
func (o *Optimizer) ExtraFunds(profile model.UserFinancialProfile) model.Money {
	surplus := profile.MonthlySurplus()
	if !surplus.IsPositive() {
		return model.Zero(surplus.Currency)
	}
	return surplus.ScaleFloat(o.cfg.ExtraFundsShare)
}

// Order returns debts sorted for method. The input is not modified.
func (o *Optimizer) Order(debts []Debt, method model.DebtMethod) ([]Debt, error) {
	ordered := make([]Debt, len(debts))
	copy(ordered, debts)

	switch method {
	case model.DebtAvalanche:
		sort.SliceStable(ordered, func(i, j int) bool { return byRate(ordered[i], ordered[j]) })
	case model.DebtSnowball:
		sort.SliceStable(ordered, func(i, j int) bool { return byBalance(ordered[i], ordered[j]) })
	case model.DebtHybrid:
		threshold := o.cfg.HybridThreshold
		sort.SliceStable(ordered, func(i, j int) bool {
			smallI := ordered[i].Balance.LessThan(threshold)
			smallJ := ordered[j].Balance.LessThan(threshold)
			switch {
			case smallI != smallJ:
				return smallI
			case smallI:
				return byBalance(ordered[i], ordered[j])
			default:
				return byRate(ordered[i], ordered[j])
			}
		})
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
	return ordered, nil
}

func byRate(a, b Debt) bool {
	if a.AnnualRate != b.AnnualRate {
		return a.AnnualRate > b.AnnualRate
	}
	if a.Balance.Cmp(b.Balance) != 0 {
		return a.Balance.LessThan(b.Balance)
	}
	return a.AccountID < b.AccountID
}

func byBalance(a, b Debt) bool {
	if a.Balance.Cmp(b.Balance) != 0 {
		return a.Balance.LessThan(b.Balance)
	}
	if a.AnnualRate != b.AnnualRate {
		return a.AnnualRate > b.AnnualRate
	}
	return a.AccountID < b.AccountID
}

// Plan projects paying off debts in method's order with extra applied each month.
func (o *Optimizer) Plan(debts []Debt, method model.DebtMethod, extra model.Money) (Plan, error) {
	ordered, err := o.Order(debts, method)
	if err != nil {
		return Plan{}, err
	}
	if extra.IsNegative() {
		extra = model.Zero(extra.Currency)
	}

	plan := Plan{
		Method:       method,
		ExtraPayment: extra,
		Feasible:     true,
	}
	currency := extra.Currency
	if len(ordered) > 0 {
		currency = ordered[0].Balance.Currency
	}
	plan.TotalDebt = model.Zero(currency)
	plan.MonthlyPayment = extra
	for _, d := range ordered {
		plan.TotalDebt = plan.TotalDebt.Add(d.Balance)
		plan.MonthlyPayment = plan.MonthlyPayment.Add(d.MinimumPayment)
	}

	results := o.simulate(ordered, extra.Float64())

	plan.TotalInterest = model.Zero(currency)
	plan.HorizonInterest = model.Zero(currency)
	for i, d := range ordered {
		r := results[i]
		step := PayoffStep{
			Debt:         d,
			Position:     i + 1,
			InterestPaid: model.MoneyFromFloat(r.interest, currency),
			Payable:      r.payable,
		}
		if r.payable {
			step.PayoffMonth = int(math.Ceil(r.month - 1e-9))
			if step.PayoffMonth > plan.MonthsToPayoff {
				plan.MonthsToPayoff = step.PayoffMonth
			}
		} else {
			plan.Feasible = false
		}
		plan.TotalInterest = plan.TotalInterest.Add(step.InterestPaid)
		plan.HorizonInterest = plan.HorizonInterest.Add(model.MoneyFromFloat(r.horizonInterest, currency))
		plan.Steps = append(plan.Steps, step)
	}
	plan.InterestSaved = plan.HorizonInterest.ScaleFloat(o.cfg.InterestSavingsFactor)
	return plan, nil
}

type debtResult struct {
	interest        float64
	horizonInterest float64
	month           float64
	payable         bool
}

// simulate advances all debts together. Every open debt pays its minimum and
// the first open debt in order also receives the freed amount. Between payoff
// events balances follow the closed-form amortization curve, so time moves in
// jumps from one payoff to the next. A retired debt's minimum joins the freed
// amount.
func (o *Optimizer) simulate(ordered []Debt, extra float64) []debtResult {
	n := len(ordered)
	results := make([]debtResult, n)
	balances := make([]float64, n)
	rates := make([]float64, n)
	minimums := make([]float64, n)
	open := make([]bool, n)
	for i, d := range ordered {
		balances[i] = d.Balance.Float64()
		rates[i] = d.AnnualRate / monthsPerYear
		minimums[i] = d.MinimumPayment.Float64()
		open[i] = balances[i] > 0
		if !open[i] {
			results[i].payable = true
		}
	}

	horizon := float64(o.cfg.HorizonMonths)
	limit := float64(o.cfg.MaxMonths)
	freed := extra
	elapsed := 0.0
	payments := make([]float64, n)

	for {
		focus := -1
		for i := range ordered {
			if open[i] {
				focus = i
				break
			}
		}
		if focus < 0 {
			return results
		}

		step := math.Inf(1)
		next := -1
		for i := range ordered {
			if !open[i] {
				continue
			}
			payments[i] = minimums[i]
			if i == focus {
				payments[i] += freed
			}
			if m := monthsToPayoff(balances[i], rates[i], payments[i]); m < step {
				step, next = m, i
			}
		}

		// Debts that never amortize only accrue interest inside the horizon.
		stalled := math.IsInf(step, 1) || elapsed+step > limit
		if stalled {
			if math.IsInf(step, 1) {
				step = math.Max(horizon-elapsed, 0)
			} else {
				step = limit - elapsed
			}
		}

		for i := range ordered {
			if !open[i] {
				continue
			}
			if elapsed < horizon {
				results[i].horizonInterest += interestOver(balances[i], rates[i], payments[i], math.Min(step, horizon-elapsed))
			}
			results[i].interest += interestOver(balances[i], rates[i], payments[i], step)
			balances[i] = balanceAfter(balances[i], rates[i], payments[i], step)
		}
		elapsed += step

		if stalled {
			for i := range ordered {
				if open[i] {
					open[i] = false
					results[i].payable = false
				}
			}
			return results
		}

		for i := range ordered {
			if !open[i] {
				continue
			}
			if i == next || balances[i] < 0.005 {
				open[i] = false
				balances[i] = 0
				results[i].payable = true
				results[i].month = elapsed
				freed += minimums[i]
			}
		}
	}
}

// Result is the outcome of optimizing a profile's debts.
type Result struct {
	Alternatives map[model.DebtMethod]Plan
	Recommended  Plan
	Debts        []Debt
	Method       model.DebtMethod
}

// Methods lists every payoff method in display order.
func Methods() []model.DebtMethod {
	return []model.DebtMethod{model.DebtAvalanche, model.DebtSnowball, model.DebtHybrid}
}

// Optimize selects a strategy for profile and projects all three orderings.
// A profile without debts yields an empty result.
func (o *Optimizer) Optimize(profile model.UserFinancialProfile) (Result, error) {
	debts := o.Debts(profile.Accounts)
	if len(debts) == 0 {
		return Result{}, nil
	}

	extra := o.ExtraFunds(profile)
	total := model.Zero(debts[0].Balance.Currency)
	for _, d := range debts {
		total = total.Add(d.Balance)
	}
	method := o.selector.Select(profile, total)

	result := Result{
		Debts:        debts,
		Method:       method,
		Alternatives: make(map[model.DebtMethod]Plan, len(Methods())),
	}
	for _, m := range Methods() {
		plan, err := o.Plan(debts, m, extra)
		if err != nil {
			return Result{}, err
		}
		result.Alternatives[m] = plan
	}

	recommended, ok := result.Alternatives[method]
	if !ok {
		return Result{}, fmt.Errorf("%w: selector chose %q", ErrUnknownMethod, method)
	}
	result.Recommended = recommended
	return result, nil
}
