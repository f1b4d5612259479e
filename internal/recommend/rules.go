package recommend

import (
	"fmt"
	"math"

	"github.com/Veraticus/spice-planner/internal/debt"
	"github.com/Veraticus/spice-planner/internal/model"
	"github.com/Veraticus/spice-planner/internal/spending"
	"github.com/Veraticus/spice-planner/internal/tax"
	"github.com/shopspring/decimal"
)

const monthsPerYear = 12

func percent(rate float64) string {
	return fmt.Sprintf("%.1f%%", rate*100)
}

func perMonth(total model.Money, months int) model.Money {
	if months < 1 {
		months = 1
	}
	return model.MoneyFromDecimal(total.Decimal().Div(decimal.NewFromInt(int64(months))), total.Currency)
}

func yearly(monthly model.Money) model.Money {
	return monthly.Scale(decimal.NewFromInt(monthsPerYear))
}

func moneyPtr(m model.Money) *model.Money { return &m }

func (e *Engine) taxRecommendations(r *run) error {
	p := r.profile
	if !p.AnnualIncome.IsPositive() {
		return nil
	}

	analysis, err := e.registered.Analyze(p.AnnualIncome, p.ContributionRoom)
	if err != nil {
		return err
	}
	marginal := e.rates.MarginalRate(p.AnnualIncome, p.Jurisdiction)
	plan := e.registered.Plan()

	if a := analysis.TaxDeferred; a.Material {
		r.add(taxDeferredRecommendation(p, a, plan, marginal))
	}
	if a := analysis.TaxFree; a.Material {
		r.add(e.taxFreeRecommendation(p, a))
	}
	return nil
}

func roomAssumptions(a tax.RoomAnalysis, plan tax.Plan) ([]string, float64) {
	if !a.AssumedCurrent {
		return nil, 0.85
	}
	return []string{fmt.Sprintf(
		"No contribution history was supplied; current contributions are assumed to be %s of the maximum",
		percent(plan.AssumedContributionShare.InexactFloat64()))}, 0.6
}

func taxDeferredRecommendation(p model.UserFinancialProfile, a tax.RoomAnalysis, plan tax.Plan, marginal float64) model.Recommendation {
	assumptions, confidence := roomAssumptions(a, plan)
	assumptions = append(assumptions, fmt.Sprintf(
		"Tax savings use a flat %s marginal rate", percent(plan.AssumedMarginalRate.InexactFloat64())))

	return model.Recommendation{
		Kind:     model.KindTax,
		Priority: model.PriorityHigh,
		Title:    "Use your tax-deferred contribution room",
		Description: fmt.Sprintf("You have %s of tax-deferred room. Contributing %s this year could save about %s in tax.",
			a.ContributionRoom, a.RecommendedContribution, a.EstimatedTaxSavings),
		Timeframe: model.TimeframeShortTerm,
		Reasoning: model.RecommendationReasoning{
			Methodology: "Room is the lesser of the income share cap and the annual cap, less current contributions; savings are room times the assumed marginal rate.",
			Factors: []model.ReasoningFactor{
				{Name: "annual_income", Value: p.AnnualIncome.String(), Weight: 0.3},
				{Name: "max_contribution", Value: a.MaxContribution.String(), Weight: 0.2},
				{Name: "current_contribution", Value: a.CurrentContribution.String(), Weight: 0.2},
				{Name: "contribution_room", Value: a.ContributionRoom.String(), Weight: 0.2},
				{Name: "marginal_rate", Value: percent(marginal), Weight: 0.1},
			},
			Assumptions: assumptions,
			Confidence:  confidence,
		},
		Actions: []model.ActionStep{
			{Order: 1, Description: "Contribute to your tax-deferred account before the deadline", Amount: moneyPtr(a.RecommendedContribution)},
			{Order: 2, Description: "Automate the contribution as a monthly transfer", Amount: moneyPtr(perMonth(a.RecommendedContribution, monthsPerYear))},
		},
		Impact: model.ExpectedImpact{
			Amount:          a.EstimatedTaxSavings,
			MonthsToRealize: monthsPerYear,
			Confidence:      confidence,
		},
		Risks:        []string{"Withdrawals are taxed as income", "Funds are meant to stay invested until retirement"},
		Alternatives: []string{"Favour the tax-free account if you expect a higher income in retirement"},
		Detail: model.TaxDetail{
			Class:                   a.Class,
			ContributionRoom:        a.ContributionRoom,
			RecommendedContribution: a.RecommendedContribution,
			EstimatedTaxSavings:     a.EstimatedTaxSavings,
		},
	}
}

func (e *Engine) taxFreeRecommendation(p model.UserFinancialProfile, a tax.RoomAnalysis) model.Recommendation {
	plan := e.registered.Plan()
	assumptions, confidence := roomAssumptions(a, plan)
	assumptions = append(assumptions, fmt.Sprintf("Growth is estimated at %s per year", percent(e.cfg.TaxFreeGrowthRate)))
	growth := a.RecommendedContribution.ScaleFloat(e.cfg.TaxFreeGrowthRate)

	return model.Recommendation{
		Kind:     model.KindTax,
		Priority: model.PriorityMedium,
		Title:    "Use your tax-free savings room",
		Description: fmt.Sprintf("You have %s of tax-free room. Contributing %s lets growth compound without tax.",
			a.ContributionRoom, a.RecommendedContribution),
		Timeframe: model.TimeframeShortTerm,
		Reasoning: model.RecommendationReasoning{
			Methodology: "Room is the annual cap less current contributions; the suggested contribution is capped at a fixed ceiling.",
			Factors: []model.ReasoningFactor{
				{Name: "annual_cap", Value: a.MaxContribution.String(), Weight: 0.3},
				{Name: "current_contribution", Value: a.CurrentContribution.String(), Weight: 0.3},
				{Name: "contribution_room", Value: a.ContributionRoom.String(), Weight: 0.4},
			},
			Assumptions: assumptions,
			Confidence:  confidence,
		},
		Actions: []model.ActionStep{
			{Order: 1, Description: "Contribute to your tax-free account", Amount: moneyPtr(a.RecommendedContribution)},
			{Order: 2, Description: "Invest the contribution according to your time horizon"},
		},
		Impact: model.ExpectedImpact{
			Amount:          growth,
			MonthsToRealize: monthsPerYear,
			Confidence:      confidence * 0.8,
		},
		Risks:        []string{"Over-contributing is penalized"},
		Alternatives: []string{"Pay down high-interest debt first"},
		Detail: model.TaxDetail{
			Class:                   a.Class,
			ContributionRoom:        a.ContributionRoom,
			RecommendedContribution: a.RecommendedContribution,
			EstimatedTaxSavings:     a.EstimatedTaxSavings,
		},
	}
}

func hasCreditDebt(debts []debt.Debt) bool {
	for _, d := range debts {
		if d.Type == model.AccountCreditCard {
			return true
		}
	}
	return false
}

// debtToIncome is total debt over annual income, or zero without income.
func debtToIncome(p model.UserFinancialProfile) float64 {
	annual := p.AnnualIncome
	if !annual.IsPositive() {
		annual = yearly(p.MonthlyIncome)
	}
	if !annual.IsPositive() {
		return 0
	}
	return p.TotalDebt().Float64() / annual.Float64()
}

func (e *Engine) debtRecommendations(r *run) error {
	p := r.profile
	result, err := e.debt.Optimize(p)
	if err != nil {
		return err
	}
	if len(result.Debts) == 0 {
		return nil
	}

	plan := result.Recommended
	priority := model.PriorityMedium
	if hasCreditDebt(result.Debts) {
		priority = model.PriorityHigh
	}
	if !plan.Feasible {
		priority = model.PriorityUrgent
	}

	actions := make([]model.ActionStep, 0, len(plan.Steps))
	for i, step := range plan.Steps {
		amount := step.Debt.MinimumPayment
		if i == 0 {
			amount = amount.Add(plan.ExtraPayment)
		}
		actions = append(actions, model.ActionStep{
			Order:       step.Position,
			Description: fmt.Sprintf("Pay down %s (%s)", debtLabel(step.Debt), percent(step.Debt.AnnualRate)),
			Amount:      moneyPtr(amount),
		})
	}

	var alternatives []string
	for _, m := range debt.Methods() {
		if m == plan.Method {
			continue
		}
		alt := result.Alternatives[m]
		alternatives = append(alternatives, fmt.Sprintf("%s: %s total interest, debt-free in %d months",
			m, alt.TotalInterest, alt.MonthsToPayoff))
	}

	description := fmt.Sprintf("Pay %s a month toward your debts using the %s method to be debt-free in %d months.",
		plan.MonthlyPayment, plan.Method, plan.MonthsToPayoff)
	if !plan.Feasible {
		description = fmt.Sprintf("Your current payments of %s a month do not cover the interest on every debt. Increase payments or restructure.",
			plan.MonthlyPayment)
	}

	cfg := e.debt.Config()
	confidence := 0.7
	r.add(model.Recommendation{
		Kind:        model.KindDebt,
		Priority:    priority,
		Title:       fmt.Sprintf("Follow a %s debt payoff plan", plan.Method),
		Description: description,
		Timeframe:   model.TimeframeImmediate,
		Reasoning: model.RecommendationReasoning{
			Methodology: "Each debt pays its minimum and the first debt in the payoff order also receives the extra funds; balances follow the amortization closed form and freed payments roll over.",
			Factors: []model.ReasoningFactor{
				{Name: "total_debt", Value: plan.TotalDebt.String(), Weight: 0.3},
				{Name: "debt_count", Value: fmt.Sprint(len(result.Debts)), Weight: 0.1},
				{Name: "extra_payment", Value: plan.ExtraPayment.String(), Weight: 0.2},
				{Name: "debt_to_income", Value: percent(debtToIncome(p)), Weight: 0.2},
				{Name: "age", Value: fmt.Sprint(p.Age), Weight: 0.2},
			},
			Assumptions: []string{
				fmt.Sprintf("Extra funds are %s of monthly income minus expenses", percent(cfg.ExtraFundsShare)),
				"Accounts without a rate use a typical rate for their type",
				fmt.Sprintf("Interest saved is %s of the interest accrued over %d months, an estimate rather than an exact schedule",
					percent(cfg.InterestSavingsFactor), cfg.HorizonMonths),
			},
			Confidence: confidence,
		},
		Actions: actions,
		Impact: model.ExpectedImpact{
			Amount:          plan.InterestSaved,
			MonthsToRealize: cfg.HorizonMonths,
			Confidence:      confidence,
		},
		Risks:        []string{"New borrowing extends the timeline", "Variable rates may rise"},
		Alternatives: alternatives,
		Detail: model.DebtDetail{
			Method:         plan.Method,
			PayoffOrder:    plan.PayoffOrder(),
			TotalDebt:      plan.TotalDebt,
			ExtraPayment:   plan.ExtraPayment,
			InterestSaved:  plan.InterestSaved,
			MonthsToPayoff: plan.MonthsToPayoff,
		},
	})

	if len(result.Debts) >= e.cfg.ConsolidationMinDebts {
		rec, err := e.consolidationRecommendation(result)
		if err != nil {
			return err
		}
		r.add(rec)
	}
	return nil
}

func debtLabel(d debt.Debt) string {
	if d.Name != "" {
		return d.Name
	}
	return d.AccountID
}

// consolidationRecommendation compares the plan with a single loan at the
// typical loan rate carrying the combined balance and minimums.
func (e *Engine) consolidationRecommendation(result debt.Result) (model.Recommendation, error) {
	plan := result.Recommended
	cfg := e.debt.Config()
	rate := cfg.Rates[model.AccountLoan]

	combined := debt.Debt{
		AccountID:      "consolidated",
		Name:           "Consolidation loan",
		Type:           model.AccountLoan,
		Balance:        plan.TotalDebt,
		MinimumPayment: model.Zero(plan.TotalDebt.Currency),
		AnnualRate:     rate,
	}
	for _, d := range result.Debts {
		combined.MinimumPayment = combined.MinimumPayment.Add(d.MinimumPayment)
	}
	single, err := e.debt.Plan([]debt.Debt{combined}, model.DebtAvalanche, plan.ExtraPayment)
	if err != nil {
		return model.Recommendation{}, err
	}

	savings := model.MaxMoney(plan.HorizonInterest.Sub(single.HorizonInterest), model.Zero(plan.TotalDebt.Currency))
	priority := model.PriorityLow
	if savings.IsPositive() {
		priority = model.PriorityMedium
	}

	return model.Recommendation{
		Kind:     model.KindDebt,
		Priority: priority,
		Title:    "Consider consolidating your debts",
		Description: fmt.Sprintf("You carry %d separate debts. A single loan at %s could simplify payments and save about %s over %d months.",
			len(result.Debts), percent(rate), savings, cfg.HorizonMonths),
		Timeframe: model.TimeframeShortTerm,
		Reasoning: model.RecommendationReasoning{
			Methodology: "Projects the combined balance as one loan with the same monthly payment and compares interest over the estimate horizon.",
			Factors: []model.ReasoningFactor{
				{Name: "debt_count", Value: fmt.Sprint(len(result.Debts)), Weight: 0.4},
				{Name: "total_debt", Value: plan.TotalDebt.String(), Weight: 0.3},
				{Name: "consolidation_rate", Value: percent(rate), Weight: 0.3},
			},
			Assumptions: []string{"A consolidation loan is available at the typical loan rate", "Fees for the new loan are ignored"},
			Confidence:  0.5,
		},
		Actions: []model.ActionStep{
			{Order: 1, Description: "Compare consolidation loan offers from your bank and credit union"},
			{Order: 2, Description: "Use the loan to close the highest-rate balances", Amount: moneyPtr(plan.TotalDebt)},
			{Order: 3, Description: "Keep paying the same total each month", Amount: moneyPtr(plan.MonthlyPayment)},
		},
		Impact: model.ExpectedImpact{
			Amount:          savings,
			MonthsToRealize: cfg.HorizonMonths,
			Confidence:      0.5,
		},
		Risks:        []string{"Closed credit lines can tempt new borrowing", "Longer terms can raise total interest"},
		Alternatives: []string{"Keep the current payoff plan"},
		Detail: model.DebtDetail{
			Method:         plan.Method,
			PayoffOrder:    plan.PayoffOrder(),
			TotalDebt:      plan.TotalDebt,
			ExtraPayment:   plan.ExtraPayment,
			InterestSaved:  savings,
			MonthsToPayoff: single.MonthsToPayoff,
			Consolidation:  true,
		},
	}, nil
}

// OptimalSavingsRate adjusts the baseline for age and debt load, clamped to the configured band.
func (e *Engine) OptimalSavingsRate(p model.UserFinancialProfile) float64 {
	c := e.cfg
	rate := c.BaselineSavingsRate
	if p.Age < c.YoungAge {
		rate += c.SavingsRateAdjustment
	}
	if p.Age > c.OlderAge {
		rate -= c.SavingsRateAdjustment
	}
	if debtToIncome(p) > c.DebtToIncomeLimit {
		rate -= c.SavingsRateAdjustment
	}
	return math.Min(math.Max(rate, c.MinSavingsRate), c.MaxSavingsRate)
}

func (e *Engine) savingsRecommendation(r *run) error {
	p := r.profile
	if !p.MonthlyIncome.IsPositive() {
		return nil
	}

	current := p.MonthlySurplus().Float64() / p.MonthlyIncome.Float64()
	optimal := e.OptimalSavingsRate(p)
	if optimal-current <= e.cfg.SavingsRateGap {
		return nil
	}

	gap := p.MonthlyIncome.ScaleFloat(optimal - current)
	priority := model.PriorityMedium
	if current < 0 {
		priority = model.PriorityHigh
	}

	r.add(model.Recommendation{
		Kind:     model.KindSavings,
		Priority: priority,
		Title:    "Raise your savings rate",
		Description: fmt.Sprintf("You save %s of your income; %s is a better target for you. Set aside another %s a month.",
			percent(current), percent(optimal), gap),
		Timeframe: model.TimeframeShortTerm,
		Reasoning: model.RecommendationReasoning{
			Methodology: "Starts from a baseline savings rate, adjusts for age and debt-to-income, clamps to a sensible band and compares with income minus expenses.",
			Factors: []model.ReasoningFactor{
				{Name: "current_rate", Value: percent(current), Weight: 0.4},
				{Name: "optimal_rate", Value: percent(optimal), Weight: 0.3},
				{Name: "age", Value: fmt.Sprint(p.Age), Weight: 0.15},
				{Name: "debt_to_income", Value: percent(debtToIncome(p)), Weight: 0.15},
			},
			Assumptions: []string{"Monthly income and expenses are representative of a typical month"},
			Confidence:  0.75,
		},
		Actions: []model.ActionStep{
			{Order: 1, Description: "Schedule an automatic transfer to savings on payday", Amount: moneyPtr(gap)},
			{Order: 2, Description: "Review your largest spending categories for cuts"},
		},
		Impact: model.ExpectedImpact{
			Amount:          yearly(gap),
			MonthsToRealize: monthsPerYear,
			Confidence:      0.75,
		},
		Risks:        []string{"Cutting too deep can make the budget hard to keep"},
		Alternatives: []string{"Increase income instead of reducing spending"},
		Detail: model.SavingsDetail{
			CurrentRate: current,
			OptimalRate: optimal,
			MonthlyGap:  gap,
		},
	})
	return nil
}

func (e *Engine) emergencyFundRecommendation(r *run) error {
	p := r.profile
	if !p.MonthlyExpenses.IsPositive() {
		return nil
	}

	target := p.MonthlyExpenses.Scale(decimal.NewFromInt(int64(e.cfg.EmergencyFundMonths)))
	current := p.SavingsBalance()
	gap := target.Sub(current)
	if !gap.IsPositive() {
		return nil
	}

	coverage := current.Float64() / p.MonthlyExpenses.Float64()
	priority := model.PriorityMedium
	switch {
	case coverage < 1:
		priority = model.PriorityUrgent
	case coverage < 3:
		priority = model.PriorityHigh
	}

	r.add(model.Recommendation{
		Kind:     model.KindEmergencyFund,
		Priority: priority,
		Title:    "Build your emergency fund",
		Description: fmt.Sprintf("Your savings cover %.1f months of expenses. Aim for %d months (%s), which is %s more.",
			coverage, e.cfg.EmergencyFundMonths, target, gap),
		Timeframe: model.TimeframeShortTerm,
		Reasoning: model.RecommendationReasoning{
			Methodology: "Target is a fixed number of months of expenses; the gap is the target less savings account balances.",
			Factors: []model.ReasoningFactor{
				{Name: "monthly_expenses", Value: p.MonthlyExpenses.String(), Weight: 0.4},
				{Name: "savings_balance", Value: current.String(), Weight: 0.4},
				{Name: "coverage_months", Value: fmt.Sprintf("%.1f", coverage), Weight: 0.2},
			},
			Assumptions: []string{"Only savings accounts count toward the fund"},
			Confidence:  0.9,
		},
		Actions: []model.ActionStep{
			{Order: 1, Description: "Open or designate a high-interest savings account for emergencies"},
			{Order: 2, Description: "Save toward the target every month for a year", Amount: moneyPtr(perMonth(gap, monthsPerYear))},
		},
		Impact: model.ExpectedImpact{
			Amount:          gap,
			MonthsToRealize: monthsPerYear,
			Confidence:      0.9,
		},
		Risks:        []string{"Money held in cash loses value to inflation"},
		Alternatives: []string{"Keep part of the fund in a tax-free account"},
		Detail: model.EmergencyFundDetail{
			Target:  target,
			Current: current,
			Gap:     gap,
		},
	})
	return nil
}

func (e *Engine) goalRecommendations(r *run) error {
	for _, g := range r.profile.Goals {
		if !g.IsOffTrack(r.now) {
			continue
		}
		months := g.MonthsLeft(r.now)
		remaining := g.Remaining()
		required := perMonth(remaining, months)
		progress, elapsed := g.Progress(), g.ElapsedFraction(r.now)

		r.add(model.Recommendation{
			Kind:     model.KindGoal,
			Priority: model.PriorityMedium,
			Title:    fmt.Sprintf("Get %q back on track", g.Title),
			Description: fmt.Sprintf("You have saved %s of the target with %s of the time gone. Save %s a month to finish on time.",
				percent(progress), percent(elapsed), required),
			Timeframe: model.TimeframeShortTerm,
			Reasoning: model.RecommendationReasoning{
				Methodology: "A goal is off track when saved progress trails elapsed time by more than ten points; the catch-up amount spreads the remainder over the months left.",
				Factors: []model.ReasoningFactor{
					{Name: "progress", Value: percent(progress), Weight: 0.4},
					{Name: "elapsed", Value: percent(elapsed), Weight: 0.4},
					{Name: "remaining", Value: remaining.String(), Weight: 0.2},
				},
				Assumptions: []string{"Contributions stay level until the target date"},
				Confidence:  0.8,
			},
			Actions: []model.ActionStep{
				{Order: 1, Description: "Increase the monthly contribution to the goal", Amount: moneyPtr(required)},
				{Order: 2, Description: "Or move the target date to keep contributions where they are"},
			},
			Impact: model.ExpectedImpact{
				Amount:          remaining,
				MonthsToRealize: months,
				Confidence:      0.8,
			},
			Risks:        []string{"Larger contributions reduce flexibility elsewhere"},
			Alternatives: []string{"Lower the target amount"},
			Detail: model.GoalDetail{
				GoalID:          g.ID,
				Progress:        progress,
				Elapsed:         elapsed,
				RequiredMonthly: required,
			},
		})
	}
	return nil
}

func (e *Engine) snapshot(r *run) model.SpendingSnapshot {
	if r.profile.Spending != nil {
		return *r.profile.Spending
	}
	return spending.Analyze(r.profile.Transactions, model.LastDays(r.now, e.cfg.SpendingWindowDays))
}

func (e *Engine) cashFlowRecommendations(r *run) error {
	snap := e.snapshot(r)
	if !snap.Total.IsPositive() {
		return nil
	}

	overruns := make(map[string]spending.Overrun)
	for _, o := range spending.Overruns(snap, r.profile.Budget) {
		overruns[o.CategoryID] = o
	}

	for _, row := range snap.Categories {
		if row.CategoryID == model.CategoryTransfer || row.CategoryID == model.CategoryIncome {
			continue
		}
		monthly := spending.Monthly(row.Amount, snap.Window)
		if o, ok := overruns[row.CategoryID]; ok {
			r.add(budgetRecommendation(row, o))
		}
		if row.Share > e.cfg.CashFlowShare && row.Trend == model.TrendIncreasing {
			r.add(e.growthRecommendation(row, monthly))
		}
	}
	return nil
}

func (e *Engine) growthRecommendation(row model.CategorySpending, monthly model.Money) model.Recommendation {
	cut := monthly.ScaleFloat(e.cfg.SpendingReduction)
	return model.Recommendation{
		Kind:     model.KindCashFlow,
		Priority: model.PriorityMedium,
		Title:    fmt.Sprintf("Rein in %s spending", row.CategoryID),
		Description: fmt.Sprintf("%s is %s of your spending and rising. Trimming it by %s saves %s a month.",
			row.CategoryID, percent(row.Share), percent(e.cfg.SpendingReduction), cut),
		Timeframe: model.TimeframeImmediate,
		Reasoning: model.RecommendationReasoning{
			Methodology: "Flags categories above a share of total spending whose total grew against the preceding window of equal length.",
			Factors: []model.ReasoningFactor{
				{Name: "share", Value: percent(row.Share), Weight: 0.5},
				{Name: "trend", Value: string(row.Trend), Weight: 0.3},
				{Name: "monthly_amount", Value: monthly.String(), Weight: 0.2},
			},
			Assumptions: []string{"Recent spending is representative of the coming months"},
			Confidence:  0.65,
		},
		Actions: []model.ActionStep{
			{Order: 1, Description: fmt.Sprintf("Set a monthly limit for %s", row.CategoryID), Amount: moneyPtr(monthly.Sub(cut))},
			{Order: 2, Description: "Review recurring charges in this category"},
		},
		Impact: model.ExpectedImpact{
			Amount:          yearly(cut),
			MonthsToRealize: monthsPerYear,
			Confidence:      0.65,
		},
		Risks:        []string{"Some spending in this category may be essential"},
		Alternatives: []string{"Offset the increase with cuts elsewhere"},
		Detail: model.CashFlowDetail{
			CategoryID:    row.CategoryID,
			Trend:         row.Trend,
			Share:         row.Share,
			MonthlyAmount: monthly,
		},
	}
}

func budgetRecommendation(row model.CategorySpending, o spending.Overrun) model.Recommendation {
	return model.Recommendation{
		Kind:     model.KindCashFlow,
		Priority: model.PriorityHigh,
		Title:    fmt.Sprintf("%s is over budget", row.CategoryID),
		Description: fmt.Sprintf("You spend %s a month on %s against a budget of %s.",
			o.Monthly, row.CategoryID, o.Limit),
		Timeframe: model.TimeframeImmediate,
		Reasoning: model.RecommendationReasoning{
			Methodology: "Compares average monthly spending in the window with the category's monthly budget.",
			Factors: []model.ReasoningFactor{
				{Name: "monthly_amount", Value: o.Monthly.String(), Weight: 0.4},
				{Name: "budget", Value: o.Limit.String(), Weight: 0.4},
				{Name: "trend", Value: string(row.Trend), Weight: 0.2},
			},
			Assumptions: []string{"The budget reflects your intended monthly limit"},
			Confidence:  0.8,
		},
		Actions: []model.ActionStep{
			{Order: 1, Description: fmt.Sprintf("Cut %s spending back to budget", row.CategoryID), Amount: moneyPtr(o.Over)},
			{Order: 2, Description: "Or raise the budget if the limit is unrealistic"},
		},
		Impact: model.ExpectedImpact{
			Amount:          yearly(o.Over),
			MonthsToRealize: monthsPerYear,
			Confidence:      0.8,
		},
		Risks:        []string{"Budgets that are always exceeded stop being useful"},
		Alternatives: []string{"Move budget from an under-used category"},
		Detail: model.CashFlowDetail{
			CategoryID:    row.CategoryID,
			Trend:         row.Trend,
			Share:         row.Share,
			MonthlyAmount: o.Monthly,
			OverBudget:    true,
		},
	}
}
