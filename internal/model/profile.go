package model

// RiskTolerance is the user's self-declared appetite for investment risk.
type RiskTolerance string

// Risk tolerance levels.
const (
	RiskConservative RiskTolerance = "conservative"
	RiskModerate     RiskTolerance = "moderate"
	RiskAggressive   RiskTolerance = "aggressive"
)

// Trend describes the direction of a spending series.
type Trend string

// Trend values.
const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
)

// CategorySpending is one row of a spending snapshot.
type CategorySpending struct {
	CategoryID string
	Amount     Money   // spent in the window, positive
	Share      float64 // fraction of total spending in the window
	Trend      Trend
}

// SpendingSnapshot summarizes expenses over a window.
type SpendingSnapshot struct {
	Window     DateRange
	Categories []CategorySpending
	Total      Money
}

// BudgetSnapshot maps category IDs to monthly budget limits.
type BudgetSnapshot struct {
	Limits map[string]Money
}

// ContributionRoom carries actual registered-account contributions when a ledger is available.
type ContributionRoom struct {
	TaxDeferredContributed *Money
	TaxFreeContributed     *Money
}

// UserFinancialProfile is the read model assembled by the caller for one recommendation run.
type UserFinancialProfile struct {
	ContributionRoom *ContributionRoom
	Spending         *SpendingSnapshot
	Budget           *BudgetSnapshot
	UserID           string
	Jurisdiction     string
	RiskTolerance    RiskTolerance
	Accounts         []Account
	Transactions     []Transaction
	Goals            []FinancialGoal
	AnnualIncome     Money
	MonthlyIncome    Money
	MonthlyExpenses  Money
	Age              int
	TimeHorizonYears int
}

// Debts returns the accounts that currently owe money.
func (p UserFinancialProfile) Debts() []Account {
	var debts []Account
	for _, a := range p.Accounts {
		if a.IsDebt() && a.Balance.IsNegative() {
			debts = append(debts, a)
		}
	}
	return debts
}

// TotalDebt sums the outstanding balances of all debt accounts.
func (p UserFinancialProfile) TotalDebt() Money {
	total := Zero(p.AnnualIncome.Currency)
	for _, d := range p.Debts() {
		total = total.Add(d.Outstanding())
	}
	return total
}

// MonthlySurplus returns monthly income minus monthly expenses (may be negative).
func (p UserFinancialProfile) MonthlySurplus() Money {
	return p.MonthlyIncome.Sub(p.MonthlyExpenses)
}

// SavingsBalance sums the balances of savings accounts.
func (p UserFinancialProfile) SavingsBalance() Money {
	total := Zero(p.AnnualIncome.Currency)
	for _, a := range p.Accounts {
		if a.Type == AccountSavings && a.Balance.IsPositive() {
			total = total.Add(a.Balance)
		}
	}
	return total
}
