package model

// AccountType identifies the kind of financial account.
type AccountType string

// Account type constants.
const (
	AccountChecking   AccountType = "checking"
	AccountSavings    AccountType = "savings"
	AccountCreditCard AccountType = "credit_card"
	AccountLoan       AccountType = "loan"
	AccountMortgage   AccountType = "mortgage"
	AccountInvestment AccountType = "investment"
)

// Valid reports whether t is one of the known account types.
func (t AccountType) Valid() bool {
	switch t {
	case AccountChecking, AccountSavings, AccountCreditCard, AccountLoan, AccountMortgage, AccountInvestment:
		return true
	}
	return false
}

// Account is a bank or credit account. Liabilities carry a negative balance.
type Account struct {
	InterestRate   *float64 // annual rate, e.g. 0.1999
	MinimumPayment *Money   // monthly
	ID             string
	Name           string
	Type           AccountType
	Balance        Money
}

// IsDebt reports whether the account type is a liability.
func (a Account) IsDebt() bool {
	switch a.Type {
	case AccountCreditCard, AccountLoan, AccountMortgage:
		return true
	}
	return false
}

// Outstanding returns the amount owed on a debt account as a positive value.
// Non-debt accounts and debts with a non-negative balance owe nothing.
func (a Account) Outstanding() Money {
	if !a.IsDebt() || !a.Balance.IsNegative() {
		return Zero(a.Balance.Currency)
	}
	return a.Balance.Neg()
}
