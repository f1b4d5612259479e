// Package plaid converts saved Plaid /transactions/get responses into ledger
// accounts and transactions.
package plaid

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/spice-planner/internal/common"
	"github.com/Veraticus/spice-planner/internal/model"
	"github.com/plaid/plaid-go/v20/plaid"
)

const plaidDateLayout = "2006-01-02"

// Statement is the content of one saved response.
type Statement struct {
	Accounts     []model.Account
	Transactions []model.Transaction
	// Pending transactions are skipped; Plaid reissues them once posted.
	Pending int
}

// Importer maps Plaid payloads onto the ledger model.
type Importer struct {
	logger *slog.Logger
}

// NewImporter creates an importer that logs through the default logger.
func NewImporter() *Importer {
	return &Importer{logger: slog.Default().With("component", "plaid")}
}

// Parse decodes a JSON /transactions/get response and converts it.
func (i *Importer) Parse(ctx context.Context, r io.Reader) (*Statement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var resp plaid.TransactionsGetResponse
	if err := json.NewDecoder(r).Decode(&resp); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, common.ErrEmptyStatement
		}
		return nil, fmt.Errorf("failed to decode Plaid response: %w", err)
	}
	return i.Convert(resp)
}

// Convert maps the accounts and posted transactions of a response.
func (i *Importer) Convert(resp plaid.TransactionsGetResponse) (*Statement, error) {
	stmt := &Statement{}

	for _, acct := range resp.GetAccounts() {
		stmt.Accounts = append(stmt.Accounts, mapAccount(acct))
	}

	for _, pt := range resp.GetTransactions() {
		if pt.GetPending() {
			stmt.Pending++
			continue
		}
		tx, err := mapTransaction(pt)
		if err != nil {
			return nil, err
		}
		stmt.Transactions = append(stmt.Transactions, tx)
	}

	i.logger.Info("Converted Plaid response",
		"accounts", len(stmt.Accounts),
		"transactions", len(stmt.Transactions),
		"pending_skipped", stmt.Pending)

	return stmt, nil
}

// mapAccount converts a Plaid account. Plaid reports credit and loan balances
// as the positive amount owed; the ledger stores liabilities as negative.
func mapAccount(acct plaid.AccountBase) model.Account {
	balances := acct.GetBalances()
	currency := balances.GetIsoCurrencyCode()
	current := model.MoneyFromFloat(balances.GetCurrent(), currency)

	account := model.Account{
		ID:      acct.GetAccountId(),
		Name:    acct.GetName(),
		Type:    accountType(string(acct.GetType()), string(acct.GetSubtype())),
		Balance: current,
	}
	if account.IsDebt() {
		account.Balance = current.Neg()
	}
	return account
}

func accountType(typ, subtype string) model.AccountType {
	switch typ {
	case "credit":
		return model.AccountCreditCard
	case "loan":
		if subtype == "mortgage" {
			return model.AccountMortgage
		}
		return model.AccountLoan
	case "investment", "brokerage":
		return model.AccountInvestment
	}
	if subtype == "savings" || subtype == "money market" || subtype == "cd" {
		return model.AccountSavings
	}
	return model.AccountChecking
}

// mapTransaction converts a Plaid transaction. Plaid amounts are positive
// when money leaves the account, the opposite of the ledger convention.
func mapTransaction(pt plaid.Transaction) (model.Transaction, error) {
	date, err := time.Parse(plaidDateLayout, pt.GetDate())
	if err != nil {
		return model.Transaction{}, fmt.Errorf("transaction %s has invalid date %q: %w", pt.GetTransactionId(), pt.GetDate(), err)
	}

	merchantName := pt.GetMerchantName()
	if merchantName == "" {
		merchantName = pt.GetName()
	}

	tx := model.Transaction{
		ID:           pt.GetTransactionId(),
		AccountID:    pt.GetAccountId(),
		Date:         date,
		Description:  pt.GetName(),
		MerchantName: cleanMerchantName(merchantName),
		Amount:       model.MoneyFromFloat(-pt.GetAmount(), pt.GetIsoCurrencyCode()),
		CategoryID:   categoryFor(pt),
	}

	location := pt.GetLocation()
	if city := location.GetCity(); city != "" {
		tx.Location = city
		if region := location.GetRegion(); region != "" {
			tx.Location += ", " + region
		}
	}

	return tx, nil
}

// categoryFor maps Plaid's personal finance category onto the default
// taxonomy. Anything without a clear match is left for the categorizer.
func categoryFor(pt plaid.Transaction) string {
	pfc := pt.GetPersonalFinanceCategory()
	switch pfc.GetPrimary() {
	case "INCOME":
		return model.CategoryIncome
	case "TRANSFER_IN", "TRANSFER_OUT", "LOAN_PAYMENTS":
		return model.CategoryTransfer
	case "BANK_FEES":
		return model.CategoryFees
	case "FOOD_AND_DRINK":
		if pfc.GetDetailed() == "FOOD_AND_DRINK_GROCERIES" {
			return model.CategoryGroceries
		}
		return model.CategoryDining
	case "TRANSPORTATION", "TRAVEL":
		return model.CategoryTransport
	case "RENT_AND_UTILITIES":
		if pfc.GetDetailed() == "RENT_AND_UTILITIES_RENT" {
			return model.CategoryHousing
		}
		return model.CategoryUtilities
	case "ENTERTAINMENT":
		return model.CategoryEntertainment
	case "GENERAL_MERCHANDISE":
		return model.CategoryShopping
	case "MEDICAL":
		return model.CategoryHealth
	}
	return ""
}

var merchantSuffixes = []string{
	" Llc",
	" Inc",
	" Corp",
	" Corporation",
	" Company",
	" Co",
	" Ltd",
	" Limited",
}

// cleanMerchantName title-cases a merchant name, drops a trailing numeric
// reference and strips corporate suffixes.
func cleanMerchantName(name string) string {
	parts := strings.Fields(strings.ToLower(name))
	for i, word := range parts {
		runes := []rune(word)
		for j := range runes {
			if j == 0 || !isLetter(runes[j-1]) {
				runes[j] = toUpper(runes[j])
			}
		}
		parts[i] = string(runes)
	}

	if len(parts) > 1 {
		last := parts[len(parts)-1]
		if len(last) > 5 && isAllDigits(last) {
			parts = parts[:len(parts)-1]
		}
	}
	name = strings.Join(parts, " ")

	for changed := true; changed; {
		changed = false
		for _, suffix := range merchantSuffixes {
			if strings.HasSuffix(name, suffix) {
				name = strings.TrimSuffix(name, suffix)
				changed = true
			}
		}
	}

	return strings.TrimSpace(name)
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func toUpper(r rune) rune {
	if r >= 'a' && r <= 'z' {
		return r - 32
	}
	return r
}
