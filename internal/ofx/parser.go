// Package ofx imports OFX/QFX bank and credit card statements.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/Veraticus/spice-planner/internal/model"
	"github.com/aclindsa/ofxgo"
)

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	// Opening tags at end of line with no closing bracket.
	tagFixRegex = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
	// A leading MM/DD posting date.
	datePrefixRegex = regexp.MustCompile(`^\d{2}/\d{2}\s+`)
)

// Statement is the content of one OFX file.
type Statement struct {
	Accounts     []model.Account
	Transactions []model.Transaction
}

// Parser implements OFX/QFX file parsing.
type Parser struct{}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{}
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	// SEVERITY must be INFO, WARN or ERROR.
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	return tagFixRegex.ReplaceAllString(content, "$1>")
}

func (p *Parser) parseResponse(ctx context.Context, reader io.Reader) (*ofxgo.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}
	return resp, nil
}

// Parse reads every bank and credit card statement in the file.
func (p *Parser) Parse(ctx context.Context, reader io.Reader) (*Statement, error) {
	resp, err := p.parseResponse(ctx, reader)
	if err != nil {
		return nil, err
	}

	stmt := &Statement{}
	var bankStmts, ccStmts int

	for _, msg := range resp.Bank {
		s, ok := msg.(*ofxgo.StatementResponse)
		if !ok {
			continue
		}
		bankStmts++
		currency := currencyOf(s.CurDef)
		account := model.Account{
			ID:      string(s.BankAcctFrom.AcctID),
			Name:    fmt.Sprintf("%s %s", s.BankAcctFrom.AcctType, s.BankAcctFrom.AcctID),
			Type:    bankAccountType(s.BankAcctFrom),
			Balance: p.convertAmount(s.BalAmt, currency, string(s.BankAcctFrom.AcctID)),
		}
		stmt.Accounts = append(stmt.Accounts, account)
		stmt.Transactions = append(stmt.Transactions, p.convertList(s.BankTranList, account.ID, currency)...)
	}

	for _, msg := range resp.CreditCard {
		s, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok {
			continue
		}
		ccStmts++
		currency := currencyOf(s.CurDef)
		account := model.Account{
			ID:      string(s.CCAcctFrom.AcctID),
			Name:    "Credit card " + lastFour(string(s.CCAcctFrom.AcctID)),
			Type:    model.AccountCreditCard,
			Balance: p.convertAmount(s.BalAmt, currency, string(s.CCAcctFrom.AcctID)),
		}
		stmt.Accounts = append(stmt.Accounts, account)
		stmt.Transactions = append(stmt.Transactions, p.convertList(s.BankTranList, account.ID, currency)...)
	}

	slog.Info("Parsed OFX file",
		"total_transactions", len(stmt.Transactions),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return stmt, nil
}

// ParseFile parses an OFX/QFX file and returns its transactions.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) ([]model.Transaction, error) {
	stmt, err := p.Parse(ctx, reader)
	if err != nil {
		return nil, err
	}
	return stmt.Transactions, nil
}

// GetAccounts extracts the accounts and ledger balances in the file.
func (p *Parser) GetAccounts(ctx context.Context, reader io.Reader) ([]model.Account, error) {
	stmt, err := p.Parse(ctx, reader)
	if err != nil {
		return nil, err
	}
	return stmt.Accounts, nil
}

func (p *Parser) convertList(list *ofxgo.TransactionList, accountID, currency string) []model.Transaction {
	if list == nil {
		return nil
	}
	transactions := make([]model.Transaction, 0, len(list.Transactions))
	for _, ofxTx := range list.Transactions {
		transactions = append(transactions, p.convertTransaction(ofxTx, accountID, currency))
	}
	return transactions
}

// convertAmount converts an OFX amount exactly. OFX amounts are already
// signed from the account holder's side: debits are negative.
func (p *Parser) convertAmount(amt ofxgo.Amount, currency, accountID string) model.Money {
	m, err := model.ParseMoney(amt.FloatString(2), currency)
	if err != nil {
		slog.Warn("Unparseable OFX amount", "account", accountID, "amount", amt.String(), "error", err)
		return model.Zero(currency)
	}
	return m
}

// convertTransaction converts an OFX transaction to our model.
func (p *Parser) convertTransaction(ofxTx ofxgo.Transaction, accountID, currency string) model.Transaction {
	if ofxTx.Currency != nil {
		currency = currencyOf(ofxTx.Currency.CurSym)
	}

	description := strings.TrimSpace(string(ofxTx.Name))
	if description == "" {
		description = strings.TrimSpace(string(ofxTx.Memo))
	}

	tx := model.Transaction{
		ID:           string(ofxTx.FiTID),
		Date:         ofxTx.DtPosted.Time.UTC(),
		Description:  description,
		MerchantName: p.extractMerchantName(ofxTx),
		Amount:       p.convertAmount(ofxTx.TrnAmt, currency, accountID),
		AccountID:    accountID,
	}

	// OFX carries no categories, but a few transaction types imply one.
	switch ofxTx.TrnType {
	case ofxgo.TrnTypeInt, ofxgo.TrnTypeDiv:
		tx.CategoryID = model.CategoryIncome
	case ofxgo.TrnTypeDirectDep:
		tx.CategoryID = model.CategoryIncome
		tx.Recurring = true
	case ofxgo.TrnTypeFee, ofxgo.TrnTypeSrvChg:
		tx.CategoryID = model.CategoryFees
	case ofxgo.TrnTypeXfer:
		tx.CategoryID = model.CategoryTransfer
	case ofxgo.TrnTypeRepeatPmt, ofxgo.TrnTypeDirectDebit:
		tx.Recurring = true
	}

	return tx
}

// extractMerchantName tries to get a clean merchant name from OFX data.
func (p *Parser) extractMerchantName(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return string(tx.Payee.Name)
	}

	name := string(tx.Name)

	// MEMO sometimes has better merchant info than a generic NAME.
	if tx.Memo != "" && isGenericDescription(name) {
		name = string(tx.Memo)
	}

	name = strings.TrimSpace(name)

	prefixes := []string{
		"POS PURCHASE ",
		"PURCHASE AUTHORIZED ON ",
		"DEBIT CARD PURCHASE ",
		"INTERAC PURCHASE ",
		"ACH DEBIT ",
		"CHECK CARD ",
		"VISA PURCHASE ",
		"VISA DEBIT ",
		"MC PURCHASE ",
		"DEBIT PURCHASE ",
	}
	for _, prefix := range prefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	return datePrefixRegex.ReplaceAllString(name, "")
}

// isGenericDescription checks if a transaction name is too generic.
func isGenericDescription(name string) bool {
	generic := []string{
		"DEBIT",
		"CREDIT",
		"PURCHASE",
		"PAYMENT",
		"POS TRANSACTION",
		"CARD PURCHASE",
	}

	upperName := strings.ToUpper(strings.TrimSpace(name))
	for _, g := range generic {
		if upperName == g {
			return true
		}
	}
	return false
}

// currencyOf maps an unset symbol, which prints as XXX, to the default currency.
func currencyOf(sym ofxgo.CurrSymbol) string {
	if s := sym.String(); s != "" && s != "XXX" {
		return s
	}
	return model.DefaultCurrency
}

func bankAccountType(acct ofxgo.BankAcct) model.AccountType {
	switch acct.AcctType {
	case ofxgo.AcctTypeSavings, ofxgo.AcctTypeMoneyMrkt, ofxgo.AcctTypeCD:
		return model.AccountSavings
	case ofxgo.AcctTypeCreditLine:
		return model.AccountLoan
	default:
		return model.AccountChecking
	}
}

func lastFour(id string) string {
	if len(id) <= 4 {
		return id
	}
	return id[len(id)-4:]
}
