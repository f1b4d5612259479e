package model

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// Transaction is a single, immutable ledger entry. Negative amounts are money out.
type Transaction struct {
	Date         time.Time
	ID           string
	AccountID    string
	Description  string // Raw statement description
	MerchantName string // Cleaned merchant name, may be empty
	Location     string // Free-form location, may be empty
	CategoryID   string
	Amount       Money
	Recurring    bool
}

// WithCategory returns a copy of the transaction carrying a new category reference.
// The receiver is left untouched.
func (t Transaction) WithCategory(categoryID string) Transaction {
	t.CategoryID = categoryID
	return t
}

// Merchant returns the merchant name, falling back to the raw description.
func (t Transaction) Merchant() string {
	if t.MerchantName != "" {
		return t.MerchantName
	}
	return t.Description
}

// IsExpense reports whether money left the account.
func (t Transaction) IsExpense() bool {
	return t.Amount.IsNegative()
}

// GenerateHash creates a stable fingerprint used for import de-duplication.
func (t Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%d:%s:%s",
		t.Date.Format("2006-01-02"),
		t.Amount.Minor,
		t.Merchant(),
		t.AccountID)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}
