package model

import "time"

// CategoryScore is a candidate category with its confidence.
type CategoryScore struct {
	CategoryID string
	Confidence float64
}

// CategorizationResult is the outcome of categorizing one transaction.
// It is never persisted by the engine.
type CategorizationResult struct {
	TransactionID string
	CategoryID    string
	Alternatives  []CategoryScore // at most three, excluding CategoryID, by descending confidence
	Confidence    float64
	Degraded      bool // no usable description or merchant text was available
}

// FeedbackRecord captures a user's correction of a categorization.
type FeedbackRecord struct {
	CreatedAt     time.Time
	ID            string
	TransactionID string
	CategoryID    string
	Confidence    float64
}

// TrainingSample is one labeled example used to seed the categorization model.
type TrainingSample struct {
	Description  string
	MerchantName string
	CategoryID   string
	Amount       Money
	Recurring    bool
}

// AlertType identifies which detector raised an unusual-spending alert.
type AlertType string

// Alert types.
const (
	AlertUnusualAmount    AlertType = "unusual_amount"
	AlertFrequency        AlertType = "frequency"
	AlertNewMerchant      AlertType = "new_merchant"
	AlertDuplicateSuspect AlertType = "duplicate_suspected"
)

// Severity ranks alerts; larger is more severe.
type Severity int

// Severity levels.
const (
	SeverityLow Severity = iota + 1
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	}
	return "unknown"
}

// UnusualSpendingAlert flags a transaction that stands out from its peers.
type UnusualSpendingAlert struct {
	TransactionID string
	Merchant      string
	Message       string
	Type          AlertType
	Amount        Money
	Expected      Money // group mean for amount alerts, zero otherwise
	Severity      Severity
}
