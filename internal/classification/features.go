package classification

import (
	"math"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/Veraticus/spice-planner/internal/model"
)

// Features is everything extracted from a transaction. The scorer reads
// Tokens, LogAmount, Outflow and Recurring; the remaining fields are informational
// and are not weighted.
type Features struct {
	Tokens              []string // sorted, unique, lower-case merchant/description words
	Amount              float64  // signed, major units
	AbsAmount           float64
	LogAmount           float64 // log(1+|amount|)
	DescriptionLength   int
	Weekday             time.Weekday
	Month               time.Month
	Outflow             bool
	Recurring           bool
	JurisdictionKeyword bool // a province or sales-tax marker appeared in the text
	HasLocation         bool
}

// jurisdictionKeywords mark location or sales-tax text rather than the merchant.
var jurisdictionKeywords = map[string]bool{
	"on": true, "ontario": true, "bc": true, "ab": true, "alberta": true,
	"qc": true, "quebec": true, "mb": true, "manitoba": true, "sk": true,
	"saskatchewan": true, "ns": true, "nb": true, "gst": true, "hst": true,
	"pst": true, "qst": true, "canada": true, "ca": true,
}

var stopWords = map[string]bool{
	"the": true, "and": true, "of": true, "pos": true, "purchase": true,
	"debit": true, "visa": true, "card": true, "inc": true, "ltd": true,
	"www": true, "com": true,
}

// Extract derives features from a transaction. It never fails; a transaction
// without text simply has no tokens.
func Extract(txn model.Transaction) Features {
	text := strings.TrimSpace(txn.Description + " " + txn.MerchantName)
	tokens, jurisdiction := tokenize(text)

	abs := txn.Amount.Abs().Float64()
	return Features{
		Tokens:              tokens,
		Amount:              txn.Amount.Float64(),
		AbsAmount:           abs,
		LogAmount:           math.Log1p(abs),
		DescriptionLength:   len(strings.TrimSpace(txn.Description)),
		Weekday:             txn.Date.Weekday(),
		Month:               txn.Date.Month(),
		Outflow:             txn.IsExpense(),
		Recurring:           txn.Recurring,
		JurisdictionKeyword: jurisdiction,
		HasLocation:         strings.TrimSpace(txn.Location) != "",
	}
}

// extractSample derives features from a labeled training sample.
func extractSample(s model.TrainingSample) Features {
	return Extract(model.Transaction{
		Description:  s.Description,
		MerchantName: s.MerchantName,
		Amount:       s.Amount,
		Recurring:    s.Recurring,
	})
}

// tokenize splits text into merchant words. Jurisdiction markers, stop words,
// single characters and pure numbers are dropped.
func tokenize(text string) ([]string, bool) {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	seen := make(map[string]bool, len(fields))
	jurisdiction := false
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		switch {
		case jurisdictionKeywords[f]:
			jurisdiction = true
			continue
		case len(f) < 2, stopWords[f], isNumeric(f), seen[f]:
			continue
		}
		seen[f] = true
		tokens = append(tokens, f)
	}
	sort.Strings(tokens)
	return tokens, jurisdiction
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
