// Package anomaly flags unusual spending in a set of transactions.
package anomaly

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/Veraticus/spice-planner/internal/model"
)

// Config tunes the detectors.
type Config struct {
	DeviationThreshold float64 // standard deviations before an amount is flagged
	MinGroupSize       int     // transactions a category group needs for amount detection
	SameDayLimit       int     // same-merchant same-day transactions allowed before flagging
	MediumDeviation    float64 // relative deviation thresholds for amount severity
	HighDeviation      float64
	CriticalDeviation  float64
}

// DefaultConfig returns the standard detector settings.
func DefaultConfig() Config {
	return Config{
		DeviationThreshold: 2,
		MinGroupSize:       3,
		SameDayLimit:       2,
		MediumDeviation:    2,
		HighDeviation:      3,
		CriticalDeviation:  5,
	}
}

// Detector runs the amount, frequency, duplicate and new-merchant detectors.
// It is stateless; the history baseline is passed per call.
type Detector struct {
	cfg Config
}

// NewDetector creates a detector.
func NewDetector(cfg Config) *Detector {
	return &Detector{cfg: cfg}
}

// Detect returns every alert for txns, most severe first. Alerts of equal
// severity keep detector order, then input order.
func (d *Detector) Detect(txns []model.Transaction, baseline *Baseline) []model.UnusualSpendingAlert {
	var alerts []model.UnusualSpendingAlert
	alerts = append(alerts, d.amountAnomalies(txns, baseline)...)
	alerts = append(alerts, d.frequencyAnomalies(txns)...)
	alerts = append(alerts, d.duplicates(txns)...)
	alerts = append(alerts, d.newMerchants(txns)...)

	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].Severity > alerts[j].Severity
	})
	return alerts
}

func (d *Detector) amountAnomalies(txns []model.Transaction, baseline *Baseline) []model.UnusualSpendingAlert {
	groups := groupExpenses(txns)
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var alerts []model.UnusualSpendingAlert
	for _, key := range keys {
		group := groups[key]
		stats := computeStats(amountsOf(group))
		if stats.Count < d.cfg.MinGroupSize {
			hist, ok := baseline.Stats(key)
			if !ok || hist.Count < d.cfg.MinGroupSize {
				continue
			}
			stats = hist
		}
		if stats.StdDev == 0 || stats.Mean == 0 {
			continue
		}

		for _, t := range group {
			amount := t.Amount.Abs().Float64()
			deviation := math.Abs(amount - stats.Mean)
			if deviation <= d.cfg.DeviationThreshold*stats.StdDev {
				continue
			}
			relative := deviation / stats.Mean
			alerts = append(alerts, model.UnusualSpendingAlert{
				TransactionID: t.ID,
				Merchant:      t.Merchant(),
				Type:          model.AlertUnusualAmount,
				Severity:      d.amountSeverity(relative),
				Amount:        t.Amount.Abs(),
				Expected:      model.MoneyFromFloat(stats.Mean, t.Amount.Currency),
				Message: fmt.Sprintf("%s is %.1fx away from the usual %s spend of %.2f",
					t.Amount.Abs(), relative, key, stats.Mean),
			})
		}
	}
	return alerts
}

func (d *Detector) amountSeverity(relative float64) model.Severity {
	switch {
	case relative >= d.cfg.CriticalDeviation:
		return model.SeverityCritical
	case relative >= d.cfg.HighDeviation:
		return model.SeverityHigh
	case relative >= d.cfg.MediumDeviation:
		return model.SeverityMedium
	default:
		return model.SeverityLow
	}
}

type merchantDay struct {
	merchant string
	day      string
}

// keyOf groups by merchant and posting day. Transactions with no merchant
// text get an empty merchant and never match each other.
func keyOf(t model.Transaction) merchantDay {
	return merchantDay{merchant: normalizeMerchant(t.Merchant()), day: t.Date.Format("2006-01-02")}
}

func normalizeMerchant(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

func (d *Detector) frequencyAnomalies(txns []model.Transaction) []model.UnusualSpendingAlert {
	counts := make(map[merchantDay]int)
	for _, t := range txns {
		if k := keyOf(t); k.merchant != "" {
			counts[k]++
		}
	}

	var alerts []model.UnusualSpendingAlert
	for _, t := range txns {
		k := keyOf(t)
		n := counts[k]
		if k.merchant == "" || n <= d.cfg.SameDayLimit {
			continue
		}
		alerts = append(alerts, model.UnusualSpendingAlert{
			TransactionID: t.ID,
			Merchant:      t.Merchant(),
			Type:          model.AlertFrequency,
			Severity:      model.SeverityMedium,
			Amount:        t.Amount.Abs(),
			Message: fmt.Sprintf("possible duplicate charge: %d transactions at %s on %s",
				n, t.Merchant(), t.Date.Format("2006-01-02")),
		})
	}
	return alerts
}

func (d *Detector) duplicates(txns []model.Transaction) []model.UnusualSpendingAlert {
	var alerts []model.UnusualSpendingAlert
	for i := 0; i < len(txns); i++ {
		for j := i + 1; j < len(txns); j++ {
			a, b := txns[i], txns[j]
			ka := keyOf(a)
			if ka.merchant == "" || a.Amount.Minor != b.Amount.Minor || ka != keyOf(b) {
				continue
			}
			alerts = append(alerts, model.UnusualSpendingAlert{
				TransactionID: a.ID,
				Merchant:      a.Merchant(),
				Type:          model.AlertDuplicateSuspect,
				Severity:      model.SeverityHigh,
				Amount:        a.Amount.Abs(),
				Message: fmt.Sprintf("transactions %s and %s have the same amount, merchant and date",
					a.ID, b.ID),
			})
		}
	}
	return alerts
}

func (d *Detector) newMerchants(txns []model.Transaction) []model.UnusualSpendingAlert {
	counts := make(map[string]int)
	for _, t := range txns {
		counts[normalizeMerchant(t.Merchant())]++
	}

	var alerts []model.UnusualSpendingAlert
	for _, t := range txns {
		name := normalizeMerchant(t.Merchant())
		if name == "" || counts[name] != 1 {
			continue
		}
		alerts = append(alerts, model.UnusualSpendingAlert{
			TransactionID: t.ID,
			Merchant:      t.Merchant(),
			Type:          model.AlertNewMerchant,
			Severity:      model.SeverityLow,
			Amount:        t.Amount.Abs(),
			Message:       fmt.Sprintf("first transaction at %s in this period", t.Merchant()),
		})
	}
	return alerts
}
