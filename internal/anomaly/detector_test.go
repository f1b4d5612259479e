package anomaly

import (
	"fmt"
	"testing"
	"time"

	"github.com/Veraticus/spice-planner/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day0 = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func expense(id, merchant, category string, cents int64, dayOffset int) model.Transaction {
	return model.Transaction{
		ID:           id,
		AccountID:    "chk",
		Date:         day0.AddDate(0, 0, dayOffset),
		Amount:       model.Cents(-cents),
		Description:  merchant,
		MerchantName: merchant,
		CategoryID:   category,
	}
}

func ofType(alerts []model.UnusualSpendingAlert, typ model.AlertType) []model.UnusualSpendingAlert {
	var out []model.UnusualSpendingAlert
	for _, a := range alerts {
		if a.Type == typ {
			out = append(out, a)
		}
	}
	return out
}

func TestDetector_AmountAnomaly_DiningScenario(t *testing.T) {
	var txns []model.Transaction
	for i := 0; i < 9; i++ {
		txns = append(txns, expense(fmt.Sprintf("d%d", i), "Bistro", model.CategoryDining, 4000, i))
	}
	txns = append(txns, expense("big", "Bistro", model.CategoryDining, 40000, 9))

	alerts := ofType(NewDetector(DefaultConfig()).Detect(txns, nil), model.AlertUnusualAmount)

	require.Len(t, alerts, 1)
	assert.Equal(t, "big", alerts[0].TransactionID)
	assert.GreaterOrEqual(t, alerts[0].Severity, model.SeverityHigh)
	assert.Equal(t, model.Dollars(76), alerts[0].Expected)
}

func TestDetector_AmountSeverity(t *testing.T) {
	d := NewDetector(DefaultConfig())

	tests := []struct {
		relative float64
		want     model.Severity
	}{
		{relative: 1.5, want: model.SeverityLow},
		{relative: 2, want: model.SeverityMedium},
		{relative: 3.2, want: model.SeverityHigh},
		{relative: 5, want: model.SeverityCritical},
	}

	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, d.amountSeverity(tt.relative))
		})
	}
}

func TestDetector_AmountAnomaly_NeedsThreeTransactions(t *testing.T) {
	txns := []model.Transaction{
		expense("a", "Cafe", model.CategoryDining, 500, 0),
		expense("b", "Cafe", model.CategoryDining, 90000, 1),
	}

	alerts := NewDetector(DefaultConfig()).Detect(txns, nil)
	assert.Empty(t, ofType(alerts, model.AlertUnusualAmount))
}

func TestDetector_AmountAnomaly_FallsBackToBaseline(t *testing.T) {
	var history []model.Transaction
	for i := 0; i < 20; i++ {
		history = append(history, expense(fmt.Sprintf("h%d", i), "Gas", model.CategoryTransport, int64(5000+i%3*500), i))
	}
	baseline := BuildBaseline(history, day0)

	txns := []model.Transaction{expense("spike", "Gas", model.CategoryTransport, 60000, 30)}

	alerts := ofType(NewDetector(DefaultConfig()).Detect(txns, baseline), model.AlertUnusualAmount)
	require.Len(t, alerts, 1)
	assert.Equal(t, model.SeverityCritical, alerts[0].Severity)
	assert.Equal(t, 1, baseline.Groups())
}

func TestDetector_FrequencyAnomaly(t *testing.T) {
	txns := []model.Transaction{
		expense("1", "Corner Store", model.CategoryShopping, 100, 0),
		expense("2", "corner  store", model.CategoryShopping, 200, 0),
		expense("3", "Corner Store", model.CategoryShopping, 300, 0),
		expense("4", "Corner Store", model.CategoryShopping, 300, 1),
	}

	alerts := ofType(NewDetector(DefaultConfig()).Detect(txns, nil), model.AlertFrequency)
	require.Len(t, alerts, 3)
	for _, a := range alerts {
		assert.Equal(t, model.SeverityMedium, a.Severity)
		assert.NotEqual(t, "4", a.TransactionID)
	}
}

func TestDetector_Duplicates(t *testing.T) {
	txns := []model.Transaction{
		expense("first", "Netflix", model.CategoryEntertainment, 1699, 0),
		expense("second", "NETFLIX", model.CategoryEntertainment, 1699, 0),
		expense("other", "Netflix", model.CategoryEntertainment, 1699, 1),
	}

	alerts := ofType(NewDetector(DefaultConfig()).Detect(txns, nil), model.AlertDuplicateSuspect)
	require.Len(t, alerts, 1)
	assert.Equal(t, "first", alerts[0].TransactionID)
	assert.Equal(t, model.SeverityHigh, alerts[0].Severity)
	assert.Contains(t, alerts[0].Message, "second")
}

func TestDetector_BlankMerchantsAreNotGrouped(t *testing.T) {
	txns := []model.Transaction{
		expense("a", "", model.CategoryShopping, 500, 0),
		expense("b", "", model.CategoryShopping, 1200, 0),
		expense("c", "", model.CategoryShopping, 3000, 0),
		expense("d", "  ", model.CategoryShopping, 1200, 0),
	}

	alerts := NewDetector(DefaultConfig()).Detect(txns, nil)
	assert.Empty(t, ofType(alerts, model.AlertFrequency))
	assert.Empty(t, ofType(alerts, model.AlertDuplicateSuspect))
	assert.Empty(t, ofType(alerts, model.AlertNewMerchant))
}

func TestDetector_NewMerchant(t *testing.T) {
	txns := []model.Transaction{
		expense("1", "Loblaws", model.CategoryGroceries, 5000, 0),
		expense("2", "Loblaws", model.CategoryGroceries, 5200, 7),
		expense("3", "Pottery Barn", model.CategoryShopping, 12000, 9),
	}

	alerts := ofType(NewDetector(DefaultConfig()).Detect(txns, nil), model.AlertNewMerchant)
	require.Len(t, alerts, 1)
	assert.Equal(t, "3", alerts[0].TransactionID)
	assert.Equal(t, model.SeverityLow, alerts[0].Severity)
}

func TestDetector_SortedBySeverity(t *testing.T) {
	txns := []model.Transaction{
		expense("solo", "Museum", model.CategoryEntertainment, 2500, 0),
		expense("dup1", "Spotify", model.CategoryEntertainment, 1099, 2),
		expense("dup2", "Spotify", model.CategoryEntertainment, 1099, 2),
	}

	alerts := NewDetector(DefaultConfig()).Detect(txns, nil)
	require.NotEmpty(t, alerts)
	for i := 1; i < len(alerts); i++ {
		assert.GreaterOrEqual(t, alerts[i-1].Severity, alerts[i].Severity)
	}
	assert.Equal(t, model.AlertDuplicateSuspect, alerts[0].Type)
}

func TestDetector_EmptyInput(t *testing.T) {
	assert.Empty(t, NewDetector(DefaultConfig()).Detect(nil, nil))
}
