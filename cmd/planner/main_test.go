package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/spice-planner/internal/common"
	"github.com/Veraticus/spice-planner/internal/model"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlProfile = `user_id: u1
age: 35
jurisdiction: "on"
risk_tolerance: Moderate
time_horizon_years: 30
annual_income: 80000
monthly_income: "5000"
monthly_expenses: 4500.50
contribution_room:
  tax_free_contributed: 2000
accounts:
  - id: chequing
    type: checking
    balance: 3000
  - id: visa
    name: Visa
    type: credit_card
    balance: -5000
    interest_rate: 0.1999
    minimum_payment: 150
goals:
  - id: house
    title: Down payment
    target_amount: 60000
    current_amount: 15000
    target_date: 2028-06-01
    created_date: "2024-01-01"
budget:
  groceries: 600
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadProfile_YAML(t *testing.T) {
	profile, err := loadProfile(writeFile(t, "profile.yaml", yamlProfile))
	require.NoError(t, err)

	assert.Equal(t, "u1", profile.UserID)
	assert.Equal(t, 35, profile.Age)
	assert.Equal(t, "ON", profile.Jurisdiction)
	assert.Equal(t, model.RiskModerate, profile.RiskTolerance)
	assert.Equal(t, model.Dollars(80000), profile.AnnualIncome)
	assert.Equal(t, model.Cents(450050), profile.MonthlyExpenses)

	require.NotNil(t, profile.ContributionRoom)
	assert.Nil(t, profile.ContributionRoom.TaxDeferredContributed)
	require.NotNil(t, profile.ContributionRoom.TaxFreeContributed)
	assert.Equal(t, model.Dollars(2000), *profile.ContributionRoom.TaxFreeContributed)

	require.Len(t, profile.Accounts, 2)
	assert.Equal(t, "chequing", profile.Accounts[0].Name)
	visa := profile.Accounts[1]
	assert.Equal(t, model.AccountCreditCard, visa.Type)
	assert.Equal(t, model.Dollars(5000), visa.Outstanding())
	require.NotNil(t, visa.InterestRate)
	assert.InDelta(t, 0.1999, *visa.InterestRate, 1e-9)
	require.NotNil(t, visa.MinimumPayment)
	assert.Equal(t, model.Dollars(150), *visa.MinimumPayment)

	require.Len(t, profile.Goals, 1)
	goal := profile.Goals[0]
	assert.Equal(t, time.Date(2028, 6, 1, 0, 0, 0, 0, time.UTC), goal.TargetDate)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), goal.CreatedDate)
	assert.Equal(t, model.Dollars(45000), goal.Remaining())

	require.NotNil(t, profile.Budget)
	assert.Equal(t, model.Dollars(600), profile.Budget.Limits[model.CategoryGroceries])
}

func TestLoadProfile_JSON(t *testing.T) {
	profile, err := loadProfile(writeFile(t, "profile.json", `{
		"user_id": "u2",
		"annual_income": "120000",
		"accounts": [{"id": "loc", "type": "loan", "balance": "-8000.25"}]
	}`))
	require.NoError(t, err)

	assert.Equal(t, "u2", profile.UserID)
	assert.Nil(t, profile.ContributionRoom)
	assert.Nil(t, profile.Budget)
	require.Len(t, profile.Accounts, 1)
	assert.Equal(t, model.Cents(-800025), profile.Accounts[0].Balance)
}

func TestLoadProfile_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"missing user", "p.yaml", "age: 30\n"},
		{"bad amount", "p.yaml", "user_id: u1\nannual_income: lots\n"},
		{"bad account type", "p.yaml", "user_id: u1\naccounts:\n  - id: x\n    type: piggy_bank\n"},
		{"bad goal date", "p.yaml", "user_id: u1\ngoals:\n  - id: g\n    target_date: someday\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadProfile(writeFile(t, tt.file, tt.content))
			require.Error(t, err)
			var userErr *common.UserError
			assert.ErrorAs(t, err, &userErr)
		})
	}

	_, err := loadProfile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path     string
		format   string
		expected string
		wantErr  bool
	}{
		{"statement.ofx", formatAuto, formatOFX, false},
		{"statement.QFX", formatAuto, formatOFX, false},
		{"transactions.json", formatAuto, formatPlaid, false},
		{"export.txt", "PLAID", formatPlaid, false},
		{"export.csv", formatAuto, "", true},
		{"export.csv", "csv", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.path+"/"+tt.format, func(t *testing.T) {
			got, err := detectFormat(tt.path, tt.format)
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseAmount(t *testing.T) {
	m, err := parseAmount("80,000.50")
	require.NoError(t, err)
	assert.Equal(t, model.Cents(8000050), m)

	_, err = parseAmount("eighty")
	assert.Error(t, err)
}

func findCommand(cmd *cobra.Command, name string) *cobra.Command {
	for _, sub := range cmd.Commands() {
		if sub.Name() == name {
			return sub
		}
	}
	return nil
}

func TestRootCommands(t *testing.T) {
	for _, name := range []string{
		"tax", "registered", "debt", "recommend", "recommendations", "explain", "complete",
		"categorize", "feedback", "retrain", "anomalies", "categories", "import", "migrate", "version",
	} {
		assert.NotNil(t, findCommand(rootCmd, name), "missing command %s", name)
	}

	categories := findCommand(rootCmd, "categories")
	require.NotNil(t, categories)
	for _, name := range []string{"list", "add", "update", "delete", "merge", "stats", "suggest"} {
		assert.NotNil(t, findCommand(categories, name), "missing categories %s", name)
	}

	categorize := categorizeCmd()
	assert.Equal(t, "false", categorize.Flag("apply").DefValue)
	assert.NotNil(t, categorize.Flag("threshold"))
}

func TestTaxCommand_EndToEnd(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"tax", "80000", "--db", filepath.Join(t.TempDir(), "planner.db"), "--log-level", "error"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "23454.65 CAD")
	assert.Contains(t, out.String(), "Provincial tax (ON)")
}
