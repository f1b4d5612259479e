package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/spice-planner/internal/common"
	"github.com/Veraticus/spice-planner/internal/model"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(viper.New())
	require.NoError(t, err)

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".local/share/planner/planner.db"), cfg.DatabasePath)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)

	assert.Equal(t, "ON", cfg.Engine.Jurisdiction)
	assert.Equal(t, 15*time.Minute, cfg.Engine.TaxCacheTTL)
	assert.Equal(t, model.Dollars(31560), cfg.Engine.Plan.TaxDeferredAbsoluteCap)
	assert.Equal(t, model.Dollars(7000), cfg.Engine.Plan.TaxFreeAnnualCap)
	assert.True(t, decimal.RequireFromString("0.18").Equal(cfg.Engine.Plan.TaxDeferredRateCap))
	assert.Empty(t, cfg.Engine.DebtMethod)
	assert.InDelta(t, 0.6, cfg.Batch.AutoAcceptThreshold, 1e-9)
	assert.Equal(t, 6, cfg.Engine.Recommend.EmergencyFundMonths)
}

func TestLoad_FromYAML(t *testing.T) {
	yaml := `
database:
  path: /tmp/planner-test.db
tax:
  jurisdiction: bc
  cache_ttl: 1m
registered:
  tax_free:
    annual_cap: "6500"
debt:
  method: Avalanche
recommend:
  emergency_fund_months: 3
`
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(yaml)))

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/planner-test.db", cfg.DatabasePath)
	assert.Equal(t, "BC", cfg.Engine.Jurisdiction)
	assert.Equal(t, time.Minute, cfg.Engine.TaxCacheTTL)
	assert.Equal(t, model.Dollars(6500), cfg.Engine.Plan.TaxFreeAnnualCap)
	assert.Equal(t, model.DebtAvalanche, cfg.Engine.DebtMethod)
	assert.Equal(t, 3, cfg.Engine.Recommend.EmergencyFundMonths)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value any
	}{
		{name: "log level", key: "logging.level", value: "loud"},
		{name: "log format", key: "logging.format", value: "xml"},
		{name: "decimal", key: "registered.assumed_marginal_rate", value: "thirty"},
		{name: "weights", key: "categorization.weights.recurring", value: 0.5},
		{name: "debt method", key: "debt.method", value: "lottery"},
		{name: "window", key: "recommend.spending_window_days", value: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			v.Set(tt.key, tt.value)
			_, err := Load(v)
			assert.ErrorIs(t, err, common.ErrInvalidConfig)
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("PLANNER_TEST_DIR", "/data")

	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: ""},
		{in: "~", want: home},
		{in: "~/planner.db", want: filepath.Join(home, "planner.db")},
		{in: "$PLANNER_TEST_DIR/planner.db", want: "/data/planner.db"},
		{in: "/abs/planner.db", want: "/abs/planner.db"},
		{in: "/abs/cache/../planner.db", want: "/abs/planner.db"},
		{in: ":memory:", want: ":memory:"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExpandPath(tt.in), tt.in)
	}
}
