package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/Veraticus/spice-planner/internal/common"
	"github.com/Veraticus/spice-planner/internal/engine"
	"github.com/Veraticus/spice-planner/internal/model"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Logging holds the logger settings.
type Logging struct {
	Level  string
	Format string
}

// Config is the resolved application configuration.
type Config struct {
	Logging      Logging
	DatabasePath string
	Engine       engine.Config
	Batch        engine.BatchOptions
}

// SetDefaults registers the default value of every key Load reads.
func SetDefaults(v *viper.Viper) {
	e := engine.DefaultConfig()
	p := e.Plan

	v.SetDefault("database.path", DefaultDatabasePath)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("tax.jurisdiction", e.Jurisdiction)
	v.SetDefault("tax.cache_ttl", e.TaxCacheTTL)

	v.SetDefault("registered.tax_deferred.rate_cap", p.TaxDeferredRateCap.String())
	v.SetDefault("registered.tax_deferred.absolute_cap", p.TaxDeferredAbsoluteCap.Decimal().String())
	v.SetDefault("registered.tax_deferred.materiality", p.TaxDeferredMateriality.Decimal().String())
	v.SetDefault("registered.tax_free.annual_cap", p.TaxFreeAnnualCap.Decimal().String())
	v.SetDefault("registered.tax_free.recommended_limit", p.TaxFreeRecommendedLimit.Decimal().String())
	v.SetDefault("registered.tax_free.materiality", p.TaxFreeMateriality.Decimal().String())
	v.SetDefault("registered.assumed_marginal_rate", p.AssumedMarginalRate.String())
	v.SetDefault("registered.recommended_income_share", p.RecommendedIncomeShare.String())
	v.SetDefault("registered.assumed_contribution_share", p.AssumedContributionShare.String())

	w := e.Classification.Weights
	v.SetDefault("categorization.weights.token_overlap", w.TokenOverlap)
	v.SetDefault("categorization.weights.amount_closeness", w.AmountCloseness)
	v.SetDefault("categorization.weights.recurring", w.Recurring)
	v.SetDefault("categorization.auto_accept", engine.DefaultBatchOptions().AutoAcceptThreshold)

	v.SetDefault("debt.method", "")
	v.SetDefault("debt.extra_funds_share", e.Debt.ExtraFundsShare)

	v.SetDefault("recommend.emergency_fund_months", e.Recommend.EmergencyFundMonths)
	v.SetDefault("recommend.spending_window_days", e.Recommend.SpendingWindowDays)
}

// Load resolves the configuration from v, applying defaults for unset keys.
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)

	cfg := Config{
		DatabasePath: ExpandPath(v.GetString("database.path")),
		Logging: Logging{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
		},
		Engine: engine.DefaultConfig(),
		Batch:  engine.DefaultBatchOptions(),
	}
	if _, err := common.ParseLevel(cfg.Logging.Level); err != nil {
		return Config{}, err
	}
	if f := cfg.Logging.Format; f != "console" && f != "json" {
		return Config{}, fmt.Errorf("%w: unknown log format %q", common.ErrInvalidConfig, f)
	}

	e := &cfg.Engine
	e.Jurisdiction = strings.ToUpper(strings.TrimSpace(v.GetString("tax.jurisdiction")))
	e.TaxCacheTTL = v.GetDuration("tax.cache_ttl")

	r := reader{v: v}
	e.Plan.TaxDeferredRateCap = r.decimal("registered.tax_deferred.rate_cap")
	e.Plan.TaxDeferredAbsoluteCap = r.money("registered.tax_deferred.absolute_cap")
	e.Plan.TaxDeferredMateriality = r.money("registered.tax_deferred.materiality")
	e.Plan.TaxFreeAnnualCap = r.money("registered.tax_free.annual_cap")
	e.Plan.TaxFreeRecommendedLimit = r.money("registered.tax_free.recommended_limit")
	e.Plan.TaxFreeMateriality = r.money("registered.tax_free.materiality")
	e.Plan.AssumedMarginalRate = r.decimal("registered.assumed_marginal_rate")
	e.Plan.RecommendedIncomeShare = r.decimal("registered.recommended_income_share")
	e.Plan.AssumedContributionShare = r.decimal("registered.assumed_contribution_share")
	if r.err != nil {
		return Config{}, r.err
	}

	e.Classification.Weights.TokenOverlap = v.GetFloat64("categorization.weights.token_overlap")
	e.Classification.Weights.AmountCloseness = v.GetFloat64("categorization.weights.amount_closeness")
	e.Classification.Weights.Recurring = v.GetFloat64("categorization.weights.recurring")
	w := e.Classification.Weights
	if sum := w.TokenOverlap + w.AmountCloseness + w.Recurring; math.Abs(sum-1) > 1e-6 {
		return Config{}, fmt.Errorf("%w: categorization weights sum to %.3f, want 1", common.ErrInvalidConfig, sum)
	}
	cfg.Batch.AutoAcceptThreshold = v.GetFloat64("categorization.auto_accept")

	if m := model.DebtMethod(strings.ToLower(v.GetString("debt.method"))); m != "" {
		switch m {
		case model.DebtAvalanche, model.DebtSnowball, model.DebtHybrid:
			e.DebtMethod = m
		default:
			return Config{}, fmt.Errorf("%w: unknown debt method %q", common.ErrInvalidConfig, m)
		}
	}
	e.Debt.ExtraFundsShare = v.GetFloat64("debt.extra_funds_share")

	e.Recommend.EmergencyFundMonths = v.GetInt("recommend.emergency_fund_months")
	e.Recommend.SpendingWindowDays = v.GetInt("recommend.spending_window_days")
	if e.Recommend.EmergencyFundMonths < 1 || e.Recommend.SpendingWindowDays < 1 {
		return Config{}, fmt.Errorf("%w: recommendation windows must be positive", common.ErrInvalidConfig)
	}

	return cfg, nil
}

// reader parses decimal-valued keys, keeping the first error.
type reader struct {
	v   *viper.Viper
	err error
}

func (r *reader) decimal(key string) decimal.Decimal {
	d, err := decimal.NewFromString(r.v.GetString(key))
	if err != nil && r.err == nil {
		r.err = fmt.Errorf("%w: %s: %v", common.ErrInvalidConfig, key, err)
	}
	return d
}

func (r *reader) money(key string) model.Money {
	return model.MoneyFromDecimal(r.decimal(key), model.DefaultCurrency)
}
