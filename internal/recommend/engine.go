// Package recommend aggregates the analyzers into a prioritized, explainable
// list of financial planning recommendations.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/Veraticus/spice-planner/internal/debt"
	"github.com/Veraticus/spice-planner/internal/model"
	"github.com/Veraticus/spice-planner/internal/service"
	"github.com/Veraticus/spice-planner/internal/tax"
	"github.com/google/uuid"
)

// ErrMissingUser is returned when a run has no user to attribute recommendations to.
var ErrMissingUser = errors.New("user ID is required")

// MarginalRater reports the combined marginal tax rate for an income.
type MarginalRater interface {
	MarginalRate(income model.Money, jurisdiction string) float64
}

// Config holds the thresholds used by the recommendation rules.
type Config struct {
	BaselineSavingsRate   float64
	SavingsRateAdjustment float64 // applied per age or debt condition
	MinSavingsRate        float64
	MaxSavingsRate        float64
	SavingsRateGap        float64 // optimal must beat current by more than this
	DebtToIncomeLimit     float64
	CashFlowShare         float64 // spending share that draws attention when increasing
	SpendingReduction     float64 // suggested cut for a growing category
	TaxFreeGrowthRate     float64 // assumed yearly return inside the tax-free account
	YoungAge              int
	OlderAge              int
	EmergencyFundMonths   int
	ConsolidationMinDebts int
	SpendingWindowDays    int
}

// DefaultConfig returns the default rule thresholds.
func DefaultConfig() Config {
	return Config{
		BaselineSavingsRate:   0.20,
		SavingsRateAdjustment: 0.05,
		MinSavingsRate:        0.10,
		MaxSavingsRate:        0.30,
		SavingsRateGap:        0.02,
		DebtToIncomeLimit:     0.30,
		CashFlowShare:         0.15,
		SpendingReduction:     0.10,
		TaxFreeGrowthRate:     0.05,
		YoungAge:              30,
		OlderAge:              50,
		EmergencyFundMonths:   6,
		ConsolidationMinDebts: 3,
		SpendingWindowDays:    90,
	}
}

// Dependencies are the collaborators of an Engine.
type Dependencies struct {
	Rates      MarginalRater
	Registered *tax.RegisteredAccountAnalyzer
	Debt       *debt.Optimizer
	Store      service.RecommendationStore
}

// Engine runs the recommendation rules for one profile at a time and keeps
// the results so they can be explained later.
type Engine struct {
	rates      MarginalRater
	registered *tax.RegisteredAccountAnalyzer
	debt       *debt.Optimizer
	store      service.RecommendationStore
	now        func() time.Time
	newID      func() string
	cfg        Config
}

// NewEngine creates an Engine. Nil analyzers are replaced by defaults.
func NewEngine(deps Dependencies, cfg Config) (*Engine, error) {
	if deps.Store == nil {
		return nil, fmt.Errorf("recommendation store is required")
	}
	e := &Engine{
		rates:      deps.Rates,
		registered: deps.Registered,
		debt:       deps.Debt,
		store:      deps.Store,
		cfg:        cfg,
		now:        time.Now,
		newID:      uuid.NewString,
	}
	if e.rates == nil {
		e.rates = tax.NewDefaultCalculator()
	}
	if e.registered == nil {
		e.registered = tax.NewRegisteredAccountAnalyzer(tax.DefaultPlan())
	}
	if e.debt == nil {
		e.debt = debt.NewOptimizer(debt.DefaultConfig())
	}
	return e, nil
}

// rule produces zero or more drafts from a profile.
type rule func(r *run) error

// run carries the request-scoped state of one Generate call.
type run struct {
	profile model.UserFinancialProfile
	now     time.Time
	drafts  []model.Recommendation
}

func (r *run) add(rec model.Recommendation) {
	r.drafts = append(r.drafts, rec)
}

// Generate evaluates every rule for profile, stores the results and returns
// them ordered by priority and then expected impact.
func (e *Engine) Generate(ctx context.Context, userID string, profile model.UserFinancialProfile) ([]model.Recommendation, error) {
	if userID == "" {
		userID = profile.UserID
	}
	if userID == "" {
		return nil, ErrMissingUser
	}

	r := &run{profile: profile, now: e.now()}
	rules := []struct {
		apply rule
		name  string
	}{
		{name: "tax", apply: e.taxRecommendations},
		{name: "debt", apply: e.debtRecommendations},
		{name: "savings", apply: e.savingsRecommendation},
		{name: "emergency_fund", apply: e.emergencyFundRecommendation},
		{name: "goals", apply: e.goalRecommendations},
		{name: "cash_flow", apply: e.cashFlowRecommendations},
	}
	for _, rl := range rules {
		if err := rl.apply(r); err != nil {
			return nil, fmt.Errorf("%s recommendations: %w", rl.name, err)
		}
	}

	for i := range r.drafts {
		r.drafts[i].ID = e.newID()
		r.drafts[i].UserID = userID
		r.drafts[i].CreatedAt = r.now
	}
	Sort(r.drafts)

	if len(r.drafts) > 0 {
		if err := e.store.SaveRecommendations(ctx, r.drafts); err != nil {
			return nil, fmt.Errorf("failed to save recommendations: %w", err)
		}
	}

	slog.Info("Generated recommendations", "user", userID, "count", len(r.drafts))
	return r.drafts, nil
}

// Sort orders recommendations by priority, then by expected impact, both descending.
func Sort(recs []model.Recommendation) {
	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Priority != recs[j].Priority {
			return recs[i].Priority > recs[j].Priority
		}
		return recs[i].Impact.Amount.GreaterThan(recs[j].Impact.Amount)
	})
}

// List returns the stored recommendations of a user.
func (e *Engine) List(ctx context.Context, userID string) ([]model.Recommendation, error) {
	recs, err := e.store.ListRecommendations(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list recommendations: %w", err)
	}
	return recs, nil
}

// MarkCompleted flags a stored recommendation as done.
func (e *Engine) MarkCompleted(ctx context.Context, id string) error {
	if err := e.store.MarkRecommendationCompleted(ctx, id); err != nil {
		return fmt.Errorf("failed to complete recommendation %q: %w", id, err)
	}
	return nil
}
