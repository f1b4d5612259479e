// Package engine wires the analyzers and repositories into the service facade
// the command line and other callers use.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/spice-planner/internal/category"
	"github.com/Veraticus/spice-planner/internal/classification"
	"github.com/Veraticus/spice-planner/internal/common"
	"github.com/Veraticus/spice-planner/internal/debt"
	"github.com/Veraticus/spice-planner/internal/model"
	"github.com/Veraticus/spice-planner/internal/recommend"
	"github.com/Veraticus/spice-planner/internal/service"
	"github.com/Veraticus/spice-planner/internal/tax"
)

// ErrNilStorage is returned when the engine is built without a store.
var ErrNilStorage = errors.New("storage is required")

// Config holds configuration options for the engine.
type Config struct {
	Recommend      recommend.Config
	Plan           tax.Plan
	Jurisdiction   string
	DebtMethod     model.DebtMethod // empty lets the default selector choose
	Debt           debt.Config
	Classification classification.Config
	TaxCacheTTL    time.Duration
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Jurisdiction:   string(tax.DefaultJurisdiction),
		Plan:           tax.DefaultPlan(),
		TaxCacheTTL:    15 * time.Minute,
		Classification: classification.DefaultConfig(),
		Debt:           debt.DefaultConfig(),
		Recommend:      recommend.DefaultConfig(),
	}
}

// Engine exposes the analytics operations over one store.
type Engine struct {
	store       service.Storage
	calculator  *tax.Calculator
	taxes       *tax.CachedCalculator
	registered  *tax.RegisteredAccountAnalyzer
	classifier  *classification.Engine
	categories  *category.Manager
	debt        *debt.Optimizer
	recommender *recommend.Engine
	cfg         Config
}

// New creates an engine over store and trains the categorization model.
// Callers must Close the engine; the store is left open.
func New(ctx context.Context, store service.Storage, cfg Config) (*Engine, error) {
	if store == nil {
		return nil, ErrNilStorage
	}

	schedule := tax.DefaultSchedule()
	if cfg.Jurisdiction != "" {
		j := tax.NormalizeJurisdiction(cfg.Jurisdiction)
		if _, ok := schedule.Jurisdictions[j]; !ok {
			return nil, fmt.Errorf("%w: unsupported jurisdiction %q", common.ErrInvalidConfig, cfg.Jurisdiction)
		}
		schedule.Default = j
	}
	calculator, err := tax.NewCalculator(schedule)
	if err != nil {
		return nil, fmt.Errorf("failed to build tax calculator: %w", err)
	}

	classifier, err := classification.NewEngine(ctx, classification.Dependencies{
		Training: classification.NewDefaultTrainingData(),
		Feedback: store,
		History:  store,
	}, cfg.Classification)
	if err != nil {
		return nil, fmt.Errorf("failed to build categorization engine: %w", err)
	}

	optimizer := debt.NewOptimizer(cfg.Debt)
	if cfg.DebtMethod != "" {
		optimizer = optimizer.WithSelector(debt.FixedSelector(cfg.DebtMethod))
	}
	registered := tax.NewRegisteredAccountAnalyzer(cfg.Plan)

	recommender, err := recommend.NewEngine(recommend.Dependencies{
		Rates:      calculator,
		Registered: registered,
		Debt:       optimizer,
		Store:      store,
	}, cfg.Recommend)
	if err != nil {
		return nil, fmt.Errorf("failed to build recommendation engine: %w", err)
	}

	e := &Engine{
		store:       store,
		calculator:  calculator,
		taxes:       tax.NewCachedCalculator(calculator, cfg.TaxCacheTTL),
		registered:  registered,
		classifier:  classifier,
		categories:  category.NewManager(store, store, store),
		debt:        optimizer,
		recommender: recommender,
		cfg:         cfg,
	}

	slog.Debug("Engine ready",
		"jurisdiction", schedule.Default,
		"categories", classifier.Categories())

	return e, nil
}

// Close stops background work owned by the engine.
func (e *Engine) Close() {
	e.taxes.Close()
}

// Categories returns the category manager.
func (e *Engine) Categories() *category.Manager {
	return e.categories
}

// CalculateTaxes computes the tax breakdown for a gross annual income.
func (e *Engine) CalculateTaxes(ctx context.Context, income model.Money, jurisdiction string) (tax.Breakdown, error) {
	if err := ctx.Err(); err != nil {
		return tax.Breakdown{}, err
	}
	if jurisdiction == "" {
		jurisdiction = e.cfg.Jurisdiction
	}
	return e.taxes.Calculate(income, jurisdiction)
}

// MarginalRate returns the combined marginal rate at income.
func (e *Engine) MarginalRate(income model.Money, jurisdiction string) float64 {
	if jurisdiction == "" {
		jurisdiction = e.cfg.Jurisdiction
	}
	return e.calculator.MarginalRate(income, jurisdiction)
}

// AnalyzeRegisteredAccounts reports contribution room for both account classes.
func (e *Engine) AnalyzeRegisteredAccounts(ctx context.Context, income model.Money, room *model.ContributionRoom) (tax.RegisteredAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return tax.RegisteredAnalysis{}, err
	}
	return e.registered.Analyze(income, room)
}

// OptimizeDebtPayoff projects every payoff method for the profile's debts.
func (e *Engine) OptimizeDebtPayoff(ctx context.Context, profile model.UserFinancialProfile) (debt.Result, error) {
	if err := ctx.Err(); err != nil {
		return debt.Result{}, err
	}
	return e.debt.Optimize(profile)
}

// GenerateFinancialPlanningRecommendations runs every recommendation rule for
// profile and stores the results. When the profile carries neither a spending
// snapshot nor transactions, recent stored transactions are used.
func (e *Engine) GenerateFinancialPlanningRecommendations(ctx context.Context, userID string, profile model.UserFinancialProfile) ([]model.Recommendation, error) {
	if profile.Spending == nil && len(profile.Transactions) == 0 {
		window := model.LastDays(time.Now(), 2*e.cfg.Recommend.SpendingWindowDays)
		txns, err := e.store.GetTransactionsInRange(ctx, window)
		if err != nil {
			return nil, fmt.Errorf("failed to load recent transactions: %w", err)
		}
		profile.Transactions = txns
	}
	return e.recommender.Generate(ctx, userID, profile)
}

// Explain describes a stored recommendation.
func (e *Engine) Explain(ctx context.Context, recommendationID string) (recommend.Explanation, error) {
	return e.recommender.Explain(ctx, recommendationID)
}

// ListRecommendations returns the stored recommendations of a user.
func (e *Engine) ListRecommendations(ctx context.Context, userID string) ([]model.Recommendation, error) {
	return e.recommender.List(ctx, userID)
}

// CompleteRecommendation marks a stored recommendation as done.
func (e *Engine) CompleteRecommendation(ctx context.Context, recommendationID string) error {
	return e.recommender.MarkCompleted(ctx, recommendationID)
}

// Categorize predicts a category for one transaction.
func (e *Engine) Categorize(ctx context.Context, txn model.Transaction) (model.CategorizationResult, error) {
	if err := ctx.Err(); err != nil {
		return model.CategorizationResult{}, err
	}
	return e.classifier.Categorize(txn), nil
}

// CategorizeBatch categorizes txns in order.
func (e *Engine) CategorizeBatch(ctx context.Context, txns []model.Transaction, progress classification.ProgressFunc) ([]model.CategorizationResult, error) {
	return e.classifier.CategorizeBatch(ctx, txns, progress)
}

// ProvideFeedback records a user's correction, applies it to the stored
// transaction and folds it into the model. The transaction is written first;
// if the model rejects the feedback the previous category is restored.
func (e *Engine) ProvideFeedback(ctx context.Context, transactionID, categoryID string, confidence float64) (model.FeedbackRecord, error) {
	if _, err := e.categories.Get(ctx, categoryID); err != nil {
		return model.FeedbackRecord{}, err
	}
	previous, err := e.store.GetTransaction(ctx, transactionID)
	if err != nil {
		return model.FeedbackRecord{}, fmt.Errorf("failed to load transaction %s: %w", transactionID, err)
	}
	if err := e.store.UpdateTransactionCategory(ctx, transactionID, categoryID); err != nil {
		return model.FeedbackRecord{}, fmt.Errorf("failed to update transaction category: %w", err)
	}

	record, err := e.classifier.ProvideFeedback(ctx, transactionID, categoryID, confidence)
	if err != nil {
		if restoreErr := e.store.UpdateTransactionCategory(ctx, transactionID, previous.CategoryID); restoreErr != nil {
			slog.Error("Failed to restore transaction category",
				"transaction_id", transactionID,
				"category_id", previous.CategoryID,
				"error", restoreErr)
		}
		return model.FeedbackRecord{}, err
	}
	return record, nil
}

// Retrain rebuilds the categorization model and anomaly baseline from storage.
func (e *Engine) Retrain(ctx context.Context) error {
	return e.classifier.Retrain(ctx)
}

// DetectUnusualSpending scans txns against the history baseline.
func (e *Engine) DetectUnusualSpending(ctx context.Context, txns []model.Transaction) ([]model.UnusualSpendingAlert, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.classifier.DetectUnusualSpending(txns), nil
}

// DetectUnusualSpendingIn scans the stored transactions inside window.
func (e *Engine) DetectUnusualSpendingIn(ctx context.Context, window model.DateRange) ([]model.UnusualSpendingAlert, error) {
	txns, err := e.store.GetTransactionsInRange(ctx, window)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	if len(txns) == 0 {
		return nil, fmt.Errorf("%w in %s", common.ErrNoTransactions, window)
	}
	return e.DetectUnusualSpending(ctx, txns)
}

// ImportTransactions saves txns, skipping ones already stored, and reports how
// many were new.
func (e *Engine) ImportTransactions(ctx context.Context, txns []model.Transaction) (int, error) {
	if len(txns) == 0 {
		return 0, common.ErrEmptyStatement
	}
	before, err := e.store.GetAllTransactions(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	if err := e.store.SaveTransactions(ctx, txns); err != nil {
		return 0, fmt.Errorf("failed to save transactions: %w", err)
	}
	after, err := e.store.GetAllTransactions(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	added := len(after) - len(before)
	common.LogInfo("Imported transactions", common.Fields{
		"received":   len(txns),
		"added":      added,
		"duplicates": len(txns) - added,
	})
	return added, nil
}
