// Package classification categorizes transactions with a feedback-trainable
// prototype scorer and owns the history model used for anomaly detection.
package classification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Veraticus/spice-planner/internal/anomaly"
	"github.com/Veraticus/spice-planner/internal/common"
	"github.com/Veraticus/spice-planner/internal/model"
	"github.com/Veraticus/spice-planner/internal/service"
	"github.com/google/uuid"
)

// Classification errors.
var (
	ErrInvalidConfidence = errors.New("confidence must be between 0 and 1")
	ErrMissingCategory   = errors.New("category is required")
)

// feedbackWeightFactor converts feedback confidence into prototype weight.
const feedbackWeightFactor = 3.0

// Dependencies are the repositories the engine reads and writes through.
type Dependencies struct {
	Training service.TrainingDataProvider
	Feedback service.UserFeedbackRepository
	History  service.TransactionHistoryProvider
}

// Config tunes the engine.
type Config struct {
	Now      func() time.Time
	Weights  Weights
	Detector anomaly.Config
}

// DefaultConfig returns the standard engine settings.
func DefaultConfig() Config {
	return Config{
		Weights:  DefaultWeights(),
		Detector: anomaly.DefaultConfig(),
		Now:      time.Now,
	}
}

// ProgressFunc is called after each transaction of a batch.
type ProgressFunc func(done, total int)

// Engine is the categorization engine. Categorize and DetectUnusualSpending
// share a read lock; Retrain and ProvideFeedback take it exclusively.
type Engine struct {
	deps       Dependencies
	prototypes *prototypeTable
	baseline   *anomaly.Baseline
	detector   *anomaly.Detector
	cfg        Config
	mu         sync.RWMutex
}

// NewEngine builds an engine and trains it from seed data, feedback and history.
func NewEngine(ctx context.Context, deps Dependencies, cfg Config) (*Engine, error) {
	if deps.Training == nil || deps.Feedback == nil || deps.History == nil {
		return nil, fmt.Errorf("%w: classification engine needs training, feedback and history repositories",
			common.ErrMissingConfig)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	e := &Engine{
		deps:       deps,
		cfg:        cfg,
		prototypes: newPrototypeTable(),
		detector:   anomaly.NewDetector(cfg.Detector),
	}
	if err := e.Retrain(ctx); err != nil {
		return nil, err
	}
	return e, nil
}

// Categorize predicts a category for txn. It never fails; transactions
// without text get a low-confidence degraded result.
func (e *Engine) Categorize(txn model.Transaction) model.CategorizationResult {
	f := Extract(txn)

	e.mu.RLock()
	scores := e.prototypes.score(f, e.cfg.Weights)
	e.mu.RUnlock()

	result := model.CategorizationResult{
		TransactionID: txn.ID,
		CategoryID:    model.CategoryUncategorized,
		Degraded:      len(f.Tokens) == 0,
	}
	if len(scores) == 0 {
		return result
	}

	result.CategoryID = scores[0].CategoryID
	result.Confidence = scores[0].Confidence
	for _, s := range scores[1:] {
		if len(result.Alternatives) == maxAlternatives {
			break
		}
		if s.Confidence <= 0 {
			break
		}
		result.Alternatives = append(result.Alternatives, s)
	}
	return result
}

// CategorizeBatch categorizes txns in order, stopping early if ctx is done.
func (e *Engine) CategorizeBatch(ctx context.Context, txns []model.Transaction, progress ProgressFunc) ([]model.CategorizationResult, error) {
	results := make([]model.CategorizationResult, 0, len(txns))

	for i, txn := range txns {
		select {
		case <-ctx.Done():
			return results, ctx.Err()
		default:
		}

		results = append(results, e.Categorize(txn))
		if progress != nil {
			progress(i+1, len(txns))
		}
	}

	return results, nil
}

// ProvideFeedback records a correction and folds it into the model without a full retrain.
func (e *Engine) ProvideFeedback(ctx context.Context, transactionID, categoryID string, confidence float64) (model.FeedbackRecord, error) {
	if confidence < 0 || confidence > 1 {
		return model.FeedbackRecord{}, fmt.Errorf("%w: got %.2f", ErrInvalidConfidence, confidence)
	}
	if categoryID == "" {
		return model.FeedbackRecord{}, ErrMissingCategory
	}

	txn, err := e.deps.History.GetTransaction(ctx, transactionID)
	if err != nil {
		return model.FeedbackRecord{}, fmt.Errorf("failed to load transaction %s: %w", transactionID, err)
	}

	record := model.FeedbackRecord{
		ID:            uuid.NewString(),
		TransactionID: transactionID,
		CategoryID:    categoryID,
		Confidence:    confidence,
		CreatedAt:     e.cfg.Now(),
	}

	// Save and apply atomically with respect to Retrain.
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.deps.Feedback.SaveFeedback(ctx, record); err != nil {
		return model.FeedbackRecord{}, fmt.Errorf("failed to save feedback: %w", err)
	}
	e.prototypes.add(categoryID, Extract(*txn), feedbackWeightFactor*confidence)

	slog.Debug("Applied categorization feedback",
		"transaction_id", transactionID,
		"category_id", categoryID,
		"confidence", confidence)

	return record, nil
}

// Retrain rebuilds the categorization model from seed data plus all feedback
// and the anomaly baseline from full history. The exclusive lock is held for
// the whole rebuild, so concurrent callers see either the old or the new models.
func (e *Engine) Retrain(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	samples, err := e.deps.Training.TrainingSamples(ctx)
	if err != nil {
		return fmt.Errorf("failed to load training samples: %w", err)
	}
	feedback, err := e.deps.Feedback.GetAllFeedback(ctx)
	if err != nil {
		return fmt.Errorf("failed to load feedback: %w", err)
	}
	history, err := e.deps.History.GetAllTransactions(ctx)
	if err != nil {
		return fmt.Errorf("failed to load transaction history: %w", err)
	}

	byID := make(map[string]model.Transaction, len(history))
	for _, t := range history {
		byID[t.ID] = t
	}

	table := newPrototypeTable()
	for _, s := range samples {
		table.add(s.CategoryID, extractSample(s), 1)
	}

	skipped := 0
	for _, fb := range feedback {
		txn, ok := byID[fb.TransactionID]
		if !ok {
			skipped++
			continue
		}
		table.add(fb.CategoryID, Extract(txn), feedbackWeightFactor*fb.Confidence)
	}
	if skipped > 0 {
		common.LogWarn("Feedback references unknown transactions", common.Fields{"skipped": skipped})
	}

	e.prototypes = table
	e.baseline = anomaly.BuildBaseline(history, e.cfg.Now())

	slog.Info("Retrained categorization model",
		"samples", len(samples),
		"feedback", len(feedback)-skipped,
		"categories", table.size(),
		"baseline_groups", e.baseline.Groups())

	return nil
}

// DetectUnusualSpending scans txns against the current history baseline.
func (e *Engine) DetectUnusualSpending(txns []model.Transaction) []model.UnusualSpendingAlert {
	e.mu.RLock()
	baseline := e.baseline
	e.mu.RUnlock()

	return e.detector.Detect(txns, baseline)
}

// Categories returns the number of categories the model can predict.
func (e *Engine) Categories() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.prototypes.size()
}
