package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/spice-planner/internal/classification"
	"github.com/Veraticus/spice-planner/internal/model"
)

// BatchOptions configures categorization of stored transactions.
type BatchOptions struct {
	AutoAcceptThreshold float64 // confidence needed before a prediction is written back
	All                 bool    // include transactions that already have a category
	Apply               bool    // write accepted predictions to storage
}

// DefaultBatchOptions returns the default batch settings.
func DefaultBatchOptions() BatchOptions {
	return BatchOptions{
		AutoAcceptThreshold: 0.6,
	}
}

// BatchSummary contains statistics about a batch run.
type BatchSummary struct {
	Results        []model.CategorizationResult
	Total          int
	Accepted       int
	Applied        int
	NeedsReview    int
	Degraded       int
	ProcessingTime time.Duration
}

// CategorizeStored categorizes stored transactions, by default only those
// without a category, and optionally writes confident predictions back.
func (e *Engine) CategorizeStored(ctx context.Context, opts BatchOptions, progress classification.ProgressFunc) (*BatchSummary, error) {
	startTime := time.Now()

	all, err := e.store.GetAllTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}

	var pending []model.Transaction
	for _, t := range all {
		if opts.All || t.CategoryID == "" || t.CategoryID == model.CategoryUncategorized {
			pending = append(pending, t)
		}
	}

	if len(pending) == 0 {
		slog.Info("No transactions to categorize")
		return &BatchSummary{}, nil
	}

	slog.Info("Starting batch categorization",
		"total_transactions", len(pending),
		"auto_accept_threshold", fmt.Sprintf("%.0f%%", opts.AutoAcceptThreshold*100))

	results, err := e.classifier.CategorizeBatch(ctx, pending, progress)
	if err != nil {
		return nil, fmt.Errorf("batch categorization interrupted: %w", err)
	}

	summary := &BatchSummary{
		Results: results,
		Total:   len(pending),
	}
	for _, r := range results {
		if r.Degraded {
			summary.Degraded++
		}
		if r.Degraded || r.CategoryID == model.CategoryUncategorized || r.Confidence < opts.AutoAcceptThreshold {
			summary.NeedsReview++
			continue
		}
		summary.Accepted++

		if !opts.Apply {
			continue
		}
		if err := e.store.UpdateTransactionCategory(ctx, r.TransactionID, r.CategoryID); err != nil {
			return summary, fmt.Errorf("failed to save category for %s: %w", r.TransactionID, err)
		}
		summary.Applied++
	}
	summary.ProcessingTime = time.Since(startTime)

	slog.Info("Batch categorization complete",
		"accepted", summary.Accepted,
		"applied", summary.Applied,
		"needs_review", summary.NeedsReview,
		"duration", summary.ProcessingTime)

	return summary, nil
}
