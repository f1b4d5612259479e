// Package storage provides the persistence layer for the planner.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/spice-planner/internal/model"
)

// Validation errors.
var (
	ErrNilContext            = errors.New("context cannot be nil")
	ErrEmptyString           = errors.New("string parameter cannot be empty")
	ErrNilParameter          = errors.New("parameter cannot be nil")
	ErrEmptySlice            = errors.New("slice cannot be empty")
	ErrInvalidTransaction    = errors.New("invalid transaction")
	ErrInvalidCategory       = errors.New("invalid category")
	ErrInvalidFeedback       = errors.New("invalid feedback")
	ErrInvalidRecommendation = errors.New("invalid recommendation")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateTransactions validates a slice of transactions.
func validateTransactions(transactions []model.Transaction) error {
	if transactions == nil {
		return fmt.Errorf("%w: transactions", ErrNilParameter)
	}
	if len(transactions) == 0 {
		return fmt.Errorf("%w: transactions", ErrEmptySlice)
	}

	for i := range transactions {
		if err := validateTransaction(&transactions[i]); err != nil {
			return fmt.Errorf("transaction at index %d: %w", i, err)
		}
	}
	return nil
}

// validateTransaction validates a single transaction. Description is optional.
func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if txn.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidTransaction)
	}
	if txn.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidTransaction)
	}
	if txn.AccountID == "" {
		return fmt.Errorf("%w: missing account ID", ErrInvalidTransaction)
	}
	return nil
}

// validateCategory validates a category before it is written.
func validateCategory(cat *model.Category) error {
	if cat == nil {
		return fmt.Errorf("%w: category", ErrNilParameter)
	}
	if strings.TrimSpace(cat.ID) == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidCategory)
	}
	if strings.TrimSpace(cat.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidCategory)
	}
	if cat.ParentID == cat.ID {
		return fmt.Errorf("%w: category cannot be its own parent", ErrInvalidCategory)
	}
	return nil
}

// validateFeedback validates a feedback record.
func validateFeedback(fb *model.FeedbackRecord) error {
	if fb == nil {
		return fmt.Errorf("%w: feedback", ErrNilParameter)
	}
	if fb.ID == "" || fb.TransactionID == "" || fb.CategoryID == "" {
		return fmt.Errorf("%w: ID, transaction and category are required", ErrInvalidFeedback)
	}
	if fb.Confidence < 0 || fb.Confidence > 1 {
		return fmt.Errorf("%w: confidence must be between 0 and 1", ErrInvalidFeedback)
	}
	return nil
}

// validateRecommendation validates a recommendation before it is stored.
func validateRecommendation(rec *model.Recommendation) error {
	if rec == nil {
		return fmt.Errorf("%w: recommendation", ErrNilParameter)
	}
	if rec.ID == "" || rec.UserID == "" {
		return fmt.Errorf("%w: ID and user are required", ErrInvalidRecommendation)
	}
	if rec.Detail != nil && rec.Detail.Kind() != rec.Kind {
		return fmt.Errorf("%w: detail kind %s does not match %s", ErrInvalidRecommendation, rec.Detail.Kind(), rec.Kind)
	}
	return nil
}
