package storage

import (
	"context"
	"fmt"

	"github.com/Veraticus/spice-planner/internal/model"
)

// SaveFeedback appends a categorization correction.
func (s *SQLiteStorage) SaveFeedback(ctx context.Context, feedback model.FeedbackRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateFeedback(&feedback); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO feedback (id, transaction_id, category_id, confidence, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, feedback.ID, feedback.TransactionID, feedback.CategoryID, feedback.Confidence, feedback.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to save feedback: %w", err)
	}
	return nil
}

// GetAllFeedback returns feedback in the order it was saved.
func (s *SQLiteStorage) GetAllFeedback(ctx context.Context) ([]model.FeedbackRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, transaction_id, category_id, confidence, created_at
		FROM feedback
		ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []model.FeedbackRecord
	for rows.Next() {
		var f model.FeedbackRecord
		if err := rows.Scan(&f.ID, &f.TransactionID, &f.CategoryID, &f.Confidence, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		records = append(records, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feedback: %w", err)
	}
	return records, nil
}
