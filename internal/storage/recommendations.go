package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Veraticus/spice-planner/internal/common"
	"github.com/Veraticus/spice-planner/internal/model"
)

// SaveRecommendations stores recommendations, replacing any with the same ID.
// The kind-specific detail is kept in its own column so it can be decoded
// back into the right type.
func (s *SQLiteStorage) SaveRecommendations(ctx context.Context, recs []model.Recommendation) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	for i := range recs {
		if err := validateRecommendation(&recs[i]); err != nil {
			return err
		}
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO recommendations (id, user_id, kind, body, detail, completed, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				body = excluded.body,
				detail = excluded.detail,
				completed = excluded.completed
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, r := range recs {
			body, err := json.Marshal(r)
			if err != nil {
				return fmt.Errorf("failed to encode recommendation %s: %w", r.ID, err)
			}
			var detail sql.NullString
			if r.Detail != nil {
				raw, err := json.Marshal(r.Detail)
				if err != nil {
					return fmt.Errorf("failed to encode recommendation detail %s: %w", r.ID, err)
				}
				detail = sql.NullString{String: string(raw), Valid: true}
			}
			if _, err := stmt.ExecContext(ctx,
				r.ID, r.UserID, string(r.Kind), string(body), detail, r.Completed, r.CreatedAt.UTC(),
			); err != nil {
				return fmt.Errorf("failed to save recommendation %s: %w", r.ID, err)
			}
		}
		return nil
	})
}

// GetRecommendation returns one recommendation.
func (s *SQLiteStorage) GetRecommendation(ctx context.Context, id string) (*model.Recommendation, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT kind, body, detail, completed FROM recommendations WHERE id = ?`, id)
	rec, err := scanRecommendation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("recommendation %q: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListRecommendations returns a user's recommendations in the order they were saved.
func (s *SQLiteStorage) ListRecommendations(ctx context.Context, userID string) ([]model.Recommendation, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, body, detail, completed FROM recommendations
		WHERE user_id = ?
		ORDER BY seq
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query recommendations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var recs []model.Recommendation
	for rows.Next() {
		rec, scanErr := scanRecommendation(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recommendations: %w", err)
	}
	return recs, nil
}

// MarkRecommendationCompleted sets the completion flag.
func (s *SQLiteStorage) MarkRecommendationCompleted(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE recommendations SET completed = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to complete recommendation: %w", err)
	}
	return requireRow(result, "recommendation", id)
}

func scanRecommendation(row rowScanner) (model.Recommendation, error) {
	var (
		rec       model.Recommendation
		kind      string
		body      string
		detail    sql.NullString
		completed bool
	)
	if err := row.Scan(&kind, &body, &detail, &completed); err != nil {
		return model.Recommendation{}, err
	}
	if err := json.Unmarshal([]byte(body), &rec); err != nil {
		return model.Recommendation{}, fmt.Errorf("failed to decode recommendation: %w", err)
	}
	rec.Completed = completed
	if detail.Valid {
		d, err := model.DecodeDetail(model.RecommendationKind(kind), []byte(detail.String))
		if err != nil {
			return model.Recommendation{}, err
		}
		rec.Detail = d
	}
	return rec, nil
}
