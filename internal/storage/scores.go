package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/fti/internal/model"
)

// SaveScore records a score snapshot. A missing ID or timestamp is filled in.
func (s *SQLiteStorage) SaveScore(ctx context.Context, score *model.FTIScore) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if score == nil {
		return fmt.Errorf("%w: score", ErrNilParameter)
	}
	if err := validateString(score.UserID, "userID"); err != nil {
		return err
	}
	if score.Score < 0 || score.Score > 100 {
		return fmt.Errorf("score %d outside [0,100]", score.Score)
	}

	if score.ID == "" {
		score.ID = uuid.New().String()
	}
	if score.CalculatedAt.IsZero() {
		score.CalculatedAt = time.Now().UTC()
	}

	components, err := json.Marshal(score.Components)
	if err != nil {
		return fmt.Errorf("failed to encode components: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO fti_scores (id, user_id, score, components, calculated_at)
		VALUES (?, ?, ?, ?, ?)
	`, score.ID, score.UserID, score.Score, string(components), toMillis(score.CalculatedAt))
	return classify(err, "failed to save score")
}

// GetScoreHistory returns the newest limit snapshots of userID.
func (s *SQLiteStorage) GetScoreHistory(ctx context.Context, userID string, limit int) ([]model.FTIScore, error) {
	if err := userScope(ctx, userID); err != nil {
		return nil, err
	}
	if err := validateLimit(limit); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, score, components, calculated_at
		FROM fti_scores
		WHERE user_id = ?
		ORDER BY calculated_at DESC, rowid DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, classify(err, "failed to query score history")
	}
	defer func() { _ = rows.Close() }()

	history := make([]model.FTIScore, 0)
	for rows.Next() {
		var (
			score        model.FTIScore
			components   string
			calculatedAt int64
		)
		if err := rows.Scan(&score.ID, &score.UserID, &score.Score, &components, &calculatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan score: %w", err)
		}
		if err := json.Unmarshal([]byte(components), &score.Components); err != nil {
			return nil, fmt.Errorf("failed to parse components: %w", err)
		}
		score.CalculatedAt = fromMillis(calculatedAt)
		history = append(history, score)
	}
	return history, rows.Err()
}
