package postgres

import (
	"context"
	"database/sql"

	"communityevents/internal/domain"
)

type ratingRepository struct {
	DB *sql.DB
}

func NewRatingRepository(db *sql.DB) domain.RatingRepository {
	return &ratingRepository{DB: db}
}

// Upsert relies on the (event_id, user_id) unique key so concurrent submissions
// from the same user converge on one row. The rater's name is returned with the row.
func (r *ratingRepository) Upsert(ctx context.Context, rt *domain.Rating) error {
	query := `
		WITH upserted AS (
			INSERT INTO ratings (event_id, user_id, score, comment, created_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (event_id, user_id) DO UPDATE SET score = EXCLUDED.score, comment = EXCLUDED.comment
			RETURNING id, user_id, created_at
		)
		SELECT up.id, up.created_at, COALESCE(u.name, '')
		FROM upserted up
		LEFT JOIN users u ON u.id = up.user_id
	`
	err := conn(ctx, r.DB).QueryRowContext(ctx, query, rt.EventID, rt.UserID, rt.Score, rt.Comment, rt.CreatedAt).
		Scan(&rt.ID, &rt.CreatedAt, &rt.UserName)
	return missingReference(err)
}

func (r *ratingRepository) Delete(ctx context.Context, eventID, userID string) error {
	result, err := conn(ctx, r.DB).ExecContext(ctx, `DELETE FROM ratings WHERE event_id = $1 AND user_id = $2`, eventID, userID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ratingRepository) ListByEvent(ctx context.Context, eventID string) ([]*domain.Rating, error) {
	query := `
		SELECT r.id, r.event_id, r.user_id, COALESCE(u.name, ''), r.score, r.comment, r.created_at
		FROM ratings r LEFT JOIN users u ON u.id = r.user_id
		WHERE r.event_id = $1
		ORDER BY r.created_at DESC, r.id DESC
	`
	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ratings := make([]*domain.Rating, 0)
	for rows.Next() {
		rt := &domain.Rating{}
		var commentNull sql.NullString
		if err := rows.Scan(&rt.ID, &rt.EventID, &rt.UserID, &rt.UserName, &rt.Score, &commentNull, &rt.CreatedAt); err != nil {
			return nil, err
		}
		if commentNull.Valid {
			rt.Comment = &commentNull.String
		}
		ratings = append(ratings, rt)
	}
	return ratings, rows.Err()
}

func (r *ratingRepository) Summary(ctx context.Context, eventID string) (*domain.RatingSummary, error) {
	s := &domain.RatingSummary{}
	query := `SELECT COUNT(*), COALESCE(AVG(score), 0)::float8 FROM ratings WHERE event_id = $1`
	if err := conn(ctx, r.DB).QueryRowContext(ctx, query, eventID).Scan(&s.Count, &s.Average); err != nil {
		return nil, err
	}
	return s, nil
}
