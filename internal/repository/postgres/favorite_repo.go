package postgres

import (
	"context"
	"database/sql"

	"communityevents/internal/domain"
)

type favoriteRepository struct {
	DB *sql.DB
}

func NewFavoriteRepository(db *sql.DB) domain.FavoriteRepository {
	return &favoriteRepository{DB: db}
}

func (r *favoriteRepository) Create(ctx context.Context, f *domain.Favorite) error {
	query := `
		INSERT INTO favorites (event_id, user_id, created_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	return withSavepoint(ctx, r.DB, "favorite_insert", func(q DBTX) error {
		err := q.QueryRowContext(ctx, query, f.EventID, f.UserID, f.CreatedAt).Scan(&f.ID)
		if _, ok := uniqueViolation(err); ok {
			return domain.NewError(domain.ErrConflict, "event already in favorites")
		}
		return missingReference(err)
	})
}

func (r *favoriteRepository) Delete(ctx context.Context, eventID, userID string) error {
	result, err := conn(ctx, r.DB).ExecContext(ctx, `DELETE FROM favorites WHERE event_id = $1 AND user_id = $2`, eventID, userID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.NewError(domain.ErrNotFound, "event is not in favorites")
	}
	return nil
}

func (r *favoriteRepository) Exists(ctx context.Context, eventID, userID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM favorites WHERE event_id = $1 AND user_id = $2)`
	err := conn(ctx, r.DB).QueryRowContext(ctx, query, eventID, userID).Scan(&exists)
	return exists, err
}

func (r *favoriteRepository) CountByEvent(ctx context.Context, eventID string) (int64, error) {
	var n int64
	err := conn(ctx, r.DB).QueryRowContext(ctx, `SELECT COUNT(*) FROM favorites WHERE event_id = $1`, eventID).Scan(&n)
	return n, err
}
