package postgres

import (
	"context"
	"database/sql"
	"errors"

	"communityevents/internal/domain"
)

type commentRepository struct {
	DB *sql.DB
}

func NewCommentRepository(db *sql.DB) domain.CommentRepository {
	return &commentRepository{DB: db}
}

const commentColumns = `c.id, c.event_id, c.user_id, COALESCE(u.name, ''), c.content, c.created_at, c.updated_at`

func (r *commentRepository) Create(ctx context.Context, c *domain.Comment) error {
	query := `
		INSERT INTO comments (event_id, user_id, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := conn(ctx, r.DB).QueryRowContext(ctx, query, c.EventID, c.UserID, c.Content, c.CreatedAt, c.UpdatedAt).Scan(&c.ID)
	return missingReference(err)
}

func (r *commentRepository) GetByID(ctx context.Context, id string) (*domain.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments c LEFT JOIN users u ON u.id = c.user_id WHERE c.id = $1`
	c := &domain.Comment{}
	err := conn(ctx, r.DB).QueryRowContext(ctx, query, id).
		Scan(&c.ID, &c.EventID, &c.UserID, &c.UserName, &c.Content, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *commentRepository) Update(ctx context.Context, c *domain.Comment) error {
	result, err := conn(ctx, r.DB).ExecContext(ctx,
		`UPDATE comments SET content = $1, updated_at = $2 WHERE id = $3`, c.Content, c.UpdatedAt, c.ID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *commentRepository) Delete(ctx context.Context, id string) error {
	result, err := conn(ctx, r.DB).ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *commentRepository) ListByEvent(ctx context.Context, eventID string) ([]*domain.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments c LEFT JOIN users u ON u.id = c.user_id
		WHERE c.event_id = $1
		ORDER BY c.created_at DESC, c.id DESC`
	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	comments := make([]*domain.Comment, 0)
	for rows.Next() {
		c := &domain.Comment{}
		if err := rows.Scan(&c.ID, &c.EventID, &c.UserID, &c.UserName, &c.Content, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (r *commentRepository) CountByEvent(ctx context.Context, eventID string) (int64, error) {
	var n int64
	err := conn(ctx, r.DB).QueryRowContext(ctx, `SELECT COUNT(*) FROM comments WHERE event_id = $1`, eventID).Scan(&n)
	return n, err
}
