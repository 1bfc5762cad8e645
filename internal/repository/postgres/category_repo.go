package postgres

import (
	"context"
	"database/sql"
	"errors"

	"communityevents/internal/domain"
)

type categoryRepository struct {
	DB *sql.DB
}

func NewCategoryRepository(db *sql.DB) domain.CategoryRepository {
	return &categoryRepository{DB: db}
}

func scanCategory(row rowScanner) (*domain.Category, error) {
	c := &domain.Category{}
	var descNull, iconNull sql.NullString
	if err := row.Scan(&c.ID, &c.Name, &descNull, &iconNull); err != nil {
		return nil, err
	}
	if descNull.Valid {
		c.Description = &descNull.String
	}
	if iconNull.Valid {
		c.Icon = &iconNull.String
	}
	return c, nil
}

func (r *categoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	rows, err := conn(ctx, r.DB).QueryContext(ctx, `SELECT id, name, description, icon FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	categories := make([]*domain.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *categoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	c, err := scanCategory(conn(ctx, r.DB).QueryRowContext(ctx,
		`SELECT id, name, description, icon FROM categories WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}
