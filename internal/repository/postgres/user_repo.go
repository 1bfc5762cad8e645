package postgres

import (
	"context"
	"database/sql"
	"errors"

	"communityevents/internal/domain"
)

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) domain.UserRepository {
	return &userRepository{DB: db}
}

const userColumns = `id, name, email, password_hash, salt, phone, profile_picture, description, role, active, created_at, updated_at`

func scanUser(row rowScanner) (*domain.User, error) {
	u := &domain.User{}
	var phone, picture, desc sql.NullString
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Salt, &phone, &picture, &desc,
		&u.Role, &u.Active, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if phone.Valid {
		u.Phone = &phone.String
	}
	if picture.Valid {
		u.ProfilePicture = &picture.String
	}
	if desc.Valid {
		u.Description = &desc.String
	}
	return u, nil
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (name, email, password_hash, salt, role, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	return withSavepoint(ctx, r.DB, "user_insert", func(q DBTX) error {
		err := q.QueryRowContext(ctx, query, u.Name, u.Email, u.PasswordHash, u.Salt, u.Role, u.Active, u.CreatedAt, u.UpdatedAt).Scan(&u.ID)
		if _, ok := uniqueViolation(err); ok {
			return domain.ErrDuplicateEmail
		}
		return err
	})
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return scanUser(conn(ctx, r.DB).QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return scanUser(conn(ctx, r.DB).QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *userRepository) Update(ctx context.Context, u *domain.User) error {
	query := `
		UPDATE users SET name = $1, email = $2, phone = $3, profile_picture = $4, description = $5, updated_at = $6
		WHERE id = $7
	`
	return withSavepoint(ctx, r.DB, "user_update", func(q DBTX) error {
		result, err := q.ExecContext(ctx, query, u.Name, u.Email, u.Phone, u.ProfilePicture, u.Description, u.UpdatedAt, u.ID)
		if err != nil {
			if _, ok := uniqueViolation(err); ok {
				return domain.ErrDuplicateEmail
			}
			return err
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

func (r *userRepository) UpdatePassword(ctx context.Context, id, hash, salt string) error {
	result, err := conn(ctx, r.DB).ExecContext(ctx,
		`UPDATE users SET password_hash = $1, salt = $2, updated_at = NOW() WHERE id = $3`, hash, salt, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	result, err := conn(ctx, r.DB).ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
