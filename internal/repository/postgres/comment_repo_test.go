package postgres

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"communityevents/internal/domain"
)

var commentRowColumns = []string{"id", "event_id", "user_id", "name", "content", "created_at", "updated_at"}

func TestCommentRepository_CreateAndGet(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO comments`).
		WithArgs("ev-1", "user-1", "See you there", t0, t0).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("c-1"))
	mock.ExpectQuery(`FROM comments c LEFT JOIN users u ON u.id = c.user_id WHERE c.id = \$1`).
		WithArgs("c-1").
		WillReturnRows(sqlmock.NewRows(commentRowColumns).AddRow("c-1", "ev-1", "user-1", "Uma", "See you there", t0, t0))
	mock.ExpectQuery(`WHERE c.id = \$1`).
		WithArgs("c-2").
		WillReturnError(sql.ErrNoRows)

	repo := NewCommentRepository(db)
	ctx := context.Background()
	c := &domain.Comment{EventID: "ev-1", UserID: "user-1", Content: "See you there", CreatedAt: t0, UpdatedAt: t0}
	require.NoError(t, repo.Create(ctx, c))
	assert.Equal(t, "c-1", c.ID)

	got, err := repo.GetByID(ctx, "c-1")
	require.NoError(t, err)
	assert.Equal(t, "Uma", got.UserName)

	_, err = repo.GetByID(ctx, "c-2")
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentRepository_UpdateDelete(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		wantErr  error
	}{
		{name: "exists", affected: 1},
		{name: "missing", affected: 0, wantErr: domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			mock.ExpectExec(`UPDATE comments SET content = \$1, updated_at = \$2 WHERE id = \$3`).
				WithArgs("edited", t1, "c-1").
				WillReturnResult(sqlmock.NewResult(0, tt.affected))
			mock.ExpectExec(`DELETE FROM comments WHERE id = \$1`).
				WithArgs("c-1").
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			repo := NewCommentRepository(db)
			ctx := context.Background()
			updateErr := repo.Update(ctx, &domain.Comment{ID: "c-1", Content: "edited", UpdatedAt: t1})
			deleteErr := repo.Delete(ctx, "c-1")
			if tt.wantErr != nil {
				require.ErrorIs(t, updateErr, tt.wantErr)
				require.ErrorIs(t, deleteErr, tt.wantErr)
			} else {
				require.NoError(t, updateErr)
				require.NoError(t, deleteErr)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCommentRepository_ListByEvent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`WHERE c.event_id = \$1 ORDER BY c.created_at DESC, c.id DESC`).
		WithArgs("ev-1").
		WillReturnRows(sqlmock.NewRows(commentRowColumns).
			AddRow("c-2", "ev-1", "user-2", "Bo", "second", t1, t1).
			AddRow("c-1", "ev-1", "user-1", "Al", "first", t0, t0))

	comments, err := NewCommentRepository(db).ListByEvent(context.Background(), "ev-1")
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "c-2", comments[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}
