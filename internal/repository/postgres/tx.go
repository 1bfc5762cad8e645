package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"communityevents/internal/domain"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type txKey struct{}

type txManager struct {
	DB *sql.DB
}

// NewTxManager returns a Transactor backed by database/sql transactions.
func NewTxManager(db *sql.DB) domain.Transactor {
	return &txManager{DB: db}
}

// WithinTx begins a transaction, stores it in the context handed to fn and commits
// when fn succeeds. A context that already carries a transaction is reused as is.
func (m *txManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, ok := txFromContext(ctx); ok {
		return fn(ctx)
	}
	tx, err := m.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func txFromContext(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(*sql.Tx)
	return tx, ok
}

// conn returns the transaction carried by ctx, or db when there is none.
func conn(ctx context.Context, db *sql.DB) DBTX {
	if tx, ok := txFromContext(ctx); ok {
		return tx
	}
	return db
}

// withSavepoint runs fn so that a failing statement does not abort the surrounding
// transaction. Outside a transaction fn simply runs against db.
func withSavepoint(ctx context.Context, db *sql.DB, name string, fn func(q DBTX) error) error {
	tx, ok := txFromContext(ctx)
	if !ok {
		return fn(db)
	}
	if _, err := tx.ExecContext(ctx, "SAVEPOINT "+name); err != nil {
		return fmt.Errorf("savepoint: %w", err)
	}
	if err := fn(tx); err != nil {
		if _, rbErr := tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+name); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback to savepoint: %w", rbErr))
		}
		return err
	}
	if _, err := tx.ExecContext(ctx, "RELEASE SAVEPOINT "+name); err != nil {
		return fmt.Errorf("release savepoint: %w", err)
	}
	return nil
}

// uniqueViolation reports whether err is a unique constraint violation and returns it.
func uniqueViolation(err error) (*pq.Error, bool) {
	var perr *pq.Error
	if errors.As(err, &perr) && perr.Code == "23505" {
		return perr, true
	}
	return nil, false
}

// missingReference turns a foreign key violation into a NotFound naming the vanished
// row, typically a user who deleted their account while holding a valid token.
func missingReference(err error) error {
	var perr *pq.Error
	if !errors.As(err, &perr) || perr.Code != "23503" {
		return err
	}
	switch {
	case strings.HasSuffix(perr.Constraint, "_user_id_fkey"), strings.HasSuffix(perr.Constraint, "_organizer_id_fkey"):
		return domain.NewError(domain.ErrNotFound, "user not found")
	case strings.HasSuffix(perr.Constraint, "_event_id_fkey"):
		return domain.NewError(domain.ErrNotFound, "event not found")
	case strings.HasSuffix(perr.Constraint, "_category_id_fkey"):
		return domain.NewError(domain.ErrInvalidInput, "category does not exist")
	}
	return domain.NewError(domain.ErrNotFound, "referenced record not found")
}

// constraintParticipantToken is declared in migrations/0001_init.sql.
const constraintParticipantToken = "participants_checkin_token_key"
