package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"communityevents/internal/domain"
)

const participantColumns = `
	p.id, p.event_id, p.user_id, COALESCE(u.name, ''), COALESCE(u.email, ''),
	p.attendance_status, p.checkin_token, p.registration_date, p.checked_in_at`

type participantRepository struct {
	DB *sql.DB
}

func NewParticipantRepository(db *sql.DB) domain.ParticipantRepository {
	return &participantRepository{DB: db}
}

func scanParticipant(row rowScanner) (*domain.Participant, error) {
	p := &domain.Participant{}
	var tokenNull sql.NullString
	var checkedNull sql.NullTime
	if err := row.Scan(&p.ID, &p.EventID, &p.UserID, &p.UserName, &p.UserEmail,
		&p.Status, &tokenNull, &p.RegisteredAt, &checkedNull); err != nil {
		return nil, err
	}
	if tokenNull.Valid {
		p.CheckinToken = &tokenNull.String
	}
	if checkedNull.Valid {
		p.CheckedInAt = &checkedNull.Time
	}
	return p, nil
}

func (r *participantRepository) Create(ctx context.Context, p *domain.Participant) error {
	query := `
		INSERT INTO participants (event_id, user_id, attendance_status, checkin_token, registration_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	return withSavepoint(ctx, r.DB, "participant_insert", func(q DBTX) error {
		err := q.QueryRowContext(ctx, query, p.EventID, p.UserID, p.Status, p.CheckinToken, p.RegisteredAt).Scan(&p.ID)
		if perr, ok := uniqueViolation(err); ok {
			if perr.Constraint == constraintParticipantToken {
				return domain.ErrDuplicateToken
			}
			return domain.NewError(domain.ErrConflict, "already registered for this event")
		}
		return missingReference(err)
	})
}

func (r *participantRepository) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.Participant, error) {
	return r.getOne(ctx, `p.event_id = $1 AND p.user_id = $2`, "", eventID, userID)
}

func (r *participantRepository) GetByEventAndUserForUpdate(ctx context.Context, eventID, userID string) (*domain.Participant, error) {
	return r.getOne(ctx, `p.event_id = $1 AND p.user_id = $2`, "FOR UPDATE OF p", eventID, userID)
}

func (r *participantRepository) GetByEventAndToken(ctx context.Context, eventID, token string) (*domain.Participant, error) {
	return r.getOne(ctx, `p.event_id = $1 AND p.checkin_token = $2`, "FOR UPDATE OF p", eventID, token)
}

func (r *participantRepository) getOne(ctx context.Context, cond, lock string, args ...any) (*domain.Participant, error) {
	query := `SELECT ` + participantColumns + ` FROM participants p
		LEFT JOIN users u ON u.id = p.user_id
		WHERE ` + cond + ` ` + lock
	p, err := scanParticipant(conn(ctx, r.DB).QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *participantRepository) UpdateStatus(ctx context.Context, id string, status domain.AttendanceStatus) error {
	result, err := conn(ctx, r.DB).ExecContext(ctx, `UPDATE participants SET attendance_status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *participantRepository) SetCheckinToken(ctx context.Context, id, token string) error {
	query := `UPDATE participants SET checkin_token = $1 WHERE id = $2 AND checkin_token IS NULL`
	return withSavepoint(ctx, r.DB, "participant_token", func(q DBTX) error {
		result, err := q.ExecContext(ctx, query, token, id)
		if err != nil {
			if _, ok := uniqueViolation(err); ok {
				return domain.ErrDuplicateToken
			}
			return err
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			return domain.NewError(domain.ErrConflict, "check-in token already issued")
		}
		return nil
	})
}

func (r *participantRepository) MarkCheckedIn(ctx context.Context, id string, at time.Time) error {
	query := `
		UPDATE participants SET attendance_status = $1, checked_in_at = $2
		WHERE id = $3 AND checked_in_at IS NULL
	`
	result, err := conn(ctx, r.DB).ExecContext(ctx, query, domain.AttendanceAttended, at, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.NewError(domain.ErrConflict, "participant already checked in")
	}
	return nil
}

func (r *participantRepository) Delete(ctx context.Context, id string) error {
	result, err := conn(ctx, r.DB).ExecContext(ctx, `DELETE FROM participants WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *participantRepository) ListByEvent(ctx context.Context, eventID string) ([]*domain.Participant, error) {
	query := `SELECT ` + participantColumns + ` FROM participants p
		LEFT JOIN users u ON u.id = p.user_id
		WHERE p.event_id = $1
		ORDER BY p.registration_date ASC`
	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	participants := make([]*domain.Participant, 0)
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

func (r *participantRepository) CountByEvent(ctx context.Context, eventID string) (int64, error) {
	var n int64
	err := conn(ctx, r.DB).QueryRowContext(ctx, `SELECT COUNT(*) FROM participants WHERE event_id = $1`, eventID).Scan(&n)
	return n, err
}

func (r *participantRepository) CountActiveByEvent(ctx context.Context, eventID string) (int64, error) {
	var n int64
	query := `SELECT COUNT(*) FROM participants WHERE event_id = $1 AND attendance_status IN ($2, $3)`
	err := conn(ctx, r.DB).QueryRowContext(ctx, query, eventID, domain.AttendanceConfirmed, domain.AttendanceAttended).Scan(&n)
	return n, err
}

func (r *participantRepository) Exists(ctx context.Context, eventID, userID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM participants WHERE event_id = $1 AND user_id = $2)`
	err := conn(ctx, r.DB).QueryRowContext(ctx, query, eventID, userID).Scan(&exists)
	return exists, err
}
