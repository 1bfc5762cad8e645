package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"communityevents/internal/domain"
)

const eventColumns = `
	e.id, e.title, e.description, e.category_id, COALESCE(c.name, ''), e.organizer_id, COALESCE(u.name, ''),
	e.start_date, e.end_date, e.location, e.latitude, e.longitude, e.max_capacity, e.cover_image,
	e.visibility, e.status, e.created_at, e.updated_at, e.deleted_at`

const eventJoins = `
	LEFT JOIN categories c ON c.id = e.category_id
	LEFT JOIN users u ON u.id = e.organizer_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var latNull, lngNull sql.NullFloat64
	var capNull sql.NullInt64
	var coverNull sql.NullString
	var deletedNull sql.NullTime
	err := row.Scan(
		&e.ID, &e.Title, &e.Description, &e.CategoryID, &e.CategoryName, &e.OrganizerID, &e.OrganizerName,
		&e.StartDate, &e.EndDate, &e.Location, &latNull, &lngNull, &capNull, &coverNull,
		&e.Visibility, &e.Status, &e.CreatedAt, &e.UpdatedAt, &deletedNull,
	)
	if err != nil {
		return nil, err
	}
	if latNull.Valid {
		e.Latitude = &latNull.Float64
	}
	if lngNull.Valid {
		e.Longitude = &lngNull.Float64
	}
	if capNull.Valid {
		c := int(capNull.Int64)
		e.MaxCapacity = &c
	}
	if coverNull.Valid {
		e.CoverImage = &coverNull.String
	}
	if deletedNull.Valid {
		e.DeletedAt = &deletedNull.Time
	}
	return e, nil
}

func scanEvents(rows *sql.Rows) ([]*domain.Event, error) {
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (title, description, category_id, organizer_id, start_date, end_date, location,
			latitude, longitude, max_capacity, cover_image, visibility, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id
	`
	err := conn(ctx, r.DB).QueryRowContext(ctx, query,
		e.Title, e.Description, e.CategoryID, e.OrganizerID, e.StartDate, e.EndDate, e.Location,
		e.Latitude, e.Longitude, e.MaxCapacity, e.CoverImage, e.Visibility, e.Status, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
	return missingReference(err)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	return r.getByID(ctx, id, "")
}

func (r *eventRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Event, error) {
	return r.getByID(ctx, id, "FOR UPDATE OF e")
}

func (r *eventRepository) getByID(ctx context.Context, id, lock string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events e ` + eventJoins + `
		WHERE e.id = $1 AND e.deleted_at IS NULL ` + lock
	e, err := scanEvent(conn(ctx, r.DB).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) Update(ctx context.Context, e *domain.Event) error {
	query := `
		UPDATE events SET title = $1, description = $2, category_id = $3, start_date = $4, end_date = $5,
			location = $6, latitude = $7, longitude = $8, max_capacity = $9, cover_image = $10,
			visibility = $11, status = $12, updated_at = $13, deleted_at = $14
		WHERE id = $15 AND deleted_at IS NULL
	`
	result, err := conn(ctx, r.DB).ExecContext(ctx, query,
		e.Title, e.Description, e.CategoryID, e.StartDate, e.EndDate,
		e.Location, e.Latitude, e.Longitude, e.MaxCapacity, e.CoverImage,
		e.Visibility, e.Status, e.UpdatedAt, e.DeletedAt, e.ID,
	)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// likeEscaper makes LIKE wildcards in user input match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *eventRepository) ListPublic(ctx context.Context, filter domain.EventFilter, page domain.PaginationParams) ([]*domain.Event, int, error) {
	where := []string{"e.visibility = $1", "e.status = $2", "e.deleted_at IS NULL"}
	args := []any{domain.VisibilityPublic, domain.EventStatusPublished}
	if q := strings.TrimSpace(filter.Query); q != "" {
		args = append(args, "%"+likeEscaper.Replace(q)+"%")
		where = append(where, fmt.Sprintf(`e.title ILIKE $%d ESCAPE '\'`, len(args)))
	}
	if filter.CategoryID != "" {
		args = append(args, filter.CategoryID)
		where = append(where, fmt.Sprintf("e.category_id = $%d", len(args)))
	}
	cond := strings.Join(where, " AND ")
	db := conn(ctx, r.DB)

	var total int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events e WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	n := len(args)
	query := fmt.Sprintf(`SELECT %s FROM events e %s WHERE %s ORDER BY e.start_date ASC, e.id ASC LIMIT $%d OFFSET $%d`,
		eventColumns, eventJoins, cond, n+1, n+2)
	args = append(args, page.Limit(), page.Offset())
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	events, err := scanEvents(rows)
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (r *eventRepository) ListByOrganizer(ctx context.Context, organizerID string) ([]*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events e ` + eventJoins + `
		WHERE e.organizer_id = $1 AND e.deleted_at IS NULL
		ORDER BY e.created_at DESC`
	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, organizerID)
	if err != nil {
		return nil, err
	}
	return scanEvents(rows)
}

func (r *eventRepository) ListAttending(ctx context.Context, userID string) ([]*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM participants p
		JOIN events e ON e.id = p.event_id ` + eventJoins + `
		WHERE p.user_id = $1 AND e.deleted_at IS NULL AND e.organizer_id <> $1
		ORDER BY e.start_date ASC`
	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	return scanEvents(rows)
}

func (r *eventRepository) ListFavoritedBy(ctx context.Context, userID string) ([]*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM favorites f
		JOIN events e ON e.id = f.event_id ` + eventJoins + `
		WHERE f.user_id = $1 AND e.deleted_at IS NULL
		ORDER BY f.created_at DESC`
	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	return scanEvents(rows)
}
