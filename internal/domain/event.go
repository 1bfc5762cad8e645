package domain

import (
	"context"
	"io"
	"strings"
	"time"
	"unicode/utf8"
)

// EventStatus is the lifecycle state of an event.
type EventStatus string

const (
	EventStatusDraft     EventStatus = "DRAFT"
	EventStatusPublished EventStatus = "PUBLISHED"
	EventStatusCancelled EventStatus = "CANCELLED"
	EventStatusArchived  EventStatus = "ARCHIVED"
)

// EventStatuses lists every lifecycle state.
var EventStatuses = []EventStatus{EventStatusDraft, EventStatusPublished, EventStatusCancelled, EventStatusArchived}

// Visibility controls whether an event appears in public listings.
type Visibility string

const (
	VisibilityPublic  Visibility = "PUBLIC"
	VisibilityPrivate Visibility = "PRIVATE"
)

// Field limits shared by validation at the boundary and in services.
const (
	MaxTitleLength      = 200
	MaxLocationLength   = 255
	MaxCoverImageLength = 255
)

// Event represents a community event owned by its organizer.
// swagger:model Event
type Event struct {
	ID            string      `json:"id"`
	Title         string      `json:"title"`
	Description   string      `json:"description"`
	CategoryID    string      `json:"category_id"`
	CategoryName  string      `json:"category_name"`
	OrganizerID   string      `json:"organizer_id"`
	OrganizerName string      `json:"organizer_name"`
	StartDate     time.Time   `json:"start_date"`
	EndDate       time.Time   `json:"end_date"`
	Location      string      `json:"location"`
	Latitude      *float64    `json:"latitude,omitempty"`
	Longitude     *float64    `json:"longitude,omitempty"`
	MaxCapacity   *int        `json:"max_capacity,omitempty"`
	CoverImage    *string     `json:"cover_image,omitempty"`
	Visibility    Visibility  `json:"visibility"`
	Status        EventStatus `json:"status"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
	DeletedAt     *time.Time  `json:"-"`
}

// NewEvent returns a DRAFT event owned by organizerID built from the given input.
// ID is set by the repository on create.
func NewEvent(organizerID string, in EventInput, now time.Time) *Event {
	e := &Event{
		OrganizerID: organizerID,
		Status:      EventStatusDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	e.apply(in)
	return e
}

func (e *Event) apply(in EventInput) {
	e.Title = strings.TrimSpace(in.Title)
	e.Description = strings.TrimSpace(in.Description)
	e.CategoryID = in.CategoryID
	e.StartDate = in.StartDate
	e.EndDate = in.EndDate
	e.Location = strings.TrimSpace(in.Location)
	e.Latitude = in.Latitude
	e.Longitude = in.Longitude
	e.MaxCapacity = in.MaxCapacity
	e.CoverImage = in.CoverImage
	e.Visibility = in.Visibility
	if e.Visibility == "" {
		e.Visibility = VisibilityPublic
	}
}

// ApplyInput overwrites the editable fields of the event. Status is never touched.
func (e *Event) ApplyInput(in EventInput, now time.Time) {
	e.apply(in)
	e.UpdatedAt = now
}

// IsDeleted reports whether the event has been soft deleted.
func (e *Event) IsDeleted() bool { return e.DeletedAt != nil }

// CanAcceptAttendance reports whether attendees may register for the event.
func (e *Event) CanAcceptAttendance() bool {
	return e.Status == EventStatusPublished && !e.IsDeleted()
}

// Apply runs the lifecycle action against the event status.
func (e *Event) Apply(action EventAction, now time.Time) error {
	next, err := Transition(e.Status, action)
	if err != nil {
		return err
	}
	e.Status = next
	e.UpdatedAt = now
	return nil
}

// SoftDelete marks the event deleted. Deletion is irreversible.
func (e *Event) SoftDelete(now time.Time) {
	e.DeletedAt = &now
	e.UpdatedAt = now
}

// EventInput carries the caller-editable fields of an event.
type EventInput struct {
	Title       string
	Description string
	CategoryID  string
	StartDate   time.Time
	EndDate     time.Time
	Location    string
	Latitude    *float64
	Longitude   *float64
	MaxCapacity *int
	CoverImage  *string
	Visibility  Visibility
}

// Validate checks the input and returns an ErrInvalidInput error describing the first problem.
func (in EventInput) Validate() error {
	title := strings.TrimSpace(in.Title)
	switch {
	case title == "":
		return NewError(ErrInvalidInput, "title is required")
	case utf8.RuneCountInString(title) > MaxTitleLength:
		return NewError(ErrInvalidInput, "title cannot exceed %d characters", MaxTitleLength)
	case strings.TrimSpace(in.Description) == "":
		return NewError(ErrInvalidInput, "description is required")
	case strings.TrimSpace(in.Location) == "":
		return NewError(ErrInvalidInput, "location is required")
	case utf8.RuneCountInString(strings.TrimSpace(in.Location)) > MaxLocationLength:
		return NewError(ErrInvalidInput, "location cannot exceed %d characters", MaxLocationLength)
	case in.CategoryID == "":
		return NewError(ErrInvalidInput, "category is required")
	case in.StartDate.IsZero() || in.EndDate.IsZero():
		return NewError(ErrInvalidInput, "start and end dates are required")
	case in.EndDate.Before(in.StartDate):
		return NewError(ErrInvalidInput, "end date must not be before start date")
	case in.Latitude != nil && (*in.Latitude < -90 || *in.Latitude > 90):
		return NewError(ErrInvalidInput, "latitude must be between -90 and 90")
	case in.Longitude != nil && (*in.Longitude < -180 || *in.Longitude > 180):
		return NewError(ErrInvalidInput, "longitude must be between -180 and 180")
	case in.MaxCapacity != nil && *in.MaxCapacity < 1:
		return NewError(ErrInvalidInput, "max capacity must be at least 1")
	case in.CoverImage != nil && utf8.RuneCountInString(*in.CoverImage) > MaxCoverImageLength:
		return NewError(ErrInvalidInput, "cover image cannot exceed %d characters", MaxCoverImageLength)
	case in.Visibility != "" && in.Visibility != VisibilityPublic && in.Visibility != VisibilityPrivate:
		return NewError(ErrInvalidInput, "visibility must be PUBLIC or PRIVATE")
	}
	return nil
}

// EventStats holds the derived counters of an event.
type EventStats struct {
	ParticipantCount int64   `json:"participant_count"`
	CommentCount     int64   `json:"comment_count"`
	RatingCount      int64   `json:"rating_count"`
	FavoriteCount    int64   `json:"favorite_count"`
	AverageRating    float64 `json:"average_rating"`
}

// EventView is an event decorated with counters and caller-relative flags.
// swagger:model EventView
type EventView struct {
	*Event
	EventStats
	IsOrganizer       bool `json:"is_organizer"`
	HasUserRegistered bool `json:"has_user_registered"`
	IsFavorite        bool `json:"is_favorite"`
}

// EventFilter narrows the public listing. Empty fields do not filter.
type EventFilter struct {
	Query      string
	CategoryID string
}

// EventRepository defines the interface for event storage.
// Every read excludes soft deleted events.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	// GetByIDForUpdate is GetByID with a row lock held until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id string) (*Event, error)
	Update(ctx context.Context, event *Event) error
	ListPublic(ctx context.Context, filter EventFilter, page PaginationParams) ([]*Event, int, error)
	ListByOrganizer(ctx context.Context, organizerID string) ([]*Event, error)
	ListAttending(ctx context.Context, userID string) ([]*Event, error)
	ListFavoritedBy(ctx context.Context, userID string) ([]*Event, error)
}

// EventService defines the event lifecycle and event read operations.
type EventService interface {
	Create(ctx context.Context, organizerID string, in EventInput) (*EventView, error)
	Update(ctx context.Context, callerID, eventID string, in EventInput) (*EventView, error)
	Publish(ctx context.Context, callerID, eventID string) error
	Cancel(ctx context.Context, callerID, eventID string) error
	Archive(ctx context.Context, callerID, eventID string) error
	Delete(ctx context.Context, callerID, eventID string) error
	SetCoverImage(ctx context.Context, callerID, eventID, filename string, image io.Reader) (*EventView, error)
	// Get returns a live event; callerID may be empty for anonymous callers.
	Get(ctx context.Context, eventID, callerID string) (*EventView, error)
	ListPublic(ctx context.Context, callerID string, page PaginationParams) ([]*EventView, int, error)
	Search(ctx context.Context, callerID string, filter EventFilter, page PaginationParams) ([]*EventView, int, error)
	ListMine(ctx context.Context, organizerID string) ([]*EventView, error)
	ListAttending(ctx context.Context, userID string) ([]*EventView, error)
}

// EventResolver decorates events with their counters and the flags relative to callerID.
// An empty callerID leaves every flag false.
type EventResolver interface {
	Resolve(ctx context.Context, e *Event, callerID string) (*EventView, error)
	ResolveAll(ctx context.Context, events []*Event, callerID string) ([]*EventView, error)
}
