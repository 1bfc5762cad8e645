package domain

import (
	"context"
	"time"
)

// AttendanceStatus is the attendance state of a participant.
type AttendanceStatus string

const (
	AttendanceConfirmed AttendanceStatus = "CONFIRMED"
	AttendanceCancelled AttendanceStatus = "CANCELLED"
	AttendanceAttended  AttendanceStatus = "ATTENDED"
)

// IsValid reports whether s is a known attendance status.
func (s AttendanceStatus) IsValid() bool {
	switch s {
	case AttendanceConfirmed, AttendanceCancelled, AttendanceAttended:
		return true
	}
	return false
}

// Participant is a user's registration for an event.
// swagger:model Participant
type Participant struct {
	ID           string           `json:"id"`
	EventID      string           `json:"event_id"`
	UserID       string           `json:"user_id"`
	UserName     string           `json:"user_name,omitempty"`
	UserEmail    string           `json:"user_email,omitempty"`
	Status       AttendanceStatus `json:"attendance_status"`
	CheckinToken *string          `json:"-"`
	RegisteredAt time.Time        `json:"registration_date"`
	CheckedInAt  *time.Time       `json:"checked_in_at,omitempty"`
}

// NewParticipant returns a CONFIRMED participant. ID is set by the repository on create.
func NewParticipant(eventID, userID string, now time.Time) *Participant {
	return &Participant{
		EventID:      eventID,
		UserID:       userID,
		Status:       AttendanceConfirmed,
		RegisteredAt: now,
	}
}

// HasCheckedIn reports whether the participant completed a check-in.
func (p *Participant) HasCheckedIn() bool { return p.CheckedInAt != nil }

// Ticket is what an attendee presents at the door.
// swagger:model Ticket
type Ticket struct {
	EventID          string           `json:"event_id"`
	EventTitle       string           `json:"event_title"`
	EventLocation    string           `json:"event_location"`
	EventStartDate   time.Time        `json:"event_start_date"`
	UserID           string           `json:"user_id"`
	UserName         string           `json:"user_name"`
	CheckinToken     string           `json:"checkin_token"`
	AttendanceStatus AttendanceStatus `json:"attendance_status"`
	RegistrationDate time.Time        `json:"registration_date"`
	CheckedInAt      *time.Time       `json:"checked_in_at"`
}

// AttendanceItem is one row of an organizer's attendance list.
// swagger:model AttendanceItem
type AttendanceItem struct {
	*Participant
	HasCheckedIn bool `json:"has_checked_in"`
}

// ParticipantRepository defines storage operations for participants.
type ParticipantRepository interface {
	// Create inserts the participant. A second row for the same event and user
	// fails with ErrConflict; a colliding check-in token fails with ErrDuplicateToken.
	Create(ctx context.Context, p *Participant) error
	GetByEventAndUser(ctx context.Context, eventID, userID string) (*Participant, error)
	// GetByEventAndUserForUpdate locks the row until the surrounding transaction ends.
	GetByEventAndUserForUpdate(ctx context.Context, eventID, userID string) (*Participant, error)
	// GetByEventAndToken locks the row until the surrounding transaction ends.
	GetByEventAndToken(ctx context.Context, eventID, token string) (*Participant, error)
	UpdateStatus(ctx context.Context, id string, status AttendanceStatus) error
	// SetCheckinToken stores a token for a participant that has none.
	SetCheckinToken(ctx context.Context, id, token string) error
	// MarkCheckedIn sets ATTENDED and checked_in_at if the participant has not checked in yet;
	// otherwise it fails with ErrConflict.
	MarkCheckedIn(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
	ListByEvent(ctx context.Context, eventID string) ([]*Participant, error)
	CountByEvent(ctx context.Context, eventID string) (int64, error)
	// CountActiveByEvent counts CONFIRMED and ATTENDED participants.
	CountActiveByEvent(ctx context.Context, eventID string) (int64, error)
	Exists(ctx context.Context, eventID, userID string) (bool, error)
}

// AttendanceService defines registration and check-in operations.
type AttendanceService interface {
	Register(ctx context.Context, userID, eventID string) (*Participant, error)
	UpdateStatus(ctx context.Context, userID, eventID string, status AttendanceStatus) (*Participant, error)
	Cancel(ctx context.Context, userID, eventID string) error
	GetTicket(ctx context.Context, userID, eventID string) (*Ticket, error)
	CheckIn(ctx context.Context, organizerID, eventID, token string) (*Participant, error)
	AttendanceList(ctx context.Context, organizerID, eventID string) ([]*AttendanceItem, error)
}

// AttendanceMetrics records attendance counters.
type AttendanceMetrics interface {
	Registered(ctx context.Context, eventID string)
	CheckedIn(ctx context.Context, eventID string)
	CheckinRejected(ctx context.Context, eventID, reason string)
}

// Check-in rejection reasons reported to AttendanceMetrics.
const (
	RejectAlreadyCheckedIn = "already_checked_in"
	RejectUnknownToken     = "unknown_token"
	RejectForbidden        = "forbidden"
)
