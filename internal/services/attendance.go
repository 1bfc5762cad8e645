package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"communityevents/internal/domain"
)

type attendanceService struct {
	tx              domain.Transactor
	eventRepo       domain.EventRepository
	participantRepo domain.ParticipantRepository
	userRepo        domain.UserRepository
	emailService    domain.EmailService
	metrics         domain.AttendanceMetrics
	logger          *slog.Logger
	contextTimeout  time.Duration
	newToken        func() (string, error)
	now             func() time.Time
}

// NewAttendanceService creates an AttendanceService. emailService and metrics may be nil.
func NewAttendanceService(
	tx domain.Transactor,
	eventRepo domain.EventRepository,
	participantRepo domain.ParticipantRepository,
	userRepo domain.UserRepository,
	emailService domain.EmailService,
	metrics domain.AttendanceMetrics,
	logger *slog.Logger,
	timeout time.Duration,
) domain.AttendanceService {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &attendanceService{
		tx:              tx,
		eventRepo:       eventRepo,
		participantRepo: participantRepo,
		userRepo:        userRepo,
		emailService:    emailService,
		metrics:         metrics,
		logger:          logger,
		contextTimeout:  timeout,
		newToken:        newCheckinToken,
		now:             time.Now,
	}
}

func (s *attendanceService) Register(ctx context.Context, userID, eventID string) (*domain.Participant, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var (
		event       *domain.Event
		participant *domain.Participant
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		// The event row lock serializes registrations so the capacity check holds.
		e, err := s.eventRepo.GetByIDForUpdate(ctx, eventID)
		if err != nil {
			return lookupErr("event", err)
		}
		if !e.CanAcceptAttendance() {
			return domain.NewError(domain.ErrConflict, "cannot register for %s events", closedEventLabel(e.Status))
		}
		exists, err := s.participantRepo.Exists(ctx, eventID, userID)
		if err != nil {
			return fmt.Errorf("check registration: %w", err)
		}
		if exists {
			return domain.NewError(domain.ErrConflict, "already registered for this event")
		}
		if e.MaxCapacity != nil {
			active, err := s.participantRepo.CountActiveByEvent(ctx, eventID)
			if err != nil {
				return fmt.Errorf("count participants: %w", err)
			}
			if active >= int64(*e.MaxCapacity) {
				return domain.NewError(domain.ErrConflict, "event is full")
			}
		}

		p := domain.NewParticipant(eventID, userID, s.now())
		_, err = storeWithToken(s.newToken, func(token string) error {
			p.CheckinToken = &token
			return s.participantRepo.Create(ctx, p)
		})
		if err != nil {
			return err
		}
		event, participant = e, p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.Registered(ctx, eventID)
	s.sendRegistrationConfirmed(ctx, event, participant)
	return participant, nil
}

func closedEventLabel(status domain.EventStatus) string {
	switch status {
	case domain.EventStatusCancelled:
		return "cancelled"
	case domain.EventStatusArchived:
		return "archived"
	}
	return "unpublished"
}

// sendRegistrationConfirmed runs after commit; a failure is logged and never undoes the registration.
func (s *attendanceService) sendRegistrationConfirmed(ctx context.Context, event *domain.Event, p *domain.Participant) {
	if s.emailService == nil {
		return
	}
	user, err := s.userRepo.GetByID(ctx, p.UserID)
	if err != nil {
		s.logger.WarnContext(ctx, "registration email skipped", "event_id", event.ID, "user_id", p.UserID, "err", err)
		return
	}
	data := &domain.RegistrationEmailData{
		Email:         user.Email,
		Name:          user.Name,
		EventTitle:    event.Title,
		EventLocation: event.Location,
		EventStart:    event.StartDate,
		CheckinToken:  *p.CheckinToken,
	}
	if err := s.emailService.SendRegistrationConfirmed(ctx, data); err != nil {
		s.logger.WarnContext(ctx, "registration email failed", "event_id", event.ID, "user_id", p.UserID, "err", err)
	}
}

// UpdateStatus never produces ATTENDED; check-in is the only path into that state.
func (s *attendanceService) UpdateStatus(ctx context.Context, userID, eventID string, status domain.AttendanceStatus) (*domain.Participant, error) {
	if !status.IsValid() {
		return nil, domain.NewError(domain.ErrInvalidInput, "invalid attendance status %q", status)
	}
	if status == domain.AttendanceAttended {
		return nil, domain.NewError(domain.ErrInvalidInput, "attended status can only be set by check-in")
	}

	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var participant *domain.Participant
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		p, err := s.lockRegistration(ctx, userID, eventID)
		if err != nil {
			return err
		}
		if p.HasCheckedIn() {
			return domain.NewError(domain.ErrConflict, "participant already checked in")
		}
		if err := s.participantRepo.UpdateStatus(ctx, p.ID, status); err != nil {
			return fmt.Errorf("update attendance status: %w", err)
		}
		p.Status = status
		participant = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return participant, nil
}

func (s *attendanceService) Cancel(ctx context.Context, userID, eventID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		p, err := s.lockRegistration(ctx, userID, eventID)
		if err != nil {
			return err
		}
		if err := s.participantRepo.Delete(ctx, p.ID); err != nil {
			return fmt.Errorf("delete participant: %w", err)
		}
		return nil
	})
}

// GetTicket backfills the check-in token of registrations that predate tokens.
func (s *attendanceService) GetTicket(ctx context.Context, userID, eventID string) (*domain.Ticket, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var ticket *domain.Ticket
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		event, err := s.eventRepo.GetByID(ctx, eventID)
		if err != nil {
			return lookupErr("event", err)
		}
		p, err := s.participantRepo.GetByEventAndUserForUpdate(ctx, eventID, userID)
		if err != nil {
			return registrationErr(err)
		}
		if p.CheckinToken == nil {
			token, err := storeWithToken(s.newToken, func(token string) error {
				return s.participantRepo.SetCheckinToken(ctx, p.ID, token)
			})
			if err != nil {
				return err
			}
			p.CheckinToken = &token
		}
		ticket = &domain.Ticket{
			EventID:          event.ID,
			EventTitle:       event.Title,
			EventLocation:    event.Location,
			EventStartDate:   event.StartDate,
			UserID:           p.UserID,
			UserName:         p.UserName,
			CheckinToken:     *p.CheckinToken,
			AttendanceStatus: p.Status,
			RegistrationDate: p.RegisteredAt,
			CheckedInAt:      p.CheckedInAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

// CheckIn validates a ticket once. The token only matches within its own event.
func (s *attendanceService) CheckIn(ctx context.Context, organizerID, eventID, token string) (*domain.Participant, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domain.NewError(domain.ErrInvalidInput, "check-in token is required")
	}

	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var (
		participant *domain.Participant
		rejection   string
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		event, err := s.eventRepo.GetByID(ctx, eventID)
		if err != nil {
			return lookupErr("event", err)
		}
		if err := requireOrganizer(organizerID, event, "check in attendees"); err != nil {
			rejection = domain.RejectForbidden
			return err
		}
		p, err := s.participantRepo.GetByEventAndToken(ctx, eventID, token)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				rejection = domain.RejectUnknownToken
				return domain.NewError(domain.ErrNotFound, "no ticket matches this token for the event")
			}
			return fmt.Errorf("get participant: %w", err)
		}
		if p.HasCheckedIn() {
			rejection = domain.RejectAlreadyCheckedIn
			return &domain.AlreadyCheckedInError{CheckedInAt: *p.CheckedInAt}
		}

		now := s.now()
		if err := s.participantRepo.MarkCheckedIn(ctx, p.ID, now); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				rejection = domain.RejectAlreadyCheckedIn
				if cur, gerr := s.participantRepo.GetByEventAndToken(ctx, eventID, token); gerr == nil && cur.CheckedInAt != nil {
					return &domain.AlreadyCheckedInError{CheckedInAt: *cur.CheckedInAt}
				}
				return err
			}
			return fmt.Errorf("check in participant: %w", err)
		}
		p.Status = domain.AttendanceAttended
		p.CheckedInAt = &now
		participant = p
		return nil
	})
	if err != nil {
		if rejection != "" {
			s.metrics.CheckinRejected(ctx, eventID, rejection)
		}
		return nil, err
	}
	s.metrics.CheckedIn(ctx, eventID)
	return participant, nil
}

func (s *attendanceService) AttendanceList(ctx context.Context, organizerID, eventID string) ([]*domain.AttendanceItem, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, lookupErr("event", err)
	}
	if err := requireOrganizer(organizerID, event, "view the attendance list"); err != nil {
		return nil, err
	}
	participants, err := s.participantRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	items := make([]*domain.AttendanceItem, 0, len(participants))
	for _, p := range participants {
		items = append(items, &domain.AttendanceItem{Participant: p, HasCheckedIn: p.HasCheckedIn()})
	}
	return items, nil
}

// lockRegistration loads the caller's participant row of a live event, locked for update.
func (s *attendanceService) lockRegistration(ctx context.Context, userID, eventID string) (*domain.Participant, error) {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		return nil, lookupErr("event", err)
	}
	p, err := s.participantRepo.GetByEventAndUserForUpdate(ctx, eventID, userID)
	if err != nil {
		return nil, registrationErr(err)
	}
	return p, nil
}

func registrationErr(err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NewError(domain.ErrNotFound, "not registered for this event")
	}
	return fmt.Errorf("get participant: %w", err)
}

type noopMetrics struct{}

func (noopMetrics) Registered(context.Context, string)              {}
func (noopMetrics) CheckedIn(context.Context, string)               {}
func (noopMetrics) CheckinRejected(context.Context, string, string) {}
