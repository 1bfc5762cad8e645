package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"communityevents/internal/domain"
)

type eventService struct {
	tx             domain.Transactor
	eventRepo      domain.EventRepository
	categoryRepo   domain.CategoryRepository
	resolver       domain.EventResolver
	uploader       domain.ImageUploader
	contextTimeout time.Duration
	uploadTimeout  time.Duration
	now            func() time.Time
}

// coverUploadTimeout bounds a single cover upload to the image store.
const coverUploadTimeout = 30 * time.Second

func NewEventService(
	tx domain.Transactor,
	eventRepo domain.EventRepository,
	categoryRepo domain.CategoryRepository,
	resolver domain.EventResolver,
	uploader domain.ImageUploader,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		tx:             tx,
		eventRepo:      eventRepo,
		categoryRepo:   categoryRepo,
		resolver:       resolver,
		uploader:       uploader,
		contextTimeout: timeout,
		uploadTimeout:  coverUploadTimeout,
		now:            time.Now,
	}
}

func (s *eventService) Create(ctx context.Context, organizerID string, in domain.EventInput) (*domain.EventView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := in.Validate(); err != nil {
		return nil, err
	}
	event := domain.NewEvent(organizerID, in, s.now())
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.requireCategory(ctx, in.CategoryID); err != nil {
			return err
		}
		if err := s.eventRepo.Create(ctx, event); err != nil {
			return fmt.Errorf("create event: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.getView(ctx, event.ID, organizerID)
}

func (s *eventService) Update(ctx context.Context, callerID, eventID string, in domain.EventInput) (*domain.EventView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		event, err := s.eventRepo.GetByIDForUpdate(ctx, eventID)
		if err != nil {
			return lookupErr("event", err)
		}
		if err := requireOrganizer(callerID, event, "update this event"); err != nil {
			return err
		}
		if err := in.Validate(); err != nil {
			return err
		}
		if err := s.requireCategory(ctx, in.CategoryID); err != nil {
			return err
		}
		event.ApplyInput(in, s.now())
		if err := s.eventRepo.Update(ctx, event); err != nil {
			return fmt.Errorf("update event: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.getView(ctx, eventID, callerID)
}

func (s *eventService) Publish(ctx context.Context, callerID, eventID string) error {
	return s.transition(ctx, callerID, eventID, domain.EventActionPublish)
}

func (s *eventService) Cancel(ctx context.Context, callerID, eventID string) error {
	return s.transition(ctx, callerID, eventID, domain.EventActionCancel)
}

func (s *eventService) Archive(ctx context.Context, callerID, eventID string) error {
	return s.transition(ctx, callerID, eventID, domain.EventActionArchive)
}

func (s *eventService) transition(ctx context.Context, callerID, eventID string, action domain.EventAction) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		event, err := s.eventRepo.GetByIDForUpdate(ctx, eventID)
		if err != nil {
			return lookupErr("event", err)
		}
		if err := requireOrganizer(callerID, event, string(action)+" this event"); err != nil {
			return err
		}
		if err := event.Apply(action, s.now()); err != nil {
			return err
		}
		if err := s.eventRepo.Update(ctx, event); err != nil {
			return fmt.Errorf("%s event: %w", action, err)
		}
		return nil
	})
}

func (s *eventService) Delete(ctx context.Context, callerID, eventID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		event, err := s.eventRepo.GetByIDForUpdate(ctx, eventID)
		if err != nil {
			return lookupErr("event", err)
		}
		if err := requireOrganizer(callerID, event, "delete this event"); err != nil {
			return err
		}
		event.SoftDelete(s.now())
		if err := s.eventRepo.Update(ctx, event); err != nil {
			return fmt.Errorf("delete event: %w", err)
		}
		return nil
	})
}

// SetCoverImage uploads the image first and only then stores its URL, so no
// transaction is held open across the upload.
func (s *eventService) SetCoverImage(ctx context.Context, callerID, eventID, filename string, image io.Reader) (*domain.EventView, error) {
	if err := s.checkCoverOwner(ctx, callerID, eventID); err != nil {
		return nil, err
	}
	if s.uploader == nil {
		return nil, domain.NewError(domain.ErrUnavailable, "image uploads are not configured")
	}
	url, err := s.uploadCover(ctx, filename, image)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		event, err := s.eventRepo.GetByIDForUpdate(ctx, eventID)
		if err != nil {
			return lookupErr("event", err)
		}
		if err := requireOrganizer(callerID, event, "change the cover image"); err != nil {
			return err
		}
		event.CoverImage = &url
		event.UpdatedAt = s.now()
		if err := s.eventRepo.Update(ctx, event); err != nil {
			return fmt.Errorf("update event: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.getView(ctx, eventID, callerID)
}

func (s *eventService) checkCoverOwner(ctx context.Context, callerID, eventID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return lookupErr("event", err)
	}
	return requireOrganizer(callerID, event, "change the cover image")
}

func (s *eventService) uploadCover(ctx context.Context, filename string, image io.Reader) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.uploadTimeout)
	defer cancel()
	url, err := s.uploader.Upload(ctx, filename, image)
	switch {
	case errors.Is(err, domain.ErrUnavailable):
		return "", err
	case errors.Is(err, context.DeadlineExceeded):
		return "", domain.NewError(domain.ErrUnavailable, "image storage did not respond in time")
	case err != nil:
		return "", fmt.Errorf("upload cover image: %w", err)
	}
	if utf8.RuneCountInString(url) > domain.MaxCoverImageLength {
		return "", domain.NewError(domain.ErrInvalidInput, "cover image cannot exceed %d characters", domain.MaxCoverImageLength)
	}
	return url, nil
}

func (s *eventService) Get(ctx context.Context, eventID, callerID string) (*domain.EventView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.getView(ctx, eventID, callerID)
}

func (s *eventService) getView(ctx context.Context, eventID, callerID string) (*domain.EventView, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, lookupErr("event", err)
	}
	return s.resolver.Resolve(ctx, event, callerID)
}

func (s *eventService) ListPublic(ctx context.Context, callerID string, page domain.PaginationParams) ([]*domain.EventView, int, error) {
	return s.Search(ctx, callerID, domain.EventFilter{}, page)
}

// Search with an empty filter is the public listing.
func (s *eventService) Search(ctx context.Context, callerID string, filter domain.EventFilter, page domain.PaginationParams) ([]*domain.EventView, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	filter.Query = strings.TrimSpace(filter.Query)
	filter.CategoryID = strings.TrimSpace(filter.CategoryID)
	events, total, err := s.eventRepo.ListPublic(ctx, filter, page)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	views, err := s.resolver.ResolveAll(ctx, events, callerID)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

func (s *eventService) ListMine(ctx context.Context, organizerID string) ([]*domain.EventView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.eventRepo.ListByOrganizer(ctx, organizerID)
	if err != nil {
		return nil, fmt.Errorf("list organizer events: %w", err)
	}
	return s.resolver.ResolveAll(ctx, events, organizerID)
}

func (s *eventService) ListAttending(ctx context.Context, userID string) ([]*domain.EventView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.eventRepo.ListAttending(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list attending events: %w", err)
	}
	return s.resolver.ResolveAll(ctx, events, userID)
}

func (s *eventService) requireCategory(ctx context.Context, categoryID string) error {
	if _, err := s.categoryRepo.GetByID(ctx, categoryID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NewError(domain.ErrInvalidInput, "category %s does not exist", categoryID)
		}
		return fmt.Errorf("get category: %w", err)
	}
	return nil
}
