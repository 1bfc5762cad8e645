package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"communityevents/internal/domain"
)

type ratingService struct {
	tx             domain.Transactor
	eventRepo      domain.EventRepository
	ratingRepo     domain.RatingRepository
	contextTimeout time.Duration
	now            func() time.Time
}

func NewRatingService(tx domain.Transactor, eventRepo domain.EventRepository, ratingRepo domain.RatingRepository, timeout time.Duration) domain.RatingService {
	return &ratingService{
		tx:             tx,
		eventRepo:      eventRepo,
		ratingRepo:     ratingRepo,
		contextTimeout: timeout,
		now:            time.Now,
	}
}

// Rate stores the caller's rating, overwriting score and comment of an earlier one.
func (s *ratingService) Rate(ctx context.Context, userID, eventID string, score int, comment *string) (*domain.Rating, error) {
	if score < domain.MinScore || score > domain.MaxScore {
		return nil, domain.NewError(domain.ErrInvalidInput, "score must be between %d and %d", domain.MinScore, domain.MaxScore)
	}
	if comment != nil {
		trimmed := strings.TrimSpace(*comment)
		if trimmed == "" {
			comment = nil
		} else {
			comment = &trimmed
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	rating := &domain.Rating{EventID: eventID, UserID: userID, Score: score, Comment: comment, CreatedAt: s.now()}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
			return lookupErr("event", err)
		}
		if err := s.ratingRepo.Upsert(ctx, rating); err != nil {
			return fmt.Errorf("upsert rating: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rating, nil
}

func (s *ratingService) Delete(ctx context.Context, userID, eventID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
			return lookupErr("event", err)
		}
		if err := s.ratingRepo.Delete(ctx, eventID, userID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.NewError(domain.ErrNotFound, "you have not rated this event")
			}
			return fmt.Errorf("delete rating: %w", err)
		}
		return nil
	})
}

func (s *ratingService) List(ctx context.Context, eventID string) ([]*domain.Rating, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		return nil, lookupErr("event", err)
	}
	ratings, err := s.ratingRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	return ratings, nil
}

// Summary reports an average of 0 for an event nobody rated.
func (s *ratingService) Summary(ctx context.Context, eventID string) (*domain.RatingSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		return nil, lookupErr("event", err)
	}
	summary, err := s.ratingRepo.Summary(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("rating summary: %w", err)
	}
	if summary.Count == 0 {
		summary.Average = 0
	}
	return summary, nil
}
