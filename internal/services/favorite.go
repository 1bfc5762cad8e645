package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"communityevents/internal/domain"
)

type favoriteService struct {
	tx             domain.Transactor
	eventRepo      domain.EventRepository
	favoriteRepo   domain.FavoriteRepository
	resolver       domain.EventResolver
	contextTimeout time.Duration
	now            func() time.Time
}

func NewFavoriteService(
	tx domain.Transactor,
	eventRepo domain.EventRepository,
	favoriteRepo domain.FavoriteRepository,
	resolver domain.EventResolver,
	timeout time.Duration,
) domain.FavoriteService {
	return &favoriteService{
		tx:             tx,
		eventRepo:      eventRepo,
		favoriteRepo:   favoriteRepo,
		resolver:       resolver,
		contextTimeout: timeout,
		now:            time.Now,
	}
}

func (s *favoriteService) Add(ctx context.Context, userID, eventID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
			return lookupErr("event", err)
		}
		exists, err := s.favoriteRepo.Exists(ctx, eventID, userID)
		if err != nil {
			return fmt.Errorf("check favorite: %w", err)
		}
		if exists {
			return domain.NewError(domain.ErrConflict, "event already in favorites")
		}
		f := &domain.Favorite{EventID: eventID, UserID: userID, CreatedAt: s.now()}
		if err := s.favoriteRepo.Create(ctx, f); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				return err
			}
			return fmt.Errorf("create favorite: %w", err)
		}
		return nil
	})
}

func (s *favoriteService) Remove(ctx context.Context, userID, eventID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.favoriteRepo.Delete(ctx, eventID, userID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return err
			}
			return fmt.Errorf("delete favorite: %w", err)
		}
		return nil
	})
}

func (s *favoriteService) IsFavorite(ctx context.Context, userID, eventID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		return false, lookupErr("event", err)
	}
	exists, err := s.favoriteRepo.Exists(ctx, eventID, userID)
	if err != nil {
		return false, fmt.Errorf("check favorite: %w", err)
	}
	return exists, nil
}

func (s *favoriteService) List(ctx context.Context, userID string) ([]*domain.EventView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.eventRepo.ListFavoritedBy(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorite events: %w", err)
	}
	return s.resolver.ResolveAll(ctx, events, userID)
}
