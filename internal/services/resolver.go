package services

import (
	"context"
	"fmt"

	"communityevents/internal/domain"
)

type eventResolver struct {
	participantRepo domain.ParticipantRepository
	commentRepo     domain.CommentRepository
	ratingRepo      domain.RatingRepository
	favoriteRepo    domain.FavoriteRepository
}

// NewEventResolver returns an EventResolver that recomputes every counter from the store on each call.
func NewEventResolver(
	participantRepo domain.ParticipantRepository,
	commentRepo domain.CommentRepository,
	ratingRepo domain.RatingRepository,
	favoriteRepo domain.FavoriteRepository,
) domain.EventResolver {
	return &eventResolver{
		participantRepo: participantRepo,
		commentRepo:     commentRepo,
		ratingRepo:      ratingRepo,
		favoriteRepo:    favoriteRepo,
	}
}

func (r *eventResolver) Resolve(ctx context.Context, e *domain.Event, callerID string) (*domain.EventView, error) {
	view := &domain.EventView{Event: e}
	var err error

	if view.ParticipantCount, err = r.participantRepo.CountByEvent(ctx, e.ID); err != nil {
		return nil, fmt.Errorf("count participants: %w", err)
	}
	if view.CommentCount, err = r.commentRepo.CountByEvent(ctx, e.ID); err != nil {
		return nil, fmt.Errorf("count comments: %w", err)
	}
	if view.FavoriteCount, err = r.favoriteRepo.CountByEvent(ctx, e.ID); err != nil {
		return nil, fmt.Errorf("count favorites: %w", err)
	}
	summary, err := r.ratingRepo.Summary(ctx, e.ID)
	if err != nil {
		return nil, fmt.Errorf("rating summary: %w", err)
	}
	view.RatingCount = summary.Count
	if summary.Count > 0 {
		view.AverageRating = summary.Average
	}

	if callerID == "" {
		return view, nil
	}
	view.IsOrganizer = e.OrganizerID == callerID
	if view.HasUserRegistered, err = r.participantRepo.Exists(ctx, e.ID, callerID); err != nil {
		return nil, fmt.Errorf("check registration: %w", err)
	}
	if view.IsFavorite, err = r.favoriteRepo.Exists(ctx, e.ID, callerID); err != nil {
		return nil, fmt.Errorf("check favorite: %w", err)
	}
	return view, nil
}

func (r *eventResolver) ResolveAll(ctx context.Context, events []*domain.Event, callerID string) ([]*domain.EventView, error) {
	views := make([]*domain.EventView, 0, len(events))
	for _, e := range events {
		v, err := r.Resolve(ctx, e, callerID)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}
