package domain

import (
	"context"
	"time"
)

// Favorite marks an event as favorited by a user.
type Favorite struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// FavoriteRepository defines storage operations for favorites.
type FavoriteRepository interface {
	// Create fails with ErrConflict when the favorite already exists.
	Create(ctx context.Context, f *Favorite) error
	// Delete fails with ErrNotFound when there is nothing to remove.
	Delete(ctx context.Context, eventID, userID string) error
	Exists(ctx context.Context, eventID, userID string) (bool, error)
	CountByEvent(ctx context.Context, eventID string) (int64, error)
}

// FavoriteService defines favorite operations. Add and Remove are strict, never idempotent.
type FavoriteService interface {
	Add(ctx context.Context, userID, eventID string) error
	Remove(ctx context.Context, userID, eventID string) error
	IsFavorite(ctx context.Context, userID, eventID string) (bool, error)
	List(ctx context.Context, userID string) ([]*EventView, error)
}
