package domain

import (
	"context"
	"time"
)

// Rating score bounds.
const (
	MinScore = 1
	MaxScore = 5
)

// Rating is a user's score for an event. There is at most one per event and user.
// swagger:model Rating
type Rating struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	Score     int       `json:"score"`
	Comment   *string   `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// RatingSummary aggregates the ratings of an event. Average is 0 when Count is 0.
// swagger:model RatingSummary
type RatingSummary struct {
	Average float64 `json:"average_rating"`
	Count   int64   `json:"rating_count"`
}

// RatingRepository defines storage operations for ratings.
type RatingRepository interface {
	// Upsert inserts the rating or overwrites score and comment of the existing one.
	Upsert(ctx context.Context, r *Rating) error
	// Delete removes the caller's rating, failing with ErrNotFound when there is none.
	Delete(ctx context.Context, eventID, userID string) error
	ListByEvent(ctx context.Context, eventID string) ([]*Rating, error)
	Summary(ctx context.Context, eventID string) (*RatingSummary, error)
}

// RatingService defines rating operations.
type RatingService interface {
	Rate(ctx context.Context, userID, eventID string, score int, comment *string) (*Rating, error)
	Delete(ctx context.Context, userID, eventID string) error
	List(ctx context.Context, eventID string) ([]*Rating, error)
	Summary(ctx context.Context, eventID string) (*RatingSummary, error)
}
