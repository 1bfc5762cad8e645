package domain

import (
	"context"
	"time"
)

// MaxCommentLength bounds comment content.
const MaxCommentLength = 2000

// Comment is a message left on an event by a user.
// swagger:model Comment
type Comment struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CommentView is a comment decorated with the caller-relative ownership flag.
type CommentView struct {
	*Comment
	IsOwner bool `json:"is_owner"`
}

// CommentRepository defines storage operations for comments.
type CommentRepository interface {
	Create(ctx context.Context, c *Comment) error
	GetByID(ctx context.Context, id string) (*Comment, error)
	Update(ctx context.Context, c *Comment) error
	Delete(ctx context.Context, id string) error
	// ListByEvent returns comments newest first.
	ListByEvent(ctx context.Context, eventID string) ([]*Comment, error)
	CountByEvent(ctx context.Context, eventID string) (int64, error)
}

// CommentService defines comment operations. Only the author may edit or delete a comment.
type CommentService interface {
	Create(ctx context.Context, userID, eventID, content string) (*Comment, error)
	Update(ctx context.Context, userID, eventID, commentID, content string) (*Comment, error)
	Delete(ctx context.Context, userID, eventID, commentID string) error
	// List returns the event's comments newest first; callerID may be empty.
	List(ctx context.Context, eventID, callerID string) ([]*CommentView, error)
}
