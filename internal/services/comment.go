package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"communityevents/internal/domain"
)

type commentService struct {
	tx             domain.Transactor
	eventRepo      domain.EventRepository
	commentRepo    domain.CommentRepository
	contextTimeout time.Duration
	now            func() time.Time
}

func NewCommentService(tx domain.Transactor, eventRepo domain.EventRepository, commentRepo domain.CommentRepository, timeout time.Duration) domain.CommentService {
	return &commentService{
		tx:             tx,
		eventRepo:      eventRepo,
		commentRepo:    commentRepo,
		contextTimeout: timeout,
		now:            time.Now,
	}
}

func validateCommentContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", domain.NewError(domain.ErrInvalidInput, "content is required")
	}
	if utf8.RuneCountInString(content) > domain.MaxCommentLength {
		return "", domain.NewError(domain.ErrInvalidInput, "content cannot exceed %d characters", domain.MaxCommentLength)
	}
	return content, nil
}

func (s *commentService) Create(ctx context.Context, userID, eventID, content string) (*domain.Comment, error) {
	content, err := validateCommentContent(content)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var created *domain.Comment
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
			return lookupErr("event", err)
		}
		now := s.now()
		c := &domain.Comment{EventID: eventID, UserID: userID, Content: content, CreatedAt: now, UpdatedAt: now}
		if err := s.commentRepo.Create(ctx, c); err != nil {
			return fmt.Errorf("create comment: %w", err)
		}
		// Reload for the author name.
		got, err := s.commentRepo.GetByID(ctx, c.ID)
		if err != nil {
			return fmt.Errorf("get comment: %w", err)
		}
		created = got
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *commentService) Update(ctx context.Context, userID, eventID, commentID, content string) (*domain.Comment, error) {
	content, err := validateCommentContent(content)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var updated *domain.Comment
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		c, err := s.authorComment(ctx, userID, eventID, commentID, "edit this comment")
		if err != nil {
			return err
		}
		c.Content = content
		c.UpdatedAt = s.now()
		if err := s.commentRepo.Update(ctx, c); err != nil {
			return fmt.Errorf("update comment: %w", err)
		}
		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *commentService) Delete(ctx context.Context, userID, eventID, commentID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		c, err := s.authorComment(ctx, userID, eventID, commentID, "delete this comment")
		if err != nil {
			return err
		}
		if err := s.commentRepo.Delete(ctx, c.ID); err != nil {
			return fmt.Errorf("delete comment: %w", err)
		}
		return nil
	})
}

// authorComment loads a comment of a live event and checks that userID wrote it.
func (s *commentService) authorComment(ctx context.Context, userID, eventID, commentID, action string) (*domain.Comment, error) {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		return nil, lookupErr("event", err)
	}
	c, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, lookupErr("comment", err)
	}
	if c.EventID != eventID {
		return nil, domain.NewError(domain.ErrNotFound, "comment not found")
	}
	if err := requireOwner(userID, c.UserID, "author", action); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *commentService) List(ctx context.Context, eventID, callerID string) ([]*domain.CommentView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		return nil, lookupErr("event", err)
	}
	comments, err := s.commentRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	views := make([]*domain.CommentView, 0, len(comments))
	for _, c := range comments {
		views = append(views, &domain.CommentView{Comment: c, IsOwner: callerID != "" && c.UserID == callerID})
	}
	return views, nil
}
