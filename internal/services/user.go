package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"communityevents/internal/domain"
)

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

type userService struct {
	tx             domain.Transactor
	userRepo       domain.UserRepository
	hasher         domain.PasswordHasher
	contextTimeout time.Duration
	now            func() time.Time
}

// NewUserService creates a UserService for the caller's own profile.
func NewUserService(tx domain.Transactor, userRepo domain.UserRepository, hasher domain.PasswordHasher, timeout time.Duration) domain.UserService {
	return &userService{
		tx:             tx,
		userRepo:       userRepo,
		hasher:         hasher,
		contextTimeout: timeout,
		now:            time.Now,
	}
}

func (s *userService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr("user", err)
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID string, in domain.ProfileUpdate) (*domain.User, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	if name == "" {
		return nil, domain.NewError(domain.ErrInvalidInput, "name is required")
	}
	if !emailRegexp.MatchString(email) {
		return nil, domain.NewError(domain.ErrInvalidInput, "invalid email format")
	}

	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var updated *domain.User
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		user, err := s.userRepo.GetByID(ctx, userID)
		if err != nil {
			return lookupErr("user", err)
		}
		user.Name = name
		user.Email = email
		user.Phone = in.Phone
		user.ProfilePicture = in.ProfilePicture
		user.Description = in.Description
		user.UpdatedAt = s.now()
		if err := s.userRepo.Update(ctx, user); err != nil {
			if errors.Is(err, domain.ErrDuplicateEmail) {
				return err
			}
			return fmt.Errorf("update user: %w", err)
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *userService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if len(newPassword) < domain.MinPasswordLength {
		return domain.NewError(domain.ErrInvalidInput, "password must be at least %d characters", domain.MinPasswordLength)
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		user, err := s.userRepo.GetByID(ctx, userID)
		if err != nil {
			return lookupErr("user", err)
		}
		if err := s.hasher.Compare(user.PasswordHash, user.Salt, currentPassword); err != nil {
			return domain.NewError(domain.ErrInvalidInput, "current password is incorrect")
		}
		salt, err := s.hasher.GenerateSalt()
		if err != nil {
			return err
		}
		hash, err := s.hasher.Hash(salt, newPassword)
		if err != nil {
			return err
		}
		if err := s.userRepo.UpdatePassword(ctx, user.ID, hash, salt); err != nil {
			return fmt.Errorf("update password: %w", err)
		}
		return nil
	})
}

func (s *userService) DeleteAccount(ctx context.Context, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return lookupErr("user", err)
	}
	return nil
}
