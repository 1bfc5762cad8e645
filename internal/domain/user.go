package domain

import (
	"context"
	"time"
)

// UserRole is the application role of a user.
type UserRole string

const (
	RoleUser  UserRole = "USER"
	RoleAdmin UserRole = "ADMIN"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// User represents a registered user
// swagger:model User
type User struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	Salt           string    `json:"-"`
	Phone          *string   `json:"phone,omitempty"`
	ProfilePicture *string   `json:"profile_picture,omitempty"`
	Description    *string   `json:"description,omitempty"`
	Role           UserRole  `json:"role"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewUser returns an active USER. ID is typically set by the repository on create.
func NewUser(name, email string, now time.Time) *User {
	return &User{
		Name:      name,
		Email:     email,
		Role:      RoleUser,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ProfileUpdate carries the editable profile fields.
type ProfileUpdate struct {
	Name           string
	Email          string
	Phone          *string
	ProfilePicture *string
	Description    *string
}

// PasswordHasher handles salt generation, hashing, and verification.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(salt, password string) (hash string, err error)
	Compare(hash, salt, password string) error
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(userID, email string, roles []string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the authenticated user ID.
type TokenVerifier interface {
	Verify(token string) (userID string, err error)
}

// UserRepository defines the interface for user storage
type UserRepository interface {
	// Create fails with ErrDuplicateEmail when the email is taken.
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	// Update writes the profile fields; fails with ErrDuplicateEmail when the email is taken.
	Update(ctx context.Context, user *User) error
	UpdatePassword(ctx context.Context, id, hash, salt string) error
	Delete(ctx context.Context, id string) error
}

// AuthResult is returned by a successful registration or login.
// swagger:model AuthResult
type AuthResult struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// AuthService registers users and exchanges credentials for tokens.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
}

// UserService defines the business logic for the caller's own profile.
type UserService interface {
	GetByID(ctx context.Context, id string) (*User, error)
	UpdateProfile(ctx context.Context, userID string, in ProfileUpdate) (*User, error)
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
	DeleteAccount(ctx context.Context, userID string) error
}
