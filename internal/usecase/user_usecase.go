// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"fireworks/internal/domain/entity"

	"github.com/google/uuid"
)

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID  uuid.UUID
	IsAdmin bool
}

// Page is offset pagination requested by a caller.
type Page struct {
	Limit  int
	Offset int
}

// --- Input DTOs ---

// UpdateProfileInput changes the customer's own profile. Nil fields are left unchanged.
type UpdateProfileInput struct {
	FirstName *string
	LastName  *string
	Phone     *string
}

// SetVerificationInput changes verification flags set by an operator.
type SetVerificationInput struct {
	IsVerified  *bool
	AgeVerified *bool
}

// CreateStaffInput creates a password account for the back office.
type CreateStaffInput struct {
	Email     string
	Password  string
	FirstName string
	Superuser bool
}

// --- Output DTOs ---

// UserListOutput is one page of users.
type UserListOutput struct {
	Users []*entity.User
	Total int64
}

// UserUsecase defines the interface for user-related business operations.
type UserUsecase interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*entity.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*entity.User, error)
	// EnsureTelegramUser finds the user by Telegram id, creating or refreshing it from the profile.
	EnsureTelegramUser(ctx context.Context, profile *entity.TelegramProfile) (*entity.User, error)

	ListUsers(ctx context.Context, page Page) (*UserListOutput, error)
	SetVerification(ctx context.Context, userID uuid.UUID, input SetVerificationInput) (*entity.User, error)
	// CreateStaff creates an admin account or promotes the existing account with that email.
	CreateStaff(ctx context.Context, input CreateStaffInput) (*entity.User, error)
}
