// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"strings"

	deliverycontext "fireworks/internal/delivery/context"
	"fireworks/internal/domain/entity"
	domainerrors "fireworks/internal/domain/errors"
	"fireworks/internal/domain/repository"
	"fireworks/internal/domain/service"
	"fireworks/internal/errors"
	"fireworks/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

// userService implements the UserUsecase interface.
type userService struct {
	txManager repository.TransactionManager
	userRepo  repository.UserRepository
	hasher    service.PasswordHasher
	logger    *slog.Logger
}

// UserServiceParams holds dependencies for UserService, injected by Fx.
type UserServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	UserRepo  repository.UserRepository
	Hasher    service.PasswordHasher
	Logger    *slog.Logger
}

// NewUserService is the constructor for userService. It receives all dependencies as interfaces.
func NewUserService(params UserServiceParams) usecase.UserUsecase {
	return &userService{
		txManager: params.TxManager,
		userRepo:  params.UserRepo,
		hasher:    params.Hasher,
		logger:    params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *userService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

func (srv *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := srv.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get profile")
	}

	return user, nil
}

// UpdateProfile changes the name and phone of the caller.
func (srv *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, input usecase.UpdateProfileInput) (*entity.User, error) {
	var updated *entity.User
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		user, err := userRepo.FindByID(ctx, userID)
		if err != nil {
			return errors.Wrap(err, "failed to find user")
		}

		if input.FirstName != nil {
			user.FirstName = strings.TrimSpace(*input.FirstName)
		}
		if input.LastName != nil {
			user.LastName = strings.TrimSpace(*input.LastName)
		}
		if input.Phone != nil {
			user.Phone = strings.TrimSpace(*input.Phone)
		}

		if err := userRepo.Update(ctx, user); err != nil {
			return errors.Wrap(err, "failed to update user")
		}
		updated = user

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to update profile")
	}

	srv.log(ctx).Debug("Profile updated", slog.Any("userID", userID))

	return updated, nil
}

// EnsureTelegramUser returns the user bound to the Telegram account, creating it on first contact.
func (srv *userService) EnsureTelegramUser(ctx context.Context, profile *entity.TelegramProfile) (*entity.User, error) {
	if profile == nil || profile.TelegramID == 0 {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("telegram id is required")
	}

	var user *entity.User
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		var upsertErr error
		user, upsertErr = upsertTelegramUser(ctx, repoFactory.UserRepo(), profile)

		return upsertErr
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to ensure telegram user")
	}

	return user, nil
}

func (srv *userService) ListUsers(ctx context.Context, page usecase.Page) (*usecase.UserListOutput, error) {
	users, total, err := srv.userRepo.List(ctx, repository.ListOptions{Limit: page.Limit, Offset: page.Offset})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list users")
	}

	return &usecase.UserListOutput{Users: users, Total: total}, nil
}

// SetVerification changes the operator-controlled verification flags.
func (srv *userService) SetVerification(ctx context.Context, userID uuid.UUID, input usecase.SetVerificationInput) (*entity.User, error) {
	var updated *entity.User
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		user, err := userRepo.FindByID(ctx, userID)
		if err != nil {
			return errors.Wrap(err, "failed to find user")
		}

		if input.IsVerified != nil {
			user.IsVerified = *input.IsVerified
		}
		if input.AgeVerified != nil {
			user.AgeVerified = *input.AgeVerified
		}

		if err := userRepo.Update(ctx, user); err != nil {
			return errors.Wrap(err, "failed to update user")
		}
		updated = user

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to set verification")
	}

	srv.log(ctx).Info("Verification flags changed",
		slog.Any("userID", userID),
		slog.Bool("isVerified", updated.IsVerified),
		slog.Bool("ageVerified", updated.AgeVerified),
	)

	return updated, nil
}

// CreateStaff creates or promotes a password account with admin rights.
func (srv *userService) CreateStaff(ctx context.Context, input usecase.CreateStaffInput) (*entity.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("email and password are required")
	}

	hash, err := srv.hasher.Hash(input.Password)
	if err != nil {
		return nil, domainerrors.ErrPasswordHashFailed.WrapMessage(err.Error())
	}

	var staff *entity.User
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		user, err := userRepo.FindByEmail(ctx, email)
		switch {
		case errors.Is(err, domainerrors.ErrUserNotFound):
			user = &entity.User{Email: &email, FirstName: input.FirstName}
			user.PasswordHash = hash
			user.IsAdmin = true
			user.IsSuperuser = input.Superuser
			if err := userRepo.Create(ctx, user); err != nil {
				return errors.Wrap(err, "failed to create staff user")
			}
		case err != nil:
			return errors.Wrap(err, "failed to find user by email")
		default:
			user.PasswordHash = hash
			user.IsAdmin = true
			user.IsSuperuser = user.IsSuperuser || input.Superuser
			if err := userRepo.Update(ctx, user); err != nil {
				return errors.Wrap(err, "failed to promote user")
			}
		}
		staff = user

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create staff")
	}

	srv.log(ctx).Info("Staff account ready", slog.Any("userID", staff.ID), slog.Bool("superuser", staff.IsSuperuser))

	return staff, nil
}

// upsertTelegramUser finds the user by Telegram id and refreshes the public profile fields,
// or creates a new customer.
func upsertTelegramUser(ctx context.Context, userRepo repository.UserRepository, profile *entity.TelegramProfile) (*entity.User, error) {
	user, err := userRepo.FindByTelegramID(ctx, profile.TelegramID)
	if errors.Is(err, domainerrors.ErrUserNotFound) {
		telegramID := profile.TelegramID
		user = &entity.User{
			TelegramID: &telegramID,
			Username:   profile.Username,
			FirstName:  profile.FirstName,
			LastName:   profile.LastName,
		}
		if err := userRepo.Create(ctx, user); err != nil {
			return nil, errors.Wrap(err, "failed to create telegram user")
		}

		return user, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find telegram user")
	}

	if user.Username == profile.Username && user.FirstName != "" {
		return user, nil
	}

	user.Username = profile.Username
	if user.FirstName == "" {
		user.FirstName = profile.FirstName
		user.LastName = profile.LastName
	}
	if err := userRepo.Update(ctx, user); err != nil {
		return nil, errors.Wrap(err, "failed to refresh telegram user")
	}

	return user, nil
}
