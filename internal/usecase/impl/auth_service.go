package impl

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"fireworks/config"
	deliverycontext "fireworks/internal/delivery/context"
	"fireworks/internal/domain/entity"
	domainerrors "fireworks/internal/domain/errors"
	"fireworks/internal/domain/repository"
	"fireworks/internal/domain/service"
	"fireworks/internal/errors"
	"fireworks/internal/usecase"

	"go.uber.org/fx"
)

// authService implements the AuthUsecase interface.
type authService struct {
	txManager    repository.TransactionManager
	userRepo     repository.UserRepository
	tokenStore   repository.RefreshTokenStore
	hasher       service.PasswordHasher
	tokenService service.TokenService
	telegramAuth service.TelegramAuthVerifier
	refreshTTL   time.Duration
	logger       *slog.Logger
}

// AuthServiceParams holds dependencies for AuthService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	TxManager    repository.TransactionManager
	UserRepo     repository.UserRepository
	TokenStore   repository.RefreshTokenStore
	Hasher       service.PasswordHasher
	TokenService service.TokenService
	TelegramAuth service.TelegramAuthVerifier
	Config       *config.Config
	Logger       *slog.Logger
}

// NewAuthService is the constructor for authService.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	refreshTTL := 720 * time.Hour
	if params.Config != nil && params.Config.Auth != nil && params.Config.Auth.RefreshTTL > 0 {
		refreshTTL = params.Config.Auth.RefreshTTL
	}

	return &authService{
		txManager:    params.TxManager,
		userRepo:     params.UserRepo,
		tokenStore:   params.TokenStore,
		hasher:       params.Hasher,
		tokenService: params.TokenService,
		telegramAuth: params.TelegramAuth,
		refreshTTL:   refreshTTL,
		logger:       params.Logger,
	}
}

func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Login checks staff credentials and issues a token pair.
func (srv *authService) Login(ctx context.Context, input usecase.LoginInput) (*usecase.TokenOutput, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	user, err := srv.userRepo.FindByEmail(ctx, email)
	if errors.Is(err, domainerrors.ErrUserNotFound) {
		srv.log(ctx).Warn("Login attempt for unknown email", slog.String("email", email))

		return nil, domainerrors.ErrInvalidCredentials.WrapMessage("user not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find user by email")
	}

	if user.PasswordHash == "" || !srv.hasher.Check(input.Password, user.PasswordHash) {
		srv.log(ctx).Warn("Login attempt with wrong password", slog.Any("userID", user.ID))

		return nil, domainerrors.ErrInvalidCredentials.WrapMessage("password mismatch")
	}

	if !user.IsStaff() {
		srv.log(ctx).Warn("Password login rejected for non-staff user", slog.Any("userID", user.ID))

		return nil, domainerrors.ErrStaffOnly
	}

	return srv.issueTokens(ctx, user)
}

// LoginTelegram verifies a Login Widget payload and issues a token pair for the customer.
func (srv *authService) LoginTelegram(ctx context.Context, fields map[string]string) (*usecase.TokenOutput, error) {
	profile, err := srv.telegramAuth.Verify(fields)
	if err != nil {
		srv.log(ctx).Warn("Telegram login payload rejected", slog.Any("error", err))

		return nil, err
	}

	var user *entity.User
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		var upsertErr error
		user, upsertErr = upsertTelegramUser(ctx, repoFactory.UserRepo(), profile)

		return upsertErr
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to upsert telegram user")
	}

	return srv.issueTokens(ctx, user)
}

// Refresh issues a new access token. The refresh token stays valid until it expires or the user logs out.
func (srv *authService) Refresh(ctx context.Context, refreshToken string) (*usecase.TokenOutput, error) {
	if refreshToken == "" {
		return nil, domainerrors.ErrRefreshTokenInvalid
	}

	userID, err := srv.tokenStore.Find(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := srv.userRepo.FindByID(ctx, userID)
	if errors.Is(err, domainerrors.ErrUserNotFound) {
		return nil, domainerrors.ErrRefreshTokenInvalid.WrapMessage("token owner no longer exists")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load token owner")
	}

	accessToken, err := srv.tokenService.GenerateAccessToken(user.ID, user.Roles().ToStrings())
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate access token")
	}

	return &usecase.TokenOutput{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(srv.tokenService.AccessTokenTTL().Seconds()),
		User:         user,
	}, nil
}

// Logout forgets the refresh token.
func (srv *authService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return domainerrors.ErrRefreshTokenInvalid
	}

	if err := srv.tokenStore.Delete(ctx, refreshToken); err != nil {
		return errors.Wrap(err, "failed to delete refresh token")
	}

	return nil
}

func (srv *authService) issueTokens(ctx context.Context, user *entity.User) (*usecase.TokenOutput, error) {
	accessToken, err := srv.tokenService.GenerateAccessToken(user.ID, user.Roles().ToStrings())
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate access token")
	}

	refreshToken, err := srv.tokenService.NewRefreshToken()
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate refresh token")
	}

	if err := srv.tokenStore.Save(ctx, refreshToken, user.ID, srv.refreshTTL); err != nil {
		return nil, errors.Wrap(err, "failed to store refresh token")
	}

	srv.log(ctx).Info("Issued tokens", slog.Any("userID", user.ID), slog.Bool("staff", user.IsStaff()))

	return &usecase.TokenOutput{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(srv.tokenService.AccessTokenTTL().Seconds()),
		User:         user,
	}, nil
}
