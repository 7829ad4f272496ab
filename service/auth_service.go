package application

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"

	"github.com/jeffrin-samuel/RoyalRetreats-FullStack/authorization"
	"github.com/jeffrin-samuel/RoyalRetreats-FullStack/domain"
	apperrors "github.com/jeffrin-samuel/RoyalRetreats-FullStack/errors"
	"github.com/jeffrin-samuel/RoyalRetreats-FullStack/mail"
)

const resetCodeLifetime = time.Hour

type AuthService struct {
	users  domain.UserStore
	tokens *authorization.TokenManager
	cache  domain.TokenCache
	mailer mail.Sender
	logger *logrus.Logger
	tracer trace.Tracer
}

func NewAuthService(users domain.UserStore, tokens *authorization.TokenManager, cache domain.TokenCache, mailer mail.Sender, logger *logrus.Logger, tracer trace.Tracer) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		cache:  cache,
		mailer: mailer,
		logger: logger,
		tracer: tracer,
	}
}

func (service *AuthService) Signup(ctx context.Context, payload domain.SignupPayload) (*domain.User, error) {
	ctx, span := service.tracer.Start(ctx, "AuthService.Signup")
	defer span.End()

	if err := domain.Validate(payload); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username: strings.TrimSpace(payload.Username),
		Email:    strings.TrimSpace(payload.Email),
		Password: string(hash),
	}

	registered, err := service.users.Register(ctx, user)
	if err != nil {
		if err == apperrors.ErrConflict {
			return nil, apperrors.New(apperrors.ErrConflict, apperrors.EmailAlreadyRegistered)
		}
		return nil, err
	}

	// Welcome mail is best effort; the account exists either way.
	if err := service.mailer.SendWelcomeEmail(registered.Email); err != nil {
		service.logger.WithError(err).Warn("Failed to send welcome email")
	}

	return registered, nil
}

func (service *AuthService) Login(ctx context.Context, payload domain.LoginPayload) (string, error) {
	ctx, span := service.tracer.Start(ctx, "AuthService.Login")
	defer span.End()

	if err := domain.Validate(payload); err != nil {
		return "", err
	}

	user, err := service.users.GetByUsername(ctx, payload.Username)
	if err != nil {
		// Wrong username and wrong password read the same to the caller.
		return "", apperrors.New(apperrors.ErrUnauthorized, apperrors.InvalidCredentials)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(payload.Password)); err != nil {
		return "", apperrors.New(apperrors.ErrUnauthorized, apperrors.InvalidCredentials)
	}

	return service.tokens.Generate(user.ID.Hex(), user.Username)
}

// Logout blocklists the presented token for whatever lifetime it has left.
func (service *AuthService) Logout(ctx context.Context, rawToken string) error {
	ctx, span := service.tracer.Start(ctx, "AuthService.Logout")
	defer span.End()

	claims, err := service.tokens.Verify(rawToken)
	if err != nil {
		return err
	}

	return service.cache.BlockToken(ctx, rawToken, time.Until(claims.ExpiresAt))
}

// SendResetCode issues a fresh 6-digit code with a 1 hour expiry and mails
// it to the account's address. Reissuing overwrites any previous code.
func (service *AuthService) SendResetCode(ctx context.Context, payload domain.ResetRequestPayload) error {
	ctx, span := service.tracer.Start(ctx, "AuthService.SendResetCode")
	defer span.End()

	if err := domain.Validate(payload); err != nil {
		return err
	}

	user, err := service.users.GetByEmail(ctx, payload.Email)
	if err != nil {
		if err == apperrors.ErrNotFound {
			return apperrors.New(apperrors.ErrNotFound, apperrors.UserNotFound)
		}
		return err
	}

	code := fmt.Sprintf("%d", 100000+rand.Intn(900000))
	expiry := time.Now().Add(resetCodeLifetime).UnixMilli()

	if err := service.users.UpdateResetCode(ctx, user.ID, code, expiry); err != nil {
		return err
	}

	if err := service.mailer.SendResetCodeEmail(user.Email, code); err != nil {
		service.logger.WithError(err).Error("Failed to send reset OTP")
		return apperrors.New(apperrors.ErrUpstream, "error sending OTP")
	}

	return nil
}

// VerifyResetCode checks a submitted code without consuming it. The code
// stays valid for further attempts until a successful password reset or
// expiry; only ResetPassword clears it. No-such-code, mismatch and expiry
// all collapse into the same answer.
func (service *AuthService) VerifyResetCode(ctx context.Context, payload domain.ResetVerifyPayload) error {
	ctx, span := service.tracer.Start(ctx, "AuthService.VerifyResetCode")
	defer span.End()

	if err := domain.Validate(payload); err != nil {
		return err
	}

	user, err := service.users.GetByResetCode(ctx, payload.Code)
	if err != nil {
		return apperrors.New(apperrors.ErrUnauthorized, apperrors.InvalidOrExpiredCode)
	}

	if !user.HasActiveResetCode() || user.ResetCode != payload.Code || time.Now().UnixMilli() > user.ResetCodeExpiry {
		return apperrors.New(apperrors.ErrUnauthorized, apperrors.InvalidOrExpiredCode)
	}

	return nil
}

// ResetPassword replaces the credential and invalidates the reset code.
// This is the only step that clears the code.
func (service *AuthService) ResetPassword(ctx context.Context, payload domain.ResetPasswordPayload) error {
	ctx, span := service.tracer.Start(ctx, "AuthService.ResetPassword")
	defer span.End()

	if err := domain.Validate(payload); err != nil {
		return err
	}

	user, err := service.users.GetByEmail(ctx, payload.Email)
	if err != nil {
		if err == apperrors.ErrNotFound {
			return apperrors.New(apperrors.ErrNotFound, apperrors.UserNotFound)
		}
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if err := service.users.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return err
	}

	return service.users.UpdateResetCode(ctx, user.ID, "", 0)
}
