package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/pathwise/internal/domain/user"
	"github.com/khoahotran/pathwise/pkg/apperror"
	"github.com/khoahotran/pathwise/pkg/auth"
	"github.com/khoahotran/pathwise/pkg/logger"
)

const minPasswordLength = 8

type RegisterUseCase struct {
	userRepo user.Repository
	jwtSvc   *auth.JWTService
	logger   logger.Logger
}

func NewRegisterUseCase(repo user.Repository, jwtSvc *auth.JWTService, log logger.Logger) *RegisterUseCase {
	return &RegisterUseCase{userRepo: repo, jwtSvc: jwtSvc, logger: log}
}

type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
}

// Execute creates the account and signs the caller in.
func (uc *RegisterUseCase) Execute(ctx context.Context, input RegisterInput) (*LoginOutput, error) {
	ctx, span := tracer.Start(ctx, "Register")
	defer span.End()

	u := &user.User{
		ID:          uuid.New(),
		Email:       input.Email,
		DisplayName: input.DisplayName,
		CreatedAt:   time.Now().UTC(),
	}
	if err := u.Validate(); err != nil {
		return nil, apperror.NewValidation(err.Error())
	}
	if len(input.Password) < minPasswordLength {
		return nil, apperror.NewValidation("password must be at least 8 characters")
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		span.RecordError(err)
		return nil, apperror.NewInternal("failed to hash password", err)
	}
	u.PasswordHash = hash

	if err := uc.userRepo.Create(ctx, u); err != nil {
		span.RecordError(err)
		return nil, err
	}

	token, err := uc.jwtSvc.GenerateToken(u.ID, u.Email)
	if err != nil {
		uc.logger.Error("Failed to generate token", err, zap.String("user_id", u.ID.String()))
		return nil, apperror.NewInternal("failed to generate token", err)
	}

	uc.logger.Info("User registered", zap.String("user_id", u.ID.String()))
	span.SetAttributes(attribute.String("user_id", u.ID.String()))
	return &LoginOutput{AccessToken: token, User: u}, nil
}
