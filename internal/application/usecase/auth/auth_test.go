package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/pathwise/internal/domain/user"
	"github.com/khoahotran/pathwise/pkg/apperror"
	"github.com/khoahotran/pathwise/pkg/auth"
	"github.com/khoahotran/pathwise/pkg/logger"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*user.User)
	return u, args.Error(1)
}

func (m *mockUserRepo) Create(ctx context.Context, u *user.User) error {
	return m.Called(ctx, u).Error(0)
}

func newJWT() *auth.JWTService {
	return auth.NewJWTService("test-secret", time.Hour)
}

func TestRegisterThenLogin(t *testing.T) {
	ctx := context.Background()
	repo := new(mockUserRepo)
	jwtSvc := newJWT()

	var created *user.User
	repo.On("Create", mock.Anything, mock.AnythingOfType("*user.User")).
		Run(func(args mock.Arguments) { created = args.Get(1).(*user.User) }).
		Return(nil).Once()

	out, err := NewRegisterUseCase(repo, jwtSvc, logger.NewNop()).Execute(ctx, RegisterInput{
		Email:       "  Ana@Example.com ",
		Password:    "correct horse",
		DisplayName: "Ana",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, out.AccessToken)
	assert.Equal(t, "ana@example.com", created.Email)
	assert.NotEqual(t, "correct horse", created.PasswordHash)

	repo.On("FindByEmail", mock.Anything, "ana@example.com").Return(created, nil)
	login := NewLoginUseCase(repo, jwtSvc, logger.NewNop())

	res, err := login.Execute(ctx, LoginInput{Email: "ANA@example.com", Password: "correct horse"})
	require.NoError(t, err)
	claims, err := jwtSvc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, created.ID, claims.UserID)

	_, err = login.Execute(ctx, LoginInput{Email: "ana@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestLoginUnknownEmail(t *testing.T) {
	repo := new(mockUserRepo)
	repo.On("FindByEmail", mock.Anything, "ghost@example.com").Return(nil, user.ErrUserNotFound)

	_, err := NewLoginUseCase(repo, newJWT(), logger.NewNop()).
		Execute(context.Background(), LoginInput{Email: "ghost@example.com", Password: "whatever1"})

	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestRegisterValidation(t *testing.T) {
	repo := new(mockUserRepo)
	uc := NewRegisterUseCase(repo, newJWT(), logger.NewNop())

	_, err := uc.Execute(context.Background(), RegisterInput{Email: "not-an-email", Password: "longenough", DisplayName: "x"})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = uc.Execute(context.Background(), RegisterInput{Email: "a@b.co", Password: "short", DisplayName: "x"})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
