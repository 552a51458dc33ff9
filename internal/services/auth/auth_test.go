package auth_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	customjwt "github.com/magabrotheeeer/subscription-tracker/internal/lib/jwt"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/password"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
	"github.com/magabrotheeeer/subscription-tracker/internal/services"
	"github.com/magabrotheeeer/subscription-tracker/internal/services/auth"
	"github.com/magabrotheeeer/subscription-tracker/internal/storage/repository"
)

// Мок для UserRepository
type UserRepoMock struct {
	mock.Mock
}

func (m *UserRepoMock) RegisterUser(ctx context.Context, user models.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

func (m *UserRepoMock) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepoMock) GetUserByUID(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepoMock) ListUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *UserRepoMock) UpdateUserRole(ctx context.Context, userUID, role string) error {
	return m.Called(ctx, userUID, role).Error(0)
}

func (m *UserRepoMock) RemoveUser(ctx context.Context, userUID string) error {
	return m.Called(ctx, userUID).Error(0)
}

func (m *UserRepoMock) UpdateSettings(ctx context.Context, userUID string, settings models.Settings) error {
	return m.Called(ctx, userUID, settings).Error(0)
}

func (m *UserRepoMock) UpdatePasswordHash(ctx context.Context, userUID, passwordHash string) error {
	return m.Called(ctx, userUID, passwordHash).Error(0)
}

var (
	alice = models.Caller{UserUID: "u-alice", Username: "alice", Role: models.RoleUser}
	admin = models.Caller{UserUID: "u-admin", Username: "root", Role: models.RoleAdmin}
)

func newService(r *UserRepoMock) *auth.Service {
	maker := customjwt.NewJWTMaker("test-secret", time.Hour)
	return auth.NewService(r, maker, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func storedUser(t *testing.T, raw string) *models.User {
	hash, err := password.GetHash(raw)
	require.NoError(t, err)
	return &models.User{UUID: alice.UserUID, Username: "alice", Email: "alice@example.com",
		PasswordHash: hash, Role: models.RoleUser, Currency: "USD", NotificationsEnabled: true}
}

func TestService_Register(t *testing.T) {
	tests := []struct {
		name        string
		setupMocks  func(r *UserRepoMock)
		wantUserUID string
		wantErr     error
	}{
		{
			name: "successful registration",
			setupMocks: func(r *UserRepoMock) {
				r.On("RegisterUser", mock.Anything, mock.MatchedBy(func(user models.User) bool {
					return user.Email == "test@example.com" &&
						user.Username == "testuser" &&
						password.CompareHash(user.PasswordHash, "password123") == nil &&
						user.Role == models.RoleUser
				})).Return("some-uuid-string", nil).Once()
			},
			wantUserUID: "some-uuid-string",
		},
		{
			name: "duplicate username",
			setupMocks: func(r *UserRepoMock) {
				r.On("RegisterUser", mock.Anything, mock.Anything).Return("", repository.ErrAlreadyExists).Once()
			},
			wantErr: repository.ErrAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := new(UserRepoMock)
			tt.setupMocks(r)

			uid, err := newService(r).Register(context.Background(), models.RegisterRequest{
				Username: "testuser", Email: "test@example.com", Password: "password123",
			})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantUserUID, uid)
			}
			r.AssertExpectations(t)
		})
	}
}

func TestService_LoginAndValidate(t *testing.T) {
	r := new(UserRepoMock)
	r.On("GetUserByUsername", mock.Anything, "alice").Return(storedUser(t, "password123"), nil)
	r.On("GetUserByUsername", mock.Anything, "ghost").Return(nil, repository.ErrNotFound)
	svc := newService(r)

	token, user, err := svc.Login(context.Background(), models.LoginRequest{Username: "alice", Password: "password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, alice.UserUID, user.UUID)

	caller, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, alice, caller)

	_, _, err = svc.Login(context.Background(), models.LoginRequest{Username: "alice", Password: "wrong-password"})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, _, err = svc.Login(context.Background(), models.LoginRequest{Username: "ghost", Password: "password123"})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = svc.ValidateToken(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestService_Admin(t *testing.T) {
	r := new(UserRepoMock)
	r.On("ListUsers", mock.Anything, 100, 0).Return([]models.User{{Username: "alice"}}, nil).Once()
	r.On("UpdateUserRole", mock.Anything, alice.UserUID, models.RoleAdmin).Return(nil).Once()
	r.On("RemoveUser", mock.Anything, alice.UserUID).Return(nil).Once()
	svc := newService(r)
	ctx := context.Background()

	_, err := svc.ListUsers(ctx, alice, 10, 0)
	assert.ErrorIs(t, err, services.ErrForbidden)

	users, err := svc.ListUsers(ctx, admin, 0, -5)
	require.NoError(t, err)
	assert.Len(t, users, 1)

	assert.ErrorIs(t, svc.UpdateUserRole(ctx, admin, alice.UserUID, "superuser"), services.ErrInvalidInput)
	assert.ErrorIs(t, svc.UpdateUserRole(ctx, admin, admin.UserUID, models.RoleUser), services.ErrInvalidInput)
	require.NoError(t, svc.UpdateUserRole(ctx, admin, alice.UserUID, models.RoleAdmin))

	assert.ErrorIs(t, svc.RemoveUser(ctx, alice, admin.UserUID), services.ErrForbidden)
	assert.ErrorIs(t, svc.RemoveUser(ctx, admin, admin.UserUID), services.ErrInvalidInput)
	require.NoError(t, svc.RemoveUser(ctx, admin, alice.UserUID))
	r.AssertExpectations(t)
}

func TestService_Settings(t *testing.T) {
	r := new(UserRepoMock)
	r.On("GetUserByUID", mock.Anything, alice.UserUID).Return(storedUser(t, "password123"), nil)
	r.On("UpdateSettings", mock.Anything, alice.UserUID, models.Settings{
		Email: "new@example.com", Currency: "EUR", NotificationsEnabled: false, ReminderDays: 3,
	}).Return(nil).Once()
	r.On("UpdateSettings", mock.Anything, alice.UserUID, models.Settings{
		Email: "new@example.com", Currency: "EUR", NotificationsEnabled: true, ReminderDays: 7,
	}).Return(nil).Once()
	r.On("UpdatePasswordHash", mock.Anything, alice.UserUID, mock.MatchedBy(func(hash string) bool {
		return password.CompareHash(hash, "new-password") == nil
	})).Return(nil).Once()
	svc := newService(r)
	ctx := context.Background()

	settings, err := svc.GetSettings(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, models.Settings{Email: "alice@example.com", Currency: "USD", NotificationsEnabled: true, ReminderDays: 3}, settings)

	settings, err = svc.UpdateSettings(ctx, alice, models.SettingsRequest{Email: " new@example.com", Currency: "eur"})
	require.NoError(t, err)
	assert.Equal(t, "EUR", settings.Currency)
	assert.Equal(t, models.DefaultReminderDays, settings.ReminderDays)

	settings, err = svc.UpdateSettings(ctx, alice, models.SettingsRequest{
		Email: "new@example.com", Currency: "EUR", NotificationsEnabled: true, ReminderDays: 7,
	})
	require.NoError(t, err)
	assert.Equal(t, 7, settings.ReminderDays)

	err = svc.ChangePassword(ctx, alice, models.PasswordRequest{OldPassword: "nope", NewPassword: "new-password"})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	require.NoError(t, svc.ChangePassword(ctx, alice, models.PasswordRequest{OldPassword: "password123", NewPassword: "new-password"}))
	r.AssertExpectations(t)
}

func TestService_LoginRepositoryError(t *testing.T) {
	r := new(UserRepoMock)
	r.On("GetUserByUsername", mock.Anything, "alice").Return(nil, errors.New("db down"))

	_, _, err := newService(r).Login(context.Background(), models.LoginRequest{Username: "alice", Password: "x"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, auth.ErrInvalidCredentials)
}
