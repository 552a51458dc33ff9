// Package auth содержит логику бизнес-уровня для работы с пользователями:
// регистрацию, вход по JWT, настройки и администрирование учетных записей.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/subscription-tracker/internal/lib/jwt"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/password"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
	"github.com/magabrotheeeer/subscription-tracker/internal/services"
	"github.com/magabrotheeeer/subscription-tracker/internal/storage/repository"
)

// ErrInvalidCredentials возвращается при неверной паре логин/пароль или негодном токене.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	RegisterUser(ctx context.Context, user models.User) (string, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByUID(ctx context.Context, userUID string) (*models.User, error)
	ListUsers(ctx context.Context, limit, offset int) ([]models.User, error)
	UpdateUserRole(ctx context.Context, userUID, role string) error
	RemoveUser(ctx context.Context, userUID string) error
	UpdateSettings(ctx context.Context, userUID string, settings models.Settings) error
	UpdatePasswordHash(ctx context.Context, userUID, passwordHash string) error
}

// Service отвечает за регистрацию, авторизацию и учетные записи.
type Service struct {
	users    UserRepository
	jwtMaker jwt.Maker
	log      *slog.Logger
}

// NewService создает новый экземпляр Service.
func NewService(users UserRepository, jwtMaker jwt.Maker, log *slog.Logger) *Service {
	return &Service{
		users:    users,
		jwtMaker: jwtMaker,
		log:      log,
	}
}

// Register создает пользователя с ролью "user" и возвращает его UID.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (string, error) {
	const op = "services.auth.Register"

	hashed, err := password.GetHash(req.Password)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	uid, err := s.users.RegisterUser(ctx, models.User{
		Email:        strings.TrimSpace(req.Email),
		Username:     strings.TrimSpace(req.Username),
		PasswordHash: hashed,
		Role:         models.RoleUser,
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("user registered", slog.String("user_uid", uid))
	return uid, nil
}

// Login проверяет пароль и выдает JWT.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (string, *models.User, error) {
	const op = "services.auth.Login"

	user, err := s.users.GetUserByUsername(ctx, req.Username)
	if errors.Is(err, repository.ErrNotFound) {
		return "", nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := password.CompareHash(user.PasswordHash, req.Password); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			return "", nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}

	token, err := s.jwtMaker.GenerateToken(user.UUID, user.Username, user.Role)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	return token, user, nil
}

// ValidateToken проверяет JWT и возвращает вызывающего пользователя.
func (s *Service) ValidateToken(_ context.Context, token string) (models.Caller, error) {
	const op = "services.auth.ValidateToken"

	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return models.Caller{}, fmt.Errorf("%s: %w: %v", op, ErrInvalidCredentials, err)
	}
	if claims.UserUID() == "" {
		return models.Caller{}, fmt.Errorf("%s: %w: empty subject", op, ErrInvalidCredentials)
	}
	return models.Caller{
		UserUID:  claims.UserUID(),
		Username: claims.Username,
		Role:     claims.Role,
	}, nil
}

// ListUsers возвращает страницу пользователей. Доступно только администратору.
func (s *Service) ListUsers(ctx context.Context, caller models.Caller, limit, offset int) ([]models.User, error) {
	const op = "services.auth.ListUsers"
	if !caller.IsAdmin() {
		return nil, fmt.Errorf("%s: %w", op, services.ErrForbidden)
	}
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	users, err := s.users.ListUsers(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return users, nil
}

// UpdateUserRole назначает пользователю роль user или admin.
func (s *Service) UpdateUserRole(ctx context.Context, caller models.Caller, userUID, role string) error {
	const op = "services.auth.UpdateUserRole"
	if !caller.IsAdmin() {
		return fmt.Errorf("%s: %w", op, services.ErrForbidden)
	}
	if role != models.RoleUser && role != models.RoleAdmin {
		return fmt.Errorf("%s: %w: unknown role %q", op, services.ErrInvalidInput, role)
	}
	if userUID == caller.UserUID && role != models.RoleAdmin {
		return fmt.Errorf("%s: %w: admin cannot demote itself", op, services.ErrInvalidInput)
	}

	if err := s.users.UpdateUserRole(ctx, userUID, role); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("user role changed", slog.String("user_uid", userUID), slog.String("role", role))
	return nil
}

// RemoveUser удаляет пользователя вместе с его подписками.
func (s *Service) RemoveUser(ctx context.Context, caller models.Caller, userUID string) error {
	const op = "services.auth.RemoveUser"
	if !caller.IsAdmin() {
		return fmt.Errorf("%s: %w", op, services.ErrForbidden)
	}
	if userUID == caller.UserUID {
		return fmt.Errorf("%s: %w: admin cannot remove itself", op, services.ErrInvalidInput)
	}

	if err := s.users.RemoveUser(ctx, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("user removed", slog.String("user_uid", userUID))
	return nil
}

// GetSettings возвращает настройки вызывающего пользователя.
func (s *Service) GetSettings(ctx context.Context, caller models.Caller) (models.Settings, error) {
	const op = "services.auth.GetSettings"

	user, err := s.users.GetUserByUID(ctx, caller.UserUID)
	if err != nil {
		return models.Settings{}, fmt.Errorf("%s: %w", op, err)
	}
	return models.Settings{
		Email:                user.Email,
		Currency:             user.Currency,
		NotificationsEnabled: user.NotificationsEnabled,
		ReminderDays:         reminderDaysOrDefault(user.ReminderDays),
	}, nil
}

// UpdateSettings сохраняет настройки вызывающего пользователя.
func (s *Service) UpdateSettings(ctx context.Context, caller models.Caller, req models.SettingsRequest) (models.Settings, error) {
	const op = "services.auth.UpdateSettings"

	settings := models.Settings{
		Email:                strings.TrimSpace(req.Email),
		Currency:             strings.ToUpper(req.Currency),
		NotificationsEnabled: req.NotificationsEnabled,
		ReminderDays:         reminderDaysOrDefault(req.ReminderDays),
	}
	if err := s.users.UpdateSettings(ctx, caller.UserUID, settings); err != nil {
		return models.Settings{}, fmt.Errorf("%s: %w", op, err)
	}
	return settings, nil
}

func reminderDaysOrDefault(days int) int {
	if days <= 0 {
		return models.DefaultReminderDays
	}
	return days
}

// ChangePassword меняет пароль, если старый пароль указан верно.
func (s *Service) ChangePassword(ctx context.Context, caller models.Caller, req models.PasswordRequest) error {
	const op = "services.auth.ChangePassword"

	user, err := s.users.GetUserByUID(ctx, caller.UserUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := password.CompareHash(user.PasswordHash, req.OldPassword); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			return fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	hashed, err := password.GetHash(req.NewPassword)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.users.UpdatePasswordHash(ctx, caller.UserUID, hashed); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
