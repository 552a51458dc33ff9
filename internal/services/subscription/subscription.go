// Package subscription содержит бизнес-логику работы с подписками:
// CRUD с проверкой владельца, выборки, статистику и отчеты поверх пакета tracker.
package subscription

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/subscription-tracker/internal/cache"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/metrics"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
	"github.com/magabrotheeeer/subscription-tracker/internal/services"
	"github.com/magabrotheeeer/subscription-tracker/internal/tracker"
)

// Repository определяет методы хранилища, нужные сервису.
type Repository interface {
	CreateSubscription(ctx context.Context, sub models.Subscription) (string, error)
	ReadSubscription(ctx context.Context, id string) (*models.Subscription, error)
	UpdateSubscription(ctx context.Context, sub models.Subscription) error
	RemoveSubscription(ctx context.Context, id string) error
	ListSubscriptions(ctx context.Context, userUID string) ([]models.Subscription, error)
	ListAllSubscriptions(ctx context.Context) ([]models.Subscription, error)
	GetUserByUID(ctx context.Context, userUID string) (*models.User, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// Service реализует бизнес-логику работы с подписками.
type Service struct {
	repo     Repository
	cache    Cache
	cacheTTL time.Duration
	log      *slog.Logger
	now      func() time.Time
}

// Option настраивает Service.
type Option func(*Service)

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithCacheTTL задает время жизни кэша списков.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Service) { s.cacheTTL = ttl }
}

// NewService создает новый экземпляр Service.
func NewService(repo Repository, cache Cache, log *slog.Logger, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		cache:    cache,
		cacheTTL: time.Hour,
		log:      log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create создает подписку от имени caller и возвращает её ID.
func (s *Service) Create(ctx context.Context, caller models.Caller, req models.SubscriptionRequest) (string, error) {
	const op = "services.subscription.Create"

	sub, err := fromRequest(req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	sub.UserUID = caller.UserUID

	id, err := s.repo.CreateSubscription(ctx, sub)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	metrics.SubscriptionsCreated.Inc()
	s.log.Info("subscription created", slog.String("id", id), slog.String("user_uid", caller.UserUID))

	s.invalidate(ctx, caller.UserUID)
	return id, nil
}

// Read возвращает подписку, если caller её владелец или администратор.
func (s *Service) Read(ctx context.Context, caller models.Caller, id string) (*models.Subscription, error) {
	const op = "services.subscription.Read"

	sub, err := s.owned(ctx, caller, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// Update перезаписывает подписку, если caller её владелец или администратор.
func (s *Service) Update(ctx context.Context, caller models.Caller, id string, req models.SubscriptionRequest) (*models.Subscription, error) {
	const op = "services.subscription.Update"

	current, err := s.owned(ctx, caller, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	sub, err := fromRequest(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	sub.ID = current.ID
	sub.UserUID = current.UserUID
	sub.CreatedAt = current.CreatedAt

	if err := s.repo.UpdateSubscription(ctx, sub); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx, current.UserUID)
	return &sub, nil
}

// Remove удаляет подписку, если caller её владелец или администратор.
func (s *Service) Remove(ctx context.Context, caller models.Caller, id string) error {
	const op = "services.subscription.Remove"

	current, err := s.owned(ctx, caller, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.RemoveSubscription(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx, current.UserUID)
	return nil
}

// List возвращает подписки caller после поиска, фильтров и сортировки.
func (s *Service) List(ctx context.Context, caller models.Caller, criteria models.Criteria) ([]models.Subscription, error) {
	const op = "services.subscription.List"

	records, err := s.records(ctx, caller.UserUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return tracker.Apply(records, criteria, s.now()), nil
}

// Stats возвращает сводку для дашборда.
func (s *Service) Stats(ctx context.Context, caller models.Caller) (models.Stats, error) {
	const op = "services.subscription.Stats"

	records, err := s.records(ctx, caller.UserUID)
	if err != nil {
		return models.Stats{}, fmt.Errorf("%s: %w", op, err)
	}
	return tracker.Summarize(records, s.now()), nil
}

// Upcoming возвращает платежи в пределах horizonDays дней, включая просроченные,
// отфильтрованные по сумме и срочности.
func (s *Service) Upcoming(ctx context.Context, caller models.Caller, horizonDays int, filter models.PaymentFilter) (models.UpcomingReport, error) {
	const op = "services.subscription.Upcoming"

	records, err := s.records(ctx, caller.UserUID)
	if err != nil {
		return models.UpcomingReport{}, fmt.Errorf("%s: %w", op, err)
	}
	return tracker.UpcomingReport(records, s.now(), horizonDays, filter), nil
}

// ExportUpcoming выгружает отфильтрованные предстоящие платежи в CSV
// в валюте из настроек пользователя.
func (s *Service) ExportUpcoming(ctx context.Context, caller models.Caller, horizonDays int, filter models.PaymentFilter) ([]byte, error) {
	const op = "services.subscription.ExportUpcoming"

	report, err := s.Upcoming(ctx, caller, horizonDays, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user, err := s.repo.GetUserByUID(ctx, caller.UserUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var buf bytes.Buffer
	if err := tracker.WritePaymentsCSV(&buf, report.Payments, user.Currency); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return buf.Bytes(), nil
}

// Report возвращает расходы по категориям и периодам списания.
func (s *Service) Report(ctx context.Context, caller models.Caller) (models.Report, error) {
	const op = "services.subscription.Report"

	records, err := s.records(ctx, caller.UserUID)
	if err != nil {
		return models.Report{}, fmt.Errorf("%s: %w", op, err)
	}
	return tracker.BuildReport(records), nil
}

// AdminStats возвращает сводку по подпискам всех пользователей.
func (s *Service) AdminStats(ctx context.Context, caller models.Caller) (models.Stats, error) {
	const op = "services.subscription.AdminStats"
	if !caller.IsAdmin() {
		return models.Stats{}, fmt.Errorf("%s: %w", op, services.ErrForbidden)
	}

	records, err := s.repo.ListAllSubscriptions(ctx)
	if err != nil {
		return models.Stats{}, fmt.Errorf("%s: %w", op, err)
	}
	return tracker.Summarize(records, s.now()), nil
}

func (s *Service) owned(ctx context.Context, caller models.Caller, id string) (*models.Subscription, error) {
	sub, err := s.repo.ReadSubscription(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub.UserUID != caller.UserUID && !caller.IsAdmin() {
		return nil, services.ErrForbidden
	}
	return sub, nil
}

// records возвращает полный набор подписок пользователя, сначала из кэша.
func (s *Service) records(ctx context.Context, userUID string) ([]models.Subscription, error) {
	key := cache.SubscriptionsKey(userUID)

	var cached []models.Subscription
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.log.Warn("failed to read cache", slog.String("key", key), sl.Err(err))
	}
	if found {
		return cached, nil
	}

	records, err := s.repo.ListSubscriptions(ctx, userUID)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, records, s.cacheTTL); err != nil {
		s.log.Warn("failed to add to cache", slog.String("key", key), sl.Err(err))
	}
	return records, nil
}

func (s *Service) invalidate(ctx context.Context, userUID string) {
	key := cache.SubscriptionsKey(userUID)
	if err := s.cache.Invalidate(ctx, key); err != nil {
		s.log.Warn("failed to invalidate cache", slog.String("key", key), sl.Err(err))
	}
}

func fromRequest(req models.SubscriptionRequest) (models.Subscription, error) {
	if req.Cost.IsNegative() {
		return models.Subscription{}, fmt.Errorf("%w: cost must not be negative", services.ErrInvalidInput)
	}
	next, err := models.ParseDate(req.NextPaymentDate)
	if err != nil {
		return models.Subscription{}, fmt.Errorf("%w: nextPaymentDate: %v", services.ErrInvalidInput, err)
	}

	status := strings.TrimSpace(req.Status)
	if status == "" {
		status = string(models.StatusActive)
	}
	return models.Subscription{
		ServiceName:     strings.TrimSpace(req.ServiceName),
		Cost:            req.Cost,
		BillingCycle:    strings.ToLower(strings.TrimSpace(req.BillingCycle)),
		Category:        strings.TrimSpace(req.Category),
		NextPaymentDate: next,
		IsRecurring:     req.IsRecurring,
		Description:     req.Description,
		Status:          status,
	}, nil
}
