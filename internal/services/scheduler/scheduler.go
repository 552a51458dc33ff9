// Package scheduler периодически ищет платежи, до которых осталось
// несколько дней, и публикует напоминания в очередь уведомлений.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/subscription-tracker/internal/cache"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/metrics"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
	"github.com/magabrotheeeer/subscription-tracker/internal/rabbitmq"
	"github.com/magabrotheeeer/subscription-tracker/internal/tracker"
)

// reminderTTL — сколько хранится отметка об отправленном напоминании.
const reminderTTL = 7 * 24 * time.Hour

// Repository отдает подписки с ближайшими платежами.
type Repository interface {
	ListReminderCandidates(ctx context.Context, before models.Date) ([]models.ReminderCandidate, error)
}

// Deduplicator ставит отметку, если её еще нет, и снимает её.
type Deduplicator interface {
	SetNX(ctx context.Context, key string, expiration time.Duration) (bool, error)
	Invalidate(ctx context.Context, key string) error
}

// Service публикует напоминания о ближайших платежах.
type Service struct {
	repo      Repository
	dedup     Deduplicator
	publisher rabbitmq.Publisher
	log       *slog.Logger
	now       func() time.Time
}

// NewService создает новый экземпляр Service.
func NewService(repo Repository, dedup Deduplicator, publisher rabbitmq.Publisher, log *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		dedup:     dedup,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

// WithClock подменяет источник текущего времени.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Run выполняет проход сразу и затем каждые interval до отмены ctx.
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	s.runOnce(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("reminder scheduler stopped")
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Service) runOnce(ctx context.Context) {
	published, err := s.PublishDueReminders(ctx)
	if err != nil {
		s.log.Error("failed to publish reminders", sl.Err(err))
		return
	}
	s.log.Info("reminder pass finished", slog.Int("published", published))
}

// PublishDueReminders публикует напоминания по платежам, до которых осталось
// не больше дней, чем выбрал владелец в настройках (ReminderDays), и
// возвращает число опубликованных сообщений. Повторно по той же дате платежа
// напоминание не отправляется. Если публикация не удалась, отметка снимается
// и напоминание будет отправлено на следующем проходе.
func (s *Service) PublishDueReminders(ctx context.Context) (int, error) {
	const op = "services.scheduler.PublishDueReminders"

	now := s.now()
	before := models.Date{Time: now.AddDate(0, 0, models.MaxReminderDays+1)}
	candidates, err := s.repo.ListReminderCandidates(ctx, before)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	published := 0
	for _, c := range candidates {
		sub := c.Subscription
		if tracker.StatusBucket(sub.Status) != models.StatusActive || sub.NextPaymentDate.IsZero() {
			continue
		}
		days := tracker.DaysUntil(sub.NextPaymentDate.Time, now)
		if days < 0 || days > reminderWindow(c.ReminderDays) {
			continue
		}

		key := cache.ReminderKey(sub.ID, sub.NextPaymentDate.Format(models.DateLayout))
		fresh, err := s.dedup.SetNX(ctx, key, reminderTTL)
		if err != nil {
			s.log.Warn("failed to mark reminder, skipping", sl.Op(op), slog.String("subscription_id", sub.ID), sl.Err(err))
			continue
		}
		if !fresh {
			continue
		}

		reminder := models.Reminder{
			SubscriptionID: sub.ID,
			Email:          c.Email,
			Username:       c.Username,
			ServiceName:    sub.ServiceName,
			Amount:         sub.Cost,
			DueDate:        sub.NextPaymentDate,
			DaysUntil:      days,
		}
		if err := rabbitmq.PublishMessage(s.publisher, rabbitmq.NotificationsExchange, rabbitmq.PaymentRemindersKey, reminder); err != nil {
			s.log.Error("failed to publish message", sl.Op(op), slog.String("subscription_id", sub.ID), sl.Err(err))
			if err := s.dedup.Invalidate(ctx, key); err != nil {
				s.log.Warn("failed to unmark reminder", sl.Op(op), slog.String("subscription_id", sub.ID), sl.Err(err))
			}
			continue
		}
		metrics.RemindersPublished.Inc()
		published++
	}
	return published, nil
}

// reminderWindow возвращает окно напоминаний пользователя в днях.
func reminderWindow(days int) int {
	if days <= 0 {
		return models.DefaultReminderDays
	}
	return min(days, models.MaxReminderDays)
}
