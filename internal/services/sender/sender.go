// Package sender принимает напоминания из очереди и отправляет их пользователям по почте.
package sender

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/smtp"
	"github.com/magabrotheeeer/subscription-tracker/internal/metrics"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// Service отправляет письма с напоминаниями о платежах.
type Service struct {
	transport smtp.Connector
	log       *slog.Logger
}

// NewService создает новый экземпляр Service.
func NewService(transport smtp.Connector, log *slog.Logger) *Service {
	return &Service{
		transport: transport,
		log:       log,
	}
}

// HandleReminder разбирает сообщение очереди и отправляет письмо.
// Ошибка возвращает сообщение в очередь, поэтому битое сообщение
// логируется и подтверждается без повторов.
func (s *Service) HandleReminder(ctx context.Context, body []byte) error {
	const op = "services.sender.HandleReminder"

	var reminder models.Reminder
	if err := json.Unmarshal(body, &reminder); err != nil {
		s.log.Error("dropping malformed reminder", sl.Op(op), sl.Err(err))
		return nil
	}
	if reminder.Email == "" {
		s.log.Warn("dropping reminder without recipient", slog.String("subscription_id", reminder.SubscriptionID))
		return nil
	}

	subject, text := ComposeReminder(reminder)
	if err := smtp.Send(ctx, s.transport, reminder.Email, subject, text); err != nil {
		metrics.EmailsSent.WithLabelValues("error").Inc()
		return fmt.Errorf("%s: %w", op, err)
	}
	metrics.EmailsSent.WithLabelValues("ok").Inc()
	s.log.Info("email sent successfully", slog.String("subscription_id", reminder.SubscriptionID))
	return nil
}

// ComposeReminder формирует тему и текст письма.
func ComposeReminder(r models.Reminder) (string, string) {
	subject := fmt.Sprintf("Скоро платеж за %s", r.ServiceName)

	when := "сегодня"
	switch r.DaysUntil {
	case 0:
	case 1:
		when = "завтра"
	default:
		when = fmt.Sprintf("через %d дн. (%s)", r.DaysUntil, r.DueDate.Format(models.DateLayout))
	}

	body := fmt.Sprintf("Здравствуйте, %s!\n\nПлатеж за подписку %s на сумму %s списывается %s.\n",
		r.Username, r.ServiceName, r.Amount.StringFixed(2), when)
	return subject, body
}
