package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

const subscriptionColumns = `id, user_uid, service_name, cost, billing_cycle, category,
	next_payment_date, is_recurring, description, status, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanSubscription(row scanner, sub *models.Subscription) error {
	return row.Scan(&sub.ID, &sub.UserUID, &sub.ServiceName, &sub.Cost, &sub.BillingCycle,
		&sub.Category, &sub.NextPaymentDate, &sub.IsRecurring, &sub.Description,
		&sub.Status, &sub.CreatedAt)
}

func collectSubscriptions(rows *sql.Rows) ([]models.Subscription, error) {
	defer func() {
		_ = rows.Close()
	}()
	result := make([]models.Subscription, 0)
	for rows.Next() {
		var sub models.Subscription
		if err := scanSubscription(rows, &sub); err != nil {
			return nil, err
		}
		result = append(result, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// CreateSubscription вставляет новую подписку и возвращает её ID.
func (s *Storage) CreateSubscription(ctx context.Context, sub models.Subscription) (string, error) {
	const op = "storage.CreateSubscription"
	if err := ctxDone(ctx); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	query := `INSERT INTO subscriptions (user_uid, service_name, cost, billing_cycle, category,
			      next_payment_date, is_recurring, description, status)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			  RETURNING id`
	var id string
	err := s.DB.QueryRowContext(ctx, query,
		sub.UserUID, sub.ServiceName, sub.Cost, sub.BillingCycle, sub.Category,
		sub.NextPaymentDate, sub.IsRecurring, sub.Description, sub.Status).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, mapError(err))
	}
	return id, nil
}

// ReadSubscription возвращает подписку по ID.
func (s *Storage) ReadSubscription(ctx context.Context, id string) (*models.Subscription, error) {
	const op = "storage.ReadSubscription"
	if err := ctxDone(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id = $1`
	var sub models.Subscription
	if err := scanSubscription(s.DB.QueryRowContext(ctx, query, id), &sub); err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return &sub, nil
}

// UpdateSubscription перезаписывает изменяемые поля подписки.
func (s *Storage) UpdateSubscription(ctx context.Context, sub models.Subscription) error {
	const op = "storage.UpdateSubscription"
	if err := ctxDone(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query := `UPDATE subscriptions
			  SET service_name = $1, cost = $2, billing_cycle = $3, category = $4,
			      next_payment_date = $5, is_recurring = $6, description = $7, status = $8
			  WHERE id = $9`
	res, err := s.DB.ExecContext(ctx, query,
		sub.ServiceName, sub.Cost, sub.BillingCycle, sub.Category, sub.NextPaymentDate,
		sub.IsRecurring, sub.Description, sub.Status, sub.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err))
	}
	if err := expectOne(res); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// RemoveSubscription удаляет подписку по ID.
func (s *Storage) RemoveSubscription(ctx context.Context, id string) error {
	const op = "storage.RemoveSubscription"
	if err := ctxDone(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM subscriptions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err))
	}
	if err := expectOne(res); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListSubscriptions возвращает все подписки пользователя в порядке создания.
// Фильтрация и сортировка выполняются в памяти над этим набором.
func (s *Storage) ListSubscriptions(ctx context.Context, userUID string) ([]models.Subscription, error) {
	const op = "storage.ListSubscriptions"
	if err := ctxDone(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query := `SELECT ` + subscriptionColumns + `
			  FROM subscriptions
			  WHERE user_uid = $1
			  ORDER BY created_at, id`
	rows, err := s.DB.QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	result, err := collectSubscriptions(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListAllSubscriptions возвращает подписки всех пользователей.
func (s *Storage) ListAllSubscriptions(ctx context.Context) ([]models.Subscription, error) {
	const op = "storage.ListAllSubscriptions"
	if err := ctxDone(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions ORDER BY created_at, id`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	result, err := collectSubscriptions(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListReminderCandidates возвращает подписки с датой платежа не позже before
// у пользователей, включивших уведомления, вместе с их окном напоминаний.
func (s *Storage) ListReminderCandidates(ctx context.Context, before models.Date) ([]models.ReminderCandidate, error) {
	const op = "storage.ListReminderCandidates"
	if err := ctxDone(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query := `SELECT s.id, s.user_uid, s.service_name, s.cost, s.billing_cycle, s.category,
			      s.next_payment_date, s.is_recurring, s.description, s.status, s.created_at,
			      u.email, u.username, u.reminder_days
			  FROM subscriptions s
			  JOIN users u ON u.uid = s.user_uid
			  WHERE u.notifications_enabled
			    AND s.next_payment_date IS NOT NULL
			    AND s.next_payment_date <= $1
			  ORDER BY s.next_payment_date`
	rows, err := s.DB.QueryContext(ctx, query, before)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.ReminderCandidate
	for rows.Next() {
		var c models.ReminderCandidate
		sub := &c.Subscription
		if err := rows.Scan(&sub.ID, &sub.UserUID, &sub.ServiceName, &sub.Cost, &sub.BillingCycle,
			&sub.Category, &sub.NextPaymentDate, &sub.IsRecurring, &sub.Description,
			&sub.Status, &sub.CreatedAt, &c.Email, &c.Username, &c.ReminderDays); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
