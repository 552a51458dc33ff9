// Package models содержит доменные структуры трекера подписок: запись подписки,
// производные величины (статистика, платежи, отчёты), критерии выборки,
// а также DTO для приёма данных из JSON‑запросов.
package models

import "github.com/shopspring/decimal"

// Периоды списания, которые понимает нормализация стоимости.
const (
	CycleWeekly    = "weekly"
	CycleMonthly   = "monthly"
	CycleQuarterly = "quarterly"
	CycleYearly    = "yearly"
)

// DefaultCategory подставляется, если категория подписки не указана.
const DefaultCategory = "Other"

// Subscription представляет запись подписки в том виде, в каком её отдаёт REST API.
// Поля, которых нет во внешних данных, остаются нулевыми: вся производная логика
// подставляет для них безопасные значения по умолчанию.
type Subscription struct {
	ID              string          `json:"id"`
	UserUID         string          `json:"userUid,omitempty"`
	ServiceName     string          `json:"serviceName"`
	Cost            decimal.Decimal `json:"cost"`
	BillingCycle    string          `json:"billingCycle"`
	Category        string          `json:"category,omitempty"`
	NextPaymentDate Date            `json:"nextPaymentDate"`
	IsRecurring     bool            `json:"isRecurring"`
	Description     string          `json:"description,omitempty"`
	Status          string          `json:"status,omitempty"`
	CreatedAt       Date            `json:"createdAt"`
}

// SubscriptionRequest используется для приёма данных подписки из JSON-запроса.
// Дата следующего платежа приходит строкой и разбирается в сервисе.
type SubscriptionRequest struct {
	ServiceName     string          `json:"serviceName" validate:"required,max=255"`
	Cost            decimal.Decimal `json:"cost"`
	BillingCycle    string          `json:"billingCycle" validate:"required,oneof=weekly monthly quarterly yearly"`
	Category        string          `json:"category,omitempty" validate:"omitempty,max=100"`
	NextPaymentDate string          `json:"nextPaymentDate" validate:"required"`
	IsRecurring     bool            `json:"isRecurring"`
	Description     string          `json:"description,omitempty" validate:"omitempty,max=1000"`
	Status          string          `json:"status,omitempty" validate:"omitempty,max=50"`
}

// ReminderCandidate — подписка вместе с контактами владельца,
// выбирается планировщиком напоминаний.
type ReminderCandidate struct {
	Subscription Subscription
	Email        string
	Username     string
	ReminderDays int
}

// Reminder — сообщение очереди уведомлений о ближайшем платеже.
type Reminder struct {
	SubscriptionID string          `json:"subscriptionId"`
	Email          string          `json:"email"`
	Username       string          `json:"username"`
	ServiceName    string          `json:"serviceName"`
	Amount         decimal.Decimal `json:"amount"`
	DueDate        Date            `json:"dueDate"`
	DaysUntil      int             `json:"daysUntil"`
}
