package models

import "github.com/shopspring/decimal"

// Urgency — срочность платежа относительно текущей даты.
type Urgency string

const (
	UrgencyOverdue  Urgency = "overdue"
	UrgencyDueSoon  Urgency = "due-soon"
	UrgencyUpcoming Urgency = "upcoming"
)

// Status — нормализованное состояние подписки.
type Status string

const (
	StatusActive    Status = "active"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
)

// Stats — сводка по набору подписок для дашборда.
type Stats struct {
	Total        int             `json:"total"`
	Active       int             `json:"active"`
	Recurring    int             `json:"recurring"`
	Overdue      int             `json:"overdue"`
	MonthlySpend decimal.Decimal `json:"monthlySpend"`
	AnnualCost   decimal.Decimal `json:"annualCost"`
	DueToday     int             `json:"dueToday"`
	DueThisWeek  int             `json:"dueThisWeek"`
	DueThisMonth int             `json:"dueThisMonth"`
}

// Payment — ближайший платёж по подписке.
// Amount — исходная стоимость за период, без приведения к месяцу.
type Payment struct {
	SubscriptionID string          `json:"subscriptionId"`
	ServiceName    string          `json:"serviceName"`
	Category       string          `json:"category"`
	BillingCycle   string          `json:"billingCycle"`
	Amount         decimal.Decimal `json:"amount"`
	DueDate        Date            `json:"dueDate"`
	DaysUntil      int             `json:"daysUntil"`
	Urgency        Urgency         `json:"urgency"`
}

// UpcomingReport — данные страницы предстоящих платежей.
type UpcomingReport struct {
	Payments    []Payment       `json:"payments"`
	Outstanding decimal.Decimal `json:"outstanding"`
	Overdue     int             `json:"overdue"`
	DueSoon     int             `json:"dueSoon"`
	Upcoming    int             `json:"upcoming"`
}

// CategorySpend — месячные расходы по одной категории.
type CategorySpend struct {
	Category     string          `json:"category"`
	Count        int             `json:"count"`
	MonthlySpend decimal.Decimal `json:"monthlySpend"`
}

// CycleSpend — месячные расходы по одному периоду списания.
type CycleSpend struct {
	BillingCycle string          `json:"billingCycle"`
	Count        int             `json:"count"`
	MonthlySpend decimal.Decimal `json:"monthlySpend"`
}

// StatusCount — число подписок в одном нормализованном статусе.
type StatusCount struct {
	Status Status `json:"status"`
	Count  int    `json:"count"`
}

// TopSubscription — подписка из рейтинга самых дорогих.
// Cost берётся за период списания, без приведения к месяцу.
type TopSubscription struct {
	ID           string          `json:"id"`
	ServiceName  string          `json:"serviceName"`
	BillingCycle string          `json:"billingCycle"`
	Cost         decimal.Decimal `json:"cost"`
}

// Report — данные страницы аналитики.
type Report struct {
	ByCategory   []CategorySpend   `json:"byCategory"`
	ByCycle      []CycleSpend      `json:"byCycle"`
	ByStatus     []StatusCount     `json:"byStatus"`
	TopByCost    []TopSubscription `json:"topByCost"`
	MonthlySpend decimal.Decimal   `json:"monthlySpend"`
	AnnualCost   decimal.Decimal   `json:"annualCost"`
}
