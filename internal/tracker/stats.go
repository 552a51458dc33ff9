package tracker

import (
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// Окна подсчёта платежей для дашборда, в днях.
const (
	weekWindow  = 7
	monthWindow = 30
)

// Summarize сводит набор подписок в статистику дашборда.
//
// Месячные расходы — сумма месячных эквивалентов всех записей, годовые —
// месячные, умноженные на 12. Счётчики «сегодня», «за неделю» и «за месяц»
// независимы: платёж через два дня попадает во все три окна, которые его
// содержат. Просроченный платёж считается в Overdue и при этом попадает
// в окна недели и месяца, так как число дней до него отрицательно.
func Summarize(records []models.Subscription, now time.Time) models.Stats {
	stats := models.Stats{
		Total:        len(records),
		MonthlySpend: decimal.Zero,
	}

	for _, sub := range records {
		if StatusBucket(sub.Status) == models.StatusActive {
			stats.Active++
		}
		if sub.IsRecurring {
			stats.Recurring++
		}
		stats.MonthlySpend = stats.MonthlySpend.Add(MonthlyEquivalent(sub.Cost, sub.BillingCycle))

		days, ok := daysUntilDue(sub, now)
		if !ok {
			continue
		}
		if days < 0 {
			stats.Overdue++
		}
		if days == 0 {
			stats.DueToday++
		}
		if days <= weekWindow {
			stats.DueThisWeek++
		}
		if days <= monthWindow {
			stats.DueThisMonth++
		}
	}

	stats.AnnualCost = stats.MonthlySpend.Mul(monthsPerYear)
	return stats
}

// Upcoming строит список ближайших платежей в пределах horizonDays дней,
// включая просроченные. Отрицательный horizonDays снимает ограничение.
// Отменённые и истёкшие подписки, а также записи без даты платежа
// в список не попадают. Платежи упорядочены по дате списания.
func Upcoming(records []models.Subscription, now time.Time, horizonDays int) []models.Payment {
	payments := make([]models.Payment, 0, len(records))
	for _, sub := range records {
		if StatusBucket(sub.Status) != models.StatusActive {
			continue
		}
		days, ok := daysUntilDue(sub, now)
		if !ok {
			continue
		}
		if horizonDays >= 0 && days > horizonDays {
			continue
		}
		payments = append(payments, models.Payment{
			SubscriptionID: sub.ID,
			ServiceName:    sub.ServiceName,
			Category:       CategoryOrDefault(sub.Category),
			BillingCycle:   sub.BillingCycle,
			Amount:         sub.Cost,
			DueDate:        sub.NextPaymentDate,
			DaysUntil:      days,
			Urgency:        Urgency(days),
		})
	}

	slices.SortStableFunc(payments, func(a, b models.Payment) int {
		return a.DueDate.Compare(b.DueDate.Time)
	})
	return payments
}

var (
	lowAmountLimit  = decimal.NewFromInt(10)
	highAmountLimit = decimal.NewFromInt(50)
)

// AmountBand относит сумму платежа к диапазону low, medium или high.
func AmountBand(amount decimal.Decimal) string {
	switch {
	case amount.LessThan(lowAmountLimit):
		return models.AmountLow
	case amount.GreaterThan(highAmountLimit):
		return models.AmountHigh
	default:
		return models.AmountMedium
	}
}

// FilterPayments оставляет платежи, подходящие под диапазон суммы и срочность.
// Исходный срез не изменяется.
func FilterPayments(payments []models.Payment, filter models.PaymentFilter) []models.Payment {
	amount := strings.ToLower(strings.TrimSpace(filter.Amount))
	switch amount {
	case models.AmountLow, models.AmountMedium, models.AmountHigh:
	default:
		amount = ""
	}
	urgency := models.Urgency(strings.ToLower(strings.TrimSpace(filter.Urgency)))
	switch urgency {
	case models.UrgencyOverdue, models.UrgencyDueSoon, models.UrgencyUpcoming:
	default:
		urgency = ""
	}

	return lo.Filter(payments, func(p models.Payment, _ int) bool {
		if amount != "" && AmountBand(p.Amount) != amount {
			return false
		}
		return urgency == "" || p.Urgency == urgency
	})
}

// Outstanding возвращает сумму платежей без приведения к месяцу.
func Outstanding(payments []models.Payment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return total
}

// UpcomingReport собирает данные страницы предстоящих платежей
// с фильтрами по сумме и срочности. Сводные счётчики и Outstanding считаются
// по всем платежам горизонта, фильтр сужает только список Payments.
func UpcomingReport(records []models.Subscription, now time.Time, horizonDays int, filter models.PaymentFilter) models.UpcomingReport {
	payments := Upcoming(records, now, horizonDays)
	report := models.UpcomingReport{
		Payments:    FilterPayments(payments, filter),
		Outstanding: Outstanding(payments),
	}
	for _, p := range payments {
		switch p.Urgency {
		case models.UrgencyOverdue:
			report.Overdue++
		case models.UrgencyDueSoon:
			report.DueSoon++
		default:
			report.Upcoming++
		}
	}
	return report
}
