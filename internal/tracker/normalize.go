// Package tracker содержит предметную логику трекера подписок: приведение
// стоимости к месячному эквиваленту, расчёт срочности платежей, конвейер
// поиска/фильтрации/сортировки и агрегацию статистики.
//
// Все функции пакета чистые: они не выполняют ввод-вывод, не изменяют
// переданные записи и не хранят состояние между вызовами. Некорректные или
// отсутствующие поля заменяются безопасными значениями по умолчанию,
// поэтому функции пакета никогда не возвращают ошибок.
package tracker

import (
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// DueSoonDays — порог в днях, до которого платёж считается срочным.
const DueSoonDays = 3

var (
	weeksPerMonth   = decimal.RequireFromString("4.33")
	monthsPerPeriod = decimal.NewFromInt(3)
	monthsPerYear   = decimal.NewFromInt(12)
)

// MonthlyEquivalent приводит стоимость подписки к одному месяцу.
//
// weekly умножается на 4.33, quarterly делится на 3, yearly — на 12.
// monthly и любые нераспознанные периоды возвращаются без изменений.
func MonthlyEquivalent(cost decimal.Decimal, billingCycle string) decimal.Decimal {
	switch normalizeCycle(billingCycle) {
	case models.CycleWeekly:
		return cost.Mul(weeksPerMonth)
	case models.CycleQuarterly:
		return cost.Div(monthsPerPeriod)
	case models.CycleYearly:
		return cost.Div(monthsPerYear)
	default:
		return cost
	}
}

// DaysUntil возвращает число дней от now до date, округлённое вверх.
// Отрицательное значение означает просроченный платёж.
//
// Считается разница моментов времени, а не календарных дат, поэтому около
// полуночи результат может отличаться на единицу от «календарного».
func DaysUntil(date, now time.Time) int {
	return int(math.Ceil(date.Sub(now).Hours() / 24))
}

// Urgency классифицирует платёж по числу дней до списания.
func Urgency(days int) models.Urgency {
	switch {
	case days < 0:
		return models.UrgencyOverdue
	case days <= DueSoonDays:
		return models.UrgencyDueSoon
	default:
		return models.UrgencyUpcoming
	}
}

// StatusBucket нормализует произвольный текст статуса.
// Сопоставление регистронезависимое, по подстрокам "active", "cancel", "expir";
// пустой или нераспознанный статус считается активным.
func StatusBucket(raw string) models.Status {
	s := strings.ToLower(raw)
	switch {
	case strings.Contains(s, "active"):
		return models.StatusActive
	case strings.Contains(s, "cancel"):
		return models.StatusCancelled
	case strings.Contains(s, "expir"):
		return models.StatusExpired
	default:
		return models.StatusActive
	}
}

// CategoryOrDefault возвращает категорию или "Other", если она не указана.
func CategoryOrDefault(category string) string {
	if strings.TrimSpace(category) == "" {
		return models.DefaultCategory
	}
	return category
}

// daysUntilDue возвращает число дней до следующего платежа.
// Запись без даты платежа никогда не считается ни просроченной, ни срочной.
func daysUntilDue(sub models.Subscription, now time.Time) (int, bool) {
	if sub.NextPaymentDate.IsZero() {
		return 0, false
	}
	return DaysUntil(sub.NextPaymentDate.Time, now), true
}

func normalizeCycle(cycle string) string {
	return strings.ToLower(strings.TrimSpace(cycle))
}
