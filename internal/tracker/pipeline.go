package tracker

import (
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// Apply возвращает подписки, удовлетворяющие критериям, в нужном порядке.
//
// Фильтры применяются строго в порядке: регулярность, поиск, категория,
// статус, затем сортировка. Сортировка стабильная, исходный срез не
// изменяется. Неизвестные значения фильтров пропускают все записи,
// неизвестный ключ сортировки сохраняет исходный порядок.
func Apply(records []models.Subscription, c models.Criteria, now time.Time) []models.Subscription {
	search := strings.ToLower(strings.TrimSpace(c.Search))

	out := lo.Filter(records, func(sub models.Subscription, _ int) bool {
		return matchesRecurring(sub, c.Recurring, now)
	})
	out = lo.Filter(out, func(sub models.Subscription, _ int) bool {
		return matchesSearch(sub, search)
	})
	out = lo.Filter(out, func(sub models.Subscription, _ int) bool {
		return matchesCategory(sub, c.Category)
	})
	out = lo.Filter(out, func(sub models.Subscription, _ int) bool {
		return matchesStatus(sub, c.Status)
	})

	sortSubscriptions(out, c.Sort)
	return out
}

func isAll(filter string) bool {
	return filter == "" || strings.EqualFold(filter, models.FilterAll)
}

func matchesRecurring(sub models.Subscription, filter string, now time.Time) bool {
	switch strings.ToLower(filter) {
	case models.RecurringTrue:
		return sub.IsRecurring
	case models.RecurringFalse:
		return !sub.IsRecurring
	case models.RecurringPastDue:
		days, ok := daysUntilDue(sub, now)
		return ok && days < 0
	default:
		return true
	}
}

// matchesSearch ожидает query уже в нижнем регистре.
func matchesSearch(sub models.Subscription, query string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(sub.ServiceName), query) ||
		strings.Contains(strings.ToLower(CategoryOrDefault(sub.Category)), query) ||
		strings.Contains(strings.ToLower(sub.Description), query)
}

func matchesCategory(sub models.Subscription, filter string) bool {
	if isAll(filter) {
		return true
	}
	return CategoryOrDefault(sub.Category) == filter
}

func matchesStatus(sub models.Subscription, filter string) bool {
	want := models.Status(strings.ToLower(filter))
	switch want {
	case models.StatusActive, models.StatusCancelled, models.StatusExpired:
		return StatusBucket(sub.Status) == want
	default:
		return true
	}
}

func sortSubscriptions(subs []models.Subscription, key string) {
	switch strings.ToLower(key) {
	case models.SortName:
		col := collate.New(language.Und)
		slices.SortStableFunc(subs, func(a, b models.Subscription) int {
			return col.CompareString(a.ServiceName, b.ServiceName)
		})
	case models.SortCostHigh:
		slices.SortStableFunc(subs, func(a, b models.Subscription) int {
			return MonthlyEquivalent(b.Cost, b.BillingCycle).Cmp(MonthlyEquivalent(a.Cost, a.BillingCycle))
		})
	case models.SortCostLow:
		slices.SortStableFunc(subs, func(a, b models.Subscription) int {
			return MonthlyEquivalent(a.Cost, a.BillingCycle).Cmp(MonthlyEquivalent(b.Cost, b.BillingCycle))
		})
	case models.SortNextPayment:
		slices.SortStableFunc(subs, func(a, b models.Subscription) int {
			return compareDates(a.NextPaymentDate, b.NextPaymentDate, false)
		})
	case models.SortNewest:
		slices.SortStableFunc(subs, func(a, b models.Subscription) int {
			return compareDates(a.CreatedAt, b.CreatedAt, true)
		})
	}
}

// compareDates упорядочивает даты по возрастанию (или по убыванию при desc),
// нулевые даты в обоих случаях идут в конце.
func compareDates(a, b models.Date, desc bool) int {
	switch {
	case a.IsZero() && b.IsZero():
		return 0
	case a.IsZero():
		return 1
	case b.IsZero():
		return -1
	case desc:
		return b.Compare(a.Time)
	default:
		return a.Compare(b.Time)
	}
}
