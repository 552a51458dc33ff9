package tracker

import (
	"cmp"
	"slices"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// SpendByCategory группирует месячные расходы по категориям.
// Результат упорядочен по убыванию расходов, при равенстве — по названию.
func SpendByCategory(records []models.Subscription) []models.CategorySpend {
	groups := lo.GroupBy(records, func(sub models.Subscription) string {
		return CategoryOrDefault(sub.Category)
	})

	out := make([]models.CategorySpend, 0, len(groups))
	for category, subs := range groups {
		out = append(out, models.CategorySpend{
			Category:     category,
			Count:        len(subs),
			MonthlySpend: monthlySpend(subs),
		})
	}
	slices.SortFunc(out, func(a, b models.CategorySpend) int {
		if c := b.MonthlySpend.Cmp(a.MonthlySpend); c != 0 {
			return c
		}
		return cmp.Compare(a.Category, b.Category)
	})
	return out
}

// SpendByCycle группирует месячные расходы по периодам списания.
// Период приводится к нижнему регистру, пустой период становится "monthly".
func SpendByCycle(records []models.Subscription) []models.CycleSpend {
	groups := lo.GroupBy(records, func(sub models.Subscription) string {
		if cycle := normalizeCycle(sub.BillingCycle); cycle != "" {
			return cycle
		}
		return models.CycleMonthly
	})

	out := make([]models.CycleSpend, 0, len(groups))
	for cycle, subs := range groups {
		out = append(out, models.CycleSpend{
			BillingCycle: cycle,
			Count:        len(subs),
			MonthlySpend: monthlySpend(subs),
		})
	}
	slices.SortFunc(out, func(a, b models.CycleSpend) int {
		if c := b.MonthlySpend.Cmp(a.MonthlySpend); c != 0 {
			return c
		}
		return cmp.Compare(a.BillingCycle, b.BillingCycle)
	})
	return out
}

// TopReportSize — сколько самых дорогих подписок попадает в отчёт.
const TopReportSize = 5

// StatusDistribution считает подписки по нормализованным статусам.
// Результат всегда содержит active, cancelled и expired в этом порядке.
func StatusDistribution(records []models.Subscription) []models.StatusCount {
	counts := lo.CountValuesBy(records, func(sub models.Subscription) models.Status {
		return StatusBucket(sub.Status)
	})
	return []models.StatusCount{
		{Status: models.StatusActive, Count: counts[models.StatusActive]},
		{Status: models.StatusCancelled, Count: counts[models.StatusCancelled]},
		{Status: models.StatusExpired, Count: counts[models.StatusExpired]},
	}
}

// TopByCost возвращает не больше limit подписок с наибольшей стоимостью
// за период. При равной стоимости сохраняется исходный порядок.
func TopByCost(records []models.Subscription, limit int) []models.TopSubscription {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b models.Subscription) int {
		return b.Cost.Cmp(a.Cost)
	})
	if limit >= 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return lo.Map(sorted, func(sub models.Subscription, _ int) models.TopSubscription {
		return models.TopSubscription{
			ID:           sub.ID,
			ServiceName:  sub.ServiceName,
			BillingCycle: sub.BillingCycle,
			Cost:         sub.Cost,
		}
	})
}

// BuildReport собирает данные страницы аналитики.
func BuildReport(records []models.Subscription) models.Report {
	total := monthlySpend(records)
	return models.Report{
		ByCategory:   SpendByCategory(records),
		ByCycle:      SpendByCycle(records),
		ByStatus:     StatusDistribution(records),
		TopByCost:    TopByCost(records, TopReportSize),
		MonthlySpend: total,
		AnnualCost:   total.Mul(monthsPerYear),
	}
}

func monthlySpend(records []models.Subscription) decimal.Decimal {
	total := decimal.Zero
	for _, sub := range records {
		total = total.Add(MonthlyEquivalent(sub.Cost, sub.BillingCycle))
	}
	return total
}
