package tracker

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

var pipelineNow = time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

func sub(id, name, cost, cycle string) models.Subscription {
	return models.Subscription{
		ID:              id,
		ServiceName:     name,
		Cost:            decimal.RequireFromString(cost),
		BillingCycle:    cycle,
		IsRecurring:     true,
		NextPaymentDate: models.NewDate(2024, 3, 20),
		CreatedAt:       models.NewDate(2024, 1, 1),
	}
}

func ids(subs []models.Subscription) []string {
	out := make([]string, 0, len(subs))
	for _, s := range subs {
		out = append(out, s.ID)
	}
	return out
}

func fixture() []models.Subscription {
	netflix := sub("1", "Netflix", "15.99", "monthly")
	netflix.Category = "Entertainment"
	netflix.Description = "family plan"
	netflix.CreatedAt = models.NewDate(2023, 5, 1)

	spotify := sub("2", "spotify", "119.88", "yearly")
	spotify.Category = "Music"
	spotify.Status = "Cancelled"
	spotify.NextPaymentDate = models.NewDate(2024, 3, 1)
	spotify.CreatedAt = models.NewDate(2024, 2, 1)

	gym := sub("3", "Gym", "10", "weekly")
	gym.Category = "Health"
	gym.IsRecurring = false
	gym.NextPaymentDate = models.NewDate(2024, 3, 5)
	gym.CreatedAt = models.NewDate(2022, 1, 1)

	icloud := sub("4", "iCloud", "2.99", "monthly")
	icloud.Status = "expired"
	icloud.NextPaymentDate = models.NewDate(2024, 3, 11)
	icloud.CreatedAt = models.NewDate(2024, 3, 1)

	return []models.Subscription{netflix, spotify, gym, icloud}
}

func TestApply_AllCriteriaReturnsEverything(t *testing.T) {
	records := fixture()

	got := Apply(records, models.Criteria{
		Category:  "all",
		Recurring: "all",
		Status:    "all",
	}, pipelineNow)

	assert.Equal(t, ids(records), ids(got))

	got = Apply(records, models.Criteria{}, pipelineNow)
	assert.Equal(t, ids(records), ids(got))
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	records := fixture()
	before := ids(records)

	got := Apply(records, models.Criteria{Sort: models.SortName}, pipelineNow)
	require.Len(t, got, len(records))

	assert.Equal(t, before, ids(records))
	got[0].ServiceName = "changed"
	assert.NotEqual(t, "changed", records[0].ServiceName)
}

func TestApply_Filters(t *testing.T) {
	tests := []struct {
		name     string
		criteria models.Criteria
		want     []string
	}{
		{name: "recurring only", criteria: models.Criteria{Recurring: "true"}, want: []string{"1", "2", "4"}},
		{name: "one-off only", criteria: models.Criteria{Recurring: "false"}, want: []string{"3"}},
		{name: "past due", criteria: models.Criteria{Recurring: "past-due"}, want: []string{"2", "3"}},
		{name: "unknown recurring value passes through", criteria: models.Criteria{Recurring: "maybe"}, want: []string{"1", "2", "3", "4"}},
		{name: "search by name is case-insensitive", criteria: models.Criteria{Search: "SPOT"}, want: []string{"2"}},
		{name: "search by category", criteria: models.Criteria{Search: "health"}, want: []string{"3"}},
		{name: "search by description", criteria: models.Criteria{Search: "family"}, want: []string{"1"}},
		{name: "search by default category", criteria: models.Criteria{Search: "other"}, want: []string{"4"}},
		{name: "search with spaces", criteria: models.Criteria{Search: "  gym  "}, want: []string{"3"}},
		{name: "category exact match", criteria: models.Criteria{Category: "Music"}, want: []string{"2"}},
		{name: "category is case-sensitive", criteria: models.Criteria{Category: "music"}, want: []string{}},
		{name: "default category", criteria: models.Criteria{Category: "Other"}, want: []string{"4"}},
		{name: "status active", criteria: models.Criteria{Status: "active"}, want: []string{"1", "3"}},
		{name: "status cancelled", criteria: models.Criteria{Status: "cancelled"}, want: []string{"2"}},
		{name: "status expired", criteria: models.Criteria{Status: "EXPIRED"}, want: []string{"4"}},
		{name: "unknown status passes through", criteria: models.Criteria{Status: "paused"}, want: []string{"1", "2", "3", "4"}},
		{name: "combined", criteria: models.Criteria{Recurring: "true", Status: "active", Search: "n"}, want: []string{"1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(fixture(), tt.criteria, pipelineNow)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestApply_Sort(t *testing.T) {
	tests := []struct {
		name string
		sort string
		want []string
	}{
		{name: "name is case-insensitive", sort: "name", want: []string{"3", "4", "1", "2"}},
		{name: "cost high", sort: "cost-high", want: []string{"3", "1", "2", "4"}},
		{name: "cost low", sort: "cost-low", want: []string{"4", "2", "1", "3"}},
		{name: "next payment", sort: "next-payment", want: []string{"2", "3", "4", "1"}},
		{name: "newest", sort: "newest", want: []string{"4", "2", "1", "3"}},
		{name: "unknown key keeps order", sort: "random", want: []string{"1", "2", "3", "4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(fixture(), models.Criteria{Sort: tt.sort}, pipelineNow)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestApply_CostSortIsStable(t *testing.T) {
	a := sub("a", "A", "5", "weekly")
	b := sub("b", "B", "10", "monthly")
	c := sub("c", "C", "120", "yearly")
	records := []models.Subscription{a, b, c}

	assert.Equal(t, []string{"a", "b", "c"}, ids(Apply(records, models.Criteria{Sort: "cost-high"}, pipelineNow)))
	assert.Equal(t, []string{"b", "c", "a"}, ids(Apply(records, models.Criteria{Sort: "cost-low"}, pipelineNow)))

	reversed := []models.Subscription{c, b, a}
	assert.Equal(t, []string{"a", "c", "b"}, ids(Apply(reversed, models.Criteria{Sort: "cost-high"}, pipelineNow)))
	assert.Equal(t, []string{"c", "b", "a"}, ids(Apply(reversed, models.Criteria{Sort: "cost-low"}, pipelineNow)))
}

func TestApply_MissingDatesSortLast(t *testing.T) {
	dated := sub("dated", "Dated", "1", "monthly")
	undated := sub("undated", "Undated", "1", "monthly")
	undated.NextPaymentDate = models.Date{}
	undated.CreatedAt = models.Date{}

	records := []models.Subscription{undated, dated}
	assert.Equal(t, []string{"dated", "undated"}, ids(Apply(records, models.Criteria{Sort: "next-payment"}, pipelineNow)))
	assert.Equal(t, []string{"dated", "undated"}, ids(Apply(records, models.Criteria{Sort: "newest"}, pipelineNow)))
	assert.Empty(t, Apply(records[:1], models.Criteria{Recurring: "past-due"}, pipelineNow))
}

func TestApply_EmptyInput(t *testing.T) {
	got := Apply(nil, models.Criteria{Sort: "name"}, pipelineNow)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestApply_NewestSurvivesJSONRoundTrip(t *testing.T) {
	older := sub("older", "Older", "1", "monthly")
	older.CreatedAt = models.Date{Time: time.Date(2024, 3, 1, 1, 0, 0, 0, time.UTC)}
	newer := sub("newer", "Newer", "1", "monthly")
	newer.CreatedAt = models.Date{Time: time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC)}
	records := []models.Subscription{older, newer}

	raw, err := json.Marshal(records)
	require.NoError(t, err)
	var cached []models.Subscription
	require.NoError(t, json.Unmarshal(raw, &cached))

	criteria := models.Criteria{Sort: models.SortNewest}
	assert.Equal(t, []string{"newer", "older"}, ids(Apply(records, criteria, pipelineNow)))
	assert.Equal(t, []string{"newer", "older"}, ids(Apply(cached, criteria, pipelineNow)))
}

func TestApply_PastDueUsesWholeDays(t *testing.T) {
	earlierToday := sub("today", "Today", "1", "monthly")
	earlierToday.NextPaymentDate = models.NewDate(2024, 3, 10)
	yesterday := sub("yesterday", "Yesterday", "1", "monthly")
	yesterday.NextPaymentDate = models.NewDate(2024, 3, 9)

	got := Apply([]models.Subscription{earlierToday, yesterday}, models.Criteria{Recurring: models.RecurringPastDue}, pipelineNow)
	assert.Equal(t, []string{"yesterday"}, ids(got))
}
