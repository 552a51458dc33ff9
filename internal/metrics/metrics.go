// Package metrics объявляет счетчики Prometheus, которые отдаются на /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SubscriptionsCreated — число созданных подписок.
	SubscriptionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "subscription_tracker_subscriptions_created_total",
		Help: "Number of subscriptions created through the API.",
	})

	// RemindersPublished — число напоминаний, отправленных в очередь.
	RemindersPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "subscription_tracker_reminders_published_total",
		Help: "Number of payment reminders published to the notifications exchange.",
	})

	// EmailsSent — результаты отправки писем, по метке status (ok, error).
	EmailsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "subscription_tracker_emails_sent_total",
		Help: "Number of reminder e-mails by delivery result.",
	}, []string{"status"})

	// HTTPRequests — обработанные HTTP-запросы по методу и коду ответа.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "subscription_tracker_http_requests_total",
		Help: "Number of HTTP requests by method and status code.",
	}, []string{"method", "code"})
)
