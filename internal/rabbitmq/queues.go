package rabbitmq

// QueueConfig описывает очередь и ключ маршрутизации, которым она привязана.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// Очередь напоминаний о ближайших платежах.
const (
	PaymentRemindersQueue = "notifications.upcoming"
	PaymentRemindersKey   = "upcoming"
)

// GetNotificationQueues возвращает очереди, которые объявляют планировщик и отправитель.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: PaymentRemindersQueue, RoutingKey: PaymentRemindersKey},
	}
}
