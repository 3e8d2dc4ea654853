package rabbitmq

// QueueConfig связывает очередь с routing key внутри exchange "notifications".
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// Routing keys почтовых уведомлений.
const (
	// RoutingKeyWelcome приветственное письмо после регистрации.
	RoutingKeyWelcome = "email.welcome"
	// RoutingKeyApplication подтверждение отклика на вакансию.
	RoutingKeyApplication = "email.application"
)

// GetNotificationQueues возвращает очереди почтового воркера.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "notifications.welcome", RoutingKey: RoutingKeyWelcome},
		{QueueName: "notifications.application", RoutingKey: RoutingKeyApplication},
	}
}
