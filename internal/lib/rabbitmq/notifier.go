package rabbitmq

import (
	"github.com/streadway/amqp"

	"github.com/mediacareers/membership-service/internal/models"
)

// Notifier публикует почтовые уведомления в exchange "notifications".
type Notifier struct {
	ch *amqp.Channel
}

// NewNotifier создает новый Notifier поверх открытого канала.
func NewNotifier(ch *amqp.Channel) *Notifier {
	return &Notifier{ch: ch}
}

// PublishWelcomeEmail ставит в очередь приветственное письмо.
func (n *Notifier) PublishWelcomeEmail(msg models.WelcomeEmail) error {
	return PublishMessage(n.ch, "notifications", RoutingKeyWelcome, msg)
}

// PublishApplicationConfirmation ставит в очередь подтверждение отклика.
func (n *Notifier) PublishApplicationConfirmation(msg models.ApplicationConfirmation) error {
	return PublishMessage(n.ch, "notifications", RoutingKeyApplication, msg)
}
