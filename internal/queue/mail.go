package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/staffdesk/staff-console/internal/domain"
)

const MailQueueName = "email_queue"

// DeclareMailQueue declares the durable mail queue on the given channel. Both
// the API (producer) and the mail worker (consumer) declare it so that startup
// order does not matter.
func DeclareMailQueue(ch *amqp.Channel) (amqp.Queue, error) {
	return ch.QueueDeclare(
		MailQueueName,
		true,  // durable
		false, // do not auto-delete while unconsumed
		false, // non-exclusive
		false, // wait for the broker to confirm
		nil,
	)
}

// MailQueue publishes mail messages for the mail worker to deliver.
type MailQueue struct {
	channel        *amqp.Channel
	publishTimeout time.Duration
}

func NewMailQueue(ch *amqp.Channel, publishTimeout time.Duration) *MailQueue {
	return &MailQueue{
		channel:        ch,
		publishTimeout: publishTimeout,
	}
}

func (q *MailQueue) PublishMail(ctx context.Context, msg *domain.MailMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, q.publishTimeout)
	defer cancel()

	return q.channel.PublishWithContext(
		ctx,
		"",
		MailQueueName,
		true,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}
