package notify

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// AMQPNotifier publishes rendered messages to a durable queue. A mail worker
// consumes the queue and does the actual delivery. Each publish uses a fresh
// connection so a broker restart never leaves the service holding a dead
// channel.
type AMQPNotifier struct {
	url   string
	queue string
}

func NewAMQPNotifier(url, queue string) *AMQPNotifier {
	return &AMQPNotifier{url: url, queue: queue}
}

func (n *AMQPNotifier) Send(ctx context.Context, msg *Message) error {
	conn, err := amqp.Dial(n.url)
	if err != nil {
		logrus.WithError(err).Error("notify: amqp dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		logrus.WithError(err).Error("notify: amqp channel open failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	// Durable so messages survive broker restarts.
	if _, err = ch.QueueDeclare(n.queue, true, false, false, false, nil); err != nil {
		logrus.WithError(err).Error("notify: queue declare failed")
		return err
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err = ch.PublishWithContext(ctx, "", n.queue, false, false, pub); err != nil {
		logrus.WithError(err).WithField("queue", n.queue).Error("notify: publish failed")
		return err
	}

	return nil
}
