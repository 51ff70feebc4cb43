package events

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const (
	EventsExchange = "storefront.events"

	CartSnapshotReplacedRoutingKey  = "cart.snapshot.replaced.v1"
	CheckoutLinkRequestedRoutingKey = "checkout.link.requested.v1"

	producerName = "storefront-bff"
)

// channel is the part of *amqp.Channel the publisher needs.
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

func declareEventsExchange(ch channel) error {
	return ch.ExchangeDeclare(
		EventsExchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
}

// Dial connects to RabbitMQ and logs when the broker drops the connection.
func Dial(url string, logger logrus.FieldLogger) (*amqp.Connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	closed := conn.NotifyClose(make(chan *amqp.Error, 1))
	go func() {
		if err, ok := <-closed; ok && err != nil {
			logger.WithError(err).Error("rabbitmq connection closed")
		}
	}()
	return conn, nil
}
