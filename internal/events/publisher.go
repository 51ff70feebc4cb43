package events

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/arwoh/storefront-go/internal/cart"
	"github.com/arwoh/storefront-go/internal/middleware"
)

var _ cart.Publisher = (*Publisher)(nil)

type Publisher struct {
	ch       channel
	seq      Sequencer
	producer string
	now      func() time.Time
}

type PublisherOptions struct {
	Producer string
	// Sequencer is optional; without it events carry no sequence.
	Sequencer Sequencer
}

func NewPublisher(conn *amqp.Connection, opts PublisherOptions) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	return newPublisher(ch, opts)
}

func newPublisher(ch channel, opts PublisherOptions) (*Publisher, error) {
	if err := declareEventsExchange(ch); err != nil {
		return nil, fmt.Errorf("declare events exchange: %w", err)
	}

	producer := opts.Producer
	if producer == "" {
		producer = producerName
	}
	return &Publisher{ch: ch, seq: opts.Sequencer, producer: producer, now: time.Now}, nil
}

func (p *Publisher) Close() error {
	return p.ch.Close()
}

// PublishSnapshotReplaced records the cart a user now holds. userID is the
// bound principal; the server's snapshot may omit it.
func (p *Publisher) PublishSnapshotReplaced(ctx context.Context, op string, userID int64, s cart.Snapshot) error {
	at := p.now().UTC()
	payload := snapshotPayload(op, userID, s, at)
	return p.publish(ctx, CartSnapshotReplacedRoutingKey, EventTypeCartSnapshotReplaced, cartSnapshotReplacedSchema, userID, payload, at)
}

// PublishCheckoutLinkRequested records that a payment redirect was handed out.
// Only the payment host is published; the link itself is a bearer secret.
func (p *Publisher) PublishCheckoutLinkRequested(ctx context.Context, userID int64, s cart.Snapshot, paymentURL string) error {
	at := p.now().UTC()
	host := ""
	if u, err := url.Parse(paymentURL); err == nil {
		host = u.Host
	}
	payload := CheckoutLinkRequestedPayload{
		UserID:      userID,
		ItemCount:   s.ItemCount(),
		TotalPrice:  s.TotalPrice,
		PaymentHost: host,
		Timestamp:   at,
	}
	return p.publish(ctx, CheckoutLinkRequestedRoutingKey, EventTypeCheckoutLinkRequested, checkoutLinkRequestedSchema, userID, payload, at)
}

func (p *Publisher) publish(ctx context.Context, routingKey, name, schema string, userID int64, payload any, at time.Time) error {
	if userID <= 0 {
		return fmt.Errorf("%s: %w", name, ErrNoUser)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", name, err)
	}

	var seq int64
	if p.seq != nil {
		if seq, err = p.seq.NextSequence(ctx, userID); err != nil {
			return fmt.Errorf("reserve sequence: %w", err)
		}
	}

	env := EventEnvelope{
		EventName:     name,
		EventVersion:  1,
		EventID:       uuid.NewString(),
		CorrelationID: middleware.GetCorrelationID(ctx),
		Producer:      p.producer,
		PartitionKey:  cartPartition(userID),
		Sequence:      seq,
		OccurredAt:    at,
		Schema:        schema,
		Payload:       raw,
	}
	if err := env.Validate(name, 1); err != nil {
		return fmt.Errorf("invalid %s envelope: %w", name, err)
	}

	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal %s envelope: %w", name, err)
	}
	return p.publishJSON(ctx, routingKey, env.CorrelationID, body)
}

func (p *Publisher) publishJSON(ctx context.Context, routingKey, correlationID string, body []byte) error {
	pubCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return p.ch.PublishWithContext(
		pubCtx,
		EventsExchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:   "application/json",
			DeliveryMode:  amqp.Persistent,
			CorrelationId: correlationID,
			Timestamp:     time.Now().UTC(),
			Body:          body,
		},
	)
}
