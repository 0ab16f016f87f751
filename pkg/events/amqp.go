package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/nthung-2k5/eventsphere/pkg/logger"
)

// AMQPEventBus publishes to a durable topic exchange. Subjects are used as
// routing keys; a trailing NATS-style ">" wildcard is translated to "#".
type AMQPEventBus struct {
	conn     *amqp.Connection
	exchange string

	mu  sync.Mutex
	pub *amqp.Channel
	chs []*amqp.Channel
}

func NewAMQPEventBus(url, exchange string) (*AMQPEventBus, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := declareExchange(ch, exchange); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return &AMQPEventBus{conn: conn, exchange: exchange, pub: ch}, nil
}

func declareExchange(ch *amqp.Channel, name string) error {
	err := ch.ExchangeDeclare(
		name,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare exchange %s: %w", name, err)
	}
	return nil
}

func (b *AMQPEventBus) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	logger.DebugContext(ctx, "Publishing event", "subject", subject, "data", string(payload))

	correlationID, _ := ctx.Value(logger.RequestIDKey).(string)

	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pub.PublishWithContext(
		ctx,
		b.exchange,
		subject,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:   "application/json",
			MessageId:     uuid.NewString(),
			CorrelationId: correlationID,
			Body:          payload,
			DeliveryMode:  amqp.Persistent,
			Timestamp:     time.Now(),
		},
	)
}

// Subscribe binds an exclusive, auto-deleted queue so every subscriber
// receives every message.
func (b *AMQPEventBus) Subscribe(subject string, handler func(msg *Message)) error {
	return b.consume(subject, "", false, handler)
}

// QueueSubscribe binds a shared durable queue per group and subject, so each
// message goes to one consumer in the group and only to handlers registered
// for its subject.
func (b *AMQPEventBus) QueueSubscribe(subject, queue string, handler func(msg *Message)) error {
	return b.consume(subject, groupQueue(queue, subject), true, handler)
}

func (b *AMQPEventBus) consume(subject, queue string, durable bool, handler func(msg *Message)) error {
	ch, err := b.conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	if err := declareExchange(ch, b.exchange); err != nil {
		_ = ch.Close()
		return err
	}
	q, err := ch.QueueDeclare(
		queue,
		durable,  // durable
		!durable, // auto-delete
		!durable, // exclusive
		false,    // no-wait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		return fmt.Errorf("declare queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, routingKey(subject), b.exchange, false, nil); err != nil {
		_ = ch.Close()
		return fmt.Errorf("bind queue %s: %w", q.Name, err)
	}
	if err := ch.Qos(1, 0, false); err != nil {
		_ = ch.Close()
		return err
	}
	deliveries, err := ch.Consume(
		q.Name,
		"",
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		return fmt.Errorf("consume %s: %w", q.Name, err)
	}

	b.mu.Lock()
	b.chs = append(b.chs, ch)
	b.mu.Unlock()

	go func() {
		for d := range deliveries {
			id := d.MessageId
			if id == "" {
				id = fmt.Sprintf("%d", time.Now().UnixNano())
			}
			handler(&Message{
				Subject:   d.RoutingKey,
				Data:      d.Body,
				Timestamp: d.Timestamp,
				ID:        id,
			})
			_ = d.Ack(false)
		}
	}()

	logger.Info("AMQP consumer started", "queue", q.Name, "subject", subject)
	return nil
}

func (b *AMQPEventBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.chs {
		_ = ch.Close()
	}
	if b.pub != nil {
		_ = b.pub.Close()
	}
	return b.conn.Close()
}

func routingKey(subject string) string {
	if strings.HasSuffix(subject, ">") {
		return strings.TrimSuffix(subject, ">") + "#"
	}
	return subject
}

// groupQueue names the durable queue of a queue group on one subject.
func groupQueue(queue, subject string) string {
	return queue + "." + routingKey(subject)
}

var _ EventBus = (*AMQPEventBus)(nil)
