// Package bus wraps the AMQP publish/subscribe channel the services share: a
// single durable topic exchange, persistent publishes, and durable queues with
// dead-letter routing for messages a consumer refuses.
package bus

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"
)

// ErrNotConnected is returned by Bus methods when the broker connection was
// never established. Services run degraded in that state: HTTP keeps serving,
// publishes are dropped with a log line and no consumer runs.
var ErrNotConnected = errors.New("bus: not connected")

// Bus is a thin adapter over one AMQP connection and channel bound to a
// durable topic exchange.
type Bus struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

// Connect dials the broker and declares the durable topic exchange. The
// caller decides whether a failure is fatal; for the services here it is not.
func Connect(url, exchange string) (*Bus, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	return &Bus{conn: conn, ch: ch, exchange: exchange}, nil
}

// Publish marshals payload to JSON and publishes it persistently under the
// given routing key. Safe to call on a nil Bus.
func (b *Bus) Publish(ctx context.Context, routingKey string, payload any) error {
	if b == nil || b.ch == nil {
		return ErrNotConnected
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return b.ch.PublishWithContext(ctx, b.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         data,
	})
}

// Consume declares a durable queue, binds it to every routing key and invokes
// handler once per delivery until ctx is cancelled or the delivery stream
// closes. A nil handler result acks the message; an error nacks it without
// requeue, which routes it to the dead-letter queue declared alongside.
func (b *Bus) Consume(ctx context.Context, queue string, routingKeys []string, handler func(routingKey string, body []byte) error) error {
	if b == nil || b.ch == nil {
		return ErrNotConnected
	}

	dlx := b.exchange + ".dlx"
	if err := b.ch.ExchangeDeclare(dlx, "fanout", true, false, false, false, nil); err != nil {
		return err
	}
	dead, err := b.ch.QueueDeclare(queue+".dead", true, false, false, false, nil)
	if err != nil {
		return err
	}
	if err := b.ch.QueueBind(dead.Name, "", dlx, false, nil); err != nil {
		return err
	}

	q, err := b.ch.QueueDeclare(queue, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange": dlx,
	})
	if err != nil {
		return err
	}
	for _, key := range routingKeys {
		if err := b.ch.QueueBind(q.Name, key, b.exchange, false, nil); err != nil {
			return err
		}
	}

	deliveries, err := b.ch.Consume(q.Name, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("bus: delivery channel closed")
			}
			if err := handler(d.RoutingKey, d.Body); err != nil {
				log.WithError(err).WithField("routing_key", d.RoutingKey).Error("message rejected, dead-lettering")
				if nerr := d.Nack(false, false); nerr != nil {
					log.WithError(nerr).Error("nack failed")
				}
				continue
			}
			if aerr := d.Ack(false); aerr != nil {
				log.WithError(aerr).Error("ack failed")
			}
		}
	}
}

// Close releases the channel and connection. Safe on a nil Bus.
func (b *Bus) Close() error {
	if b == nil {
		return nil
	}
	if b.ch != nil {
		b.ch.Close()
	}
	if b.conn != nil {
		return b.conn.Close()
	}
	return nil
}
